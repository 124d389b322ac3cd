package adminsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the normalized response body every API endpoint returns.
// Error true means a recoverable domain failure whose message can be
// shown to the user as-is.
type Envelope struct {
	Success bool                `json:"success"`
	Error   bool                `json:"error"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
}

// RemoteError is a domain rejection relayed by the server inside a 2xx
// envelope. The message is user-displayable.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportFault is a network or server failure. It carries no
// user-displayable detail; callers surface a generic message.
type TransportFault struct {
	Status int
	Err    error
}

func (e *TransportFault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport fault: %s", e.Err)
	}
	return fmt.Sprintf("transport fault: status %d", e.Status)
}

func (e *TransportFault) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err carries a message safe to show the
// user directly.
func IsRecoverable(err error) bool {
	_, ok := err.(*RemoteError)
	return ok
}

// FailureMessage picks the toast text for a failed call.
func FailureMessage(err error) string {
	if re, ok := err.(*RemoteError); ok {
		return re.Message
	}
	return "request failed, please retry"
}

// HTTPClient drives one resource collection of the admin API. It
// attaches the bearer token and a correlation id to every request and
// unwraps the response envelope.
type HTTPClient[T any] struct {
	base  string
	path  string
	token string
}

// NewHTTPClient returns a client for the collection at path, for
// example "/api/products".
func NewHTTPClient[T any](base, path, token string) *HTTPClient[T] {
	return &HTTPClient[T]{
		base:  strings.TrimRight(base, "/"),
		path:  path,
		token: token,
	}
}

func (c *HTTPClient[T]) headers() gout.H {
	return gout.H{
		"Authorization": "Bearer " + c.token,
		"X-Request-Id":  uuid.NewString(),
	}
}

func (c *HTTPClient[T]) url(segments ...string) string {
	return c.base + c.path + strings.Join(segments, "")
}

// listPayload matches the paged list shape. Plain array responses are
// handled separately in decodeRows.
type listPayload[T any] struct {
	Rows []T `json:"rows"`
}

func decodeRows[T any](data jsoniter.RawMessage) ([]T, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var paged listPayload[T]
		if err := json.Unmarshal(data, &paged); err != nil {
			return nil, &TransportFault{Err: err}
		}
		return paged.Rows, nil
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &TransportFault{Err: err}
	}
	return rows, nil
}

func checkEnvelope(code int, env *Envelope, err error) error {
	if err != nil {
		return &TransportFault{Err: err}
	}
	if code < 200 || code > 299 {
		return &TransportFault{Status: code}
	}
	if env.Error {
		return &RemoteError{Message: env.Message}
	}
	return nil
}

func (c *HTTPClient[T]) List(ctx context.Context) ([]T, error) {
	var env Envelope
	var code int
	err := gout.GET(c.url()).
		WithContext(ctx).
		SetHeader(c.headers()).
		BindJSON(&env).
		Code(&code).
		Do()
	if err := checkEnvelope(code, &env, err); err != nil {
		return nil, err
	}
	return decodeRows[T](env.Data)
}

func (c *HTTPClient[T]) Create(ctx context.Context, item T) error {
	var env Envelope
	var code int
	err := gout.POST(c.url()).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(item).
		BindJSON(&env).
		Code(&code).
		Do()
	return checkEnvelope(code, &env, err)
}

func (c *HTTPClient[T]) Update(ctx context.Context, id int64, item T) error {
	var env Envelope
	var code int
	err := gout.PUT(c.url(fmt.Sprintf("/%d", id))).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(item).
		BindJSON(&env).
		Code(&code).
		Do()
	return checkEnvelope(code, &env, err)
}

func (c *HTTPClient[T]) Delete(ctx context.Context, id int64) error {
	var env Envelope
	var code int
	err := gout.DELETE(c.url(fmt.Sprintf("/%d", id))).
		WithContext(ctx).
		SetHeader(c.headers()).
		BindJSON(&env).
		Code(&code).
		Do()
	return checkEnvelope(code, &env, err)
}
