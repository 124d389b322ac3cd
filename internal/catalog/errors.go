package catalog

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-domain input. The message
// is user-displayable. No partial write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InvalidReferenceError reports a referenced entity id that did not
// resolve at mutation time. The whole mutation is rejected.
type InvalidReferenceError struct {
	Kind string
	ID   int64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Kind, e.ID)
}

// NotFoundError reports a mutation or read target that does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInvalidReference(err error) bool {
	var re *InvalidReferenceError
	return errors.As(err, &re)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// UserMessage extracts a message safe to surface to the admin user.
// Storage faults get a generic message.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var re *InvalidReferenceError
	if errors.As(err, &re) {
		return re.Error()
	}
	var ne *NotFoundError
	if errors.As(err, &ne) {
		return ne.Error()
	}
	return "internal error"
}
