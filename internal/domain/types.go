package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StringList is an ordered list of strings stored as a JSON text column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Int64List is a set of entity references. It marshals as a JSON array
// of decimal strings so 64-bit ids survive javascript clients.
type Int64List []int64

func (l Int64List) MarshalJSON() ([]byte, error) {
	out := make([]string, 0, len(l))
	for _, id := range l {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return json.Marshal(out)
}

func (l *Int64List) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make(Int64List, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case string:
			id, err := strconv.ParseInt(t, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", t)
			}
			ids = append(ids, id)
		case float64:
			ids = append(ids, int64(t))
		default:
			return fmt.Errorf("invalid id value %v", v)
		}
	}
	*l = ids
	return nil
}

// Contains reports whether id is present in the list.
func (l Int64List) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// AttrMap is an open string-keyed attribute map stored as a JSON text
// column. Values are schema-less and never validated beyond being JSON.
type AttrMap map[string]interface{}

func (m AttrMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *AttrMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = AttrMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into AttrMap", src)
	}
}
