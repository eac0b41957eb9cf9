package nullable

import (
	"database/sql"
	"encoding/json"
)

// String in `nullable` package
// implements: sql.Scanner and driver.Valuer by embedding sql.NullString
// implements: json.Marshaler and json.Unmarshaler
type String struct {
	sql.NullString
}

func StringOf(s string) String {
	return String{sql.NullString{String: s, Valid: true}}
}

// StringFromPtr maps nil to NULL.
func StringFromPtr(s *string) String {
	if s == nil {
		return String{}
	}
	return StringOf(*s)
}

func (n String) MarshalJSON() ([]byte, error) {
	return marshal(n.Valid, n.String)
}

func (n *String) UnmarshalJSON(data []byte) error {
	n.Valid, n.String = false, ""
	if isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, &n.String); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n String) ForceValue() string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func (n String) Ptr() *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func (n String) IsNil() bool {
	return !n.Valid
}
