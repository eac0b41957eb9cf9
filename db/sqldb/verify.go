package sqldb

import (
	"fmt"
	"strings"
)

// CheckNotBlank fails when value is empty or whitespace only.
func CheckNotBlank(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required but was blank", fieldName)
	}
	return nil
}

// CheckEqual fails when value differs from expected.
func CheckEqual[T comparable](value, expected T, fieldName string) error {
	if value != expected {
		return fmt.Errorf("%s was expected to be %q but was %q", fieldName, fmt.Sprint(expected), fmt.Sprint(value))
	}
	return nil
}
