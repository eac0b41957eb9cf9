package sqldb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRows              = errors.New("sqldb: no rows in result set")
	ErrNotSupported        = errors.New("sqldb: operation not supported")
	ErrParameterNotSet     = errors.New("sqldb: parameter not set")
	ErrMalformedParameter  = errors.New("sqldb: malformed parameter")
	ErrMixedParameterStyle = errors.New("sqldb: mixed parameter style")
	ErrUnknownParameter    = errors.New("sqldb: unknown parameter")
)

// MalformedParameterError is returned when a `:` introducer is followed by
// neither a parameter name character nor a second colon.
type MalformedParameterError struct {
	Char rune
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf(": was followed by an illegal character \"%c\". "+
		"It must be followed by a legal parameter character, which includes a letter, number, dash or underscore, "+
		"or another colon to escape a literal colon", e.Char)
}

func (e *MalformedParameterError) Is(target error) bool { return target == ErrMalformedParameter }

// MixedParameterStyleError is returned when a statement uses `:name` and `?` together.
type MixedParameterStyleError struct {
	PositionalCount int
}

func (e *MixedParameterStyleError) Error() string {
	return fmt.Sprintf("Named parameters cannot have positional parameters as well. "+
		"But %d positional parameter(s) were found", e.PositionalCount)
}

func (e *MixedParameterStyleError) Is(target error) bool { return target == ErrMixedParameterStyle }

// UnknownParameterError is returned when a name is looked up on a statement that does not declare it.
// Known keeps the statement's names in first-appearance order.
type UnknownParameterError struct {
	Name  string
	Known []string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("Unable to find a parameter named %s in available keys (%s)",
		e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownParameterError) Is(target error) bool { return target == ErrUnknownParameter }

// ParameterNotSetError names the first ordinal left unbound before execution.
type ParameterNotSetError struct {
	Position int
}

func (e *ParameterNotSetError) Error() string {
	return fmt.Sprintf("no value specified for parameter %d", e.Position)
}

func (e *ParameterNotSetError) Unwrap() error { return ErrParameterNotSet }
