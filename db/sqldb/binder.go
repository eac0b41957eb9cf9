package sqldb

import (
	"slices"
	"time"
)

// ResolvePositions returns a copy of the ascending ordinals bound to name.
func (p *ParsedStmt) ResolvePositions(name string) ([]int, error) {
	pos, ok := p.positions[name]
	if !ok {
		return nil, &UnknownParameterError{Name: name, Known: p.Names()}
	}
	return slices.Clone(pos), nil
}

// BindNamed sets every value whose name the statement declares, once per ordinal
// in ascending order. Names the statement does not declare are ignored, and
// declared names missing from values stay unbound.
func BindNamed(p *ParsedStmt, values map[string]any, setter ParamSetter) error {
	// first-appearance order
	for _, name := range p.names {
		v, ok := values[name]
		if !ok {
			continue
		}
		for _, pos := range p.positions[name] {
			if err := BindValue(setter, pos, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// BindPositional binds args[i] at ordinal i+1.
func BindPositional(setter ParamSetter, args ...any) error {
	for i, v := range args {
		if err := BindValue(setter, i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// BindValue normalizes v and hands it to setter.
//
//	time.Time -> same instant in a fixed offset zone
//	Instant   -> LocalDateTime of its UTC wall clock
//	Enum      -> symbolic name
//	DBValue   -> SetTyped with the hint
//	other     -> SetObject unchanged
func BindValue(setter ParamSetter, pos int, v any) error {
	switch x := v.(type) {
	case time.Time:
		return setter.SetObject(pos, OffsetDateTime(x))
	case Instant:
		return setter.SetObject(pos, x.LocalDateTime())
	case Enum:
		return setter.SetObject(pos, x.EnumName())
	case DBValue:
		inner := x.Value
		if e, ok := inner.(Enum); ok {
			inner = e.EnumName()
		}
		return setter.SetTyped(pos, inner, x.Type, x.Precision)
	default:
		return setter.SetObject(pos, v)
	}
}

// NamedArgs binds values into a fresh ArgSet and returns the ordinal argument slice.
func NamedArgs(p *ParsedStmt, values map[string]any) ([]any, error) {
	set := NewArgSet(p.ParamCount())
	if err := BindNamed(p, values, set); err != nil {
		return nil, err
	}
	return set.Args()
}

// PositionalArgs coerces args the same way named values are coerced.
func PositionalArgs(args ...any) ([]any, error) {
	set := NewArgSet(len(args))
	if err := BindPositional(set, args...); err != nil {
		return nil, err
	}
	return set.Args()
}
