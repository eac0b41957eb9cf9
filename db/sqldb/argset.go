package sqldb

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// ParamSetter binds a value at a 1-based ordinal position.
type ParamSetter interface {
	SetObject(pos int, v any) error
	SetTyped(pos int, v any, t SQLType, precision *int) error
}

// ArgSet collects bound values into the argument slice expected by
// database/sql and pgx calls.
type ArgSet struct {
	args []any
	set  []bool
}

// Ensure ArgSet implements ParamSetter
var _ ParamSetter = (*ArgSet)(nil)

func NewArgSet(n int) *ArgSet {
	return &ArgSet{args: make([]any, n), set: make([]bool, n)}
}

func (a *ArgSet) Len() int { return len(a.args) }

func (a *ArgSet) index(pos int) (int, error) {
	if pos < 1 || pos > len(a.args) {
		return 0, fmt.Errorf("parameter index %d out of range [1, %d]", pos, len(a.args))
	}
	return pos - 1, nil
}

func (a *ArgSet) SetObject(pos int, v any) error {
	i, err := a.index(pos)
	if err != nil {
		return err
	}
	a.args[i] = v
	a.set[i] = true
	return nil
}

func (a *ArgSet) SetTyped(pos int, v any, t SQLType, precision *int) error {
	return a.SetObject(pos, TypedArg{Arg: v, Type: t, Precision: precision})
}

// Clear marks every slot unbound so the set can be reused for the next row of a batch.
func (a *ArgSet) Clear() {
	for i := range a.args {
		a.args[i] = nil
		a.set[i] = false
	}
}

// Args returns the bound values in ordinal order.
// An unbound slot fails with a ParameterNotSetError.
func (a *ArgSet) Args() ([]any, error) {
	for i, ok := range a.set {
		if !ok {
			return nil, &ParameterNotSetError{Position: i + 1}
		}
	}
	out := make([]any, len(a.args))
	copy(out, a.args)
	return out, nil
}

// TypedArg is a type-hinted argument as handed to the driver.
type TypedArg struct {
	Arg       any
	Type      SQLType
	Precision *int
}

// Value implements driver.Valuer, converting the value to the hinted type.
func (t TypedArg) Value() (driver.Value, error) {
	v := t.Arg
	if v == nil || t.Type == SQLTypeNull {
		return nil, nil
	}
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return nil, err
		}
		v = inner
	}
	switch t.Type {
	case SQLTypeChar, SQLTypeVarchar, SQLTypeOther:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
		return fmt.Sprint(v), nil
	case SQLTypeNumeric, SQLTypeDecimal:
		return numericString(v, t.Precision)
	case SQLTypeInteger, SQLTypeSmallInt:
		return driver.Int32.ConvertValue(v)
	case SQLTypeDouble:
		return toFloat(v)
	case SQLTypeBoolean:
		return driver.Bool.ConvertValue(v)
	case SQLTypeTimestamp:
		if tm, ok := v.(time.Time); ok {
			return LocalDateTimeOf(tm).In(time.UTC), nil
		}
	case SQLTypeTimestampTZ, SQLTypeDate:
		if tm, ok := v.(time.Time); ok {
			return tm, nil
		}
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func numericString(v any, precision *int) (driver.Value, error) {
	switch n := v.(type) {
	case string:
		if precision == nil {
			return n, nil
		}
		r, ok := new(big.Rat).SetString(n)
		if !ok {
			return nil, fmt.Errorf("invalid numeric value %q", n)
		}
		return r.FloatString(*precision), nil
	case *big.Rat:
		if precision == nil {
			return n.RatString(), nil
		}
		return n.FloatString(*precision), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	prec := -1
	if precision != nil {
		prec = *precision
	}
	return strconv.FormatFloat(f.(float64), 'f', prec, 64), nil
}

func toFloat(v any) (driver.Value, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return nil, fmt.Errorf("cannot convert %T to a floating point value", v)
}
