package nullable

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

var enumValues sync.Map // reflect.Type -> map[string]any

// RegisterEnum makes the values of T resolvable by name when scanning an Enum[T].
func RegisterEnum[T sqldb.Enum](values ...T) {
	byName := make(map[string]any, len(values))
	for _, v := range values {
		byName[v.EnumName()] = v
	}
	enumValues.Store(reflect.TypeFor[T](), byName)
}

// ParseEnum resolves name among the registered values of T.
func ParseEnum[T sqldb.Enum](name string) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]()
	registered, ok := enumValues.Load(typ)
	if !ok {
		return zero, fmt.Errorf("enum %s is not registered", typ)
	}
	v, ok := registered.(map[string]any)[name]
	if !ok {
		return zero, fmt.Errorf("%q is not a value of %s", name, typ)
	}
	return v.(T), nil
}

// Enum is a nullable enumerated value stored by its symbolic name.
// T must be registered with RegisterEnum before scanning.
type Enum[T sqldb.Enum] struct {
	V     T
	Valid bool
}

func EnumOf[T sqldb.Enum](v T) Enum[T] {
	return Enum[T]{V: v, Valid: true}
}

func (n *Enum[T]) Scan(src any) error {
	*n = Enum[T]{}
	var name string
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		name = v
	case []byte:
		name = string(v)
	default:
		return fmt.Errorf("nullable.Enum: cannot scan %T", src)
	}
	v, err := ParseEnum[T](name)
	if err != nil {
		return err
	}
	n.V, n.Valid = v, true
	return nil
}

func (n Enum[T]) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.V.EnumName(), nil
}

func (n Enum[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return null, nil
	}
	return json.Marshal(n.V.EnumName())
}

func (n *Enum[T]) UnmarshalJSON(data []byte) error {
	*n = Enum[T]{}
	if isNull(data) {
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	return n.Scan(name)
}

func (n Enum[T]) IsNil() bool {
	return !n.Valid
}
