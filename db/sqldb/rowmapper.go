package sqldb

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type mapOptions struct {
	remap     map[string]string
	valueFor  map[string]any
	skip      map[string]bool
	transform map[string]func(any) any
}

type MapOption func(*mapOptions)

// Remap reads field from column instead of the column derived from its name.
func Remap(field, column string) MapOption {
	return func(o *mapOptions) { o.remap[field] = column }
}

// ValueFor assigns a fixed value to field without reading any column.
func ValueFor(field string, v any) MapOption {
	return func(o *mapOptions) { o.valueFor[field] = v }
}

// Skip leaves field at its zero value.
func Skip(fields ...string) MapOption {
	return func(o *mapOptions) {
		for _, f := range fields {
			o.skip[f] = true
		}
	}
}

// Transform applies fn to the column value before it is assigned to field.
func Transform(field string, fn func(any) any) MapOption {
	return func(o *mapOptions) { o.transform[field] = fn }
}

type columnReader interface {
	Columns() ([]string, error)
}

// StructMapper returns a RowMapper filling the exported fields of T by column name.
// A field reads the column named by its `db` tag, or its snake_case name.
// Fields without a matching column keep their zero value.
func StructMapper[T any](opts ...MapOption) RowMapper[T] {
	o := mapOptions{
		remap:     map[string]string{},
		valueFor:  map[string]any{},
		skip:      map[string]bool{},
		transform: map[string]func(any) any{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return func(row Row) (T, error) {
		var item T
		cr, ok := row.(columnReader)
		if !ok {
			return item, fmt.Errorf("StructMapper: %T does not expose column names", row)
		}
		cols, err := cr.Columns()
		if err != nil {
			return item, err
		}
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err = row.Scan(dest...); err != nil {
			return item, err
		}
		byColumn := make(map[string]any, len(cols))
		for i, c := range cols {
			byColumn[strings.ToLower(c)] = values[i]
		}
		rv := reflect.ValueOf(&item).Elem()
		if rv.Kind() != reflect.Struct {
			return item, fmt.Errorf("StructMapper: %T is not a struct", item)
		}
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() || o.skip[f.Name] {
				continue
			}
			var v any
			if fixed, ok := o.valueFor[f.Name]; ok {
				v = fixed
			} else {
				col := columnFor(f, o.remap)
				if col == "" {
					continue
				}
				var found bool
				v, found = byColumn[col]
				if !found {
					log.Debugf("no column matches %s for field %s.%s", col, rt.Name(), f.Name)
					continue
				}
				if fn, ok := o.transform[f.Name]; ok {
					v = fn(v)
				}
			}
			if err = assign(rv.Field(i), v); err != nil {
				return item, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return item, nil
	}
}

func columnFor(f reflect.StructField, remap map[string]string) string {
	if c, ok := remap[f.Name]; ok {
		return strings.ToLower(c)
	}
	tag := strings.Split(f.Tag.Get("db"), ",")[0]
	switch tag {
	case "-":
		return ""
	case "":
		return CamelToSnake(f.Name)
	}
	return strings.ToLower(tag)
}

var (
	scannerType = reflect.TypeFor[sql.Scanner]()
	instantType = reflect.TypeFor[Instant]()
)

// assign stores a driver value into field, converting where the types allow.
func assign(field reflect.Value, v any) error {
	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(v)
	}
	if v == nil {
		field.SetZero()
		return nil
	}
	if b, ok := v.([]byte); ok && field.Kind() == reflect.String {
		field.SetString(string(b))
		return nil
	}
	// zone-naive columns: the wall clock is UTC whatever location the driver attached
	if t, ok := v.(time.Time); ok && field.Type() == instantType {
		field.Set(reflect.ValueOf(InstantOf(LocalDateTimeOf(t).In(time.UTC))))
		return nil
	}
	rv := reflect.ValueOf(v)
	if field.Kind() == reflect.Pointer {
		if rv.Type().AssignableTo(field.Type()) {
			field.Set(rv)
			return nil
		}
		p := reflect.New(field.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		field.Set(p)
		return nil
	}
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()) && convertible(rv.Kind(), field.Kind()):
		field.Set(rv.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, field.Type())
	}
	return nil
}

// convertible rules out numeric <-> string conversions reflect would otherwise allow.
func convertible(from, to reflect.Kind) bool {
	isString := func(k reflect.Kind) bool { return k == reflect.String }
	return isString(from) == isString(to)
}
