package sqldb

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"
)

// NameTransformer maps a Go field name to a parameter or column name.
type NameTransformer func(name string) string

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// longer initialisms first, UUID must not be split by ID
	for _, w := range []string{"UUID", "JSON", "HTML", "HTTP", "URL", "SQL", "API", "ID"} {
		rules.AddAcronym(w)
	}
	return rules
}

// CamelToSnake converts CreatedAt to created_at and UserID to user_id.
func CamelToSnake(name string) string {
	return rules.Underscore(name)
}

type paramOptions struct {
	exclude   map[string]bool
	transform NameTransformer
	override  map[string]any
}

type ParamOption func(*paramOptions)

// WithExclude leaves out the named Go fields.
func WithExclude(fields ...string) ParamOption {
	return func(o *paramOptions) {
		for _, f := range fields {
			o.exclude[f] = true
		}
	}
}

// WithNameTransformer sets how untagged field names become parameter names.
func WithNameTransformer(fn NameTransformer) ParamOption {
	return func(o *paramOptions) { o.transform = fn }
}

// WithOverride replaces values by parameter name (after transformation).
// Override keys with no matching field are ignored.
func WithOverride(values map[string]any) ParamOption {
	return func(o *paramOptions) { o.override = values }
}

// StructToParams builds a named-parameter value map from the exported fields of
// a struct or pointer to struct. A `db:"name"` tag sets the name explicitly and
// `db:"-"` skips the field. Embedded structs contribute their fields.
func StructToParams(v any, opts ...ParamOption) (map[string]any, error) {
	o := paramOptions{exclude: map[string]bool{}, transform: func(s string) string { return s }}
	for _, opt := range opts {
		opt(&o)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("StructToParams: nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("StructToParams: expected a struct, got %T", v)
	}
	out := map[string]any{}
	collectParams(rv, &o, out)
	return out, nil
}

func collectParams(rv reflect.Value, o *paramOptions, out map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("db")
		if tag == "-" || o.exclude[f.Name] {
			continue
		}
		// embedded structs contribute their exported fields, even when the type is unexported
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collectParams(rv.Field(i), o, out)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = o.transform(f.Name)
		}
		if ov, ok := o.override[name]; ok {
			out[name] = ov
			continue
		}
		out[name] = rv.Field(i).Interface()
	}
}
