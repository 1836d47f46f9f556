package validation

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// Value is a payload value as seen by a rule template. It separates a key
// that is missing from the payload (absent) from one present with JSON null.
type Value struct {
	raw     any
	present bool
}

// Present wraps a value whose key exists in the payload (v may be nil).
func Present(v any) Value { return Value{raw: v, present: true} }

// Missing is the value of a key that is not in the payload.
func Missing() Value { return Value{} }

// lookup reads key from values, keeping track of presence.
func lookup(values map[string]any, key string) Value {
	v, ok := values[key]
	if !ok {
		return Missing()
	}
	return Present(v)
}

// Raw returns the underlying value (nil when absent or null).
func (v Value) Raw() any { return v.raw }

// Absent reports whether the key was missing from the payload.
func (v Value) Absent() bool { return !v.present }

// IsNull reports a present key holding null.
func (v Value) IsNull() bool { return v.present && v.raw == nil }

// String returns the value as a string when it is one.
func (v Value) String() (string, bool) {
	if !v.present {
		return "", false
	}
	switch s := v.raw.(type) {
	case string:
		return s, true
	case json.Number:
		return "", false
	}
	rv := reflect.ValueOf(v.raw)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// Number returns the value as float64 when it is numeric. Numeric strings
// are not numbers; json.Number is.
func (v Value) Number() (float64, bool) {
	if !v.present || v.raw == nil {
		return 0, false
	}
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v.raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsInteger reports a finite numeric value without a fractional part.
func (v Value) IsInteger() bool {
	if n, ok := v.raw.(json.Number); ok && v.present {
		if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return true
		}
	}
	f, ok := v.Number()
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f == math.Trunc(f)
}

// Bool returns the value as a bool when it is one.
func (v Value) Bool() (bool, bool) {
	if !v.present {
		return false, false
	}
	b, ok := v.raw.(bool)
	return b, ok
}

// Sequence returns the value as a list. Typed slices and arrays are
// converted element by element; []byte is not treated as a list.
func (v Value) Sequence() ([]any, bool) {
	if !v.present {
		return nil, false
	}
	return asSequence(v.raw)
}

// Mapping returns the value as a string-keyed mapping.
func (v Value) Mapping() (map[string]any, bool) {
	if !v.present {
		return nil, false
	}
	return asMapping(v.raw)
}

func asSequence(raw any) ([]any, bool) {
	switch s := raw.(type) {
	case nil:
		return nil, false
	case []any:
		return s, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMapping(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	case Messages:
		return map[string]any(m), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// cloneValue deep-copies maps and slices so accepted values never share
// memory with the caller's payload or with earlier Values calls. Scalars
// are returned as is; typed containers keep their type.
func cloneValue(raw any) any {
	switch t := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = cloneValue(v)
		}
		return out
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return raw
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return raw
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	}
	return raw
}

func cloneElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(typ)
	}
	c := cloneValue(v.Interface())
	if c == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(c)
}

// isStringField: a sibling `string` token or a string runtime value.
func isStringField(v Value, tokens []Token) bool {
	if hasRule(tokens, "string") {
		return true
	}
	_, ok := v.String()
	return ok
}

// isNumericField: a sibling numeric type token or a numeric runtime value.
func isNumericField(v Value, tokens []Token) bool {
	if hasRule(tokens, "integer", "float", "number") {
		return true
	}
	_, ok := v.Number()
	return ok
}
