package response

import (
	"fmt"
	"reflect"
	"strconv"
)

// Encode renders a record as a flat JSON-like object.
//
// Exported fields are emitted in declaration order as "Name":value. Integer,
// unsigned, float and bool values are written unquoted; nil pointers, interfaces,
// maps, slices, funcs and channels are written as null; anything else is written
// as its display string in double quotes. Embedded quotes are not escaped, so the
// output is only valid JSON for values without quotes or backslashes.
func Encode(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", ErrNotRecord, rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrNotRecord, v)
	}

	rt := rv.Type()
	b := make([]byte, 0, 16*rt.NumField())
	b = append(b, '{')
	first := true
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if !first {
			b = append(b, ',')
		}
		first = false

		b = append(b, '"')
		b = append(b, field.Name...)
		b = append(b, '"', ':')
		b = appendValue(b, rv.Field(i))
	}
	b = append(b, '}')
	return b, nil
}

func appendValue(b []byte, fv reflect.Value) []byte {
	v := fv
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return append(b, "null"...)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(b, v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.AppendUint(b, v.Uint(), 10)
	case reflect.Float32:
		return strconv.AppendFloat(b, v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.AppendFloat(b, v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.AppendBool(b, v.Bool())
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return append(b, "null"...)
		}
	}

	b = append(b, '"')
	b = append(b, display(fv, v)...)
	return append(b, '"')
}

// display prefers Stringer/error implementations on the field as declared,
// so pointer-receiver String methods are honored.
func display(declared, v reflect.Value) string {
	if declared.CanInterface() {
		switch s := declared.Interface().(type) {
		case fmt.Stringer:
			return s.String()
		case error:
			return s.Error()
		}
	}
	if v.CanInterface() {
		return fmt.Sprint(v.Interface())
	}
	return v.String()
}
