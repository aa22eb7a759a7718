package grade

import "reflect"

const (
	// MaxElements is the largest array that is submitted in full, and the
	// length to which tuples are truncated.
	MaxElements = 20

	// TooLarge replaces arrays with more than MaxElements elements.
	TooLarge = -1
)

// A Tuple is a fixed sequence of values of any type. Only its first
// MaxElements values are submitted.
type Tuple []any

// Normalize converts v into a value whose JSON encoding the grader
// understands:
//
//   - a reflect.Type becomes its name;
//   - signed integers become int64 and unsigned integers become uint64;
//   - floating point numbers become float64;
//   - booleans become bool;
//   - numeric or boolean slices and arrays, including nested ones, become
//     nested []any values, or TooLarge if they contain more than MaxElements
//     elements in total;
//   - a Tuple becomes a []any of its first MaxElements values.
//
// All other values are returned unchanged.
func Normalize(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		return v.String()
	case Tuple:
		list := make([]any, min(len(v), MaxElements))
		copy(list, v)
		return list
	}

	value := reflect.ValueOf(v)
	if scalar, ok := normalizeScalar(value); ok {
		return scalar
	}
	if isArray(value.Type()) {
		if elements(value) > MaxElements {
			return TooLarge
		}
		return arrayList(value)
	}
	return v
}

// normalizeScalar returns value as a plain Go scalar, if it is one.
func normalizeScalar(value reflect.Value) (any, bool) {
	switch value.Kind() {
	case reflect.Bool:
		return value.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.Uint(), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	default:
		return nil, false
	}
}

// isArray returns whether t is a slice or array, possibly nested, of
// numbers or booleans.
func isArray(t reflect.Type) bool {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return false
	}
	elem := t.Elem()
	for elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
		elem = elem.Elem()
	}
	switch elem.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// elements returns the total number of scalars in the array value.
func elements(value reflect.Value) int {
	kind := value.Type().Elem().Kind()
	if kind != reflect.Slice && kind != reflect.Array {
		return value.Len()
	}
	n := 0
	for i := range value.Len() {
		n += elements(value.Index(i))
	}
	return n
}

// arrayList returns the array value as nested []any values.
func arrayList(value reflect.Value) []any {
	list := make([]any, value.Len())
	for i := range value.Len() {
		element := value.Index(i)
		if scalar, ok := normalizeScalar(element); ok {
			list[i] = scalar
		} else {
			list[i] = arrayList(element)
		}
	}
	return list
}
