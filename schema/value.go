package schema

import (
	"fmt"

	"eserial/internal/errs"
)

// RefValue turns a typed pointer into a reference value. A nil pointer
// becomes an untyped nil so that it is written as NULL.
func RefValue[T interface {
	Object
	comparable
}](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

// RefValues converts a slice of typed pointers for Array and Sequence
// fields.
func RefValues[T interface {
	Object
	comparable
}](xs []T) any {
	if xs == nil {
		return nil
	}
	res := make([]any, len(xs))
	for i, x := range xs {
		res[i] = RefValue(x)
	}
	return res
}

// Values converts a slice of primitives for Array and Sequence fields.
func Values[E any](xs []E) any {
	if xs == nil {
		return nil
	}
	res := make([]any, len(xs))
	for i, x := range xs {
		res[i] = x
	}
	return res
}

// As narrows a decoded reference value to the field's Go type.
func As[T Object](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %T, got %T", errs.ErrFieldValue, zero, v)
	}
	return t, nil
}

// AsSlice narrows a decoded Array or Sequence of references.
func AsSlice[T Object](v any) ([]T, error) {
	return convert(v, As[T])
}

// FromValues narrows a decoded Array or Sequence of primitives.
func FromValues[E any](v any) ([]E, error) {
	return convert(v, func(x any) (E, error) {
		e, ok := x.(E)
		if !ok {
			return e, fmt.Errorf("%w: want %T, got %T", errs.ErrFieldValue, e, x)
		}
		return e, nil
	})
}

func convert[E any](v any, fn func(any) (E, error)) ([]E, error) {
	if v == nil {
		return nil, nil
	}
	vs, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: want []any, got %T", errs.ErrFieldValue, v)
	}
	res := make([]E, len(vs))
	for i, x := range vs {
		e, err := fn(x)
		if err != nil {
			return nil, err
		}
		res[i] = e
	}
	return res, nil
}
