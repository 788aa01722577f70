package chart

import (
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/spf13/cast"
)

type accessorKind uint8

const (
	accessorUnset accessorKind = iota
	accessorConst
	accessorField
	accessorFunc
)

// Accessor reads a per-range attribute: a constant, a payload field or a
// function. It is resolved into a plain function once per update pass.
type Accessor[T any] struct {
	kind  accessorKind
	value T
	field string
	fn    func(*ranges.Range) T
}

func Const[T any](v T) Accessor[T] {
	return Accessor[T]{kind: accessorConst, value: v}
}

// Field reads a payload field, coercing its value to T. Ranges without the
// field, or with a value that does not coerce, fall back to the default.
func Field[T any](name string) Accessor[T] {
	return Accessor[T]{kind: accessorField, field: name}
}

func Func[T any](fn func(*ranges.Range) T) Accessor[T] {
	return Accessor[T]{kind: accessorFunc, fn: fn}
}

func (a Accessor[T]) IsSet() bool {
	return a.kind != accessorUnset
}

// Resolve returns the accessor as a function, using fallback where the
// accessor is unset or yields nothing.
func (a Accessor[T]) Resolve(fallback func(*ranges.Range) T) func(*ranges.Range) T {
	switch a.kind {
	case accessorConst:
		v := a.value
		return func(*ranges.Range) T { return v }
	case accessorField:
		name := a.field
		return func(r *ranges.Range) T {
			if raw, ok := r.Payload[name]; ok {
				if v, ok := coerce[T](raw); ok {
					return v
				}
			}
			return fallback(r)
		}
	case accessorFunc:
		if a.fn != nil {
			return a.fn
		}
	}
	return fallback
}

func coerce[T any](raw any) (T, bool) {
	var zero T
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case bool:
		out, err = cast.ToBoolE(raw)
	default:
		v, ok := raw.(T)
		return v, ok
	}
	if err != nil {
		return zero, false
	}
	return out.(T), true
}
