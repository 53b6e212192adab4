// Package payload normalizes heterogeneous caller input into the wire
// representation sent to the vector service.
//
// Everything here is pure: inputs are never mutated and no network calls
// are made, so a rejected batch has no side effects.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// ErrNotListLike is returned when a value is neither a plain numeric slice
// nor convertible through ListLike.
var ErrNotListLike = errors.New("value is not list-like")

// ListLike is implemented by numeric array wrappers that can produce a plain
// ordered copy of their elements.
type ListLike interface {
	ToList() []float64
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func convert[T, E number](s []E) []T {
	out := make([]T, len(s))
	for i, e := range s {
		out[i] = T(e)
	}
	return out
}

// ToFloats returns v as a plain ordered slice of float32 values.
func ToFloats(v any) ([]float32, error) {
	switch t := v.(type) {
	case vector.DenseVector:
		return convert[float32](t), nil
	case []float32:
		return convert[float32](t), nil
	case []float64:
		return convert[float32](t), nil
	case []int:
		return convert[float32](t), nil
	case []int32:
		return convert[float32](t), nil
	case []int64:
		return convert[float32](t), nil
	case ListLike:
		return convert[float32](t.ToList()), nil
	case []any:
		out := make([]float32, len(t))
		for i, e := range t {
			f, ok := scalar(e)
			if !ok {
				return nil, fmt.Errorf("%w: element %d has type %T", ErrNotListLike, i, e)
			}
			out[i] = float32(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a numeric slice or ListLike, got %T", ErrNotListLike, v)
	}
}

// ToInt32s returns v as a plain ordered slice of sparse dimension indices.
// Indices must be integral and fit in 32 bits.
func ToInt32s(v any) ([]int32, error) {
	switch t := v.(type) {
	case []int32:
		for i, idx := range t {
			if idx < 0 {
				return nil, vector.ClientErrorf("sparse index %d at position %d is not a valid 32-bit dimension", idx, i)
			}
		}
		return convert[int32](t), nil
	case []int:
		return checkedIndices(convert[float64](t))
	case []int64:
		return checkedIndices(convert[float64](t))
	case []uint32:
		return checkedIndices(convert[float64](t))
	case []float64:
		return checkedIndices(t)
	case ListLike:
		return checkedIndices(t.ToList())
	case []any:
		fs := make([]float64, len(t))
		for i, e := range t {
			f, ok := scalar(e)
			if !ok {
				return nil, fmt.Errorf("%w: element %d has type %T", ErrNotListLike, i, e)
			}
			fs[i] = f
		}
		return checkedIndices(fs)
	default:
		return nil, fmt.Errorf("%w: expected an integer slice or ListLike, got %T", ErrNotListLike, v)
	}
}

func checkedIndices(fs []float64) ([]int32, error) {
	out := make([]int32, len(fs))
	for i, f := range fs {
		if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
			return nil, vector.ClientErrorf("sparse index %v at position %d is not a valid 32-bit dimension", f, i)
		}
		out[i] = int32(f)
	}
	return out, nil
}

// scalar converts the numeric element types produced by callers and by
// encoding/json.
func scalar(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
