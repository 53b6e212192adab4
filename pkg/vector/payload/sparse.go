package payload

import (
	"fmt"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// ToSparseVector normalizes a sparse vector given as a vector.SparseVector,
// a *vector.SparseVector, a two-element (indices, values) tuple, or a
// decoded JSON object with "indices" and "values" keys.
//
// Element i of the returned Indices always pairs with element i of Values.
func ToSparseVector(v any) (vector.SparseVector, error) {
	var indices, values any

	switch t := v.(type) {
	case vector.SparseVector:
		return validSparse(t.Clone())
	case *vector.SparseVector:
		if t == nil {
			return vector.SparseVector{}, vector.ClientErrorf("sparse vector is nil")
		}
		return validSparse(t.Clone())
	case TupleInput:
		if len(t) != 2 {
			return vector.SparseVector{}, vector.ClientErrorf(
				"the tuple for sparse vector should contain two lists; one for indices, and one for values")
		}
		indices, values = t[0], t[1]
	case []any:
		if len(t) != 2 {
			return vector.SparseVector{}, vector.ClientErrorf(
				"the tuple for sparse vector should contain two lists; one for indices, and one for values")
		}
		indices, values = t[0], t[1]
	case map[string]any:
		var ok bool
		if indices, ok = t["indices"]; !ok {
			return vector.SparseVector{}, vector.ClientErrorf("sparse vector object is missing `indices`")
		}
		if values, ok = t["values"]; !ok {
			return vector.SparseVector{}, vector.ClientErrorf("sparse vector object is missing `values`")
		}
	default:
		return vector.SparseVector{}, vector.ClientErrorf("sparse vector must be a SparseVector or a tuple, got %T", v)
	}

	is, err := ToInt32s(indices)
	if err != nil {
		return vector.SparseVector{}, fmt.Errorf("sparse vector indices: %w", err)
	}

	vs, err := ToFloats(values)
	if err != nil {
		return vector.SparseVector{}, fmt.Errorf("sparse vector values: %w", err)
	}

	return validSparse(vector.SparseVector{Indices: is, Values: vs})
}

// validSparse enforces equal lengths and rejects duplicate indices.
func validSparse(s vector.SparseVector) (vector.SparseVector, error) {
	if len(s.Indices) != len(s.Values) {
		return vector.SparseVector{}, vector.ClientErrorf(
			"sparse vector has %d indices but %d values", len(s.Indices), len(s.Values))
	}

	seen := make(map[int32]struct{}, len(s.Indices))
	for _, idx := range s.Indices {
		if _, dup := seen[idx]; dup {
			return vector.SparseVector{}, vector.ClientErrorf("sparse vector has duplicate index %d", idx)
		}
		seen[idx] = struct{}{}
	}

	return s, nil
}

// isSparseShaped reports whether v should be read as a sparse vector when
// it appears in a positional tuple. A decoded JSON array counts only when
// it holds exactly two nested arrays, so dense vectors are never mistaken
// for sparse ones.
func isSparseShaped(v any) bool {
	switch t := v.(type) {
	case vector.SparseVector, *vector.SparseVector, TupleInput:
		return true
	case []any:
		if len(t) != 2 {
			return false
		}
		_, first := t[0].([]any)
		_, second := t[1].([]any)
		return first && second
	default:
		return false
	}
}
