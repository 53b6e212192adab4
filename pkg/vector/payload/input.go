package payload

import (
	"github.com/papercomputeco/upvector/pkg/vector"
)

// Input is one caller-supplied item to upsert. It is a closed set:
// TupleInput, MappingInput and TypedInput.
type Input interface {
	isInput()
}

// TupleInput is a positional item: (id, vector|sparse|data, ...).
type TupleInput []any

// MappingInput is a keyed item with "id" and any of "vector",
// "sparse_vector", "data" and "metadata".
type MappingInput map[string]any

// TypedInput wraps an already typed record.
type TypedInput struct {
	Record vector.Record
}

func (TupleInput) isInput()   {}
func (MappingInput) isInput() {}
func (TypedInput) isInput()   {}

// Tuple builds a positional input.
func Tuple(elems ...any) TupleInput {
	return TupleInput(elems)
}

// Typed wraps typed records as inputs.
func Typed(records ...vector.Record) []Input {
	out := make([]Input, len(records))
	for i, r := range records {
		out[i] = TypedInput{Record: r}
	}
	return out
}

// FromAny classifies a decoded value (for example from JSON) as an Input.
// Arrays become tuples and objects become mappings.
func FromAny(v any) (Input, error) {
	switch t := v.(type) {
	case Input:
		return t, nil
	case vector.Record:
		return TypedInput{Record: t}, nil
	case []any:
		return TupleInput(t), nil
	case map[string]any:
		return MappingInput(t), nil
	default:
		return nil, vector.ClientErrorf("given object type is undefined for converting to vector: %T", v)
	}
}
