package payload

import (
	"fmt"
	"strconv"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// ParseRecords normalizes every input, stopping at the first failure.
func ParseRecords(inputs []Input) ([]vector.Record, error) {
	records := make([]vector.Record, len(inputs))
	for i, in := range inputs {
		r, err := ParseRecord(in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records[i] = r
	}
	return records, nil
}

// ParseRecord converts one input into a VectorRecord or DataRecord.
func ParseRecord(in Input) (vector.Record, error) {
	switch t := in.(type) {
	case TypedInput:
		return parseTyped(t.Record)
	case TupleInput:
		return parseTuple(t)
	case MappingInput:
		return parseMapping(t)
	default:
		return nil, vector.ClientErrorf("given object type is undefined for converting to vector: %T", in)
	}
}

func parseTyped(r vector.Record) (vector.Record, error) {
	switch t := r.(type) {
	case vector.VectorRecord:
		return normalizeVectorRecord(t)
	case *vector.VectorRecord:
		if t == nil {
			return nil, vector.ClientErrorf("record is nil")
		}
		return normalizeVectorRecord(*t)
	case vector.DataRecord:
		return normalizeDataRecord(t)
	case *vector.DataRecord:
		if t == nil {
			return nil, vector.ClientErrorf("record is nil")
		}
		return normalizeDataRecord(*t)
	default:
		return nil, vector.ClientErrorf("given object type is undefined for converting to vector: %T", r)
	}
}

// normalizeVectorRecord returns a copy of r with fresh vector storage.
func normalizeVectorRecord(r vector.VectorRecord) (vector.Record, error) {
	if r.ID == "" {
		return nil, vector.ClientErrorf("record id is required")
	}
	if r.Vector == nil && r.SparseVector == nil {
		return nil, vector.ClientErrorf("record %q should contain a vector and/or a sparse vector", r.ID)
	}

	out := vector.VectorRecord{
		ID:       r.ID,
		Metadata: r.Metadata,
		Data:     r.Data,
	}

	if r.Vector != nil {
		dense, err := ToFloats(r.Vector)
		if err != nil {
			return nil, err
		}
		out.Vector = dense
	}

	if r.SparseVector != nil {
		sparse, err := ToSparseVector(r.SparseVector)
		if err != nil {
			return nil, err
		}
		out.SparseVector = &sparse
	}

	return out, nil
}

func normalizeDataRecord(r vector.DataRecord) (vector.Record, error) {
	if r.ID == "" {
		return nil, vector.ClientErrorf("record id is required")
	}
	if r.Data == "" {
		return nil, vector.ClientErrorf("data record %q has no data to index", r.ID)
	}
	return r, nil
}

func parseTuple(t TupleInput) (vector.Record, error) {
	if len(t) < 2 {
		return nil, vector.ClientErrorf(
			"the tuple must contain at least two elements; one for id, and other for vector or sparse vector")
	}

	id, err := toID(t[0])
	if err != nil {
		return nil, err
	}

	if text, ok := t[1].(string); ok {
		return tupleData(t, id, text)
	}

	if isSparseShaped(t[1]) {
		sparse, err := ToSparseVector(t[1])
		if err != nil {
			return nil, err
		}
		return tupleVector(id, nil, &sparse, t[2:])
	}

	dense, err := ToFloats(t[1])
	if err != nil {
		return nil, err
	}

	if len(t) > 2 && isSparseShaped(t[2]) {
		sparse, err := ToSparseVector(t[2])
		if err != nil {
			return nil, err
		}
		return tupleVector(id, dense, &sparse, t[3:])
	}

	return tupleVector(id, dense, nil, t[2:])
}

func tupleData(t TupleInput, id vector.ID, text string) (vector.Record, error) {
	r := vector.DataRecord{ID: id, Data: text}
	if len(t) > 2 {
		md, err := toMetadata(t[2])
		if err != nil {
			return nil, err
		}
		r.Metadata = md
	}
	return r, nil
}

// tupleVector reads the optional trailing (metadata, data) positions.
func tupleVector(id vector.ID, dense vector.DenseVector, sparse *vector.SparseVector, rest []any) (vector.Record, error) {
	r := vector.VectorRecord{ID: id, Vector: dense, SparseVector: sparse}

	if len(rest) > 0 {
		md, err := toMetadata(rest[0])
		if err != nil {
			return nil, err
		}
		r.Metadata = md
	}

	if len(rest) > 1 {
		data, err := toData(rest[1])
		if err != nil {
			return nil, err
		}
		r.Data = data
	}

	return r, nil
}

func parseMapping(m MappingInput) (vector.Record, error) {
	rawID, ok := m["id"]
	if !ok || rawID == nil {
		return nil, vector.ClientErrorf("the dict for vector should contain `id`")
	}
	id, err := toID(rawID)
	if err != nil {
		return nil, err
	}

	// Explicit nulls count as absent.
	dense := m["vector"]
	sparse := m["sparse_vector"]

	data, err := toData(m["data"])
	if err != nil {
		return nil, err
	}

	md, err := toMetadata(m["metadata"])
	if err != nil {
		return nil, err
	}

	if dense == nil && sparse == nil {
		if data == "" {
			return nil, vector.ClientErrorf(
				"the dict for vector should contain `vector` and/or `sparse_vector` when it does not contain `data`")
		}
		return vector.DataRecord{ID: id, Data: data, Metadata: md}, nil
	}

	r := vector.VectorRecord{ID: id, Metadata: md, Data: data}

	if dense != nil {
		r.Vector, err = ToFloats(dense)
		if err != nil {
			return nil, err
		}
	}

	if sparse != nil {
		sv, err := ToSparseVector(sparse)
		if err != nil {
			return nil, err
		}
		r.SparseVector = &sv
	}

	return r, nil
}

func toID(v any) (vector.ID, error) {
	var id vector.ID
	switch t := v.(type) {
	case vector.ID:
		id = t
	case string:
		id = vector.ID(t)
	case int:
		id = vector.IntID(int64(t))
	case int32:
		id = vector.IntID(int64(t))
	case int64:
		id = vector.IntID(t)
	case float64:
		// encoding/json decodes every number as float64.
		if t != float64(int64(t)) {
			return "", vector.ClientErrorf("id %v is not an integer", t)
		}
		id = vector.ID(strconv.FormatInt(int64(t), 10))
	default:
		return "", vector.ClientErrorf("id must be a string or an integer, got %T", v)
	}

	if id == "" {
		return "", vector.ClientErrorf("record id is required")
	}
	return id, nil
}

func toMetadata(v any) (vector.Metadata, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case vector.Metadata:
		return t, nil
	case map[string]any:
		return vector.Metadata(t), nil
	default:
		return nil, vector.ClientErrorf("metadata must be a mapping, got %T", v)
	}
}

func toData(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", vector.ClientErrorf("data must be a string, got %T", v)
	}
}
