package payload

import (
	"github.com/papercomputeco/upvector/pkg/vector"
)

// VectorPayload is the wire shape of a VectorRecord.
type VectorPayload struct {
	ID           vector.ID            `json:"id"`
	Vector       vector.DenseVector   `json:"vector"`
	SparseVector *vector.SparseVector `json:"sparseVector"`
	Metadata     vector.Metadata      `json:"metadata"`
	Data         *string              `json:"data"`
}

// DataPayload is the wire shape of a DataRecord.
type DataPayload struct {
	ID       vector.ID       `json:"id"`
	Data     string          `json:"data"`
	Metadata vector.Metadata `json:"metadata"`
}

// Batch is an assembled upsert body.
type Batch struct {
	// Items holds one VectorPayload or DataPayload per record, in input order.
	Items []any

	// VectorMode is true for explicit-vector batches and false for raw-text
	// batches. An empty batch reports true.
	VectorMode bool
}

// Len returns the number of items in the batch.
func (b Batch) Len() int {
	return len(b.Items)
}

const mixedBatchMessage = "all items should either have the `data` or the `vector` and/or `sparse_vector` field;" +
	" received items from both kinds, please send them separately"

// AssembleBatch renders normalized records into a homogeneous wire batch.
// The first record fixes the mode; any record of the other kind fails the
// whole batch.
func AssembleBatch(records []vector.Record) (Batch, error) {
	b := Batch{
		Items:      make([]any, 0, len(records)),
		VectorMode: true,
	}

	if len(records) == 0 {
		return b, nil
	}

	_, b.VectorMode = records[0].(vector.VectorRecord)

	for i, r := range records {
		switch t := r.(type) {
		case vector.VectorRecord:
			if !b.VectorMode {
				return Batch{}, vector.ClientErrorf("item %d: %s", i, mixedBatchMessage)
			}
			b.Items = append(b.Items, vectorPayload(t))
		case vector.DataRecord:
			if b.VectorMode {
				return Batch{}, vector.ClientErrorf("item %d: %s", i, mixedBatchMessage)
			}
			b.Items = append(b.Items, DataPayload{ID: t.ID, Data: t.Data, Metadata: t.Metadata})
		default:
			return Batch{}, vector.ClientErrorf("item %d: record of type %T was not normalized", i, r)
		}
	}

	return b, nil
}

// Assemble parses inputs and assembles them in one step.
func Assemble(inputs []Input) (Batch, error) {
	records, err := ParseRecords(inputs)
	if err != nil {
		return Batch{}, err
	}
	return AssembleBatch(records)
}

func vectorPayload(r vector.VectorRecord) VectorPayload {
	p := VectorPayload{
		ID:           r.ID,
		Vector:       r.Vector,
		SparseVector: r.SparseVector,
		Metadata:     r.Metadata,
	}
	if r.Data != "" {
		data := r.Data
		p.Data = &data
	}
	return p
}
