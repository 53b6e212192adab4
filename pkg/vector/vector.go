// Package vector provides the data model shared by the upvector client,
// emulator and CLI: dense and sparse vectors, records, query and fetch
// results, and namespaces.
package vector

import (
	"strconv"
)

// DenseVector is an ordered sequence of coordinates with a fixed dimension
// per index.
type DenseVector []float32

// SparseVector pairs dimension indices with their non-zero weights.
// Indices[i] always corresponds to Values[i].
type SparseVector struct {
	Indices []int32   `json:"indices"`
	Values  []float32 `json:"values"`
}

// Len returns the number of index/value pairs.
func (s SparseVector) Len() int {
	return len(s.Indices)
}

// Clone returns a deep copy of s.
func (s SparseVector) Clone() SparseVector {
	return SparseVector{
		Indices: append([]int32(nil), s.Indices...),
		Values:  append([]float32(nil), s.Values...),
	}
}

// Metadata is an arbitrary JSON-serializable key-value mapping stored
// alongside a record.
type Metadata map[string]any

// ID identifies a record within a namespace.
type ID string

// IntID renders an integer identifier the way the service stores it.
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Record is the normalized unit of upsert. It is implemented only by
// VectorRecord and DataRecord.
type Record interface {
	RecordID() ID
	isRecord()
}

// VectorRecord carries an explicit dense vector, sparse vector, or both.
type VectorRecord struct {
	ID ID

	// Vector is the optional dense component.
	Vector DenseVector

	// SparseVector is the optional sparse component.
	SparseVector *SparseVector

	// Metadata is optional.
	Metadata Metadata

	// Data is an optional opaque payload stored alongside the vector.
	Data string
}

// RecordID implements Record.
func (r VectorRecord) RecordID() ID { return r.ID }

func (VectorRecord) isRecord() {}

// IsHybrid reports whether the record carries both dense and sparse parts.
func (r VectorRecord) IsHybrid() bool {
	return r.Vector != nil && r.SparseVector != nil
}

// DataRecord carries raw text that the service embeds on its side.
type DataRecord struct {
	ID       ID
	Data     string
	Metadata Metadata
}

// RecordID implements Record.
func (r DataRecord) RecordID() ID { return r.ID }

func (DataRecord) isRecord() {}

// QueryResult is a single ranked match. Higher scores are more similar for
// the default metric, but callers must not assume a fixed range.
type QueryResult struct {
	ID           ID            `json:"id"`
	Score        float32       `json:"score"`
	Vector       DenseVector   `json:"vector,omitempty"`
	SparseVector *SparseVector `json:"sparseVector,omitempty"`
	Metadata     Metadata      `json:"metadata,omitempty"`
	Data         string        `json:"data,omitempty"`
}

// FetchResult is a stored record returned by id or prefix lookup.
type FetchResult struct {
	ID           ID            `json:"id"`
	Vector       DenseVector   `json:"vector,omitempty"`
	SparseVector *SparseVector `json:"sparseVector,omitempty"`
	Metadata     Metadata      `json:"metadata,omitempty"`
	Data         string        `json:"data,omitempty"`
}

// RangeResult is one page of a cursor scan over a namespace.
type RangeResult struct {
	NextCursor string         `json:"nextCursor"`
	Vectors    []*FetchResult `json:"vectors"`
}

// NamespaceInfo holds per-namespace counters.
type NamespaceInfo struct {
	VectorCount        int `json:"vectorCount"`
	PendingVectorCount int `json:"pendingVectorCount"`
}

// DenseIndexInfo describes the dense half of an index.
type DenseIndexInfo struct {
	Dimension          int    `json:"dimension"`
	SimilarityFunction string `json:"similarityFunction"`
	EmbeddingModel     string `json:"embeddingModel"`
}

// SparseIndexInfo describes the sparse half of an index.
type SparseIndexInfo struct {
	EmbeddingModel string `json:"embeddingModel"`
}

// IndexInfo is the index-wide summary returned by the info endpoint.
type IndexInfo struct {
	VectorCount        int                      `json:"vectorCount"`
	PendingVectorCount int                      `json:"pendingVectorCount"`
	IndexSize          int64                    `json:"indexSize"`
	Dimension          int                      `json:"dimension"`
	SimilarityFunction string                   `json:"similarityFunction"`
	IndexType          string                   `json:"indexType,omitempty"`
	Namespaces         map[string]NamespaceInfo `json:"namespaces"`
	DenseIndex         *DenseIndexInfo          `json:"denseIndex,omitempty"`
	SparseIndex        *SparseIndexInfo         `json:"sparseIndex,omitempty"`
}
