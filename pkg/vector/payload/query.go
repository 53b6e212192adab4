package payload

import (
	"github.com/papercomputeco/upvector/pkg/vector"
)

// DefaultTopK is used when a query leaves TopK unset.
const DefaultTopK = 10

// WeightingStrategy selects how sparse query dimensions are weighted.
type WeightingStrategy string

// IDF weights sparse dimensions by inverse document frequency.
const IDF WeightingStrategy = "IDF"

// FusionAlgorithm selects how dense and sparse scores of a hybrid index are
// combined.
type FusionAlgorithm string

const (
	// RRF is reciprocal rank fusion.
	RRF FusionAlgorithm = "RRF"

	// DBSF is distribution-based score fusion.
	DBSF FusionAlgorithm = "DBSF"
)

// QueryMode restricts a text query against a hybrid index to one half.
type QueryMode string

const (
	QueryModeHybrid QueryMode = "HYBRID"
	QueryModeDense  QueryMode = "DENSE"
	QueryModeSparse QueryMode = "SPARSE"
)

// Query describes one similarity search. Exactly one search-input kind is
// allowed: Vector and/or SparseVector (one combined kind for hybrid
// indexes), or Data.
type Query struct {
	Vector       vector.DenseVector
	SparseVector *vector.SparseVector
	Data         string

	TopK            int
	IncludeVectors  bool
	IncludeMetadata bool
	IncludeData     bool
	Filter          string

	WeightingStrategy WeightingStrategy
	FusionAlgorithm   FusionAlgorithm
	QueryMode         QueryMode
}

// IsData reports whether q searches by raw text.
func (q Query) IsData() bool {
	return q.Data != ""
}

// QueryPayload is the wire shape of a query.
type QueryPayload struct {
	Vector            vector.DenseVector   `json:"vector,omitempty"`
	SparseVector      *vector.SparseVector `json:"sparseVector,omitempty"`
	Data              string               `json:"data,omitempty"`
	TopK              int                  `json:"topK"`
	IncludeVectors    bool                 `json:"includeVectors"`
	IncludeMetadata   bool                 `json:"includeMetadata"`
	IncludeData       bool                 `json:"includeData"`
	Filter            string               `json:"filter,omitempty"`
	WeightingStrategy WeightingStrategy    `json:"weightingStrategy,omitempty"`
	FusionAlgorithm   FusionAlgorithm      `json:"fusionAlgorithm,omitempty"`
	QueryMode         QueryMode            `json:"queryMode,omitempty"`
}

// ResumableQueryPayload starts a resumable query session.
type ResumableQueryPayload struct {
	QueryPayload

	// MaxIdle is how many seconds the service keeps the session alive
	// without activity.
	MaxIdle int `json:"maxIdle,omitempty"`
}

// BuildQuery validates q and renders its wire payload.
func BuildQuery(q Query) (QueryPayload, error) {
	hasVector := q.Vector != nil || q.SparseVector != nil

	switch {
	case q.IsData() && hasVector:
		return QueryPayload{}, vector.ClientErrorf(
			"when the query contains `data`, it can't contain `vector` or `sparse_vector`")
	case !q.IsData() && !hasVector:
		return QueryPayload{}, vector.ClientErrorf(
			"query must contain at least one of `vector`, `sparse_vector`, or `data`")
	}

	if q.QueryMode != "" && !q.IsData() {
		return QueryPayload{}, vector.ClientErrorf("`query_mode` can only be used with `data` queries")
	}

	topK := q.TopK
	switch {
	case topK == 0:
		topK = DefaultTopK
	case topK < 0:
		return QueryPayload{}, vector.ClientErrorf("top_k must be positive, got %d", topK)
	}

	p := QueryPayload{
		Data:              q.Data,
		TopK:              topK,
		IncludeVectors:    q.IncludeVectors,
		IncludeMetadata:   q.IncludeMetadata,
		IncludeData:       q.IncludeData,
		Filter:            q.Filter,
		WeightingStrategy: q.WeightingStrategy,
		FusionAlgorithm:   q.FusionAlgorithm,
		QueryMode:         q.QueryMode,
	}

	if q.Vector != nil {
		if len(q.Vector) == 0 {
			return QueryPayload{}, vector.ClientErrorf("query vector must not be empty")
		}
		dense, err := ToFloats(q.Vector)
		if err != nil {
			return QueryPayload{}, err
		}
		p.Vector = dense
	}

	if q.SparseVector != nil {
		sparse, err := ToSparseVector(q.SparseVector)
		if err != nil {
			return QueryPayload{}, err
		}
		p.SparseVector = &sparse
	}

	return p, nil
}

// BuildQueries renders a batch of queries. The batch must not mix data
// queries with vector queries; vectorMode reports which kind it is.
func BuildQueries(queries []Query) ([]QueryPayload, bool, error) {
	payloads := make([]QueryPayload, 0, len(queries))
	vectorMode := true

	for i, q := range queries {
		if i == 0 {
			vectorMode = !q.IsData()
		} else if q.IsData() == vectorMode {
			return nil, false, vector.ClientErrorf(
				"`data` and `vector`/`sparse_vector` queries cannot be mixed in the same batch")
		}

		p, err := BuildQuery(q)
		if err != nil {
			return nil, false, err
		}
		payloads = append(payloads, p)
	}

	return payloads, vectorMode, nil
}

// BuildResumableQuery validates q and renders a resumable start payload.
// Unlike BuildQuery, TopK has no default and must be positive.
func BuildResumableQuery(q Query, maxIdle int) (ResumableQueryPayload, error) {
	if maxIdle < 0 {
		return ResumableQueryPayload{}, vector.ClientErrorf("max_idle must not be negative, got %d", maxIdle)
	}
	if q.TopK <= 0 {
		return ResumableQueryPayload{}, vector.ClientErrorf("top_k must be positive for a resumable query, got %d", q.TopK)
	}

	p, err := BuildQuery(q)
	if err != nil {
		return ResumableQueryPayload{}, err
	}

	return ResumableQueryPayload{QueryPayload: p, MaxIdle: maxIdle}, nil
}
