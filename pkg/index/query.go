package index

import (
	"context"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// QueryRequest is a one-shot similarity search in Namespace.
type QueryRequest struct {
	payload.Query
	Namespace vector.Namespace
}

// Query returns up to TopK matches in rank order.
func (i *Index) Query(ctx context.Context, req QueryRequest) ([]vector.QueryResult, error) {
	p, err := payload.BuildQuery(req.Query)
	if err != nil {
		return nil, err
	}

	var results []vector.QueryResult
	if err := i.exec.Execute(ctx, req.Namespace.Path(queryPath(req.IsData())), p, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// QueryMany runs several queries in one request. The queries must be of the
// same kind. A single query goes to the single-query endpoint and its result
// is wrapped, so the return value always has one slice per query.
func (i *Index) QueryMany(ctx context.Context, ns vector.Namespace, queries []payload.Query) ([][]vector.QueryResult, error) {
	payloads, vectorMode, err := payload.BuildQueries(queries)
	if err != nil {
		return nil, err
	}

	switch len(payloads) {
	case 0:
		return [][]vector.QueryResult{}, nil
	case 1:
		var results []vector.QueryResult
		if err := i.exec.Execute(ctx, ns.Path(queryPath(!vectorMode)), payloads[0], &results); err != nil {
			return nil, err
		}
		return [][]vector.QueryResult{results}, nil
	}

	var results [][]vector.QueryResult
	if err := i.exec.Execute(ctx, ns.Path(queryPath(!vectorMode)), payloads, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func queryPath(data bool) string {
	if data {
		return payload.PathQueryData
	}
	return payload.PathQuery
}
