package index

import (
	"context"
	"fmt"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// FetchRequest looks records up by IDs or by Prefix. Exactly one of the two
// must be set.
type FetchRequest struct {
	IDs             []vector.ID
	Prefix          string
	IncludeVectors  bool
	IncludeMetadata bool
	IncludeData     bool
	Namespace       vector.Namespace
}

// Fetch returns stored records. For an id lookup the result has one entry
// per requested id, in request order, with nil where the id does not exist.
func (i *Index) Fetch(ctx context.Context, req FetchRequest) ([]*vector.FetchResult, error) {
	if (len(req.IDs) == 0) == (req.Prefix == "") {
		return nil, vector.ClientErrorf("exactly one of ids or prefix must be given to fetch")
	}

	var results []*vector.FetchResult
	err := i.exec.Execute(ctx, req.Namespace.Path(payload.PathFetch), payload.FetchPayload{
		IDs:             req.IDs,
		Prefix:          req.Prefix,
		IncludeVectors:  req.IncludeVectors,
		IncludeMetadata: req.IncludeMetadata,
		IncludeData:     req.IncludeData,
	}, &results)
	if err != nil {
		return nil, err
	}

	if len(req.IDs) > 0 && len(results) != len(req.IDs) {
		return nil, fmt.Errorf("fetch returned %d results for %d ids", len(results), len(req.IDs))
	}
	return results, nil
}

// DeleteRequest removes records by IDs, Prefix or Filter. Exactly one must be
// set.
type DeleteRequest struct {
	IDs       []vector.ID
	Prefix    string
	Filter    string
	Namespace vector.Namespace
}

// Delete removes matching records and returns how many were deleted.
func (i *Index) Delete(ctx context.Context, req DeleteRequest) (int, error) {
	given := 0
	if len(req.IDs) > 0 {
		given++
	}
	if req.Prefix != "" {
		given++
	}
	if req.Filter != "" {
		given++
	}
	if given != 1 {
		return 0, vector.ClientErrorf("exactly one of ids, prefix or filter must be given to delete")
	}

	var result payload.DeleteResult
	err := i.exec.Execute(ctx, req.Namespace.Path(payload.PathDelete), payload.DeletePayload{
		IDs:    req.IDs,
		Prefix: req.Prefix,
		Filter: req.Filter,
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// RangeRequest asks for one page of a cursor scan. An empty Cursor starts
// from the beginning.
type RangeRequest struct {
	Cursor          string
	Limit           int
	Prefix          string
	IncludeVectors  bool
	IncludeMetadata bool
	IncludeData     bool
	Namespace       vector.Namespace
}

// Range returns one page of records. The scan is complete when the returned
// NextCursor is empty.
func (i *Index) Range(ctx context.Context, req RangeRequest) (vector.RangeResult, error) {
	if req.Limit <= 0 {
		return vector.RangeResult{}, vector.ClientErrorf("limit must be greater than 0, got %d", req.Limit)
	}

	var result vector.RangeResult
	err := i.exec.Execute(ctx, req.Namespace.Path(payload.PathRange), payload.RangePayload{
		Cursor:          req.Cursor,
		Limit:           req.Limit,
		Prefix:          req.Prefix,
		IncludeVectors:  req.IncludeVectors,
		IncludeMetadata: req.IncludeMetadata,
		IncludeData:     req.IncludeData,
	}, &result)
	if err != nil {
		return vector.RangeResult{}, err
	}
	return result, nil
}

// RangeAll follows the cursor from req.Cursor until the scan is complete,
// fetching req.Limit records per page.
func (i *Index) RangeAll(ctx context.Context, req RangeRequest) ([]*vector.FetchResult, error) {
	var all []*vector.FetchResult
	for {
		page, err := i.Range(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Vectors...)

		if page.NextCursor == "" || page.NextCursor == req.Cursor {
			return all, nil
		}
		req.Cursor = page.NextCursor
	}
}

// UpdateRequest changes parts of the record ID. At least one of Vector,
// SparseVector, Data or Metadata must be set.
type UpdateRequest struct {
	ID                 vector.ID
	Vector             vector.DenseVector
	SparseVector       *vector.SparseVector
	Data               *string
	Metadata           vector.Metadata
	MetadataUpdateMode payload.MetadataUpdateMode
	Namespace          vector.Namespace
}

// Update applies req and reports whether a record was changed. It returns
// false when the id does not exist.
func (i *Index) Update(ctx context.Context, req UpdateRequest) (bool, error) {
	if req.ID == "" {
		return false, vector.ClientErrorf("record id is required")
	}
	if req.Vector == nil && req.SparseVector == nil && req.Data == nil && req.Metadata == nil {
		return false, vector.ClientErrorf("update of %q should change at least one of vector, sparse_vector, data or metadata", req.ID)
	}

	p := payload.UpdatePayload{
		ID:                 req.ID,
		Data:               req.Data,
		Metadata:           req.Metadata,
		MetadataUpdateMode: req.MetadataUpdateMode,
	}
	if req.Vector != nil {
		dense, err := payload.ToFloats(req.Vector)
		if err != nil {
			return false, vector.ClientErrorf("vector: %v", err)
		}
		p.Vector = dense
	}
	if req.SparseVector != nil {
		sparse, err := payload.ToSparseVector(req.SparseVector)
		if err != nil {
			return false, err
		}
		p.SparseVector = &sparse
	}

	var result payload.UpdateResult
	if err := i.exec.Execute(ctx, req.Namespace.Path(payload.PathUpdate), p, &result); err != nil {
		return false, err
	}
	return result.Updated == 1, nil
}
