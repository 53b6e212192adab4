package index

import (
	"context"

	"github.com/papercomputeco/upvector/pkg/async"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// AsyncIndex mirrors Index with every call running on its own goroutine.
type AsyncIndex struct {
	idx *Index
}

// Async returns the asynchronous view of i.
func (i *Index) Async() *AsyncIndex {
	return &AsyncIndex{idx: i}
}

// Upsert is the asynchronous form of Index.Upsert.
func (a *AsyncIndex) Upsert(ctx context.Context, ns vector.Namespace, items []payload.Input) *async.Future[string] {
	return async.Go(ctx, func(ctx context.Context) (string, error) {
		return a.idx.Upsert(ctx, ns, items)
	})
}

// Query is the asynchronous form of Index.Query.
func (a *AsyncIndex) Query(ctx context.Context, req QueryRequest) *async.Future[[]vector.QueryResult] {
	return async.Go(ctx, func(ctx context.Context) ([]vector.QueryResult, error) {
		return a.idx.Query(ctx, req)
	})
}

// QueryMany is the asynchronous form of Index.QueryMany.
func (a *AsyncIndex) QueryMany(ctx context.Context, ns vector.Namespace, queries []payload.Query) *async.Future[[][]vector.QueryResult] {
	return async.Go(ctx, func(ctx context.Context) ([][]vector.QueryResult, error) {
		return a.idx.QueryMany(ctx, ns, queries)
	})
}

// Fetch is the asynchronous form of Index.Fetch.
func (a *AsyncIndex) Fetch(ctx context.Context, req FetchRequest) *async.Future[[]*vector.FetchResult] {
	return async.Go(ctx, func(ctx context.Context) ([]*vector.FetchResult, error) {
		return a.idx.Fetch(ctx, req)
	})
}

// Delete is the asynchronous form of Index.Delete.
func (a *AsyncIndex) Delete(ctx context.Context, req DeleteRequest) *async.Future[int] {
	return async.Go(ctx, func(ctx context.Context) (int, error) {
		return a.idx.Delete(ctx, req)
	})
}

// Range is the asynchronous form of Index.Range.
func (a *AsyncIndex) Range(ctx context.Context, req RangeRequest) *async.Future[vector.RangeResult] {
	return async.Go(ctx, func(ctx context.Context) (vector.RangeResult, error) {
		return a.idx.Range(ctx, req)
	})
}

// Update is the asynchronous form of Index.Update.
func (a *AsyncIndex) Update(ctx context.Context, req UpdateRequest) *async.Future[bool] {
	return async.Go(ctx, func(ctx context.Context) (bool, error) {
		return a.idx.Update(ctx, req)
	})
}

// Info is the asynchronous form of Index.Info.
func (a *AsyncIndex) Info(ctx context.Context) *async.Future[vector.IndexInfo] {
	return async.Go(ctx, a.idx.Info)
}

// ResumableStart is the first batch and session of an asynchronous
// resumable query.
type ResumableStart struct {
	Results []vector.QueryResult
	Session *AsyncSession
}

// ResumableQuery is the asynchronous form of Index.ResumableQuery.
func (a *AsyncIndex) ResumableQuery(ctx context.Context, req ResumableQueryRequest) *async.Future[ResumableStart] {
	return async.Go(ctx, func(ctx context.Context) (ResumableStart, error) {
		first, s, err := a.idx.ResumableQuery(ctx, req)
		if err != nil {
			return ResumableStart{}, err
		}
		return ResumableStart{Results: first, Session: &AsyncSession{s: s}}, nil
	})
}

// AsyncSession mirrors Session. Like Session it belongs to one caller, which
// must await each call before starting the next.
type AsyncSession struct {
	s *Session
}

// ID returns the server-issued session id, empty once stopped.
func (a *AsyncSession) ID() string { return a.s.ID() }

// State returns the lifecycle state.
func (a *AsyncSession) State() SessionState { return a.s.State() }

// FetchNext is the asynchronous form of Session.FetchNext.
func (a *AsyncSession) FetchNext(ctx context.Context, k int) *async.Future[[]vector.QueryResult] {
	if err := a.s.usable(); err != nil {
		return async.Resolved[[]vector.QueryResult](nil, err)
	}
	return async.Go(ctx, func(ctx context.Context) ([]vector.QueryResult, error) {
		return a.s.FetchNext(ctx, k)
	})
}

// Stop is the asynchronous form of Session.Stop.
func (a *AsyncSession) Stop(ctx context.Context) *async.Future[string] {
	if err := a.s.usable(); err != nil {
		return async.Resolved("", err)
	}
	return async.Go(ctx, a.s.Stop)
}
