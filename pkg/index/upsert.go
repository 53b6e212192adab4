package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

const (
	// DefaultBatchSize is the chunk size used by UpsertBatched.
	DefaultBatchSize = 1000

	// DefaultBatchConcurrency bounds in-flight chunks in UpsertBatched.
	DefaultBatchConcurrency = 4
)

// Upsert inserts or replaces items in ns. The batch must be homogeneous:
// either every item carries vectors or every item carries raw text. An
// empty batch sends nothing and returns an empty status.
func (i *Index) Upsert(ctx context.Context, ns vector.Namespace, items []payload.Input) (string, error) {
	batch, err := payload.Assemble(items)
	if err != nil {
		return "", err
	}
	if len(batch.Items) == 0 {
		return "", nil
	}

	return i.upsertBatch(ctx, ns, batch.Items, batch.VectorMode)
}

// UpsertRecords is Upsert for already typed records.
func (i *Index) UpsertRecords(ctx context.Context, ns vector.Namespace, records ...vector.Record) (string, error) {
	return i.Upsert(ctx, ns, payload.Typed(records...))
}

// UpsertBatched normalizes every item up front, then sends the batch in
// chunks of batchSize with at most concurrency chunks in flight. Nothing is
// sent when any item is invalid. Non-positive arguments select the defaults.
func (i *Index) UpsertBatched(ctx context.Context, ns vector.Namespace, items []payload.Input, batchSize, concurrency int) error {
	batch, err := payload.Assemble(items)
	if err != nil {
		return err
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(batch.Items); start += batchSize {
		chunk := batch.Items[start:min(start+batchSize, len(batch.Items))]
		offset := start
		g.Go(func() error {
			if _, err := i.upsertBatch(gctx, ns, chunk, batch.VectorMode); err != nil {
				return fmt.Errorf("upserting items %d-%d: %w", offset, offset+len(chunk)-1, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (i *Index) upsertBatch(ctx context.Context, ns vector.Namespace, items []any, vectorMode bool) (string, error) {
	path := payload.PathUpsertData
	if vectorMode {
		path = payload.PathUpsert
	}

	i.logger.Debug("upserting", "namespace", ns.String(), "count", len(items), "vector_mode", vectorMode)

	var status string
	if err := i.exec.Execute(ctx, ns.Path(path), items, &status); err != nil {
		return "", err
	}
	return status, nil
}
