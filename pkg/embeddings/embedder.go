// Package embeddings turns raw text into vectors for indexes that accept
// data records.
package embeddings

import (
	"context"
	"errors"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// ErrEmbedding wraps every failure to produce an embedding.
var ErrEmbedding = errors.New("embedding failed")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a dense vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// SparseEmbedder is implemented by embedders that can also produce sparse
// vectors, used by sparse and hybrid indexes.
type SparseEmbedder interface {
	EmbedSparse(ctx context.Context, text string) (vector.SparseVector, error)
}
