// Package hashing implements a deterministic bag-of-words embedder based on
// feature hashing. It needs no model or network and is the default embedder
// of the emulator.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/papercomputeco/upvector/pkg/embeddings"
	"github.com/papercomputeco/upvector/pkg/vector"
)

const (
	// DefaultDimension is the dense dimension used when none is configured.
	DefaultDimension = 256

	// SparseSpace is the number of sparse dimensions tokens hash into.
	SparseSpace = 1 << 20
)

// Embedder hashes lowercase word tokens into vector dimensions.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder producing dense vectors of the given
// dimension. Non-positive values select DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Dimension returns the dense dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the L2-normalized signed hash histogram of text's tokens.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	out := make([]float32, e.dimension)
	for _, tok := range tokenize(text) {
		h := hash(tok)
		idx := int(h % uint64(e.dimension))
		if h&(1<<63) != 0 {
			out[idx]--
		} else {
			out[idx]++
		}
	}

	var norm float64
	for _, v := range out {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return out, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range out {
		out[i] *= scale
	}
	return out, nil
}

// EmbedSparse returns term frequencies keyed by hashed token, sorted by index.
func (e *Embedder) EmbedSparse(_ context.Context, text string) (vector.SparseVector, error) {
	counts := make(map[int32]float32)
	for _, tok := range tokenize(text) {
		counts[int32(hash(tok)%SparseSpace)]++
	}

	sv := vector.SparseVector{
		Indices: make([]int32, 0, len(counts)),
		Values:  make([]float32, 0, len(counts)),
	}
	for idx := range counts {
		sv.Indices = append(sv.Indices, idx)
	}
	slices.Sort(sv.Indices)
	for _, idx := range sv.Indices {
		sv.Values = append(sv.Values, counts[idx])
	}
	return sv, nil
}

// Close implements embeddings.Embedder.
func (e *Embedder) Close() error {
	return nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func hash(tok string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tok))
	return h.Sum64()
}

var (
	_ embeddings.Embedder       = (*Embedder)(nil)
	_ embeddings.SparseEmbedder = (*Embedder)(nil)
)
