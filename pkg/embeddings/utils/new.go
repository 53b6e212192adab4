// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/upvector/pkg/embeddings"
	"github.com/papercomputeco/upvector/pkg/embeddings/hashing"
	"github.com/papercomputeco/upvector/pkg/embeddings/ollama"
)

const (
	ProviderHashing = "hashing"
	ProviderOllama  = "ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimension    int
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "", ProviderHashing:
		return hashing.NewEmbedder(o.Dimension), nil
	case ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:   o.TargetURL,
			Model:     o.Model,
			Dimension: o.Dimension,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
