package hashing_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/embeddings/hashing"
)

var _ = Describe("Embedder", func() {
	ctx := context.Background()

	It("uses the default dimension", func() {
		Expect(hashing.NewEmbedder(0).Dimension()).To(Equal(hashing.DefaultDimension))
	})

	It("is deterministic and case insensitive", func() {
		e := hashing.NewEmbedder(32)
		a, err := e.Embed(ctx, "Hello World")
		Expect(err).NotTo(HaveOccurred())
		b, err := e.Embed(ctx, "hello, world!")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
		Expect(a).To(HaveLen(32))
	})

	It("returns unit vectors for non-empty text", func() {
		v, err := hashing.NewEmbedder(64).Embed(ctx, "the quick brown fox")
		Expect(err).NotTo(HaveOccurred())

		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		Expect(math.Sqrt(norm)).To(BeNumerically("~", 1, 1e-5))
	})

	It("returns a zero vector for text without tokens", func() {
		v, err := hashing.NewEmbedder(8).Embed(ctx, "  ...  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(make([]float32, 8)))
	})

	It("counts repeated tokens in sparse embeddings", func() {
		sv, err := hashing.NewEmbedder(8).EmbedSparse(ctx, "cat cat dog")
		Expect(err).NotTo(HaveOccurred())
		Expect(sv.Len()).To(Equal(2))
		Expect(sv.Values).To(ConsistOf(float32(2), float32(1)))
		Expect(sv.Indices[0]).To(BeNumerically("<", sv.Indices[1]))
	})
})
