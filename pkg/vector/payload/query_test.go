package payload_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

var _ = Describe("BuildQuery", func() {
	It("defaults top_k", func() {
		p, err := payload.BuildQuery(payload.Query{Vector: vector.DenseVector{0.1}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.TopK).To(Equal(payload.DefaultTopK))
	})

	It("rejects negative top_k", func() {
		_, err := payload.BuildQuery(payload.Query{Vector: vector.DenseVector{0.1}, TopK: -1})
		Expect(vector.IsClientError(err)).To(BeTrue())
	})

	It("rejects queries with no search input", func() {
		_, err := payload.BuildQuery(payload.Query{TopK: 1})
		Expect(vector.IsClientError(err)).To(BeTrue())
	})

	It("rejects data mixed with vectors", func() {
		_, err := payload.BuildQuery(payload.Query{Data: "hi", Vector: vector.DenseVector{1}})
		Expect(vector.IsClientError(err)).To(BeTrue())

		_, err = payload.BuildQuery(payload.Query{Data: "hi", SparseVector: &vector.SparseVector{}})
		Expect(vector.IsClientError(err)).To(BeTrue())
	})

	It("allows dense and sparse together for hybrid indexes", func() {
		p, err := payload.BuildQuery(payload.Query{
			Vector:          vector.DenseVector{0.1},
			SparseVector:    &vector.SparseVector{Indices: []int32{1}, Values: []float32{1}},
			FusionAlgorithm: payload.DBSF,
			TopK:            3,
		})
		Expect(err).NotTo(HaveOccurred())

		raw, err := json.Marshal(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(MatchJSON(`{
			"vector": [0.1],
			"sparseVector": {"indices": [1], "values": [1]},
			"topK": 3,
			"includeVectors": false,
			"includeMetadata": false,
			"includeData": false,
			"fusionAlgorithm": "DBSF"
		}`))
	})

	It("only allows query_mode on data queries", func() {
		_, err := payload.BuildQuery(payload.Query{Vector: vector.DenseVector{1}, QueryMode: payload.QueryModeSparse})
		Expect(vector.IsClientError(err)).To(BeTrue())

		p, err := payload.BuildQuery(payload.Query{Data: "hello", QueryMode: payload.QueryModeSparse})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.QueryMode).To(Equal(payload.QueryModeSparse))
	})
})

var _ = Describe("BuildQueries", func() {
	It("reports the batch kind", func() {
		_, vectorMode, err := payload.BuildQueries([]payload.Query{{Data: "a"}, {Data: "b"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(vectorMode).To(BeFalse())
	})

	It("rejects mixed batches", func() {
		_, _, err := payload.BuildQueries([]payload.Query{{Vector: vector.DenseVector{1}}, {Data: "b"}})
		Expect(vector.IsClientError(err)).To(BeTrue())
	})
})

var _ = Describe("BuildResumableQuery", func() {
	It("carries max idle", func() {
		p, err := payload.BuildResumableQuery(payload.Query{Vector: vector.DenseVector{1}, TopK: 2}, 3600)
		Expect(err).NotTo(HaveOccurred())

		raw, err := json.Marshal(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"maxIdle":3600`))
		Expect(string(raw)).To(ContainSubstring(`"topK":2`))
	})

	It("rejects a negative max idle", func() {
		_, err := payload.BuildResumableQuery(payload.Query{Vector: vector.DenseVector{1}, TopK: 1}, -1)
		Expect(vector.IsClientError(err)).To(BeTrue())
	})

	DescribeTable("requires a positive top_k",
		func(topK int) {
			_, err := payload.BuildResumableQuery(payload.Query{Vector: vector.DenseVector{1}, TopK: topK}, 0)
			Expect(vector.IsClientError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("top_k"))
		},
		Entry("unset", 0),
		Entry("negative", -3),
	)
})
