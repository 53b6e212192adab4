package cliui_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/vector"
)

var _ = Describe("ParseDense", func() {
	It("parses comma separated floats", func() {
		v, err := cliui.ParseDense(" 0.1, 0.2,3 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(vector.DenseVector{0.1, 0.2, 3}))
	})

	It("returns nil for an empty string", func() {
		v, err := cliui.ParseDense("")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNil())
	})

	It("names the bad element", func() {
		_, err := cliui.ParseDense("0.1,,0.3")
		Expect(err).To(MatchError(ContainSubstring("invalid vector element 1")))
	})
})

var _ = Describe("ParseSparse", func() {
	It("parses index:value pairs", func() {
		v, err := cliui.ParseSparse("1:0.5, 7:0.25")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Indices).To(Equal([]int32{1, 7}))
		Expect(v.Values).To(Equal([]float32{0.5, 0.25}))
	})

	It("returns nil for an empty string", func() {
		v, err := cliui.ParseSparse("  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNil())
	})

	DescribeTable("rejects malformed input",
		func(in, msg string) {
			_, err := cliui.ParseSparse(in)
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("missing colon", "1=0.5", "expected index:value"),
		Entry("bad index", "x:0.5", "invalid sparse index"),
		Entry("bad value", "1:abc", "invalid sparse value"),
		Entry("index overflow", "9999999999:1", "invalid sparse index"),
	)
})

var _ = Describe("ParseIDs", func() {
	It("keeps argument order", func() {
		Expect(cliui.ParseIDs([]string{"b", "a"})).To(Equal([]vector.ID{"b", "a"}))
	})
})
