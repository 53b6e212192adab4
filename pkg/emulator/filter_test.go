package emulator

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/upvector/pkg/vector"
)

var _ = Describe("parseFilter", func() {
	md := vector.Metadata{
		"genre":  "drama",
		"year":   float64(2004),
		"rating": 7.5,
		"active": true,
		"award":  map[string]any{"won": true, "name": "palme"},
	}

	DescribeTable("evaluates expressions against metadata",
		func(expr string, want bool) {
			f, err := parseFilter(expr)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.match(md)).To(Equal(want))
		},
		Entry("string equality", "genre = 'drama'", true),
		Entry("double quoted strings", `genre = "comedy"`, false),
		Entry("inequality", "genre != 'comedy'", true),
		Entry("numeric comparison", "year >= 2000", true),
		Entry("strict numeric comparison", "year < 2004", false),
		Entry("decimal numbers", "rating > 7.2", true),
		Entry("booleans", "active = true", true),
		Entry("nested fields", "award.won = true AND award.name = 'palme'", true),
		Entry("missing fields never match", "missing = 'x'", false),
		Entry("type mismatch never matches", "genre > 3", false),
		Entry("AND binds tighter than OR", "genre = 'comedy' AND year > 0 OR active = true", true),
		Entry("parentheses", "genre = 'comedy' AND (year > 0 OR active = true)", false),
		Entry("keywords are case insensitive", "genre = 'drama' and year = 2004", true),
	)

	It("returns no filter for an empty expression", func() {
		f, err := parseFilter("   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNil())
	})

	DescribeTable("rejects malformed expressions",
		func(expr string) {
			_, err := parseFilter(expr)
			Expect(err).To(HaveOccurred())
		},
		Entry("dangling operator", "genre ="),
		Entry("unterminated string", "genre = 'drama"),
		Entry("missing paren", "(genre = 'drama'"),
		Entry("bare bang", "genre ! 'drama'"),
		Entry("ordering on booleans", "active > true"),
		Entry("trailing tokens", "genre = 'drama' year"),
	)
})
