package cliui

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/papercomputeco/upvector/pkg/utils"
	"github.com/papercomputeco/upvector/pkg/vector"
)

const previewLen = 80

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderQueryResults prints ranked matches starting at rank offset+1.
func RenderQueryResults(w io.Writer, results []vector.QueryResult, offset int) {
	for i, r := range results {
		fmt.Fprintf(w, "  %s %s %s\n",
			RankStyle.Render(fmt.Sprintf("%3d.", offset+i+1)),
			KeyStyle.Render(string(r.ID)),
			ScoreStyle.Render(fmt.Sprintf("score=%.4f", r.Score)),
		)
		renderDetails(w, r.Metadata, r.Data, r.Vector, r.SparseVector)
	}
}

// RenderFetchResults prints stored records, showing ids with no record as
// missing. ids may be nil for prefix lookups.
func RenderFetchResults(w io.Writer, results []*vector.FetchResult, ids []vector.ID) {
	for i, r := range results {
		if r == nil {
			id := "?"
			if i < len(ids) {
				id = string(ids[i])
			}
			fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(id), DimStyle.Render("<not found>"))
			continue
		}
		fmt.Fprintf(w, "  %s\n", KeyStyle.Render(string(r.ID)))
		renderDetails(w, r.Metadata, r.Data, r.Vector, r.SparseVector)
	}
}

// RenderKeyValues prints aligned key/value pairs in key order.
func RenderKeyValues(w io.Writer, pairs map[string]string) {
	keys := slices.Sorted(maps.Keys(pairs))

	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s  %s\n", KeyStyle.Render(fmt.Sprintf("%-*s", width, k)), ValueStyle.Render(pairs[k]))
	}
}

func renderDetails(w io.Writer, metadata vector.Metadata, data string, dense vector.DenseVector, sparse *vector.SparseVector) {
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err == nil {
			fmt.Fprintf(w, "       %s %s\n", DimStyle.Render("metadata"), ValueStyle.Render(string(raw)))
		}
	}
	if data != "" {
		fmt.Fprintf(w, "       %s %s\n", DimStyle.Render("data"), ValueStyle.Render(utils.Truncate(oneLine(data), previewLen)))
	}
	if len(dense) > 0 {
		fmt.Fprintf(w, "       %s %s\n", DimStyle.Render("vector"), ValueStyle.Render(utils.Truncate(fmt.Sprint([]float32(dense)), previewLen)))
	}
	if sparse != nil && sparse.Len() > 0 {
		fmt.Fprintf(w, "       %s %s\n", DimStyle.Render("sparse"), ValueStyle.Render(fmt.Sprintf("%d non-zero", sparse.Len())))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
