package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// QueryFlags are the search flags shared by query and resumable.
type QueryFlags struct {
	Vector          string
	Sparse          string
	Data            string
	TopK            int
	Filter          string
	IncludeVectors  bool
	IncludeMetadata bool
	IncludeData     bool
	Weighting       string
	Fusion          string
	QueryMode       string
}

// Register adds the search flags to cmd.
func (f *QueryFlags) Register(cmd *cobra.Command, topKUsage string) {
	cmd.Flags().StringVar(&f.Vector, "vector", "", "Dense query vector, comma separated (e.g. 0.1,0.2,0.3)")
	cmd.Flags().StringVar(&f.Sparse, "sparse", "", "Sparse query vector as index:value pairs (e.g. 1:0.5,7:0.2)")
	cmd.Flags().StringVar(&f.Data, "data", "", "Raw text to embed and search with")
	cmd.Flags().IntVarP(&f.TopK, "top", "k", payload.DefaultTopK, topKUsage)
	cmd.Flags().StringVar(&f.Filter, "filter", "", "Metadata filter (e.g. \"genre = 'drama' AND year > 2000\")")
	cmd.Flags().BoolVar(&f.IncludeVectors, "include-vectors", false, "Return stored vectors")
	cmd.Flags().BoolVar(&f.IncludeMetadata, "include-metadata", true, "Return stored metadata")
	cmd.Flags().BoolVar(&f.IncludeData, "include-data", false, "Return stored data")
	cmd.Flags().StringVar(&f.Weighting, "weighting", "", "Sparse weighting strategy (IDF)")
	cmd.Flags().StringVar(&f.Fusion, "fusion", "", "Hybrid fusion algorithm (RRF, DBSF)")
	cmd.Flags().StringVar(&f.QueryMode, "query-mode", "", "Hybrid text query mode (HYBRID, DENSE, SPARSE)")
}

// Build parses the flags into a query. Search-input rules are left to the
// payload builder.
func (f *QueryFlags) Build() (payload.Query, error) {
	dense, err := cliui.ParseDense(f.Vector)
	if err != nil {
		return payload.Query{}, err
	}
	sparse, err := cliui.ParseSparse(f.Sparse)
	if err != nil {
		return payload.Query{}, err
	}
	return payload.Query{
		Vector:            dense,
		SparseVector:      sparse,
		Data:              f.Data,
		TopK:              f.TopK,
		Filter:            f.Filter,
		IncludeVectors:    f.IncludeVectors,
		IncludeMetadata:   f.IncludeMetadata,
		IncludeData:       f.IncludeData,
		WeightingStrategy: payload.WeightingStrategy(strings.ToUpper(f.Weighting)),
		FusionAlgorithm:   payload.FusionAlgorithm(strings.ToUpper(f.Fusion)),
		QueryMode:         payload.QueryMode(strings.ToUpper(f.QueryMode)),
	}, nil
}
