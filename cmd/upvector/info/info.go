// Package infocmder provides the info command.
package infocmder

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/vector"
)

type infoCommander struct {
	asJSON bool

	env *cmdutil.IndexEnv
}

const infoLongDesc string = `Show index statistics: vector counts, size, dimension, similarity
function and per-namespace counts.

Examples:
  upvector info
  upvector info --json`

const infoShortDesc string = "Show index statistics"

func NewInfoCmd() *cobra.Command {
	cmder := &infoCommander{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: infoShortDesc,
		Long:  infoLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print info as JSON")

	return cmd
}

func (c *infoCommander) run(cmd *cobra.Command) error {
	info, err := c.env.Index.Info(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.asJSON {
		return cliui.WriteJSON(out, info)
	}

	fmt.Fprintf(out, "%s\n", cliui.HeaderStyle.Render("Index"))
	cliui.RenderKeyValues(out, summary(info))

	fmt.Fprintf(out, "\n%s\n", cliui.HeaderStyle.Render("Namespaces"))
	for _, name := range slices.Sorted(maps.Keys(info.Namespaces)) {
		ns := info.Namespaces[name]
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render(vector.NamedNamespace(name).String()),
			cliui.ValueStyle.Render(fmt.Sprintf("%d vectors, %d pending", ns.VectorCount, ns.PendingVectorCount)),
		)
	}
	return nil
}

func summary(info vector.IndexInfo) map[string]string {
	pairs := map[string]string{
		"vectors":    strconv.Itoa(info.VectorCount),
		"pending":    strconv.Itoa(info.PendingVectorCount),
		"size":       strconv.FormatInt(info.IndexSize, 10),
		"dimension":  strconv.Itoa(info.Dimension),
		"similarity": info.SimilarityFunction,
	}
	if info.IndexType != "" {
		pairs["type"] = info.IndexType
	}
	if info.DenseIndex != nil && info.DenseIndex.EmbeddingModel != "" {
		pairs["dense model"] = info.DenseIndex.EmbeddingModel
	}
	if info.SparseIndex != nil && info.SparseIndex.EmbeddingModel != "" {
		pairs["sparse model"] = info.SparseIndex.EmbeddingModel
	}
	return pairs
}
