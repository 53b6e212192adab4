// Package querycmder provides the query command.
package querycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
)

type queryCommander struct {
	flags  cmdutil.QueryFlags
	asJSON bool

	env *cmdutil.IndexEnv
}

const queryLongDesc string = `Run a one-shot similarity search.

Search with exactly one kind of input: a dense vector, a sparse vector, both
(for hybrid indexes), or raw text that the index embeds.

Examples:
  upvector query --vector 0.1,0.2,0.3 --top 5
  upvector query --sparse 1:0.5,7:0.2 --weighting IDF
  upvector query --data "space opera" --filter "genre = 'scifi'" --json`

const queryShortDesc string = "Query the index"

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: queryShortDesc,
		Long:  queryLongDesc,
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

	cmder.flags.Register(cmd, "Number of matches to return")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print results as JSON")

	return cmd
}

func (c *queryCommander) run(cmd *cobra.Command) error {
	q, err := c.flags.Build()
	if err != nil {
		return err
	}

	results, err := c.env.Index.Query(cmd.Context(), index.QueryRequest{
		Query:     q,
		Namespace: c.env.Namespace,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.asJSON {
		return cliui.WriteJSON(out, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, cliui.DimStyle.Render("  no matches"))
		return nil
	}
	cliui.RenderQueryResults(out, results, 0)
	return nil
}
