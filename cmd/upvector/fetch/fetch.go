// Package fetchcmder provides the fetch command.
package fetchcmder

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
)

type fetchCommander struct {
	prefix          string
	includeVectors  bool
	includeMetadata bool
	includeData     bool
	asJSON          bool

	env *cmdutil.IndexEnv
}

const fetchLongDesc string = `Fetch stored records by id or by id prefix.

Ids that do not exist are reported as not found, in request order.

Examples:
  upvector fetch movie-1 movie-2
  upvector fetch --prefix movie- --include-vectors
  upvector fetch movie-1 --json`

const fetchShortDesc string = "Fetch records by id or prefix"

func NewFetchCmd() *cobra.Command {
	cmder := &fetchCommander{}

	cmd := &cobra.Command{
		Use:   "fetch [id...]",
		Short: fetchShortDesc,
		Long:  fetchLongDesc,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (cmder.prefix == "") {
				return errors.New("give either record ids or --prefix")
			}

			var err error
			cmder.env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVar(&cmder.prefix, "prefix", "", "Fetch every record whose id starts with this prefix")
	cmd.Flags().BoolVar(&cmder.includeVectors, "include-vectors", false, "Return stored vectors")
	cmd.Flags().BoolVar(&cmder.includeMetadata, "include-metadata", true, "Return stored metadata")
	cmd.Flags().BoolVar(&cmder.includeData, "include-data", true, "Return stored data")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print records as JSON")

	return cmd
}

func (c *fetchCommander) run(cmd *cobra.Command, args []string) error {
	var ids []vector.ID
	if len(args) > 0 {
		ids = cliui.ParseIDs(args)
	}

	results, err := c.env.Index.Fetch(cmd.Context(), index.FetchRequest{
		IDs:             ids,
		Prefix:          c.prefix,
		IncludeVectors:  c.includeVectors,
		IncludeMetadata: c.includeMetadata,
		IncludeData:     c.includeData,
		Namespace:       c.env.Namespace,
	})
	if err != nil {
		return err
	}

	if c.asJSON {
		return cliui.WriteJSON(cmd.OutOrStdout(), results)
	}
	cliui.RenderFetchResults(cmd.OutOrStdout(), results, ids)
	return nil
}
