// Package deletecmder provides the delete command.
package deletecmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
)

type deleteCommander struct {
	prefix string
	filter string

	env *cmdutil.IndexEnv
}

const deleteLongDesc string = `Delete records by id, by id prefix, or by metadata filter.

Exactly one selector may be given.

Examples:
  upvector delete movie-1 movie-2
  upvector delete --prefix drafts-
  upvector delete --filter "year < 1950"`

const deleteShortDesc string = "Delete records"

func NewDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: deleteShortDesc,
		Long:  deleteLongDesc,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			given := 0
			for _, set := range []bool{len(args) > 0, cmder.prefix != "", cmder.filter != ""} {
				if set {
					given++
				}
			}
			if given != 1 {
				return errors.New("give exactly one of record ids, --prefix or --filter")
			}

			var err error
			cmder.env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVar(&cmder.prefix, "prefix", "", "Delete every record whose id starts with this prefix")
	cmd.Flags().StringVar(&cmder.filter, "filter", "", "Delete every record matching this metadata filter")

	return cmd
}

func (c *deleteCommander) run(cmd *cobra.Command, args []string) error {
	req := index.DeleteRequest{
		Prefix:    c.prefix,
		Filter:    c.filter,
		Namespace: c.env.Namespace,
	}
	if len(args) > 0 {
		req.IDs = cliui.ParseIDs(args)
	}

	deleted, err := c.env.Index.Delete(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted %s from %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprintf("%d records", deleted)),
		cliui.KeyStyle.Render(c.env.Namespace.String()),
	)
	return nil
}
