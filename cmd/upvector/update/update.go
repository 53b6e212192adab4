// Package updatecmder provides the update command.
package updatecmder

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

type updateCommander struct {
	vector   string
	sparse   string
	data     string
	metadata string
	patch    bool

	env *cmdutil.IndexEnv
}

const updateLongDesc string = `Update parts of a stored record.

Give at least one of --vector, --sparse, --data or --metadata. Metadata
replaces the stored metadata unless --patch is set, in which case it is
merged in and keys set to null are removed.

Examples:
  upvector update movie-1 --metadata '{"rating": 9}' --patch
  upvector update movie-1 --vector 0.3,0.1,0.9
  upvector update movie-1 --data "a quieter synopsis"`

const updateShortDesc string = "Update a record"

func NewUpdateCmd() *cobra.Command {
	cmder := &updateCommander{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: updateShortDesc,
		Long:  updateLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, vector.ID(args[0]))
		},
	}

	cmd.Flags().StringVar(&cmder.vector, "vector", "", "New dense vector, comma separated")
	cmd.Flags().StringVar(&cmder.sparse, "sparse", "", "New sparse vector as index:value pairs")
	cmd.Flags().StringVar(&cmder.data, "data", "", "New data")
	cmd.Flags().StringVar(&cmder.metadata, "metadata", "", "New metadata as a JSON object")
	cmd.Flags().BoolVar(&cmder.patch, "patch", false, "Merge --metadata into the stored metadata")

	return cmd
}

func (c *updateCommander) run(cmd *cobra.Command, id vector.ID) error {
	req := index.UpdateRequest{
		ID:                 id,
		MetadataUpdateMode: payload.MetadataOverwrite,
		Namespace:          c.env.Namespace,
	}
	if c.patch {
		req.MetadataUpdateMode = payload.MetadataPatch
	}

	var err error
	if req.Vector, err = cliui.ParseDense(c.vector); err != nil {
		return err
	}
	if req.SparseVector, err = cliui.ParseSparse(c.sparse); err != nil {
		return err
	}
	if cmd.Flags().Changed("data") {
		data := c.data
		req.Data = &data
	}
	if c.metadata != "" {
		if err := json.Unmarshal([]byte(c.metadata), &req.Metadata); err != nil {
			return fmt.Errorf("parsing --metadata: %w", err)
		}
	}

	updated, err := c.env.Index.Update(cmd.Context(), req)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("record %q not found in %s", id, c.env.Namespace)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Updated %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(string(id)))
	return nil
}
