// Package resetcmder provides the reset command.
package resetcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
)

type resetCommander struct {
	all bool

	env *cmdutil.IndexEnv
}

const resetLongDesc string = `Delete every record of a namespace, or of every namespace with --all.

The namespaces themselves are kept.

Examples:
  upvector reset --namespace films
  upvector reset --all`

const resetShortDesc string = "Delete all records"

func NewResetCmd() *cobra.Command {
	cmder := &resetCommander{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
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

	cmd.Flags().BoolVar(&cmder.all, "all", false, "Reset every namespace")

	return cmd
}

func (c *resetCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if c.all {
		return cliui.Step(out, "Resetting all namespaces", func() error {
			return c.env.Index.ResetAll(cmd.Context())
		})
	}

	msg := fmt.Sprintf("Resetting namespace %s", c.env.Namespace)
	return cliui.Step(out, msg, func() error {
		return c.env.Index.Reset(cmd.Context(), c.env.Namespace)
	})
}
