// Package namespacescmder provides the namespaces command for listing and
// deleting namespaces.
package namespacescmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/vector"
)

const namespacesLongDesc string = `List or delete namespaces.

The default namespace is listed as (default) and cannot be deleted.

Examples:
  upvector namespaces list
  upvector namespaces delete films`

const namespacesShortDesc string = "List or delete namespaces"

func NewNamespacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespaces",
		Aliases: []string{"ns"},
		Short:   namespacesShortDesc,
		Long:    namespacesLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	var env *cmdutil.IndexEnv

	return &cobra.Command{
		Use:   "list",
		Short: "List namespaces",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := env.Index.ListNamespaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cliui.KeyStyle.Render(vector.NamedNamespace(name).String()))
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var env *cmdutil.IndexEnv

	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a namespace and its records",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = cmdutil.NewIndexEnv(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Index.DeleteNamespace(cmd.Context(), vector.NamedNamespace(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted namespace %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(args[0]))
			return nil
		},
	}
}
