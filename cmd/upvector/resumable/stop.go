package resumablecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/dotdir"
)

const stopLongDesc string = `Stop the session kept by "upvector resumable --keep".

The index releases the query state and the local record is removed.

Examples:
  upvector resumable stop`

const stopShortDesc string = "Stop a kept session"

type stopCommander struct {
	env *cmdutil.IndexEnv
}

func newStopCmd() *cobra.Command {
	cmder := &stopCommander{}

	cmd := &cobra.Command{
		Use:   "stop",
		Short: stopShortDesc,
		Long:  stopLongDesc,
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

	return cmd
}

func (c *stopCommander) run(cmd *cobra.Command) error {
	ddm := dotdir.NewManager()
	state, err := loadKept(ddm, c.env)
	if err != nil {
		return err
	}

	status, err := c.env.Index.Resume(state.ID).Stop(cmd.Context())
	if err != nil {
		return fmt.Errorf("stopping session %s: %w", state.ID, err)
	}

	if err := ddm.ClearSessionState(c.env.ConfigDir); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Stopped session %s %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(state.ID),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, %d results fetched)", status, state.Fetched)),
	)
	return nil
}
