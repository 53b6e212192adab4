package resumablecmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/dotdir"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

const nextLongDesc string = `Fetch the next page of the session kept by "upvector resumable --keep".

Results continue in rank order after the ones already printed.

Examples:
  upvector resumable next
  upvector resumable next --page-size 25 --json`

const nextShortDesc string = "Fetch the next page of a kept session"

// errNoSession is returned when no kept session is recorded.
var errNoSession = errors.New("no resumable session in progress: start one with \"upvector resumable --keep\"")

type nextCommander struct {
	pageSize int
	asJSON   bool

	env *cmdutil.IndexEnv
}

func newNextCmd() *cobra.Command {
	cmder := &nextCommander{}

	cmd := &cobra.Command{
		Use:   "next",
		Short: nextShortDesc,
		Long:  nextLongDesc,
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

	cmd.Flags().IntVar(&cmder.pageSize, "page-size", payload.DefaultTopK, "Number of results to fetch")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the page as a JSON array")

	return cmd
}

func (c *nextCommander) run(cmd *cobra.Command) error {
	ddm := dotdir.NewManager()
	state, err := loadKept(ddm, c.env)
	if err != nil {
		return err
	}

	s := c.env.Index.Resume(state.ID)
	results, err := s.FetchNext(cmd.Context(), c.pageSize)
	if err != nil {
		return fmt.Errorf("fetching from session %s: %w", state.ID, err)
	}

	state.Pages++
	if err := printPage(cmd.OutOrStdout(), c.asJSON, state.Pages, results, state.Fetched); err != nil {
		return err
	}

	state.Fetched += len(results)
	return ddm.SaveSessionState(state, c.env.ConfigDir)
}

// loadKept returns the kept session, refusing one started against another
// index.
func loadKept(ddm *dotdir.Manager, env *cmdutil.IndexEnv) (*dotdir.SessionState, error) {
	state, err := ddm.LoadSessionState(env.ConfigDir)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errNoSession
	}

	if url := env.Viper.GetString("index.url"); state.URL != "" && state.URL != url {
		return nil, fmt.Errorf("kept session %s belongs to %s, not %s", state.ID, state.URL, url)
	}
	return state, nil
}
