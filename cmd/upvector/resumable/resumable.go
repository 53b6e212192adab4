// Package resumablecmder provides the resumable command for paging through
// a resumable query.
package resumablecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/dotdir"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

type resumableCommander struct {
	flags    cmdutil.QueryFlags
	pages    int
	maxIdle  time.Duration
	keep     bool
	asJSON   bool
	pageSize int

	env *cmdutil.IndexEnv
}

const resumableLongDesc string = `Page through the results of a resumable query.

The index keeps the query open between pages, so results continue in rank
order without repeating. The first page holds --top results, every further
page --page-size results. Paging stops early when the results run out.

By default the session is stopped when the command exits. With --keep it is
left open and recorded in the .upvector/ directory; continue it with
"upvector resumable next" and release it with "upvector resumable stop".

Examples:
  upvector resumable --vector 0.1,0.2,0.3 --top 10 --pages 3
  upvector resumable --data "space opera" --keep
  upvector resumable next --page-size 20
  upvector resumable stop`

const resumableShortDesc string = "Page through a resumable query"

func NewResumableCmd() *cobra.Command {
	cmder := &resumableCommander{}

	cmd := &cobra.Command{
		Use:   "resumable",
		Short: resumableShortDesc,
		Long:  resumableLongDesc,
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

	cmder.flags.Register(cmd, "Number of results in the first page")
	cmd.Flags().IntVar(&cmder.pageSize, "page-size", 0, "Results per further page (default: --top)")
	cmd.Flags().IntVar(&cmder.pages, "pages", 1, "Number of pages to print, including the first")
	cmd.Flags().DurationVar(&cmder.maxIdle, "max-idle", 0, "How long the index keeps the session between pages (default: index default)")
	cmd.Flags().BoolVar(&cmder.keep, "keep", false, "Leave the session open for \"resumable next\"")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print each page as a JSON array")

	cmd.AddCommand(newNextCmd())
	cmd.AddCommand(newStopCmd())

	return cmd
}

func (c *resumableCommander) run(cmd *cobra.Command) error {
	if c.pages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", c.pages)
	}

	q, err := c.flags.Build()
	if err != nil {
		return err
	}

	if q.TopK == 0 {
		q.TopK = payload.DefaultTopK
	}
	pageSize := c.pageSize
	if pageSize <= 0 {
		pageSize = q.TopK
	}

	req := index.ResumableQueryRequest{
		Query:     q,
		Namespace: c.env.Namespace,
		MaxIdle:   c.maxIdle,
	}
	out := cmd.OutOrStdout()

	if !c.keep {
		return index.WithResumableQuery(cmd.Context(), c.env.Index, req,
			func(ctx context.Context, first []vector.QueryResult, s *index.Session) error {
				_, _, err := c.page(ctx, out, first, s, q.TopK, pageSize)
				return err
			})
	}

	first, s, err := c.env.Index.ResumableQuery(cmd.Context(), req)
	if err != nil {
		return err
	}

	fetched, pages, err := c.page(cmd.Context(), out, first, s, q.TopK, pageSize)
	if err != nil {
		return errors.Join(err, s.Close())
	}

	state := &dotdir.SessionState{
		ID:        s.ID(),
		URL:       c.env.Viper.GetString("index.url"),
		Namespace: c.env.Namespace.Name(),
		Fetched:   fetched,
		Pages:     pages,
		StartedAt: time.Now(),
	}
	if err := dotdir.NewManager().SaveSessionState(state, c.env.ConfigDir); err != nil {
		return errors.Join(err, s.Close())
	}

	c.env.Logger.Debug("resumable session kept", "session", s.ID(), "fetched", fetched)
	if !c.asJSON {
		fmt.Fprintf(out, "\n  %s %s\n", cliui.DimStyle.Render("session kept:"), cliui.ValueStyle.Render(s.ID()))
	}
	return nil
}

// page prints the first batch, then fetches and prints further pages until
// c.pages are shown or a short page shows the results ran out. It returns
// how many results and pages were printed.
func (c *resumableCommander) page(ctx context.Context, out io.Writer, first []vector.QueryResult, s *index.Session, firstK, pageSize int) (int, int, error) {
	fetched := 0
	batch, want := first, firstK
	for p := 1; ; p++ {
		if err := printPage(out, c.asJSON, p, batch, fetched); err != nil {
			return fetched, p - 1, err
		}
		fetched += len(batch)

		if p == c.pages || len(batch) < want {
			return fetched, p, nil
		}

		var err error
		batch, err = s.FetchNext(ctx, pageSize)
		want = pageSize
		if err != nil {
			return fetched, p, err
		}
	}
}

func printPage(out io.Writer, asJSON bool, page int, results []vector.QueryResult, offset int) error {
	if asJSON {
		if results == nil {
			results = []vector.QueryResult{}
		}
		return cliui.WriteJSON(out, results)
	}

	fmt.Fprintf(out, "%s\n", cliui.HeaderStyle.Render(fmt.Sprintf("Page %d", page)))
	if len(results) == 0 {
		fmt.Fprintln(out, cliui.DimStyle.Render("  no more results"))
		return nil
	}
	cliui.RenderQueryResults(out, results, offset)
	return nil
}
