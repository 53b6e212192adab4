// Package rangecmder provides the range command for cursor scans.
package rangecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
)

type rangeCommander struct {
	cursor          string
	limit           int
	prefix          string
	all             bool
	includeVectors  bool
	includeMetadata bool
	includeData     bool
	asJSON          bool

	env *cmdutil.IndexEnv
}

const rangeLongDesc string = `Scan records page by page with a cursor.

Each call prints one page and the cursor of the next one. An empty next
cursor means the scan is complete. With --all every page is fetched.

Examples:
  upvector range --limit 50
  upvector range --cursor 50 --limit 50
  upvector range --prefix movie- --all --json`

const rangeShortDesc string = "Scan records with a cursor"

func NewRangeCmd() *cobra.Command {
	cmder := &rangeCommander{}

	cmd := &cobra.Command{
		Use:   "range",
		Short: rangeShortDesc,
		Long:  rangeLongDesc,
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

	cmd.Flags().StringVar(&cmder.cursor, "cursor", "", "Cursor to resume from (empty starts at the beginning)")
	cmd.Flags().IntVar(&cmder.limit, "limit", 100, "Records per page")
	cmd.Flags().StringVar(&cmder.prefix, "prefix", "", "Only scan ids with this prefix")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Follow the cursor until the scan is complete")
	cmd.Flags().BoolVar(&cmder.includeVectors, "include-vectors", false, "Return stored vectors")
	cmd.Flags().BoolVar(&cmder.includeMetadata, "include-metadata", true, "Return stored metadata")
	cmd.Flags().BoolVar(&cmder.includeData, "include-data", false, "Return stored data")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print records as JSON")

	return cmd
}

func (c *rangeCommander) run(cmd *cobra.Command) error {
	req := index.RangeRequest{
		Cursor:          c.cursor,
		Limit:           c.limit,
		Prefix:          c.prefix,
		IncludeVectors:  c.includeVectors,
		IncludeMetadata: c.includeMetadata,
		IncludeData:     c.includeData,
		Namespace:       c.env.Namespace,
	}
	out := cmd.OutOrStdout()

	if c.all {
		records, err := c.env.Index.RangeAll(cmd.Context(), req)
		if err != nil {
			return err
		}
		if c.asJSON {
			return cliui.WriteJSON(out, records)
		}
		cliui.RenderFetchResults(out, records, nil)
		fmt.Fprintf(out, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d records", len(records))))
		return nil
	}

	page, err := c.env.Index.Range(cmd.Context(), req)
	if err != nil {
		return err
	}
	if page.Vectors == nil {
		page.Vectors = []*vector.FetchResult{}
	}
	if c.asJSON {
		return cliui.WriteJSON(out, page)
	}

	cliui.RenderFetchResults(out, page.Vectors, nil)
	next := page.NextCursor
	if next == "" {
		next = "<done>"
	}
	fmt.Fprintf(out, "\n  %s %s\n", cliui.DimStyle.Render("next cursor:"), cliui.ValueStyle.Render(next))
	return nil
}
