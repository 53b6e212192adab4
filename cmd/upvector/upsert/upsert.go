// Package upsertcmder provides the upsert command.
package upsertcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

type upsertCommander struct {
	file        string
	batchSize   int
	concurrency int

	env *cmdutil.IndexEnv
}

const upsertLongDesc string = `Upsert records read from a JSON or JSON Lines file.

The file holds either one JSON array of records or one record per line.
Each record is an object with "id" and any of "vector", "sparse_vector",
"data" and "metadata", or a positional array such as
["id", [0.1, 0.2], {"genre": "drama"}].

All records of one file must carry vectors, or all must carry raw "data"
for the index to embed. Every record is validated before anything is sent.

Examples:
  upvector upsert --file movies.jsonl
  upvector upsert --file movies.json --namespace films --batch-size 500
  cat movies.jsonl | upvector upsert --file -`

const upsertShortDesc string = "Upsert records from a file"

func NewUpsertCmd() *cobra.Command {
	cmder := &upsertCommander{}

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: upsertShortDesc,
		Long:  upsertLongDesc,
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

	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "Records file (JSON array or JSON Lines, - for stdin)")
	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", index.DefaultBatchSize, "Records per request")
	cmd.Flags().IntVar(&cmder.concurrency, "concurrency", index.DefaultBatchConcurrency, "Requests in flight at once")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (c *upsertCommander) run(cmd *cobra.Command) error {
	items, err := c.readInputs(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("no records found in " + c.file)
	}

	c.env.Logger.Debug("upserting records",
		"count", len(items),
		"namespace", c.env.Namespace.String(),
		"batch_size", c.batchSize,
	)

	out := cmd.OutOrStdout()
	msg := fmt.Sprintf("Upserting %d records into %s", len(items), c.env.Namespace)
	return cliui.Step(out, msg, func() error {
		return c.env.Index.UpsertBatched(cmd.Context(), c.env.Namespace, items, c.batchSize, c.concurrency)
	})
}

func (c *upsertCommander) readInputs(stdin io.Reader) ([]payload.Input, error) {
	var r io.Reader = stdin
	if c.file != "-" {
		f, err := os.Open(c.file)
		if err != nil {
			return nil, fmt.Errorf("opening records file: %w", err)
		}
		defer f.Close()
		r = f
	}

	values, err := decodeValues(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.file, err)
	}

	items := make([]payload.Input, 0, len(values))
	for i, v := range values {
		in, err := payload.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		items = append(items, in)
	}
	return items, nil
}

// decodeValues reads consecutive JSON values. A lone array of objects or
// arrays is a list of records, anything else is one record per value.
func decodeValues(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)

	var values []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	if len(values) == 1 {
		if list, ok := values[0].([]any); ok && allContainers(list) {
			return list, nil
		}
	}
	return values, nil
}

func allContainers(list []any) bool {
	for _, e := range list {
		switch e.(type) {
		case []any, map[string]any:
		default:
			return false
		}
	}
	return true
}
