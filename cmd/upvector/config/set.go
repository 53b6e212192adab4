package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file stored in
the .upvector/ directory. The file is created when missing. Values are
validated: durations use Go syntax ("1s", "250ms"), retries must be a
non-negative integer.

Examples:
  upvector config set index.url https://my-index.upstash.io
  upvector config set index.token "$UPSTASH_VECTOR_REST_TOKEN"
  upvector config set transport.retry_interval 500ms
  upvector config set emulator.dimension 384`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(out io.Writer, key, value, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	shown, err := cfger.DisplayValue(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Set %s = %s %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(shown),
		cliui.DimStyle.Render("("+cfger.GetTarget()+")"),
	)
	return nil
}
