// Package configcmder provides the config command for managing persistent
// upvector configuration stored in the .upvector/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/pkg/config"
)

const configLongDesc string = `Manage persistent upvector configuration.

Configuration is stored as config.toml in the .upvector/ directory and
provides default values for command flags. CLI flags and environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  index.url, index.token, index.namespace,
  transport.retries, transport.retry_interval, transport.max_retry_interval,
  transport.timeout, transport.rate_limit, transport.disable_telemetry,
  emulator.listen, emulator.token, emulator.index_type, emulator.dimension,
  emulator.similarity, emulator.embedding_provider, emulator.embedding_target,
  emulator.embedding_model, mcp.listen

Use subcommands to get, set, or list configuration values:
  upvector config set <key> <value>    Set a configuration value
  upvector config get <key>            Get a configuration value
  upvector config list                 List all configuration values

Examples:
  upvector config set index.url https://my-index.upstash.io
  upvector config set transport.retries 5
  upvector config get index.url
  upvector config list`

const configShortDesc string = "Manage persistent upvector configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
