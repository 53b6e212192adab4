// Package cmdutil holds the setup shared by the upvector subcommands:
// config resolution, logger construction and index client creation.
package cmdutil

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/upvector/pkg/cliui"
	"github.com/papercomputeco/upvector/pkg/config"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/logger"
	"github.com/papercomputeco/upvector/pkg/vector"
)

// IndexFlagKeys are the registry keys of the persistent flags every index
// command honors.
var IndexFlagKeys = []string{
	config.FlagURL,
	config.FlagToken,
	config.FlagNamespace,
	config.FlagRetries,
	config.FlagTimeout,
}

// LoadViper resolves configuration for cmd and binds the registered flags
// named by keys on top of it.
func LoadViper(cmd *cobra.Command, keys ...string) (*viper.Viper, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	return v, nil
}

// NewLogger builds the logger for cmd. Records go to stderr so that
// command output on stdout stays machine readable.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	source, _ := cmd.Flags().GetBool("log-source")

	return logger.New(
		logger.WithDebug(debug),
		logger.WithSource(source),
		logger.WithPretty(cliui.IsTerminal(os.Stderr)),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

// IndexEnv is what an index command needs at run time.
type IndexEnv struct {
	Index     *index.Index
	Namespace vector.Namespace
	Viper     *viper.Viper
	Logger    *slog.Logger

	// ConfigDir is the --config-dir override, empty when not given.
	ConfigDir string
}

// NewIndexEnv loads configuration for cmd and creates the index client.
// Extra flag registry keys are bound alongside IndexFlagKeys.
func NewIndexEnv(cmd *cobra.Command, keys ...string) (*IndexEnv, error) {
	v, err := LoadViper(cmd, append(append([]string{}, IndexFlagKeys...), keys...)...)
	if err != nil {
		return nil, err
	}

	c, err := config.IndexClientConfig(v)
	if err != nil {
		return nil, err
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	l := NewLogger(cmd)
	idx, err := index.New(c, l)
	if err != nil {
		return nil, fmt.Errorf("creating index client: %w", err)
	}

	return &IndexEnv{
		Index:     idx,
		Namespace: config.Namespace(v),
		Viper:     v,
		Logger:    l,
		ConfigDir: configDir,
	}, nil
}
