// Package upvectorcmder
package upvectorcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/upvector/cmd/upvector/config"
	deletecmder "github.com/papercomputeco/upvector/cmd/upvector/delete"
	emulatecmder "github.com/papercomputeco/upvector/cmd/upvector/emulate"
	fetchcmder "github.com/papercomputeco/upvector/cmd/upvector/fetch"
	infocmder "github.com/papercomputeco/upvector/cmd/upvector/info"
	mcpcmder "github.com/papercomputeco/upvector/cmd/upvector/mcp"
	namespacescmder "github.com/papercomputeco/upvector/cmd/upvector/namespaces"
	querycmder "github.com/papercomputeco/upvector/cmd/upvector/query"
	rangecmder "github.com/papercomputeco/upvector/cmd/upvector/range"
	resetcmder "github.com/papercomputeco/upvector/cmd/upvector/reset"
	resumablecmder "github.com/papercomputeco/upvector/cmd/upvector/resumable"
	updatecmder "github.com/papercomputeco/upvector/cmd/upvector/update"
	upsertcmder "github.com/papercomputeco/upvector/cmd/upvector/upsert"
	versioncmder "github.com/papercomputeco/upvector/cmd/version"
	"github.com/papercomputeco/upvector/pkg/config"
)

const upvectorLongDesc string = `upvector is a client for hosted vector indexes.

Index commands talk to the index named by --url and --token, the
UPSTASH_VECTOR_REST_URL and UPSTASH_VECTOR_REST_TOKEN environment variables,
or index.url and index.token in config.toml:
  upvector upsert --file records.jsonl   Upsert records
  upvector query --data "hello"          Query by text
  upvector resumable --vector 0.1,0.2    Page through a resumable query
  upvector info                          Show index statistics

Local tooling:
  upvector emulate                       Run an in-memory index emulator
  upvector mcp                           Serve the index as MCP tools
  upvector config list                   Show persistent configuration`

const upvectorShortDesc string = "upvector - vector index client"

func NewUpvectorCmd() *cobra.Command {
	var (
		url, token, namespace, timeout string
		retries                        int
	)

	cmd := &cobra.Command{
		Use:          "upvector",
		Short:        upvectorShortDesc,
		Long:         upvectorLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("log-source", false, "Include the source file:line in log records")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .upvector/ config directory")
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagURL, &url)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagToken, &token)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagNamespace, &namespace)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagTimeout, &timeout)
	config.AddPersistentIntFlag(cmd, config.Flags, config.FlagRetries, &retries)

	// Add subcommands
	cmd.AddCommand(upsertcmder.NewUpsertCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(resumablecmder.NewResumableCmd())
	cmd.AddCommand(fetchcmder.NewFetchCmd())
	cmd.AddCommand(deletecmder.NewDeleteCmd())
	cmd.AddCommand(rangecmder.NewRangeCmd())
	cmd.AddCommand(updatecmder.NewUpdateCmd())
	cmd.AddCommand(infocmder.NewInfoCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(namespacescmder.NewNamespacesCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(emulatecmder.NewEmulateCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
