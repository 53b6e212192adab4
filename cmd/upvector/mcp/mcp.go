// Package mcpcmder provides the mcp command, which serves the index as MCP
// tools over streamable HTTP.
package mcpcmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/config"
	"github.com/papercomputeco/upvector/pkg/mcp"
)

// Path is where the MCP handler is served.
const Path = "/mcp"

type mcpCommander struct {
	listen string

	env *cmdutil.IndexEnv
}

const mcpLongDesc string = `Serve the index as MCP (Model Context Protocol) tools.

Agents connect over streamable HTTP at /mcp and get two tools:
  query   similarity search by text or vector, with optional filter
  fetch   look records up by id or id prefix

Tool calls without a namespace use --namespace.

Examples:
  upvector mcp
  upvector mcp --listen :9086 --namespace docs`

const mcpShortDesc string = "Serve the index as MCP tools"

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = cmdutil.NewIndexEnv(cmd, config.FlagMCPListen)
			if err != nil {
				return err
			}
			cmder.listen = cmder.env.Viper.GetString("mcp.listen")
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMCPListen, &cmder.listen)

	return cmd
}

func (c *mcpCommander) run() error {
	app, err := NewApp(c.env)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		c.env.Logger.Info("starting MCP server", "listen", c.listen, "path", Path)
		if err := app.Listen(c.listen); err != nil {
			errChan <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.env.Logger.Info("received signal, shutting down", "signal", sig.String())
		return app.Shutdown()
	}
}

// NewApp builds the fiber application serving the MCP tools for env.
func NewApp(env *cmdutil.IndexEnv) (*fiber.App, error) {
	server, err := mcp.NewServer(mcp.Config{
		Index:     env.Index,
		Namespace: env.Namespace,
		Logger:    env.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	handler := adaptor.HTTPHandler(server.Handler())
	app.All(Path, handler)
	app.All(Path+"/*", handler)

	return app, nil
}
