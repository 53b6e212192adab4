// Package emulatecmder provides the emulate command, which runs an
// in-memory index emulator.
package emulatecmder

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/upvector/cmd/upvector/cmdutil"
	"github.com/papercomputeco/upvector/pkg/config"
	embeddingutils "github.com/papercomputeco/upvector/pkg/embeddings/utils"
	"github.com/papercomputeco/upvector/pkg/emulator"
	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/logger"
	"github.com/papercomputeco/upvector/pkg/mcp"
)

// mcpPath is where --mcp mounts the MCP handler.
const mcpPath = "/mcp"

type emulateCommander struct {
	listen            string
	token             string
	indexType         string
	dimension         uint
	similarity        string
	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	withMCP           bool
	requestLog        string

	viper   *viper.Viper
	logger  *slog.Logger
	logFile *os.File
}

const emulateLongDesc string = `Run an in-memory emulator of the vector index REST API.

The emulator implements upsert, query, resumable queries, fetch, delete,
range, update, info, reset and namespaces. Records live in memory and are
lost on exit. Raw data records and text queries are embedded with the
configured embedding provider: "hashing" (deterministic, no dependencies)
or "ollama".

With --mcp the MCP tools are served from the same listener under /mcp,
backed by the emulated index.

Examples:
  upvector emulate
  upvector emulate --listen :9000 --dimension 384 --similarity DOT_PRODUCT
  upvector emulate --index-type HYBRID --embedding-provider ollama --mcp
  upvector --url http://localhost:8085 --token local query --data "hello"`

const emulateShortDesc string = "Run a local index emulator"

var emulateFlags = []string{
	config.FlagEmulatorListen,
	config.FlagEmulatorToken,
	config.FlagIndexType,
	config.FlagDimension,
	config.FlagSimilarity,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

func NewEmulateCmd() *cobra.Command {
	cmder := &emulateCommander{}

	cmd := &cobra.Command{
		Use:   "emulate",
		Short: emulateShortDesc,
		Long:  emulateLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.viper, err = cmdutil.LoadViper(cmd, emulateFlags...)
			if err != nil {
				return err
			}

			cmder.listen = cmder.viper.GetString("emulator.listen")
			cmder.token = cmder.viper.GetString("emulator.token")
			cmder.indexType = cmder.viper.GetString("emulator.index_type")
			cmder.dimension = cmder.viper.GetUint("emulator.dimension")
			cmder.similarity = cmder.viper.GetString("emulator.similarity")
			cmder.embeddingProvider = cmder.viper.GetString("emulator.embedding_provider")
			cmder.embeddingTarget = cmder.viper.GetString("emulator.embedding_target")
			cmder.embeddingModel = cmder.viper.GetString("emulator.embedding_model")
			cmder.logger = cmdutil.NewLogger(cmd)
			return cmder.openRequestLog(cmd)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if cmder.logFile != nil {
				defer cmder.logFile.Close()
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagEmulatorListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmulatorToken, &cmder.token)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexType, &cmder.indexType)
	config.AddUintFlag(cmd, config.Flags, config.FlagDimension, &cmder.dimension)
	config.AddStringFlag(cmd, config.Flags, config.FlagSimilarity, &cmder.similarity)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	cmd.Flags().BoolVar(&cmder.withMCP, "mcp", false, "Also serve the MCP tools under "+mcpPath)
	cmd.Flags().StringVar(&cmder.requestLog, "request-log", "", "Also append JSON log records to this file")

	return cmd
}

func (c *emulateCommander) run() error {
	server, err := c.newServer()
	if err != nil {
		return err
	}

	// Channel to capture errors from the listener goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("emulator error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

// openRequestLog adds a JSON file sink next to the terminal logger when
// --request-log is set.
func (c *emulateCommander) openRequestLog(cmd *cobra.Command) error {
	if c.requestLog == "" {
		return nil
	}

	f, err := os.OpenFile(c.requestLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening request log: %w", err)
	}
	c.logFile = f

	debug, _ := cmd.Flags().GetBool("debug")
	source, _ := cmd.Flags().GetBool("log-source")
	c.logger = logger.Multi(c.logger, logger.New(
		logger.WithDebug(debug),
		logger.WithSource(source),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return nil
}

func (c *emulateCommander) newServer() (*emulator.Server, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProvider,
		TargetURL:    c.embeddingTarget,
		Model:        c.embeddingModel,
		Dimension:    int(c.dimension),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	model := c.embeddingModel
	if c.embeddingProvider == "" || c.embeddingProvider == embeddingutils.ProviderHashing {
		model = embeddingutils.ProviderHashing
	}

	server, err := emulator.NewServer(emulator.Config{
		ListenAddr:     c.listen,
		Token:          c.token,
		IndexType:      c.indexType,
		Dimension:      int(c.dimension),
		Similarity:     c.similarity,
		Embedder:       embedder,
		EmbeddingModel: model,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating emulator: %w", err)
	}

	if c.withMCP {
		if err := c.mountMCP(server); err != nil {
			return nil, err
		}
	}

	return server, nil
}

// mountMCP serves the MCP tools under mcpPath, talking to the emulator
// through its own listener.
func (c *emulateCommander) mountMCP(server *emulator.Server) error {
	// The transport always sends a token; an open emulator ignores it.
	token := c.token
	if token == "" {
		token = "local"
	}

	idx, err := index.New(index.Config{
		URL:   selfURL(c.listen),
		Token: token,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating index client: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Index:     idx,
		Namespace: config.Namespace(c.viper),
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server.Mount(mcpPath, mcpServer.Handler())
	c.logger.Info("serving MCP tools", "path", mcpPath)
	return nil
}

// selfURL turns a listen address into a URL for reaching it locally.
func selfURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
