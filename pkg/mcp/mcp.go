// Package mcp provides an MCP (Model Context Protocol) server exposing a
// vector index as tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/utils"
	"github.com/papercomputeco/upvector/pkg/vector"
)

// Index is the subset of *index.Index the tools use.
type Index interface {
	Query(ctx context.Context, req index.QueryRequest) ([]vector.QueryResult, error)
	Fetch(ctx context.Context, req index.FetchRequest) ([]*vector.FetchResult, error)
}

type Config struct {
	// Index serves the tool calls
	Index Index

	// Namespace is used when a tool call does not name one
	Namespace vector.Namespace

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the query and fetch tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "upvector",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Index == nil {
			return nil, errors.New("index is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        queryToolName,
			Description: queryDescription,
		}, s.handleQuery)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        fetchToolName,
			Description: fetchDescription,
		}, s.handleFetch)
	}

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) namespace(name string) vector.Namespace {
	if name == "" {
		return s.config.Namespace
	}
	return vector.NamedNamespace(name)
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
