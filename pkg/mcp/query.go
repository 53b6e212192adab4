package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

var (
	queryToolName    = "query"
	queryDescription = "Run a similarity search over the vector index. Give either raw text in `data`, which the index embeds, or an explicit dense `vector`. Returns the closest records with their scores, metadata and stored data."
)

const defaultQueryTopK = 5

// QueryInput represents the input arguments for the query tool.
type QueryInput struct {
	Data      string    `json:"data,omitempty" jsonschema:"text to search for; the index embeds it"`
	Vector    []float32 `json:"vector,omitempty" jsonschema:"explicit dense query vector"`
	TopK      int       `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
	Filter    string    `json:"filter,omitempty" jsonschema:"metadata filter, for example genre = 'drama' AND year > 2000"`
	Namespace string    `json:"namespace,omitempty" jsonschema:"namespace to search; empty uses the server default"`
}

// QueryMatch is a single ranked record.
type QueryMatch struct {
	ID       string          `json:"id"`
	Score    float32         `json:"score"`
	Metadata vector.Metadata `json:"metadata,omitempty"`
	Data     string          `json:"data,omitempty"`
}

// QueryOutput represents the output of the query tool.
type QueryOutput struct {
	Results []QueryMatch `json:"results"`
	Count   int          `json:"count"`
}

// handleQuery processes a query request.
func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	logger := s.config.Logger

	if (input.Data == "") == (len(input.Vector) == 0) {
		return toolError("exactly one of data or vector is required"), QueryOutput{}, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = defaultQueryTopK
	}

	logger.Debug("MCP query request",
		"data", input.Data != "",
		"top_k", topK,
		"namespace", input.Namespace,
	)

	q := payload.Query{
		Data:            input.Data,
		TopK:            topK,
		Filter:          input.Filter,
		IncludeMetadata: true,
		IncludeData:     true,
	}
	if len(input.Vector) > 0 {
		q.Vector = vector.DenseVector(input.Vector)
	}

	results, err := s.config.Index.Query(ctx, index.QueryRequest{
		Query:     q,
		Namespace: s.namespace(input.Namespace),
	})
	if err != nil {
		logger.Error("failed to query index", "error", err)
		return toolError(fmt.Sprintf("Failed to query index: %v", err)), QueryOutput{}, nil
	}

	matches := make([]QueryMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, QueryMatch{
			ID:       string(r.ID),
			Score:    r.Score,
			Metadata: r.Metadata,
			Data:     r.Data,
		})
	}

	output := QueryOutput{
		Results: matches,
		Count:   len(matches),
	}

	// Structured results are mirrored as JSON text for clients that only
	// read content blocks.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal query output", "error", err)
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), QueryOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
