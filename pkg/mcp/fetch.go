package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
)

var (
	fetchToolName    = "fetch"
	fetchDescription = "Fetch stored records from the vector index by id or by id prefix. Missing ids are reported in `missing`."
)

// FetchInput represents the input arguments for the fetch tool.
type FetchInput struct {
	IDs       []string `json:"ids,omitempty" jsonschema:"record ids to fetch"`
	Prefix    string   `json:"prefix,omitempty" jsonschema:"fetch every record whose id starts with this prefix"`
	Namespace string   `json:"namespace,omitempty" jsonschema:"namespace to read; empty uses the server default"`
}

// FetchedRecord is one stored record.
type FetchedRecord struct {
	ID       string          `json:"id"`
	Metadata vector.Metadata `json:"metadata,omitempty"`
	Data     string          `json:"data,omitempty"`
}

// FetchOutput represents the output of the fetch tool.
type FetchOutput struct {
	Records []FetchedRecord `json:"records"`
	Missing []string        `json:"missing,omitempty"`
}

func (s *Server) handleFetch(ctx context.Context, _ *mcp.CallToolRequest, input FetchInput) (*mcp.CallToolResult, FetchOutput, error) {
	if (len(input.IDs) == 0) == (input.Prefix == "") {
		return toolError("exactly one of ids or prefix is required"), FetchOutput{}, nil
	}

	ids := make([]vector.ID, len(input.IDs))
	for i, id := range input.IDs {
		ids[i] = vector.ID(id)
	}

	results, err := s.config.Index.Fetch(ctx, index.FetchRequest{
		IDs:             ids,
		Prefix:          input.Prefix,
		IncludeMetadata: true,
		IncludeData:     true,
		Namespace:       s.namespace(input.Namespace),
	})
	if err != nil {
		s.config.Logger.Error("failed to fetch records", "error", err)
		return toolError(fmt.Sprintf("Failed to fetch records: %v", err)), FetchOutput{}, nil
	}

	output := FetchOutput{Records: []FetchedRecord{}}
	for i, r := range results {
		if r == nil {
			output.Missing = append(output.Missing, input.IDs[i])
			continue
		}
		output.Records = append(output.Records, FetchedRecord{
			ID:       string(r.ID),
			Metadata: r.Metadata,
			Data:     r.Data,
		})
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), FetchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
