package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sfbilling/sfbilling/internal/service/tool"
	"github.com/sfbilling/sfbilling/pkg/version"
)

// NewMCPServer creates an MCP server exposing every tool of the dispatcher.
// Each MCP tool call goes through the dispatcher, and its ToolResult is returned
// as JSON text content. The call is flagged as an error when the result is not successful.
func NewMCPServer(d *tool.Dispatcher) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		ServiceName,
		version.GetVersion(),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, def := range d.ListTools() {
		schema, err := tool.JSONSchema(def.InputSchema, true)
		if err != nil {
			return nil, fmt.Errorf("failed to build input schema for tool %s: %w", def.Name, err)
		}
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input schema for tool %s: %w", def.Name, err)
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(def.Name, def.Description, raw),
			mcpToolHandler(d, def.Name),
		)
	}
	return s, nil
}

func mcpToolHandler(d *tool.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := d.ExecuteTool(ctx, name, request.GetArguments())

		body, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result of tool %s: %v", name, err)), nil
		}
		if !result.Success {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
