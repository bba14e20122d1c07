package mcp

// In-process testing: CallTool invokes tool handlers directly, bypassing the
// stdio transport. Tool errors come back as the JSON error payload with
// IsError set, the way a client would see them.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	handler, ok := s.handlers()[toolName]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", errors.New("empty tool result")
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("unexpected content type %T", result.Content[0])
	}
	if result.IsError {
		return text.Text, fmt.Errorf("tool %s failed: %s", toolName, text.Text)
	}
	return text.Text, nil
}
