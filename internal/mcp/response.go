package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/internal/types"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

// LocationResult is a lookup answer. Line and column are zero-based, the
// column in UTF-16 code units.
type LocationResult struct {
	File   string `json:"file"`
	URI    string `json:"uri"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (s *Server) locationResult(loc types.Location) *LocationResult {
	return &LocationResult{
		File:   pathutil.DisplayPath(loc.URI, s.cfg.Project.Root),
		URI:    loc.URI,
		Line:   loc.Position.Line,
		Column: loc.Position.Column,
	}
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse creates an error response with context-aware
// suggestions. Tool errors travel inside the result with IsError set, not as
// protocol errors, so the model can see them and self-correct.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if related := getRelatedOperations(operation); len(related) > 0 {
		errorData["related_operations"] = related
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions generates context-aware suggestions for common errors
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string
	errorMsg := err.Error()

	switch operation {
	case ToolFindStatement:
		if strings.Contains(errorMsg, "namespace is required") || strings.Contains(errorMsg, "id is required") {
			suggestions = append(suggestions, "Provide both fields: {\"namespace\": \"com.acme.mapper.UserMapper\", \"id\": \"findById\"}")
		}
	case ToolFindMethod:
		if strings.Contains(errorMsg, "is required") {
			suggestions = append(suggestions, "Provide both fields: {\"fqn\": \"com.acme.mapper.UserMapper\", \"name\": \"findById\"}")
		}
	case ToolFindUsages, ToolResolvePosition:
		if strings.Contains(errorMsg, "file is required") {
			suggestions = append(suggestions, "Pass a workspace-relative path, an absolute path or a file:// URI in 'file'")
		}
		var fileErr *mlerrors.FileError
		if errors.As(err, &fileErr) && fileErr.Type == mlerrors.ErrorTypeFileNotFound {
			suggestions = append(suggestions, "Relative paths are resolved against the project root")
		}
		if strings.Contains(errorMsg, "cannot tell") {
			suggestions = append(suggestions, "Set 'language' to \"java\" or \"xml\" when the file has another extension")
		}
	case ToolSuggest:
		if strings.Contains(errorMsg, "kind") {
			suggestions = append(suggestions, "Valid kinds: statement, method, namespace")
		}
	}

	// Generic suggestions based on indexing state
	if errors.Is(err, mlerrors.ErrNotReady) || strings.Contains(errorMsg, "indexing timeout") {
		suggestions = append(suggestions, "The first workspace scan has not finished; check index_stats and retry")
	}
	if strings.Contains(errorMsg, "indexing failed") {
		suggestions = append(suggestions, "Check that the project root exists and is readable, and that .mapperlink.kdl is valid")
	}

	return suggestions
}

// getOperationHelp provides helpful information about each operation
func getOperationHelp(operation string) string {
	helpMap := map[string]string{
		ToolFindStatement:   "Resolve a mapper namespace and statement id to the XML element declaring it.",
		ToolFindMethod:      "Resolve a mapper interface FQN and method name to the Java declaration.",
		ToolFindUsages:      "List every call through a mapper field in a Java file with its XML statement.",
		ToolResolvePosition: "Jump from a position in Java or mapper XML to its counterpart.",
		ToolSuggest:         "Rank indexed names by similarity to a misspelled one.",
		ToolIndexStats:      "Report index state, document counts and mapping coverage.",
	}
	return helpMap[operation]
}

// getRelatedOperations suggests related operations that might be helpful
func getRelatedOperations(operation string) []string {
	relatedMap := map[string][]string{
		ToolFindStatement:   {ToolSuggest, ToolFindMethod},
		ToolFindMethod:      {ToolSuggest, ToolFindStatement},
		ToolFindUsages:      {ToolResolvePosition, ToolFindStatement},
		ToolResolvePosition: {ToolFindUsages},
		ToolSuggest:         {ToolFindStatement, ToolFindMethod},
	}
	return relatedMap[operation]
}
