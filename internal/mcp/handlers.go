package mcp

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/mapperlink/internal/indexing"
	"github.com/standardbeagle/mapperlink/internal/types"
	"github.com/standardbeagle/mapperlink/internal/version"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

// LookupResponse answers find_statement and find_method
type LookupResponse struct {
	Found                bool            `json:"found"`
	Location             *LocationResult `json:"location,omitempty"`
	Suggestions          []string        `json:"suggestions,omitempty"`
	NamespaceSuggestions []string        `json:"namespace_suggestions,omitempty"`
	Warnings             []UnknownField  `json:"warnings,omitempty"`
}

// UsageResult is one mapper call site
type UsageResult struct {
	Field     string          `json:"field"`
	Method    string          `json:"method"`
	MapperFQN string          `json:"mapper_fqn"`
	Line      int             `json:"line"`
	Column    int             `json:"column"`
	Statement *LocationResult `json:"statement,omitempty"`
}

// UsagesResponse answers find_usages
type UsagesResponse struct {
	File       string         `json:"file"`
	Usages     []UsageResult  `json:"usages"`
	Resolved   int            `json:"resolved"`
	Unresolved int            `json:"unresolved"`
	Warnings   []UnknownField `json:"warnings,omitempty"`
}

// PositionResponse answers resolve_position
type PositionResponse struct {
	Found    bool            `json:"found"`
	Language string          `json:"language"`
	Target   *LocationResult `json:"target,omitempty"`
	Warnings []UnknownField  `json:"warnings,omitempty"`
}

// SuggestResponse answers suggest
type SuggestResponse struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Suggestions []string       `json:"suggestions"`
	Warnings    []UnknownField `json:"warnings,omitempty"`
}

// IndexStatsResponse answers index_stats
type IndexStatsResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Root      string                 `json:"root"`
	Stats     indexing.IndexStats    `json:"stats"`
	Coverage  map[string]interface{} `json:"coverage,omitempty"`
	Issues    []string               `json:"issues,omitempty"`
	Warnings  []UnknownField         `json:"warnings,omitempty"`
}

// handleInfo describes the tools
func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if _, err := decodeToolParams(req, &params, nil); err != nil {
		return createSmartErrorResponse(ToolInfo, err, map[string]interface{}{
			"help": "Use: {\"tool\": \"find_statement\"} or {\"tool\": \"version\"}",
		})
	}

	tool := strings.ToLower(strings.TrimSpace(params.Tool))
	switch tool {
	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":    "mapperlink-mcp-server",
			"server_version": version.FullInfo(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		})

	case ToolFindStatement:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolFindStatement,
			"description": getOperationHelp(ToolFindStatement),
			"parameters": map[string]string{
				"namespace": "REQUIRED: mapper namespace (the Java interface FQN)",
				"id":        "REQUIRED: statement id",
			},
			"example": map[string]string{"namespace": "com.acme.mapper.UserMapper", "id": "findById"},
			"notes": []string{
				"When a namespace declares an id twice the last declaration wins",
				"A miss returns similar ids in 'suggestions'",
			},
		})

	case ToolFindMethod:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolFindMethod,
			"description": getOperationHelp(ToolFindMethod),
			"parameters": map[string]string{
				"fqn":  "REQUIRED: fully qualified interface name",
				"name": "REQUIRED: method name",
			},
			"example": map[string]string{"fqn": "com.acme.mapper.UserMapper", "name": "findById"},
			"notes":   []string{"Overloaded methods resolve to the first declaration"},
		})

	case ToolFindUsages:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolFindUsages,
			"description": getOperationHelp(ToolFindUsages),
			"parameters": map[string]string{
				"file": "REQUIRED: Java file (relative path, absolute path or file:// URI)",
				"text": "Optional content overriding the file on disk",
			},
			"notes": []string{
				"Only fields, parameters and locals typed with an indexed mapper interface are recognized",
				"A usage without 'statement' calls a method that has no XML statement",
			},
		})

	case ToolResolvePosition:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolResolvePosition,
			"description": getOperationHelp(ToolResolvePosition),
			"parameters": map[string]string{
				"file":     "REQUIRED: Java or mapper XML file",
				"line":     "REQUIRED: zero-based line",
				"column":   "REQUIRED: zero-based column in UTF-16 code units",
				"text":     "Optional content overriding the file on disk",
				"language": "Optional 'java' or 'xml', inferred from the extension",
			},
		})

	case ToolSuggest:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolSuggest,
			"description": getOperationHelp(ToolSuggest),
			"parameters": map[string]string{
				"kind":      "REQUIRED: statement, method or namespace",
				"name":      "REQUIRED: name to match",
				"namespace": "Namespace or FQN for statement and method",
				"max":       fmt.Sprintf("Maximum results (default %d)", DefaultSuggestionMax),
			},
		})

	case ToolIndexStats:
		return createJSONResponse(map[string]interface{}{
			"name":        ToolIndexStats,
			"description": getOperationHelp(ToolIndexStats),
			"parameters":  map[string]string{"mode": "summary (default) or coverage"},
		})

	case "":
		return createJSONResponse(map[string]interface{}{
			"server": "mapperlink - MyBatis mapper cross-reference index",
			"tools": map[string]string{
				ToolFindStatement:   getOperationHelp(ToolFindStatement),
				ToolFindMethod:      getOperationHelp(ToolFindMethod),
				ToolFindUsages:      getOperationHelp(ToolFindUsages),
				ToolResolvePosition: getOperationHelp(ToolResolvePosition),
				ToolSuggest:         getOperationHelp(ToolSuggest),
				ToolIndexStats:      getOperationHelp(ToolIndexStats),
			},
			"positions": "All lines and columns are zero-based; columns count UTF-16 code units",
		})
	}

	return createErrorResponse(ToolInfo, fmt.Errorf("unknown tool: %s", params.Tool))
}

func (s *Server) handleFindStatement(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindStatement, func() (*mcp.CallToolResult, error) {
		var params StatementParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		namespace, id := strings.TrimSpace(params.Namespace), strings.TrimSpace(params.ID)
		if namespace == "" {
			return nil, errors.New("namespace is required")
		}
		if id == "" {
			return nil, errors.New("id is required")
		}
		if err := s.checkIndexAvailability(ctx); err != nil {
			return nil, err
		}

		resp := &LookupResponse{Warnings: warnings}
		if loc, ok := s.index.FindStatement(namespace, id); ok {
			resp.Found = true
			resp.Location = s.locationResult(loc)
		} else if _, known := s.index.XMLMapperByNamespace(namespace); known {
			resp.Suggestions = s.index.SuggestStatementIDs(namespace, id, DefaultSuggestionMax)
		} else {
			resp.NamespaceSuggestions = s.index.SuggestNamespaces(namespace, DefaultSuggestionMax)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleFindMethod(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindMethod, func() (*mcp.CallToolResult, error) {
		var params MethodParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		fqn, name := strings.TrimSpace(params.FQN), strings.TrimSpace(params.Name)
		if fqn == "" {
			return nil, errors.New("fqn is required")
		}
		if name == "" {
			return nil, errors.New("name is required")
		}
		if err := s.checkIndexAvailability(ctx); err != nil {
			return nil, err
		}

		resp := &LookupResponse{Warnings: warnings}
		if loc, ok := s.index.FindMethod(fqn, name); ok {
			resp.Found = true
			resp.Location = s.locationResult(loc)
		} else if _, known := s.index.JavaMapperByFQN(fqn); known {
			resp.Suggestions = s.index.SuggestMethodNames(fqn, name, DefaultSuggestionMax)
		} else {
			resp.NamespaceSuggestions = s.index.SuggestNamespaces(fqn, DefaultSuggestionMax)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleFindUsages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindUsages, func() (*mcp.CallToolResult, error) {
		var params UsagesParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		uri, err := s.resolveFileURI(params.File)
		if err != nil {
			return nil, err
		}
		if err := s.checkIndexAvailability(ctx); err != nil {
			return nil, err
		}

		var usages []indexing.UsageResolution
		if params.Text != "" {
			usages = s.index.ResolveUsages(params.Text)
		} else if usages, err = s.index.FindUsages(ctx, uri); err != nil {
			return nil, err
		}

		resp := &UsagesResponse{
			File:     pathutil.DisplayPath(uri, s.cfg.Project.Root),
			Usages:   make([]UsageResult, 0, len(usages)),
			Warnings: warnings,
		}
		for _, u := range usages {
			result := UsageResult{
				Field:     u.Call.FieldName,
				Method:    u.Call.MethodName,
				MapperFQN: u.Call.MapperFQN,
				Line:      u.Call.Position.Line,
				Column:    u.Call.Position.Column,
			}
			if u.Statement != nil {
				result.Statement = s.locationResult(*u.Statement)
				resp.Resolved++
			} else {
				resp.Unresolved++
			}
			resp.Usages = append(resp.Usages, result)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleResolvePosition(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolResolvePosition, func() (*mcp.CallToolResult, error) {
		var params PositionParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		uri, err := s.resolveFileURI(params.File)
		if err != nil {
			return nil, err
		}
		if params.Line < 0 || params.Column < 0 {
			return nil, errors.New("line and column must be zero or greater")
		}
		language, err := languageOf(uri, params.Language)
		if err != nil {
			return nil, err
		}
		if err := s.checkIndexAvailability(ctx); err != nil {
			return nil, err
		}

		text := params.Text
		if text == "" {
			if text, err = s.reader.ReadText(ctx, uri); err != nil {
				return nil, err
			}
		}

		var (
			loc types.Location
			ok  bool
		)
		if language == "java" {
			loc, ok = s.index.ResolveJavaCursor(text, params.Line, params.Column)
		} else {
			loc, ok = s.index.ResolveXMLCursor(text, params.Line, params.Column)
		}

		resp := &PositionResponse{Found: ok, Language: language, Warnings: warnings}
		if ok {
			resp.Target = s.locationResult(loc)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleSuggest(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolSuggest, func() (*mcp.CallToolResult, error) {
		var params SuggestParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		kind := strings.ToLower(strings.TrimSpace(params.Kind))
		name := strings.TrimSpace(params.Name)
		if name == "" {
			return nil, errors.New("name is required")
		}

		limit := params.Max
		if limit <= 0 {
			limit = DefaultSuggestionMax
		}
		if limit > MaxSuggestions {
			limit = MaxSuggestions
		}

		switch kind {
		case SuggestKindStatement, SuggestKindMethod:
			if strings.TrimSpace(params.Namespace) == "" {
				return nil, fmt.Errorf("namespace is required for kind %q", kind)
			}
		case SuggestKindNamespace:
		default:
			return nil, fmt.Errorf("unsupported kind %q", params.Kind)
		}
		if err := s.checkIndexAvailability(ctx); err != nil {
			return nil, err
		}

		var suggestions []string
		switch kind {
		case SuggestKindStatement:
			suggestions = s.index.SuggestStatementIDs(strings.TrimSpace(params.Namespace), name, limit)
		case SuggestKindMethod:
			suggestions = s.index.SuggestMethodNames(strings.TrimSpace(params.Namespace), name, limit)
		case SuggestKindNamespace:
			suggestions = s.index.SuggestNamespaces(name, limit)
		}
		if suggestions == nil {
			suggestions = []string{}
		}
		return createJSONResponse(&SuggestResponse{
			Kind:        kind,
			Name:        name,
			Suggestions: suggestions,
			Warnings:    warnings,
		})
	})
}

// handleIndexStats reports state without waiting for the scan
func (s *Server) handleIndexStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolIndexStats, func() (*mcp.CallToolResult, error) {
		var params IndexStatsParams
		warnings, err := decodeToolParams(req, &params, paramAliases)
		if err != nil {
			return nil, err
		}
		mode := strings.ToLower(strings.TrimSpace(params.Mode))
		if mode == "" {
			mode = "summary"
		}
		if mode != "summary" && mode != "coverage" {
			return nil, fmt.Errorf("unsupported mode %q, use summary or coverage", params.Mode)
		}

		stats := s.index.Stats()
		resp := &IndexStatsResponse{
			Status:    stats.State.String(),
			Timestamp: time.Now(),
			Root:      s.cfg.Project.Root,
			Stats:     stats,
			Warnings:  warnings,
		}
		if err := s.lastIndexError(); err != nil && stats.State != types.StateReady {
			resp.Status = "failed"
			resp.Issues = append(resp.Issues, err.Error())
		}
		if err := s.index.LastScanError(); err != nil {
			resp.Issues = append(resp.Issues, err.Error())
		}
		if stats.State == types.StateReady && stats.XMLDocuments == 0 && stats.JavaDocuments == 0 {
			resp.Issues = append(resp.Issues, "no mapper files matched the configured globs")
		}
		if mode == "coverage" && s.index.IsReady() {
			resp.Coverage = s.index.Coverage().FormatAsJSON()
		}
		return createJSONResponse(resp)
	})
}

// resolveFileURI accepts a file:// URI, an absolute path or a path relative
// to the project root
func (s *Server) resolveFileURI(file string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", errors.New("file is required")
	}
	if strings.Contains(file, "://") {
		if _, err := pathutil.FromURI(file); err != nil {
			return "", err
		}
		return file, nil
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(s.cfg.Project.Root, filepath.FromSlash(file))
	}
	return pathutil.ToURI(file), nil
}

// languageOf picks java or xml from an explicit override or the extension
func languageOf(uri, override string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "java":
		return "java", nil
	case "xml":
		return "xml", nil
	case "":
	default:
		return "", fmt.Errorf("unsupported language %q", override)
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".java":
		return "java", nil
	case ".xml":
		return "xml", nil
	}
	return "", fmt.Errorf("cannot tell whether %s is java or xml", uri)
}
