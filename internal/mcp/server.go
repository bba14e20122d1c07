package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/mapperlink/internal/config"
	mldebug "github.com/standardbeagle/mapperlink/internal/debug"
	"github.com/standardbeagle/mapperlink/internal/indexing"
	"github.com/standardbeagle/mapperlink/internal/version"
)

// StatementParams for find_statement
type StatementParams struct {
	Namespace string `json:"namespace"`
	ID        string `json:"id"`
}

// MethodParams for find_method
type MethodParams struct {
	FQN  string `json:"fqn"`
	Name string `json:"name"`
}

// UsagesParams for find_usages. Text, when set, replaces the file content
// so unsaved editor buffers can be analyzed.
type UsagesParams struct {
	File string `json:"file"`
	Text string `json:"text,omitempty"`
}

// PositionParams for resolve_position. Line and column are zero-based.
type PositionParams struct {
	File     string `json:"file"`
	Text     string `json:"text,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Language string `json:"language,omitempty"` // "java" or "xml"; inferred from the extension
}

// SuggestParams for suggest
type SuggestParams struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Max       int    `json:"max,omitempty"`
}

// IndexStatsParams for index_stats
type IndexStatsParams struct {
	// Mode: "summary" or "coverage"
	Mode string `json:"mode,omitempty"`
}

// InfoParams for info
type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

// Field name aliases accepted from clients
var paramAliases = map[string]string{
	"statement_id": "id",
	"statement":    "id",
	"mapper":       "namespace",
	"mapper_fqn":   "fqn",
	"interface":    "fqn",
	"method":       "name",
	"method_name":  "name",
	"path":         "file",
	"uri":          "file",
	"col":          "column",
	"character":    "column",
	"max_results":  "max",
	"limit":        "max",
	"lang":         "language",
}

type Server struct {
	index            *indexing.MapperIndex
	ownsIndex        bool // True if server created the index and should dispose it
	cfg              *config.Config
	reader           indexing.ContentReader // resolve_position reads files the index does not hold
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger // CRITICAL: File-based logging only (no stdout/stderr)

	// Lifetime of background indexing started by the server
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
	indexErrMu sync.RWMutex
	indexErr   error
}

// NewServer creates an MCP server over a mapper index. A nil index creates
// one that the server owns and disposes on Shutdown.
func NewServer(index *indexing.MapperIndex, cfg *config.Config) (*Server, error) {
	return newServer(index, cfg, NewDiagnosticLogger())
}

func newServer(index *indexing.MapperIndex, cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	ownsIndex := false
	if index == nil {
		logger.Printf("Creating new MapperIndex")
		index = indexing.NewMapperIndex(cfg)
		ownsIndex = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		index:            index,
		ownsIndex:        ownsIndex,
		cfg:              cfg,
		reader:           indexing.NewFileReader(cfg.Index.MaxFileSize),
		diagnosticLogger: logger,
		ctx:              ctx,
		cancel:           cancel,
	}
	logger.Printf("Project root configured: %s", cfg.Project.Root)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "mapperlink-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	s.startAutoIndexing()
	return s, nil
}

// startAutoIndexing warms the index in the background when the root looks
// like a project. Queries initialize lazily either way.
func (s *Server) startAutoIndexing() {
	rootPath := s.cfg.Project.Root
	if rootPath == "" {
		s.diagnosticLogger.Printf("Empty root path, skipping auto-indexing")
		return
	}

	isProjectRoot, marker := indexing.NewProjectInitializer().DetectProjectRoot(rootPath)
	if !isProjectRoot {
		s.diagnosticLogger.Printf("Not in a detectable project root (path: %s), skipping auto-indexing", rootPath)
		return
	}
	s.diagnosticLogger.Printf("Detected project root at %s (found %s), starting auto-indexing", rootPath, marker)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		err := s.index.EnsureInitialized(s.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.indexErrMu.Lock()
			s.indexErr = err
			s.indexErrMu.Unlock()
			s.diagnosticLogger.Errorf("auto-indexing failed: %v", err)
			return
		}
		stats := s.index.Stats()
		s.diagnosticLogger.Printf("auto-indexing finished in %v: %d xml, %d java mappers",
			time.Since(start), stats.XMLDocuments, stats.JavaDocuments)
	}()
}

// checkIndexAvailability initializes the index if needed, waiting up to the
// configured timeout for the first scan.
func (s *Server) checkIndexAvailability(ctx context.Context) error {
	if s.index.IsReady() {
		return nil
	}

	timeoutSeconds := DefaultIndexingTimeout
	if s.cfg.Performance.IndexingTimeoutSec > 0 {
		timeoutSeconds = s.cfg.Performance.IndexingTimeoutSec
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	s.diagnosticLogger.Printf("Index not ready, waiting up to %v", timeout)
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.index.EnsureInitialized(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("indexing timeout after %v - the workspace scan is taking longer than expected, check index_stats for progress", timeout)
		}
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

// lastIndexError is the failure of background indexing, if any
func (s *Server) lastIndexError() error {
	s.indexErrMu.RLock()
	defer s.indexErrMu.RUnlock()
	return s.indexErr
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolInfo,
		Description: "Get help and examples for any tool. Use 'info' for an overview or 'info <tool>' for specifics. Use 'info version' for server version info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to get information about (e.g., 'find_statement', 'version')",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolFindStatement,
		Description: "Find the MyBatis XML statement (select/insert/update/delete/resultMap/sql) for a mapper namespace and id. Suggests near-miss ids when not found.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"namespace": {
					Type:        "string",
					Description: "Mapper namespace, the fully qualified name of the Java interface",
				},
				"id": {
					Type:        "string",
					Description: "Statement id, usually the Java method name",
				},
			},
			Required: []string{"namespace", "id"},
		},
	}, s.handleFindStatement)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolFindMethod,
		Description: "Find the Java mapper interface method for a fully qualified interface name and method name. Overloads resolve to the first declaration.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"fqn": {
					Type:        "string",
					Description: "Fully qualified mapper interface name",
				},
				"name": {
					Type:        "string",
					Description: "Method name",
				},
			},
			Required: []string{"fqn", "name"},
		},
	}, s.handleFindMethod)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolFindUsages,
		Description: "List mapper calls (field.method(...) through an injected mapper) in a Java file, each resolved to its XML statement.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Java file: workspace-relative path, absolute path or file:// URI",
				},
				"text": {
					Type:        "string",
					Description: "Optional file content to analyze instead of reading the file",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleFindUsages)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolResolvePosition,
		Description: "Go to the counterpart of a position: a mapper method or mapper call in Java resolves to its XML statement, a statement id in XML resolves to its Java method. Positions are zero-based, columns in UTF-16 units.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Java or mapper XML file: workspace-relative path, absolute path or file:// URI",
				},
				"line": {
					Type:        "integer",
					Description: "Zero-based line",
				},
				"column": {
					Type:        "integer",
					Description: "Zero-based column",
				},
				"text": {
					Type:        "string",
					Description: "Optional file content to use instead of reading the file",
				},
				"language": {
					Type:        "string",
					Enum:        []any{"java", "xml"},
					Description: "Override language detection by extension",
				},
			},
			Required: []string{"file", "line", "column"},
		},
	}, s.handleResolvePosition)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolSuggest,
		Description: "Rank indexed statement ids, method names or namespaces by similarity to a possibly misspelled name.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind": {
					Type:        "string",
					Enum:        []any{SuggestKindStatement, SuggestKindMethod, SuggestKindNamespace},
					Description: "What to suggest",
				},
				"namespace": {
					Type:        "string",
					Description: "Namespace or interface FQN, required for statement and method",
				},
				"name": {
					Type:        "string",
					Description: "Name to match",
				},
				"max": {
					Type:        "integer",
					Description: fmt.Sprintf("Maximum suggestions (default %d, max %d)", DefaultSuggestionMax, MaxSuggestions),
				},
			},
			Required: []string{"kind", "name"},
		},
	}, s.handleSuggest)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolIndexStats,
		Description: "Index state, document and statement counts, last scan and watch status. Mode 'coverage' adds per-namespace mapping coverage.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"mode": {
					Type:        "string",
					Enum:        []any{"summary", "coverage"},
					Description: "Level of detail (default summary)",
				},
			},
		},
	}, s.handleIndexStats)
}

// recoverFromPanic provides panic recovery middleware for MCP operations
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Printf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	result, err = handler()
	mldebug.LogMCP("%s finished in %v (err=%v)\n", operation, time.Since(start), err)
	if err != nil {
		s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
		return createSmartErrorResponse(operation, err, map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"index":     s.index.State().String(),
		})
	}
	return result, nil
}

// Start serves MCP over stdio until ctx is cancelled or the client leaves
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport (pid %d)", os.Getpid())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops background indexing and disposes an owned index
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")

	var err error
	s.closeOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}

		if s.ownsIndex {
			if disposeErr := s.index.Dispose(); disposeErr != nil {
				s.diagnosticLogger.Printf("Error disposing index: %v", disposeErr)
				if err == nil {
					err = disposeErr
				}
			}
		}
		s.diagnosticLogger.Printf("MCP server shutdown complete")
		s.diagnosticLogger.Close()
	})
	return err
}

// Close releases resources held by the Server
func (s *Server) Close() error {
	return s.Shutdown(context.Background())
}

// DiagnosticLog returns the server's file logger
func (s *Server) DiagnosticLog() *DiagnosticLogger {
	return s.diagnosticLogger
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if handler, ok := s.handlers()[toolName]; ok {
		return handler
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
	}
}

func (s *Server) handlers() map[string]mcp.ToolHandler {
	return map[string]mcp.ToolHandler{
		ToolInfo:            s.handleInfo,
		ToolFindStatement:   s.handleFindStatement,
		ToolFindMethod:      s.handleFindMethod,
		ToolFindUsages:      s.handleFindUsages,
		ToolResolvePosition: s.handleResolvePosition,
		ToolSuggest:         s.handleSuggest,
		ToolIndexStats:      s.handleIndexStats,
	}
}
