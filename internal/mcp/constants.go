package mcp

// Tool names
const (
	ToolInfo            = "info"
	ToolFindStatement   = "find_statement"
	ToolFindMethod      = "find_method"
	ToolFindUsages      = "find_usages"
	ToolResolvePosition = "resolve_position"
	ToolSuggest         = "suggest"
	ToolIndexStats      = "index_stats"
)

// Default values for lookups
const (
	// DefaultSuggestionMax is how many near-misses accompany a lookup miss
	DefaultSuggestionMax = 5

	// MaxSuggestions caps the suggest tool
	MaxSuggestions = 50

	// DefaultIndexingTimeout is the default timeout for waiting on indexing completion
	DefaultIndexingTimeout = 120 // seconds
	// Can be configured via config.Performance.IndexingTimeoutSec.
)

// Suggestion kinds accepted by the suggest tool
const (
	SuggestKindStatement = "statement"
	SuggestKindMethod    = "method"
	SuggestKindNamespace = "namespace"
)
