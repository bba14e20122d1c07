package types

import (
	"fmt"
)

// Common system-wide constants
const (
	// Mapper XML and interfaces are small; anything larger is generated
	// or not a mapper at all.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file

	// Default bounded fan-out for the initial workspace scan
	DefaultMaxParallelFiles = 16

	// Default debounce for file change notifications
	DefaultWatchDebounceMs = 300
)

// SourcePosition is a zero-based line/column pair. Column counts UTF-16 code
// units of the original line text, which is how editors address text.
type SourcePosition struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p SourcePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// StatementKind is the element name of a SQL-bearing mapper XML element
type StatementKind string

const (
	StatementSelect    StatementKind = "select"
	StatementInsert    StatementKind = "insert"
	StatementUpdate    StatementKind = "update"
	StatementDelete    StatementKind = "delete"
	StatementResultMap StatementKind = "resultMap"
	StatementSQL       StatementKind = "sql"
)

// IsSQLStatement reports whether the kind maps to a mapper method call.
// resultMap and sql fragments are referenced from other statements only.
func (k StatementKind) IsSQLStatement() bool {
	switch k {
	case StatementSelect, StatementInsert, StatementUpdate, StatementDelete:
		return true
	}
	return false
}

// StatementRecord is one statement declared in a mapper XML document
type StatementRecord struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     StatementKind  `json:"kind" yaml:"kind"`
	Position SourcePosition `json:"position" yaml:"position"`
}

// MethodRecord is one method declared in a Java mapper interface
type MethodRecord struct {
	Name     string         `json:"name" yaml:"name"`
	Position SourcePosition `json:"position" yaml:"position"`
}

// Location is the answer to a cross-reference lookup
type Location struct {
	URI      string         `json:"uri" yaml:"uri"`
	Position SourcePosition `json:"position" yaml:"position"`
}

// MapperFieldRecord binds a variable name to a known mapper type.
// Recomputed on every usage extraction, never stored in the index.
type MapperFieldRecord struct {
	FieldName       string `json:"field_name" yaml:"field_name"`
	MapperTypeName  string `json:"mapper_type" yaml:"mapper_type"`
	MapperFQN       string `json:"mapper_fqn" yaml:"mapper_fqn"`
	DeclarationLine int    `json:"line" yaml:"line"`
}

// MapperCallRecord is a call site `field.method(` through a mapper binding
type MapperCallRecord struct {
	FieldName  string         `json:"field_name" yaml:"field_name"`
	MethodName string         `json:"method_name" yaml:"method_name"`
	Position   SourcePosition `json:"position" yaml:"position"`
	MapperFQN  string         `json:"mapper_fqn" yaml:"mapper_fqn"`
}

// IndexState is the lifecycle state of the mapper index
type IndexState int32

const (
	StateUninitialized IndexState = iota
	StateInitializing
	StateReady
)

func (s IndexState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("IndexState(%d)", int32(s))
	}
}

// MarshalText renders the state by name in JSON and YAML output
func (s IndexState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *IndexState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninitialized":
		*s = StateUninitialized
	case "initializing":
		*s = StateInitializing
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown index state %q", text)
	}
	return nil
}
