package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/mapperlink/internal/types"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func parseFormat(format string) (string, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q (want text, json or yaml)", format)
}

// writeStructured encodes v as JSON or YAML. Structured output keeps the
// zero-based positions of the index.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// formatLocation renders file:line:column with 1-based line and column,
// the way compilers and grep report positions
func formatLocation(loc types.Location, root string) string {
	return fmt.Sprintf("%s:%d:%d", pathutil.DisplayPath(loc.URI, root), loc.Position.Line+1, loc.Position.Column+1)
}

// lookupResult is the structured answer of statement and method
type lookupResult struct {
	Found       bool            `json:"found" yaml:"found"`
	Location    *types.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}
