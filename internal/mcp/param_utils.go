package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UnknownField represents an unknown field that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the provided known field set. Field names are matched
// after normalizeFieldName, so "fqn", "FQN" and "mapper-fqn" style
// variations are not reported when aliases lists them.
func collectUnknownFields(
	data []byte,
	known map[string]struct{},
	aliases map[string]string,
) (map[string]json.RawMessage, []UnknownField, error) {
	raw := make(map[string]json.RawMessage)
	if len(data) == 0 || string(data) == "null" {
		return raw, nil, nil
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range decoded {
		name := normalizeFieldName(key)
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, ok := known[name]; !ok {
			warnings = append(warnings, decodeUnknownField(key, value))
			continue
		}
		raw[name] = value
	}

	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}

// normalizeFieldName lowercases and turns dashes into underscores
func normalizeFieldName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// decodeToolParams decodes the arguments of req into v. Fields not tagged on
// v are returned as warnings instead of failing the call.
func decodeToolParams(req *mcp.CallToolRequest, v interface{}, aliases map[string]string) ([]UnknownField, error) {
	var data json.RawMessage
	if req != nil && req.Params != nil {
		data = req.Params.Arguments
	}

	raw, warnings, err := collectUnknownFields(data, jsonFieldNames(v), aliases)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := json.Unmarshal(normalized, v); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return warnings, nil
}

// jsonFieldNames returns the json tag names of the struct v points to
func jsonFieldNames(v interface{}) map[string]struct{} {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	names := make(map[string]struct{})
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}
