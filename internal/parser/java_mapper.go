// Package parser holds the pattern-based extractors for MyBatis mapper
// sources: Java mapper interfaces, mapper XML documents, and mapper call
// sites in ordinary Java code.
//
// The extractors are deliberately shallow. Every exported function accepts
// the ORIGINAL file text, sanitizes it, matches against the sanitized copy,
// and converts offsets back through a LineIndex built over the original so
// that columns are real UTF-16 columns.
package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/mapperlink/internal/sanitizer"
	"github.com/standardbeagle/mapperlink/internal/types"
)

var (
	// package com.example.mapper;
	reJavaPackage = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)

	// Top-level type declaration, optionally preceded by annotations and
	// blanked block comments. Annotation arguments may nest one level.
	// Groups:
	//   1: modifier run
	//   2: "interface" | "class"
	//   3: type name
	reJavaTypeDecl = regexp.MustCompile(
		`(?m)^[ \t]*(?:@[\w.]+(?:\((?:[^()]|\([^()]*\))*\))?\s*|/\*\s*\*/\s*)*` +
			`((?:(?:public|protected|private|static|abstract|final|strictfp|sealed|non-sealed)\s+)*)` +
			`(interface|class)\s+([A-Za-z_$][\w$]*)`,
	)

	// candidate method name directly followed by '('
	reJavaCallShape = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(`)

	reJavaAbstract = regexp.MustCompile(`\babstract\b`)
)

// javaReservedWords can never be a method name
var javaReservedWords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true, "while": true,
	"true": true, "false": true, "null": true,
}

// returnTypeKeywords are the reserved words allowed right before a method name
var returnTypeKeywords = map[string]bool{
	"void": true, "boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
}

// contextualNonTypes precede a parenthesis without being a return type
var contextualNonTypes = map[string]bool{
	"record": true, "yield": true, "permits": true,
}

// ExtractPackageName returns the first package declaration
func ExtractPackageName(text string) (string, bool) {
	return extractPackageName(sanitizer.Java(text))
}

func extractPackageName(sanitized string) (string, bool) {
	m := reJavaPackage.FindStringSubmatch(sanitized)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractInterfaceName returns the name of the first interface or abstract
// class declaration. Both count as mapper-like.
func ExtractInterfaceName(text string) (string, bool) {
	return extractInterfaceName(sanitizer.Java(text))
}

func extractInterfaceName(sanitized string) (string, bool) {
	for _, m := range reJavaTypeDecl.FindAllStringSubmatch(sanitized, -1) {
		switch m[2] {
		case "interface":
			return m[3], true
		case "class":
			if reJavaAbstract.MatchString(m[1]) {
				return m[3], true
			}
		}
	}
	return "", false
}

// IsMapperInterface is the cheap rejection filter used before full parsing
func IsMapperInterface(text string) bool {
	_, ok := ExtractInterfaceName(text)
	return ok
}

// ExtractMethods returns every method declaration in source order
func ExtractMethods(text string) []types.MethodRecord {
	return extractMethods(sanitizer.Java(text), NewLineIndex(text))
}

func extractMethods(sanitized string, lines *LineIndex) []types.MethodRecord {
	var methods []types.MethodRecord
	for _, loc := range reJavaCallShape.FindAllStringSubmatchIndex(sanitized, -1) {
		nameStart, nameEnd := loc[2], loc[3]
		name := sanitized[nameStart:nameEnd]
		if javaReservedWords[name] {
			continue
		}
		if nameStart > 0 && isJavaIdentByte(sanitized[nameStart-1]) {
			// regexp matched the tail of a longer identifier
			continue
		}
		if !hasReturnTypeBefore(sanitized, nameStart) {
			continue
		}
		openParen := loc[1] - 1
		if !isDeclarationTail(sanitized, openParen) {
			continue
		}
		methods = append(methods, types.MethodRecord{
			Name:     name,
			Position: lines.Position(nameStart),
		})
	}
	return methods
}

// hasReturnTypeBefore reports whether the token preceding the method name
// can end a return type: an identifier that is not a statement keyword or
// modifier, a closing generic '>' or an array ']'.
func hasReturnTypeBefore(s string, nameStart int) bool {
	i := nameStart - 1
	for i >= 0 && isJavaSpace(s[i]) {
		i--
	}
	if i < 0 || i == nameStart-1 {
		// nothing before, or no whitespace between type and name
		return i >= 0 && endsType(s, i)
	}
	switch c := s[i]; {
	case c == '>' || c == ']':
		return endsType(s, i)
	case isJavaIdentByte(c):
		end := i + 1
		for i >= 0 && isJavaIdentByte(s[i]) {
			i--
		}
		word := s[i+1 : end]
		if i >= 0 && s[i] == '@' {
			return false
		}
		if javaReservedWords[word] {
			return returnTypeKeywords[word]
		}
		return !contextualNonTypes[word]
	default:
		return false
	}
}

// endsType reports whether the '>' or ']' at i closes a generic or array
// type. The arrow of a lambda does not.
func endsType(s string, i int) bool {
	switch s[i] {
	case ']':
		return true
	case '>':
		return i == 0 || s[i-1] != '-'
	}
	return false
}

// isDeclarationTail scans a balanced parameter list starting at openParen,
// then an optional throws clause, and requires ';' or '{' after it. The
// scan crosses line boundaries.
func isDeclarationTail(s string, openParen int) bool {
	depth := 0
	i := openParen
	for ; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';', '{', '}':
			// statement punctuation inside a parameter list means this was
			// not a declaration
			return false
		}
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return false
	}
	i = skipJavaSpace(s, i+1)
	if strings.HasPrefix(s[i:], "throws") && i+6 < len(s) && !isJavaIdentByte(s[i+6]) {
		i += len("throws")
		for i < len(s) && (isJavaIdentByte(s[i]) || isJavaSpace(s[i]) || strings.IndexByte(".,<>?[]", s[i]) >= 0) {
			i++
		}
	}
	return i < len(s) && (s[i] == ';' || s[i] == '{')
}

// GetMethodNameAtPosition returns the declared method whose name token
// covers the cursor. Both ends of the name are inclusive.
func GetMethodNameAtPosition(text string, line, column int) (string, bool) {
	lines := NewLineIndex(text)
	if line < 0 || line >= lines.LineCount() {
		return "", false
	}
	for _, m := range extractMethods(sanitizer.Java(text), lines) {
		if m.Position.Line != line {
			continue
		}
		start := m.Position.Column
		end := start + utf16Len(m.Name)
		if column >= start && column <= end {
			return m.Name, true
		}
	}
	return "", false
}

// ParseJavaMapper builds a JavaMapperDocument, or returns nil when the text
// is not a mapper interface or lacks a package or interface name.
func ParseJavaMapper(uri, text string) *types.JavaMapperDocument {
	sanitized := sanitizer.Java(text)

	interfaceName, ok := extractInterfaceName(sanitized)
	if !ok {
		return nil
	}
	packageName, ok := extractPackageName(sanitized)
	if !ok {
		return nil
	}

	methods := extractMethods(sanitized, NewLineIndex(text))
	return types.NewJavaMapperDocument(uri, packageName, interfaceName, methods)
}

func isJavaIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isJavaSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func skipJavaSpace(s string, i int) int {
	for i < len(s) && isJavaSpace(s[i]) {
		i++
	}
	return i
}
