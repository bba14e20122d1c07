package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/mapperlink/internal/sanitizer"
	"github.com/standardbeagle/mapperlink/internal/types"
)

var (
	reXMLDoctype = regexp.MustCompile(`(?i)<!DOCTYPE\s+mapper[^>]*mybatis`)

	// <mapper namespace="com.example.UserMapper">
	reXMLMapperNamespace = regexp.MustCompile(`<mapper\s+[^>]*namespace\s*=\s*["']([^"']+)["']`)

	// opening statement tag; the name must end at whitespace, '/' or '>'
	reXMLStatementOpen = regexp.MustCompile(`(?i)<(select|insert|update|delete|resultMap|sql)(?:[\s/>]|$)`)

	// id attribute not preceded by a name character (rejects resultMapId=, etc.)
	reXMLIDAttr = regexp.MustCompile(`(?:^|[^\w.:-])id\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// IsMyBatisXML reports whether the document carries the mapper DOCTYPE or a
// namespaced <mapper> element.
func IsMyBatisXML(text string) bool {
	return isMyBatisXML(sanitizer.XML(text))
}

func isMyBatisXML(sanitized string) bool {
	return reXMLDoctype.MatchString(sanitized) || reXMLMapperNamespace.MatchString(sanitized)
}

// ExtractNamespace returns the namespace attribute of the mapper element
func ExtractNamespace(text string) (string, bool) {
	return extractNamespace(sanitizer.XML(text))
}

func extractNamespace(sanitized string) (string, bool) {
	m := reXMLMapperNamespace.FindStringSubmatch(sanitized)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractStatements returns statement declarations in document order.
// Opening tags may span several lines and the id attribute may appear
// anywhere among the attributes.
func ExtractStatements(text string) []types.StatementRecord {
	return extractStatements(sanitizer.XML(text), NewLineIndex(text))
}

func extractStatements(sanitized string, lines *LineIndex) []types.StatementRecord {
	var statements []types.StatementRecord
	for _, loc := range reXMLStatementOpen.FindAllStringSubmatchIndex(sanitized, -1) {
		tagStart := loc[0]
		kind := normalizeKind(sanitized[loc[2]:loc[3]])

		body := openTagBody(sanitized, loc[3])
		id, ok := findIDAttr(body)
		if !ok {
			continue
		}
		statements = append(statements, types.StatementRecord{
			ID:       id,
			Kind:     kind,
			Position: lines.Position(tagStart),
		})
	}
	return statements
}

// openTagBody returns the attribute text from start up to the '>' closing
// the opening tag. Quoted values may contain '>'.
func openTagBody(s string, start int) string {
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return s[start:i]
		case c == '<':
			// unterminated tag; the next element starts here
			return s[start:i]
		}
	}
	return s[start:]
}

func findIDAttr(body string) (string, bool) {
	m := reXMLIDAttr.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	id := m[1]
	if id == "" {
		id = m[2]
	}
	if id == "" {
		return "", false
	}
	return id, true
}

func normalizeKind(tag string) types.StatementKind {
	lower := strings.ToLower(tag)
	if lower == "resultmap" {
		return types.StatementResultMap
	}
	return types.StatementKind(lower)
}

// GetIDAtPosition returns the id attribute value whose value span on the
// given line contains the cursor. Both boundaries adjacent to the quotes
// count as inside.
func GetIDAtPosition(text string, line, column int) (string, bool) {
	lines := NewLineIndex(text)
	start, ok := lines.LineStart(line)
	if !ok {
		return "", false
	}
	original, _ := lines.Line(line)
	sanitized := sanitizer.XML(text)[start : start+len(original)]

	for _, loc := range reXMLIDAttr.FindAllStringSubmatchIndex(sanitized, -1) {
		valueStart, valueEnd := loc[2], loc[3]
		if valueStart < 0 {
			valueStart, valueEnd = loc[4], loc[5]
		}
		if valueStart == valueEnd {
			continue
		}
		startCol := utf16Len(original[:valueStart])
		endCol := startCol + utf16Len(original[valueStart:valueEnd])
		if column >= startCol && column <= endCol {
			return original[valueStart:valueEnd], true
		}
	}
	return "", false
}

// ParseXMLMapper builds an XMLMapperDocument, or returns nil when the text
// is not mapper XML or declares no namespace.
func ParseXMLMapper(uri, text string) *types.XMLMapperDocument {
	sanitized := sanitizer.XML(text)
	if !isMyBatisXML(sanitized) {
		return nil
	}
	namespace, ok := extractNamespace(sanitized)
	if !ok {
		return nil
	}
	statements := extractStatements(sanitized, NewLineIndex(text))
	return types.NewXMLMapperDocument(uri, namespace, statements)
}
