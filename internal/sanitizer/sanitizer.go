// Package sanitizer blanks out comments, string literals and CDATA bodies so
// pattern-based extractors never match text that is not code.
//
// Output always has the same byte length as the input and keeps every '\n'
// at the same offset. Each blanked byte becomes a single space, so a
// multi-byte UTF-8 rune inside a span turns into several spaces and byte
// offsets stay interchangeable between the original and sanitized text.
// Delimiters (/* */, //, quotes, <!-- -->, <![CDATA[ ]]>) are kept.
package sanitizer

import "strings"

// Dialect selects which opaque spans are recognised
type Dialect int

const (
	DialectJava Dialect = iota
	DialectXML
)

type mode int

const (
	modeCode mode = iota
	modeBlockComment
	modeLineComment
	modeString
	modeChar
	modeTextBlock
	modeXMLComment
	modeCDATA
)

const (
	xmlCommentOpen  = "<!--"
	xmlCommentClose = "-->"
	cdataOpen       = "<![CDATA["
	cdataClose      = "]]>"
	textBlockQuote  = `"""`
)

// Java sanitizes Java source
func Java(text string) string {
	return Sanitize(text, DialectJava)
}

// XML sanitizes mapper XML
func XML(text string) string {
	return Sanitize(text, DialectXML)
}

// Sanitize runs the single-pass scanner for the given dialect.
// Unterminated spans are blanked through end of input.
func Sanitize(text string, dialect Dialect) string {
	if text == "" {
		return text
	}
	s := &scanner{src: text, out: []byte(text)}
	if dialect == DialectXML {
		s.runXML()
	} else {
		s.runJava()
	}
	return string(s.out)
}

type scanner struct {
	src  string
	out  []byte
	pos  int
	mode mode
}

// blank replaces the byte at pos with a space unless it is a newline
func (s *scanner) blank() {
	if s.out[s.pos] != '\n' {
		s.out[s.pos] = ' '
	}
	s.pos++
}

func (s *scanner) at(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

func (s *scanner) runJava() {
	n := len(s.src)
	for s.pos < n {
		c := s.src[s.pos]
		switch s.mode {
		case modeCode:
			switch {
			case c == '/' && s.pos+1 < n && s.src[s.pos+1] == '*':
				s.pos += 2
				s.mode = modeBlockComment
			case c == '/' && s.pos+1 < n && s.src[s.pos+1] == '/':
				s.pos += 2
				s.mode = modeLineComment
			case s.at(textBlockQuote):
				s.pos += len(textBlockQuote)
				s.mode = modeTextBlock
			case c == '"':
				s.pos++
				s.mode = modeString
			case c == '\'':
				s.pos++
				s.mode = modeChar
			default:
				s.pos++
			}

		case modeBlockComment:
			if c == '*' && s.pos+1 < n && s.src[s.pos+1] == '/' {
				s.pos += 2
				s.mode = modeCode
				continue
			}
			s.blank()

		case modeLineComment:
			if c == '\n' {
				s.pos++
				s.mode = modeCode
				continue
			}
			s.blank()

		case modeString, modeChar:
			quote := byte('"')
			if s.mode == modeChar {
				quote = '\''
			}
			switch {
			case c == '\n':
				// Literals cannot span lines; recover in code mode
				s.pos++
				s.mode = modeCode
			case c == quote:
				s.pos++
				s.mode = modeCode
			case c == '\\' && s.pos+1 < n && s.src[s.pos+1] != '\n':
				s.blank()
				s.blank()
			default:
				s.blank()
			}

		case modeTextBlock:
			switch {
			case s.at(textBlockQuote):
				s.pos += len(textBlockQuote)
				s.mode = modeCode
			case c == '\\' && s.pos+1 < n:
				s.blank()
				s.blank()
			default:
				s.blank()
			}
		}
	}
}

func (s *scanner) runXML() {
	n := len(s.src)
	for s.pos < n {
		switch s.mode {
		case modeCode:
			switch {
			case s.at(xmlCommentOpen):
				s.pos += len(xmlCommentOpen)
				s.mode = modeXMLComment
			case s.at(cdataOpen):
				s.pos += len(cdataOpen)
				s.mode = modeCDATA
			default:
				s.pos++
			}

		case modeXMLComment:
			if s.at(xmlCommentClose) {
				s.pos += len(xmlCommentClose)
				s.mode = modeCode
				continue
			}
			s.blank()

		case modeCDATA:
			if s.at(cdataClose) {
				s.pos += len(cdataClose)
				s.mode = modeCode
				continue
			}
			s.blank()
		}
	}
}
