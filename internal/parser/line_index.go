package parser

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/standardbeagle/mapperlink/internal/types"
)

// LineIndex converts byte offsets into editor positions.
//
// It is always built over the ORIGINAL text. Sanitized text shares byte
// offsets with it, so offsets found by matching sanitized text can be
// translated here and produce UTF-16 columns that count the real characters.
type LineIndex struct {
	text   string
	starts []int // byte offset of the first byte of each line
}

// NewLineIndex records the start offset of every line
func NewLineIndex(text string) *LineIndex {
	estimated := len(text)/60 + 1
	if estimated > 4096 {
		estimated = 4096
	}
	starts := make([]int, 1, estimated)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// LineCount is the number of lines, counting a trailing empty line
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// lineOf returns the zero-based line containing offset
func (li *LineIndex) lineOf(offset int) int {
	// first start strictly greater than offset, minus one
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
}

// Position converts a byte offset into a zero-based line and UTF-16 column
func (li *LineIndex) Position(offset int) types.SourcePosition {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := li.lineOf(offset)
	return types.SourcePosition{
		Line:   line,
		Column: utf16Len(li.text[li.starts[line]:offset]),
	}
}

// Line returns the text of a line without its trailing newline
func (li *LineIndex) Line(line int) (string, bool) {
	if line < 0 || line >= len(li.starts) {
		return "", false
	}
	start := li.starts[line]
	end := len(li.text)
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1
	}
	return li.text[start:end], true
}

// LineStart returns the byte offset where a line begins
func (li *LineIndex) LineStart(line int) (int, bool) {
	if line < 0 || line >= len(li.starts) {
		return 0, false
	}
	return li.starts[line], true
}

// Offset converts an editor position back into a byte offset. A column past
// the end of the line clamps to the line end.
func (li *LineIndex) Offset(pos types.SourcePosition) (int, bool) {
	lineText, ok := li.Line(pos.Line)
	if !ok || pos.Column < 0 {
		return 0, false
	}
	start := li.starts[pos.Line]
	units := 0
	for i, r := range lineText {
		if units >= pos.Column {
			return start + i, true
		}
		units += runeUnits(r)
	}
	return start + len(lineText), true
}

// utf16Len counts UTF-16 code units. Invalid bytes count as one unit each,
// matching how editors render U+FFFD.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		n += runeUnits(r)
		s = s[size:]
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
