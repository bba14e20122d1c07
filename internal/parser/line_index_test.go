package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mapperlink/internal/types"
)

func TestLineIndex_Position(t *testing.T) {
	text := "ab\ncd\n\nef"
	li := NewLineIndex(text)

	assert.Equal(t, 4, li.LineCount())
	assert.Equal(t, types.SourcePosition{Line: 0, Column: 0}, li.Position(0))
	assert.Equal(t, types.SourcePosition{Line: 0, Column: 2}, li.Position(2))
	assert.Equal(t, types.SourcePosition{Line: 1, Column: 0}, li.Position(3))
	assert.Equal(t, types.SourcePosition{Line: 2, Column: 0}, li.Position(6))
	assert.Equal(t, types.SourcePosition{Line: 3, Column: 1}, li.Position(8))
}

func TestLineIndex_UTF16Columns(t *testing.T) {
	// "é" is 2 bytes / 1 unit, "日" is 3 bytes / 1 unit, "😀" is 4 bytes / 2 units
	text := "é日😀x"
	li := NewLineIndex(text)

	off := len("é日😀")
	assert.Equal(t, types.SourcePosition{Line: 0, Column: 4}, li.Position(off))

	back, ok := li.Offset(types.SourcePosition{Line: 0, Column: 4})
	require.True(t, ok)
	assert.Equal(t, off, back)
}

func TestLineIndex_Line(t *testing.T) {
	li := NewLineIndex("first\nsecond\n")

	line, ok := li.Line(1)
	require.True(t, ok)
	assert.Equal(t, "second", line)

	line, ok = li.Line(2)
	require.True(t, ok)
	assert.Equal(t, "", line)

	_, ok = li.Line(3)
	assert.False(t, ok)
	_, ok = li.Line(-1)
	assert.False(t, ok)
}

func TestLineIndex_OffsetClampsToLineEnd(t *testing.T) {
	li := NewLineIndex("abc\ndef")
	off, ok := li.Offset(types.SourcePosition{Line: 0, Column: 99})
	require.True(t, ok)
	assert.Equal(t, 3, off)
}
