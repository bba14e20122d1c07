package sanitizer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newlineOffsets(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, i)
		}
	}
	return out
}

// fragments biased toward delimiters so random inputs open and close spans
var javaFragments = []string{
	"/*", "*/", "//", "\"", "'", "\\", "\n", "\r\n", `"""`, " ", "a", "Mapper",
	"findById(", ");", "{", "}", "日本", "é", "\t", "@Param(\"id\")",
}

var xmlFragments = []string{
	"<!--", "-->", "<![CDATA[", "]]>", "<select id=\"a\">", "</select>",
	"\n", " ", "x", "&lt;", "<", ">", "ü", "\"", "'",
}

func randomText(rng *rand.Rand, fragments []string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(fragments[rng.Intn(len(fragments))])
	}
	return b.String()
}

// TestProperty_LengthAndNewlines checks both geometry invariants over random inputs
func TestProperty_LengthAndNewlines(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, tc := range []struct {
		name      string
		dialect   Dialect
		fragments []string
	}{
		{"java", DialectJava, javaFragments},
		{"xml", DialectXML, xmlFragments},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				in := randomText(rng, tc.fragments, rng.Intn(80))
				out := Sanitize(in, tc.dialect)

				require.Equal(t, len(in), len(out), "length changed for %q", in)
				require.Equal(t, newlineOffsets(in), newlineOffsets(out), "newlines moved for %q", in)
			}
		})
	}
}

func TestJava_PlainCodeUnchanged(t *testing.T) {
	src := "package com.example;\n\npublic interface UserMapper {\n    User findById(Long id);\n}\n"
	assert.Equal(t, src, Java(src))
}

func TestXML_PlainMarkupUnchanged(t *testing.T) {
	src := "<mapper namespace=\"a.B\">\n  <select id=\"x\">SELECT 1</select>\n</mapper>\n"
	assert.Equal(t, src, XML(src))
}

func TestJava_BlockComment(t *testing.T) {
	in := "a /* User findById(Long id); */ b"
	out := Java(in)
	assert.Equal(t, "a /*                         */ b", out)
	assert.NotContains(t, out, "findById")
}

func TestJava_BlockCommentKeepsNewlines(t *testing.T) {
	in := "/**\n * UserMapper\n */\ninterface X {}"
	out := Java(in)
	assert.Equal(t, "/* \n             \n */\ninterface X {}", out)
}

func TestJava_LineComment(t *testing.T) {
	in := "int a; // void hidden();\nint b;"
	assert.Equal(t, "int a; //               \nint b;", Java(in))
}

func TestJava_StringWithEscapes(t *testing.T) {
	in := `x = "say \"hi\" findById()"; y`
	out := Java(in)
	assert.Equal(t, len(in), len(out))
	assert.True(t, strings.HasPrefix(out, `x = "`))
	assert.True(t, strings.HasSuffix(out, `"; y`))
	assert.NotContains(t, out, "findById")
}

func TestJava_CharLiterals(t *testing.T) {
	in := `c = '\''; d = '"'; e`
	out := Java(in)
	assert.Equal(t, `c = '  '; d = ' '; e`, out)
}

func TestJava_StringEndsAtNewline(t *testing.T) {
	in := "s = \"unterminated\nUser findById(Long id);"
	out := Java(in)
	assert.Contains(t, out, "\nUser findById(Long id);")
}

func TestJava_EscapedNewlineKept(t *testing.T) {
	in := "s = \"abc\\\nUser find();"
	out := Java(in)
	assert.Equal(t, newlineOffsets(in), newlineOffsets(out))
	assert.Contains(t, out, "User find();")
}

func TestJava_UnterminatedBlockComment(t *testing.T) {
	in := "code /* never closed\nvoid x();"
	out := Java(in)
	assert.Equal(t, "code /*             \n         ", out)
}

func TestJava_TextBlock(t *testing.T) {
	in := "String q = \"\"\"\n  select findById\n  \"\"\";\nvoid real();"
	out := Java(in)
	assert.NotContains(t, out, "findById")
	assert.Contains(t, out, "void real();")
	assert.Equal(t, newlineOffsets(in), newlineOffsets(out))
}

func TestJava_MultiByteRunesKeepByteLength(t *testing.T) {
	in := "// 日本語のコメント\nvoid x();"
	out := Java(in)
	assert.Equal(t, len(in), len(out))
	assert.Equal(t, "//", out[:2])
	assert.Equal(t, "\nvoid x();", out[strings.IndexByte(out, '\n'):])
}

func TestXML_CommentAndCDATA(t *testing.T) {
	in := "<!-- <select id=\"hidden\"> -->\n<select id=\"real\"><![CDATA[ a < b and id=\"fake\" ]]></select>"
	out := XML(in)
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "fake")
	assert.Contains(t, out, `<select id="real">`)
	assert.Contains(t, out, "<!--")
	assert.Contains(t, out, "-->")
	assert.Contains(t, out, "<![CDATA[")
	assert.Contains(t, out, "]]>")
}

func TestXML_UnterminatedComment(t *testing.T) {
	in := "<mapper>\n<!-- <select id=\"a\">\n"
	out := XML(in)
	assert.Equal(t, "<mapper>\n<!--                \n", out)
}

func TestXML_JavaDelimitersIgnored(t *testing.T) {
	in := `<select id="a">SELECT '/*' FROM t // x</select>`
	assert.Equal(t, in, XML(in))
}

func TestEmptyInput(t *testing.T) {
	assert.Equal(t, "", Java(""))
	assert.Equal(t, "", XML(""))
}
