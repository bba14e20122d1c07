package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_BasicPatterns(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		expected bool
	}{
		{"simple file match", "README.md", "README.md", false, true},
		{"simple file nested", "README.md", "docs/README.md", false, true},
		{"simple file no match", "README.md", "main.java", false, false},
		{"directory matches directory", "target/", "target", true, true},
		{"directory matches files inside", "target/", "target/classes/UserMapper.xml", false, true},
		{"directory matches nested dir", "target/", "module-a/target/classes/x.xml", false, true},
		{"directory pattern skips files of same name", "target/", "target", false, false},
		{"directory no match outside", "target/", "src/main/java/A.java", false, false},
		{"absolute match", "/build", "build", true, true},
		{"absolute no match subdirectory", "/build", "module/build", true, false},
		{"wildcard match", "*.iml", "shop.iml", false, true},
		{"wildcard no match", "*.iml", "pom.xml", false, false},
		{"double wildcard", "**/*.log", "logs/2023/01/app.log", false, true},
		{"middle slash anchors", "src/generated", "src/generated/Foo.java", false, true},
		{"middle slash anchored elsewhere", "src/generated", "lib/src/generated/Foo.java", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewGitignoreParser()
			parser.AddPattern(tt.pattern)

			assert.Equal(t, tt.expected, parser.ShouldIgnore(tt.path, tt.isDir),
				"Pattern: %s, Path: %s, IsDir: %v", tt.pattern, tt.path, tt.isDir)
		})
	}
}

func TestGitignoreParser_Negation(t *testing.T) {
	parser := NewGitignoreParser()
	parser.AddPattern("*.xml")
	parser.AddPattern("!*Mapper.xml")

	assert.True(t, parser.ShouldIgnore("pom.xml", false))
	assert.False(t, parser.ShouldIgnore("src/main/resources/UserMapper.xml", false))
}

func TestGitignoreParser_LoadGitignore(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"# build output",
		"",
		"target/",
		"*.class",
		"!keep.class",
		".idea/",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644))

	parser := NewGitignoreParser()
	require.NoError(t, parser.LoadGitignore(dir))

	assert.True(t, parser.ShouldIgnore("target/classes/a.xml", false))
	assert.True(t, parser.ShouldIgnore("A.class", false))
	assert.False(t, parser.ShouldIgnore("keep.class", false))
	assert.True(t, parser.ShouldIgnore(".idea", true))
	assert.False(t, parser.ShouldIgnore("src/main/resources/mapper/UserMapper.xml", false))
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	parser := NewGitignoreParser()
	assert.NoError(t, parser.LoadGitignore(t.TempDir()))
	assert.False(t, parser.ShouldIgnore("anything", false))
}

func TestGitignoreParser_GetExclusionPatterns(t *testing.T) {
	parser := NewGitignoreParser()
	parser.AddPattern("target/")
	parser.AddPattern("/local.properties")
	parser.AddPattern("*.log")
	parser.AddPattern("!important.log")

	assert.Equal(t,
		[]string{"**/target/**", "local.properties", "**/*.log"},
		parser.GetExclusionPatterns())
}

func TestGitignoreParser_InvalidPatternDropped(t *testing.T) {
	parser := NewGitignoreParser()
	parser.AddPattern("[unclosed")
	parser.AddPattern("/")

	assert.Empty(t, parser.GetExclusionPatterns())
}
