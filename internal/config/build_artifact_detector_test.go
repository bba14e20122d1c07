package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutputDirectories_Maven(t *testing.T) {
	dir := t.TempDir()
	pom := `<?xml version="1.0"?>
<project>
  <build>
    <directory>${project.basedir}/out-maven</directory>
  </build>
</project>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(pom), 0644))

	patterns := NewBuildArtifactDetector(dir).DetectOutputDirectories()
	assert.Equal(t, []string{"**/target/**", "**/out-maven/**"}, patterns)
}

func TestDetectOutputDirectories_Gradle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"),
		[]byte(`layout.buildDirectory.set(file("gen-out"))`), 0644))

	patterns := NewBuildArtifactDetector(dir).DetectOutputDirectories()
	assert.Equal(t, []string{"**/build/**", "**/gen-out/**"}, patterns)
}

func TestDetectOutputDirectories_None(t *testing.T) {
	assert.Empty(t, NewBuildArtifactDetector(t.TempDir()).DetectOutputDirectories())
}

func TestOutputPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"target", "**/target/**", true},
		{"/abs/out/", "**/abs/out/**", true},
		{"${project.build.directory}", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := outputPattern(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDeduplicatePatterns(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b", "c"},
		DeduplicatePatterns([]string{"a", "b", "a", "c", "b"}))
}
