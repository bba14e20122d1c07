// Package testhelpers provides shared workspaces and configs for mapperlink tests
package testhelpers

import (
	"github.com/standardbeagle/mapperlink/internal/config"
	"github.com/standardbeagle/mapperlink/internal/types"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(root).
//		WithJavaGlobs("**/*Mapper.java").
//		WithWatch(20).
//		Build()
type TestConfigBuilder struct {
	projectRoot string
	xmlGlobs    []string
	javaGlobs   []string
	exclusions  []string
	watch       bool
	debounceMs  int
	gitignore   bool
}

// NewTestConfigBuilder creates a config builder with safe defaults for a project path
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot: projectRoot,
		xmlGlobs:    append([]string(nil), config.DefaultXMLGlobs...),
		javaGlobs:   append([]string(nil), config.DefaultJavaGlobs...),
		exclusions: []string{
			"**/.git/**",
			"**/target/**",
			"**/build/**",
			"**/node_modules/**",
		},
		debounceMs: 20, // Fast debounce for tests
	}
}

// WithXMLGlobs replaces the mapper XML globs
func (b *TestConfigBuilder) WithXMLGlobs(patterns ...string) *TestConfigBuilder {
	b.xmlGlobs = patterns
	return b
}

// WithJavaGlobs replaces the mapper interface globs
func (b *TestConfigBuilder) WithJavaGlobs(patterns ...string) *TestConfigBuilder {
	b.javaGlobs = patterns
	return b
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithWatch enables watch mode with the given debounce
func (b *TestConfigBuilder) WithWatch(debounceMs int) *TestConfigBuilder {
	b.watch = true
	b.debounceMs = debounceMs
	return b
}

// WithGitignore turns on .gitignore processing
func (b *TestConfigBuilder) WithGitignore() *TestConfigBuilder {
	b.gitignore = true
	return b
}

// Build creates the final test config with all settings
func (b *TestConfigBuilder) Build() *config.Config {
	return &config.Config{
		Version: 1,
		Project: config.Project{
			Root: b.projectRoot,
			Name: "test-project",
		},
		Mappers: config.Mappers{
			XMLGlobs:  b.xmlGlobs,
			JavaGlobs: b.javaGlobs,
		},
		Index: config.Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxParallelFiles: 4, // Limited for predictable behavior
			FollowSymlinks:   false,
			RespectGitignore: b.gitignore, // Disabled for tests unless asked
			WatchMode:        b.watch,
			WatchDebounceMs:  b.debounceMs,
		},
		Performance: config.Performance{
			IndexingTimeoutSec: 10,
		},
		Include: []string{},
		Exclude: b.exclusions,
	}
}
