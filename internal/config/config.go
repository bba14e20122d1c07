package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/mapperlink/internal/types"
)

// Default candidate globs. XML mappers usually live under a resources tree;
// the *Mapper.xml pattern catches projects that keep them next to sources.
var (
	DefaultXMLGlobs  = []string{"**/resources/**/*.xml", "**/*Mapper.xml"}
	DefaultJavaGlobs = []string{"**/*Mapper.java", "**/*Dao.java", "**/*Repository.java"}
)

type Config struct {
	Version     int
	Project     Project
	Mappers     Mappers
	Index       Index
	Performance Performance
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

// Mappers selects the candidate files handed to the extractors
type Mappers struct {
	XMLGlobs  []string
	JavaGlobs []string

	// set when a config file named the globs, so merging can tell a
	// project override from a default
	explicitXML  bool
	explicitJava bool
}

type Index struct {
	MaxFileSize      int64
	MaxParallelFiles int // bounded fan-out of the initial scan
	FollowSymlinks   bool
	RespectGitignore bool // Process .gitignore files for additional exclusions
	WatchMode        bool // Keep the index current through file system events
	WatchDebounceMs  int  // Debounce time for file change events
}

type Performance struct {
	// How long query surfaces wait for the first scan before giving up
	IndexingTimeoutSec int
}

func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	return LoadWithRoot("")
}

// LoadFile loads one explicit config file, KDL or TOML by extension
func LoadFile(path string) (*Config, error) {
	if filepath.Ext(path) == ".toml" {
		return loadTOMLFile(path, filepath.Dir(path))
	}
	return loadKDLFile(path, filepath.Dir(path))
}

// LoadWithRoot resolves the configuration for a workspace: the global
// ~/.mapperlink.kdl is the base, the project .mapperlink.kdl (or
// .mapperlink.toml) overrides it, and built-in defaults fill the rest.
func LoadWithRoot(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: global base config
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config, KDL first
	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if projectConfig == nil {
		if projectConfig, err = LoadTOML(searchDir); err != nil {
			return nil, err
		}
	}

	// Step 3: merge (project overrides base, base exclusions preserved)
	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOrSelf(searchDir)
		return baseConfig, nil
	}

	cfg := Default(absOrSelf(searchDir))
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// Default returns the built-in configuration for a workspace root
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Mappers: Mappers{
			XMLGlobs:  append([]string(nil), DefaultXMLGlobs...),
			JavaGlobs: append([]string(nil), DefaultJavaGlobs...),
		},
		Index: Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxParallelFiles: types.DefaultMaxParallelFiles,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        false,
			WatchDebounceMs:  types.DefaultWatchDebounceMs,
		},
		Performance: Performance{
			IndexingTimeoutSec: 60,
		},
		Include: []string{},
		Exclude: getDefaultExclusions(),
	}
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	// Inclusions and mapper globs: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if !project.Mappers.explicitXML && base.Mappers.explicitXML {
		merged.Mappers.XMLGlobs = base.Mappers.XMLGlobs
	}
	if !project.Mappers.explicitJava && base.Mappers.explicitJava {
		merged.Mappers.JavaGlobs = base.Mappers.JavaGlobs
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// Maven and Gradle build files and adds them to the exclusion list. Build
// outputs hold copies of mapper XML that would shadow the sources.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	detectedPatterns := detector.DetectOutputDirectories()

	if len(detectedPatterns) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detectedPatterns...))
	}
}

// AllGlobs returns every mapper candidate glob, XML first
func (c *Config) AllGlobs() []string {
	out := make([]string, 0, len(c.Mappers.XMLGlobs)+len(c.Mappers.JavaGlobs))
	out = append(out, c.Mappers.XMLGlobs...)
	return append(out, c.Mappers.JavaGlobs...)
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func getDefaultExclusions() []string {
	return []string{
		// VCS and IDE metadata
		"**/.git/**",
		"**/.svn/**",
		"**/.idea/**",
		"**/.vscode/**",

		// Build tool caches
		"**/.gradle/**",
		"**/.m2/**",
		"**/node_modules/**",

		// Build artifacts & output (Maven copies resources into target/classes)
		"**/target/**",
		"**/build/**",
		"**/out/**",
		"**/bin/**",

		// Editor temp files
		"**/*.swp",
		"**/*~",
	}
}
