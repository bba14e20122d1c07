package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFileName is accepted when no .mapperlink.kdl exists
const TOMLFileName = ".mapperlink.toml"

type tomlFile struct {
	Project struct {
		Root string `toml:"root"`
		Name string `toml:"name"`
	} `toml:"project"`
	Mappers struct {
		XML  []string `toml:"xml"`
		Java []string `toml:"java"`
	} `toml:"mappers"`
	Index struct {
		MaxFileSize      any   `toml:"max_file_size"`
		MaxParallelFiles *int  `toml:"max_parallel_files"`
		FollowSymlinks   *bool `toml:"follow_symlinks"`
		RespectGitignore *bool `toml:"respect_gitignore"`
		WatchMode        *bool `toml:"watch_mode"`
		WatchDebounceMs  *int  `toml:"watch_debounce_ms"`
	} `toml:"index"`
	Performance struct {
		IndexingTimeoutSec *int `toml:"indexing_timeout_sec"`
	} `toml:"performance"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML attempts to load configuration from a .mapperlink.toml file in
// dir. Returns nil, nil when no file exists.
func LoadTOML(dir string) (*Config, error) {
	path := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return loadTOMLFile(path, dir)
}

func loadTOMLFile(path, dir string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default("")
	cfg.Project.Root = f.Project.Root
	cfg.Project.Name = f.Project.Name

	if f.Mappers.XML != nil {
		cfg.Mappers.XMLGlobs = f.Mappers.XML
		cfg.Mappers.explicitXML = true
	}
	if f.Mappers.Java != nil {
		cfg.Mappers.JavaGlobs = f.Mappers.Java
		cfg.Mappers.explicitJava = true
	}

	switch v := f.Index.MaxFileSize.(type) {
	case nil:
	case int64:
		cfg.Index.MaxFileSize = v
	case string:
		size, err := parseSize(v)
		if err != nil {
			return nil, fmt.Errorf("invalid index.max_file_size %q: %w", v, err)
		}
		cfg.Index.MaxFileSize = size
	default:
		return nil, fmt.Errorf("invalid index.max_file_size type %T", v)
	}
	if f.Index.MaxParallelFiles != nil {
		cfg.Index.MaxParallelFiles = *f.Index.MaxParallelFiles
	}
	if f.Index.FollowSymlinks != nil {
		cfg.Index.FollowSymlinks = *f.Index.FollowSymlinks
	}
	if f.Index.RespectGitignore != nil {
		cfg.Index.RespectGitignore = *f.Index.RespectGitignore
	}
	if f.Index.WatchMode != nil {
		cfg.Index.WatchMode = *f.Index.WatchMode
	}
	if f.Index.WatchDebounceMs != nil {
		cfg.Index.WatchDebounceMs = *f.Index.WatchDebounceMs
	}
	if f.Performance.IndexingTimeoutSec != nil {
		cfg.Performance.IndexingTimeoutSec = *f.Performance.IndexingTimeoutSec
	}

	cfg.Include = append(cfg.Include, f.Include...)
	cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, f.Exclude...))
	return cfg, nil
}
