package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/internal/types"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return mlerrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateMappersConfig(&cfg.Mappers); err != nil {
		return err
	}

	if err := v.validateGlobs("exclude", cfg.Exclude); err != nil {
		return err
	}
	if err := v.validateGlobs("include", cfg.Include); err != nil {
		return err
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return mlerrors.NewConfigError("index", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return mlerrors.NewConfigError("performance", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

// validateMappersConfig requires at least one glob overall and valid syntax
func (v *Validator) validateMappersConfig(m *Mappers) error {
	if len(m.XMLGlobs) == 0 && len(m.JavaGlobs) == 0 {
		return mlerrors.NewConfigError("mappers", "", errors.New("no xml or java globs configured"))
	}
	if err := v.validateGlobs("mappers.xml", m.XMLGlobs); err != nil {
		return err
	}
	return v.validateGlobs("mappers.java", m.JavaGlobs)
}

func (v *Validator) validateGlobs(field string, globs []string) error {
	for _, g := range globs {
		if strings.TrimSpace(g) == "" {
			return mlerrors.NewConfigError(field, g, errors.New("empty glob"))
		}
		if !doublestar.ValidatePattern(g) {
			return mlerrors.NewConfigError(field, g, errors.New("invalid glob pattern"))
		}
	}
	return nil
}

// validateIndexConfig validates index configuration
func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", index.MaxFileSize)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	// MaxParallelFiles: 0 means auto-detect (set by smart defaults)
	if index.MaxParallelFiles < 0 {
		return fmt.Errorf("MaxParallelFiles cannot be negative, got %d", index.MaxParallelFiles)
	}

	if index.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", index.WatchDebounceMs)
	}

	return nil
}

// validatePerformanceConfig validates performance configuration
func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	if perf.IndexingTimeoutSec < 0 {
		return fmt.Errorf("IndexingTimeoutSec cannot be negative, got %d", perf.IndexingTimeoutSec)
	}
	return nil
}

// setSmartDefaults fills zero values
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Index.MaxFileSize == 0 {
		cfg.Index.MaxFileSize = types.DefaultMaxFileSize
	}

	// twice the core count, never below the default
	if cfg.Index.MaxParallelFiles == 0 {
		cfg.Index.MaxParallelFiles = max(types.DefaultMaxParallelFiles, runtime.NumCPU()*2)
	}

	if cfg.Index.WatchDebounceMs == 0 {
		cfg.Index.WatchDebounceMs = types.DefaultWatchDebounceMs
	}

	if cfg.Performance.IndexingTimeoutSec == 0 {
		cfg.Performance.IndexingTimeoutSec = 60
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
