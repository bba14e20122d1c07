package config

import (
	"errors"
	"testing"

	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := Default("/test/root")
	cfg.Index.MaxParallelFiles = 0
	cfg.Index.WatchDebounceMs = 0
	cfg.Index.MaxFileSize = 0
	cfg.Performance.IndexingTimeoutSec = 0

	validator := NewValidator()
	if err := validator.ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.Index.MaxParallelFiles == 0 {
		t.Errorf("MaxParallelFiles should have been set")
	}
	if cfg.Index.WatchDebounceMs == 0 {
		t.Errorf("WatchDebounceMs should have been set")
	}
	if cfg.Index.MaxFileSize == 0 {
		t.Errorf("MaxFileSize should have been set")
	}
	if cfg.Performance.IndexingTimeoutSec != 60 {
		t.Errorf("IndexingTimeoutSec should default to 60, got %d", cfg.Performance.IndexingTimeoutSec)
	}
}

func TestValidateProjectConfig(t *testing.T) {
	validator := NewValidator()

	if err := validator.validateProjectConfig(&Project{Root: "/test/root"}); err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	if err := validator.validateProjectConfig(&Project{Root: ""}); err == nil {
		t.Errorf("Expected error for empty root")
	}
}

func TestValidateMappersConfig(t *testing.T) {
	tests := []struct {
		name    string
		mappers Mappers
		field   string
	}{
		{"no globs", Mappers{}, "mappers"},
		{"bad xml glob", Mappers{XMLGlobs: []string{"**/[*.xml"}}, "mappers.xml"},
		{"empty java glob", Mappers{JavaGlobs: []string{" "}}, "mappers.java"},
	}

	validator := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.validateMappersConfig(&tt.mappers)
			var cfgErr *mlerrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}

	if err := validator.validateMappersConfig(&Mappers{XMLGlobs: DefaultXMLGlobs}); err != nil {
		t.Errorf("Expected XML-only globs to be valid, got %v", err)
	}
}

func TestValidateExcludeGlobs(t *testing.T) {
	cfg := Default("/ws")
	cfg.Exclude = append(cfg.Exclude, "**/{unclosed")

	err := ValidateConfig(cfg)
	var cfgErr *mlerrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "exclude" {
		t.Errorf("Expected exclude ConfigError, got %v", err)
	}
}

func TestValidateIndexConfig(t *testing.T) {
	validator := NewValidator()

	if err := validator.validateIndexConfig(&Index{MaxFileSize: 1024, MaxParallelFiles: 4}); err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	invalid := []Index{
		{MaxFileSize: -1},
		{MaxFileSize: 200 * 1024 * 1024},
		{MaxParallelFiles: -2},
		{WatchDebounceMs: -5},
	}
	for _, idx := range invalid {
		if err := validator.validateIndexConfig(&idx); err == nil {
			t.Errorf("Expected error for %+v", idx)
		}
	}
}

func TestValidatePerformanceConfig(t *testing.T) {
	validator := NewValidator()

	if err := validator.validatePerformanceConfig(&Performance{IndexingTimeoutSec: -1}); err == nil {
		t.Errorf("Expected error for negative timeout")
	}
}
