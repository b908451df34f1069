package config

import (
	"testing"
)

func TestValidateDetailed_Valid(t *testing.T) {
	cfg := DefaultConfig()
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Errorf("expected valid config, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", result.Warnings)
	}
}

func TestValidateDetailed(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		valid    bool
		warnings int
	}{
		{"empty output", func(c *Config) { c.Output = "" }, false, 0},
		{"pattern without wildcard", func(c *Config) { c.Schemas = []string{"schemas"} }, true, 1},
		{"always derived", func(c *Config) { c.Rust.Derives = []string{"Debug", "Hash"} }, true, 1},
		{"serde derive", func(c *Config) { c.Rust.Derives = []string{"Serialize"} }, true, 1},
		{"derive list", func(c *Config) { c.Rust.Derives = []string{"Eq, Hash"} }, false, 0},
		{"import path", func(c *Config) { c.Go.ImportPath = "example.com/app/gen" }, true, 0},
		{"bad import path", func(c *Config) { c.Go.ImportPath = "example.com/a b" }, false, 0},
		{"no watch dirs", func(c *Config) { c.Watch.Dirs = nil }, false, 0},
		{"zero poll", func(c *Config) { c.Watch.Poll = 0 }, false, 0},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }, false, 0},
		{"unknown watch target", func(c *Config) { c.Watch.Target = "python" }, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			result := cfg.ValidateDetailed()
			if result.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (errors: %v)", result.IsValid(), tt.valid, result.Errors)
			}
			if len(result.Warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d: %v", len(result.Warnings), tt.warnings, result.Warnings)
			}
			if (cfg.Validate() == nil) != tt.valid {
				t.Errorf("Validate() disagrees with ValidateDetailed()")
			}
		})
	}
}
