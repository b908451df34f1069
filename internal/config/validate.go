package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/module"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Validate checks the config for logical errors and returns the first.
func (c *Config) Validate() error {
	if r := c.ValidateDetailed(); !r.IsValid() {
		return errors.New(r.Errors[0])
	}
	return nil
}

var targets = map[string]bool{"": true, "rust": true, "typescript": true, "go": true}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if c.Output == "" {
		result.Errors = append(result.Errors, "output: must not be empty")
	}

	for _, pattern := range c.Schemas {
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, ".vs") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("schemas: pattern %q has neither a wildcard nor a .vs extension, did you mean %q?", pattern, pattern+"/**/*.vs"))
		}
	}

	// Rust
	for _, d := range c.Rust.Derives {
		switch d {
		case "":
			result.Errors = append(result.Errors, "rust.derives: empty derive")
		case "Debug", "Clone":
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rust.derives: %s is always derived", d))
		case "Serialize", "Deserialize":
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rust.derives: %s is derived by rust.serde, which also renames fields", d))
		default:
			if strings.ContainsAny(d, " ,()") {
				result.Errors = append(result.Errors,
					fmt.Sprintf("rust.derives: %q is not a single trait path", d))
			}
		}
	}

	// Go
	if c.Go.ImportPath != "" {
		if err := module.CheckImportPath(c.Go.ImportPath); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("go.importPath: %v", err))
		}
	}

	// Watch
	if len(c.Watch.Dirs) == 0 {
		result.Errors = append(result.Errors, "watch.dirs: at least one directory required")
	}
	if c.Watch.Poll <= 0 {
		result.Errors = append(result.Errors, "watch.poll: must be positive")
	}
	if c.Watch.Debounce < 0 {
		result.Errors = append(result.Errors, "watch.debounce: must not be negative")
	}
	if !targets[c.Watch.Target] {
		result.Errors = append(result.Errors,
			fmt.Sprintf("watch.target: invalid value %q, must be rust, typescript or go", c.Watch.Target))
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
