// Package config loads the versed configuration: a versed.json or
// versed.yaml file next to the schemas, optionally overridden by VERSED_*
// environment variables (also read from a .env file).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names Find looks for, in order.
var FileNames = []string{"versed.json", "versed.yaml", "versed.yml"}

// Config represents the versed configuration.
type Config struct {
	// Output is the root directory of generated code. Every target writes
	// to a subdirectory named after it unless it sets its own output.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Schemas are glob patterns (with ** support) selecting the schema
	// files checked and watched when no file is named on the command line.
	Schemas []string `json:"schemas,omitempty" yaml:"schemas,omitempty"`

	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"` // warnings are errors
	Quiet  bool `json:"quiet,omitempty" yaml:"quiet,omitempty"`   // suppress warnings

	Rust       RustConfig       `json:"rust" yaml:"rust"`
	TypeScript TypeScriptConfig `json:"typescript" yaml:"typescript"`
	Go         GoConfig         `json:"go" yaml:"go"`
	Watch      WatchConfig      `json:"watch" yaml:"watch"`
}

// RustConfig configures the Rust target.
type RustConfig struct {
	Output  string   `json:"output,omitempty" yaml:"output,omitempty"`
	Serde   bool     `json:"serde,omitempty" yaml:"serde,omitempty"`
	Derives []string `json:"derives,omitempty" yaml:"derives,omitempty"`
}

// TypeScriptConfig configures the TypeScript target.
type TypeScriptConfig struct {
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// GoConfig configures the Go target.
type GoConfig struct {
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// ImportPath is the import path of the output directory, used by
	// migrations to import the version packages.
	ImportPath string `json:"importPath,omitempty" yaml:"importPath,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Dirs     []string `json:"dirs,omitempty" yaml:"dirs,omitempty"`
	Exclude  []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Debounce Duration `json:"debounce,omitempty" yaml:"debounce,omitempty"`
	Poll     Duration `json:"poll,omitempty" yaml:"poll,omitempty"`

	// Target regenerates the types of every changed schema for the named
	// target ("rust", "typescript" or "go"). Empty only checks them.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Duration is a time.Duration written as a string such as "300ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Output:  "generated",
		Schemas: []string{"**/*.vs"},
		Watch: WatchConfig{
			Dirs:     []string{"."},
			Debounce: Duration(100 * time.Millisecond),
			Poll:     Duration(500 * time.Millisecond),
		},
	}
}

// OutputDir returns the output directory of target.
func (c *Config) OutputDir(target string) string {
	var dir string
	switch target {
	case "rust":
		dir = c.Rust.Output
	case "typescript":
		dir = c.TypeScript.Output
	case "go":
		dir = c.Go.Output
	}
	if dir != "" {
		return dir
	}
	return filepath.Join(c.Output, target)
}

// Find returns the path of the config file in dir, or "" when there is
// none.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads and parses a config file. The format follows the extension:
// .json, or .yaml/.yml. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	switch ext := filepath.Ext(path); ext {
	case ".json":
		err = json.Unmarshal(data, &config, json.RejectUnknownMembers(true))
	case ".yaml", ".yml":
		err = decodeYAML(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file %q: expected a .json, .yaml or .yml extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

func decodeYAML(data []byte, config *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Environment variables overriding the config file.
const (
	EnvOutput       = "VERSED_OUT"
	EnvStrict       = "VERSED_STRICT"
	EnvQuiet        = "VERSED_QUIET"
	EnvGoImportPath = "VERSED_GO_IMPORT_PATH"
)

// ApplyEnv loads dir/.env into the environment when it exists, without
// replacing variables that are already set, and then applies the VERSED_*
// variables to c.
func (c *Config) ApplyEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %q: %w", envFile, err)
	}

	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvGoImportPath); v != "" {
		c.Go.ImportPath = v
	}
	for name, field := range map[string]*bool{EnvStrict: &c.Strict, EnvQuiet: &c.Quiet} {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*field = b
	}
	return nil
}
