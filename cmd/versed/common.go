package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/versed/versed/internal/config"
	"github.com/versed/versed/internal/diagnostic"
)

// commonFlags are the flags every command accepts.
type commonFlags struct {
	ConfigPath string
	Strict     bool
	Quiet      bool
	Pretty     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", "", "Path to versed config file (versed.json, versed.yaml)")
	fs.BoolVar(&c.Strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&c.Quiet, "quiet", false, "Suppress warnings")
	fs.BoolVar(&c.Pretty, "pretty", diagnostic.IsPrettyOutput(), "Render diagnostics with colours and source snippets")
}

// newFlagSet returns a flag set whose usage names the command.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: versed %s\n", usage)
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig loads the config named by -config, or the one found in the
// working directory, or the defaults. The environment and the flags set
// on the command line override it.
func (c *commonFlags) loadConfig(fs *flag.FlagSet) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get working directory: %w", err)
	}

	path := c.ConfigPath
	if path == "" {
		path = config.Find(cwd)
	}
	cfg := config.DefaultConfig()
	dir := cwd
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
		dir = filepath.Dir(path)
		fmt.Fprintf(stderr, "loaded config from %s\n", path)
	}

	if err := cfg.ApplyEnv(dir); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = c.Strict
		case "quiet":
			cfg.Quiet = c.Quiet
		}
	})
	return &cfg, nil
}

// report renders diags to stderr.
func (c *commonFlags) report(diags *diagnostic.Collector) {
	cwd, _ := os.Getwd()
	diagnostic.NewReporter(stderr, cwd, c.Pretty).Report(diags)
}

// Exit codes.
const (
	exitOK    = 0
	exitError = 1 // fatal diagnostics or invalid input
	exitUsage = 2
	exitIO    = 3 // a file could not be read or written
)

// fail prints err and returns the exit code of a failed command: exitIO
// when err comes from the file system, exitError otherwise.
func fail(err error) int {
	fmt.Fprintf(stderr, "error: %v\n", err)
	if isIOError(err) {
		return exitIO
	}
	return exitError
}

func isIOError(err error) bool {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}
