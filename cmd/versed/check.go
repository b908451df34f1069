package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/sync/errgroup"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/config"
	"github.com/versed/versed/internal/diagnostic"
)

// migrationExt marks files holding an old and a new schema.
const migrationExt = ".vsm"

func runCheck(args []string) int {
	fs := newFlagSet("check", "check [flags] [FILE...]")
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	files := fs.Args()
	if len(files) == 0 {
		files, err = schemaFiles(cfg)
		if err != nil {
			return fail(err)
		}
		if len(files) == 0 {
			return fail(fmt.Errorf("no schema files match %v", cfg.Schemas))
		}
	}

	diags, err := checkFiles(files, cfg.Strict, cfg.Quiet)
	common.report(diags)
	if err != nil {
		return fail(err)
	}
	if diags.HasErrors() {
		return exitError
	}
	fmt.Fprintf(stderr, "checked %d file(s): %s\n", len(files), diags.Summary())
	return exitOK
}

// schemaFiles expands the schema patterns of cfg, sorted and without
// duplicates.
func schemaFiles(cfg *config.Config) ([]string, error) {
	var files []string
	for _, pattern := range cfg.Schemas {
		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// checkFiles analyses files concurrently. Every file gets its own
// collector; they are merged in argument order so the report does not
// depend on scheduling.
func checkFiles(files []string, strict, quiet bool) (*diagnostic.Collector, error) {
	results := make([]*diagnostic.Collector, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			diags := diagnostic.NewCollector(strict, quiet)
			results[i] = diags
			var err error
			if filepath.Ext(file) == migrationExt {
				_, err = analysis.LoadMigration(file, diags)
			} else {
				_, err = analysis.Load(file, diags)
			}
			return err
		})
	}
	err := g.Wait()

	diags := diagnostic.NewCollector(strict, quiet)
	for _, r := range results {
		diags.Merge(r)
	}
	return diags, err
}
