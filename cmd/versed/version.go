package main

import (
	"fmt"
	"path/filepath"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/diagnostic"
)

// runVersion prints the version declared by a schema, or the version a
// migration file migrates to. Without a file it prints the tool version.
func runVersion(args []string) int {
	fs := newFlagSet("version", "version [flags] [FILE]")
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	switch fs.NArg() {
	case 0:
		fmt.Fprintln(stdout, "versed", version)
		return exitOK
	case 1:
	default:
		fs.Usage()
		return exitUsage
	}
	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	file := fs.Arg(0)
	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	var v string
	if filepath.Ext(file) == migrationExt {
		m, err := analysis.LoadMigration(file, diags)
		if err != nil {
			return fail(err)
		}
		if m != nil {
			v = m.New.Tree.Version
		}
	} else {
		s, err := analysis.Load(file, diags)
		if err != nil {
			return fail(err)
		}
		if s != nil {
			v = s.Tree.Version
		}
	}
	common.report(diags)
	if diags.HasErrors() {
		return exitError
	}
	fmt.Fprintln(stdout, v)
	return exitOK
}
