package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/annotate"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/migstate"
	"github.com/versed/versed/internal/naming"
	"github.com/versed/versed/internal/rewrite"
)

func runMigration(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: versed migration begin|finish|check [flags] ...")
		return exitUsage
	}
	switch args[0] {
	case "begin":
		return runMigrationBegin(args[1:])
	case "finish":
		return runMigrationFinish(args[1:])
	case "check":
		return runMigrationCheck(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown migration command: %s\n", args[0])
		fmt.Fprintln(stderr, "Usage: versed migration begin|finish|check [flags] ...")
		return exitUsage
	}
}

// runMigrationBegin numbers every type of FILE and keeps the numbered
// source as FILE.old, the old side of the coming migration.
func runMigrationBegin(args []string) int {
	fs := newFlagSet("migration begin", "migration begin [flags] FILE")
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	file := fs.Arg(0)
	oldPath := migstate.OldPath(file)
	if _, err := os.Stat(oldPath); err == nil {
		return fail(fmt.Errorf("%s already exists: a migration is in progress (run 'versed migration finish' first)", oldPath))
	}

	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	s, err := analysis.Load(file, diags)
	if err != nil {
		return fail(err)
	}
	common.report(diags)
	if s == nil {
		return exitError
	}

	kept := annotate.Numbers(s.Tree)
	edits, assigned := annotate.Annotate(s.Tree)
	numbered := rewrite.Apply(s.Source, edits)

	if err := createExclusive(oldPath, numbered); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", oldPath, err))
	}
	if err := rewrite.WriteFile(file, numbered); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", file, err))
	}
	if err := migstate.Save(migstate.Path(file), migstate.New(numbered, kept, assigned)); err != nil {
		return fail(err)
	}

	fmt.Fprintf(stderr, "numbered %d type(s) of %s, saved the old version as %s\n", len(assigned), file, oldPath)
	fmt.Fprintf(stderr, "edit %s, then run: versed migration finish %s OUT%s\n", file, file, migrationExt)
	return exitOK
}

// createExclusive writes content to a new file, failing when it exists.
func createExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runMigrationFinish writes FILE.old followed by FILE as the migration
// file OUT and removes from FILE the numbers begin added.
func runMigrationFinish(args []string) int {
	fs := newFlagSet("migration finish", "migration finish [flags] FILE OUT.vsm")
	var common commonFlags
	common.register(fs)
	var force bool
	fs.BoolVar(&force, "force", false, "Replace an existing migration file")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}
	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	file, out := fs.Arg(0), fs.Arg(1)
	oldPath := migstate.OldPath(file)
	if _, err := os.Stat(oldPath); errors.Is(err, os.ErrNotExist) {
		return fail(fmt.Errorf("%s does not exist: run 'versed migration begin %s' first", oldPath, file))
	}
	if !force {
		if _, err := os.Stat(out); err == nil {
			return fail(fmt.Errorf("%s already exists (use -force to replace it)", out))
		}
	}

	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	oldSchema, err := analysis.Load(oldPath, diags)
	if err != nil {
		return fail(err)
	}
	newSchema, err := analysis.Load(file, diags)
	if err != nil {
		return fail(err)
	}
	if oldSchema != nil && newSchema != nil && oldSchema.Tree.Version == newSchema.Tree.Version {
		diags.Begin(file, newSchema.Source)
		diags.Error(diagnostic.CategoryMigration,
			diagnostic.At(newSchema.Tree.VersionSpan, "the new version is declared here"),
			"the new schema has the same version as the old schema").
			WithHint(fmt.Sprintf("%s also declares version %q; change the version of %s", oldPath, oldSchema.Tree.Version, file))
	}
	common.report(diags)
	if diags.HasErrors() {
		return exitError
	}

	content := oldSchema.Source
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += newSchema.Source
	if err := rewrite.WriteFile(out, content); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", out, err))
	}

	// Without a state that matches the .old copy there is no telling which
	// numbers begin added, so every number stays.
	if state := migstate.Load(migstate.Path(file), oldPath); state == nil {
		fmt.Fprintf(stderr, "warning: no migration state for %s matches %s, keeping every type number\n", file, oldPath)
	} else if edits := annotate.Strip(newSchema.Tree, state.Keep); len(edits) > 0 {
		if err := rewrite.WriteFile(file, rewrite.Apply(newSchema.Source, edits)); err != nil {
			return fail(fmt.Errorf("failed to write %s: %w", file, err))
		}
	}

	if err := os.Remove(oldPath); err != nil {
		return fail(fmt.Errorf("failed to remove %s: %w", oldPath, err))
	}
	migstate.Delete(migstate.Path(file))

	fmt.Fprintf(stderr, "wrote %s (%s)\n", out, humanize.Bytes(uint64(len(content))))
	return exitOK
}

// runMigrationCheck analyses a migration file and reports how many
// conversions are left to write.
func runMigrationCheck(args []string) int {
	fs := newFlagSet("migration check", "migration check [flags] FILE.vsm")
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	file := fs.Arg(0)
	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	m, err := analysis.LoadMigration(file, diags)
	if err != nil {
		return fail(err)
	}
	common.report(diags)
	if m == nil {
		return exitError
	}

	plan := m.Plan(naming.Rust)
	stubs := 0
	for _, fn := range plan.Functions() {
		stubs += len(migration.Stubs(fn.Body))
	}
	fmt.Fprintf(stderr, "%s: %q to %q, %d upgrade and %d downgrade function(s), %d conversion(s) to write\n",
		file, m.Old.Tree.Version, m.New.Tree.Version, len(plan.Up), len(plan.Down), stubs)
	return exitOK
}
