// Package analysis runs the front end and the semantic passes over schema
// and migration files.
//
// A schema is parsed, its names resolved, its numbers checked for
// duplicates and its declarations checked for infinite recursion. The
// results are returned together so that code generation never repeats a
// pass. Analysis never stops at the first problem: every diagnostic goes
// to the collector, and the result is nil when any of them is fatal.
package analysis

import (
	"fmt"
	"os"

	"github.com/versed/versed/internal/annotate"
	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
	"github.com/versed/versed/internal/recursion"
	"github.com/versed/versed/internal/resolve"
	"github.com/versed/versed/internal/syntax"
)

// Schema is an analysed schema.
type Schema struct {
	File       string
	Source     string
	Tree       *ast.TypeSet
	Resolution ast.Layer[int]
	Depths     []recursion.Depth
}

// Side prepares s for a target with the given naming rules.
func (s *Schema) Side(rules naming.Rules) *migration.Side {
	return migration.NewSide(s.Tree, s.Resolution, rules)
}

// Migration is an analysed migration file.
type Migration struct {
	File   string
	Source string
	Old    *Schema
	New    *Schema
}

// Plan pairs the two schemas and synthesizes the conversion functions
// for a target with the given naming rules.
func (m *Migration) Plan(rules naming.Rules) *migration.Plan {
	tree := &ast.Migration{Old: m.Old.Tree, New: m.New.Tree}
	return migration.NewPlan(tree, m.Old.Resolution, m.New.Resolution, rules)
}

// Analyze analyses the schema src read from file. It returns nil when a
// fatal diagnostic was reported.
func Analyze(file, src string, diags *diagnostic.Collector) *Schema {
	diags.Begin(file, src)
	errs := diags.ErrorCount()

	ts := syntax.Parse(src, diags)
	if ts == nil {
		return nil
	}
	s := passes(file, src, ts, diags)
	if diags.ErrorCount() > errs {
		return nil
	}
	return s
}

// AnalyzeMigration analyses a migration file: the old schema followed by
// the new one, which must carry a different version.
func AnalyzeMigration(file, src string, diags *diagnostic.Collector) *Migration {
	diags.Begin(file, src)
	errs := diags.ErrorCount()

	m := syntax.ParseMigration(src, diags)
	if m == nil {
		return nil
	}
	out := &Migration{
		File:   file,
		Source: src,
		Old:    passes(file, src, m.Old, diags),
		New:    passes(file, src, m.New, diags),
	}
	if m.Old.Version == m.New.Version {
		diags.Error(diagnostic.CategoryMigration,
			diagnostic.At(m.New.VersionSpan, "the new version is declared here"),
			"the new schema has the same version as the old schema").
			WithSecondary(diagnostic.At(m.Old.VersionSpan, "the old version is declared here"))
	}
	if diags.ErrorCount() > errs {
		return nil
	}
	return out
}

func passes(file, src string, ts *ast.TypeSet, diags *diagnostic.Collector) *Schema {
	res := resolve.Resolve(ts, diags)
	annotate.CheckNumbers(ts, diags)
	return &Schema{
		File:       file,
		Source:     src,
		Tree:       ts,
		Resolution: res,
		Depths:     recursion.Check(ts, res, diags),
	}
}

// Load reads and analyses a schema file. The error is only set when the
// file cannot be read.
func Load(path string, diags *diagnostic.Collector) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %q: %w", path, err)
	}
	return Analyze(path, string(data), diags), nil
}

// LoadMigration reads and analyses a migration file.
func LoadMigration(path string, diags *diagnostic.Collector) (*Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration %q: %w", path, err)
	}
	return AnalyzeMigration(path, string(data), diags), nil
}
