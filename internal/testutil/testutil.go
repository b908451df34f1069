// Package testutil provides helpers shared by the analysis package tests:
// parsing inline schemas and locating nodes by path.
package testutil

import (
	"strings"
	"testing"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/syntax"
)

// MustParse parses src and fails the test on any syntax error.
func MustParse(t testing.TB, src string) *ast.TypeSet {
	t.Helper()
	diags := diagnostic.NewCollector(false, false)
	diags.Begin("test.vs", src)
	ts := syntax.Parse(src, diags)
	if ts == nil || diags.HasErrors() {
		t.Fatalf("parse failed:\n%s", diags.FormatAll())
	}
	return ts
}

// MustParseMigration parses a migration text and fails the test on any
// syntax error.
func MustParseMigration(t testing.TB, src string) *ast.Migration {
	t.Helper()
	diags := diagnostic.NewCollector(false, false)
	diags.Begin("test.vsm", src)
	m := syntax.ParseMigration(src, diags)
	if m == nil || diags.HasErrors() {
		t.Fatalf("parse failed:\n%s", diags.FormatAll())
	}
	return m
}

// Find returns the type node at path. A path starts with a declaration
// name; each further segment is a member name, or "[]" for a list
// element. For example "B.a" is the type of member a of declaration B.
func Find(t testing.TB, ts *ast.TypeSet, path string) ast.Type {
	t.Helper()
	segments := strings.Split(path, ".")
	idx := ts.Lookup(segments[0])
	if idx < 0 {
		t.Fatalf("no declaration %q", segments[0])
	}
	cur := ts.Types[idx].Type
	for _, seg := range segments[1:] {
		if seg == "[]" {
			list, ok := cur.(*ast.List)
			if !ok {
				t.Fatalf("%s: %T is not a list", path, cur)
			}
			cur = list.Elem
			continue
		}
		var next ast.Type
		for _, m := range ast.Members(cur) {
			if m.Name == seg {
				next = m.Type
				break
			}
		}
		if next == nil {
			t.Fatalf("%s: no member %q", path, seg)
		}
		cur = next
	}
	return cur
}
