// Package codegentest runs printer golden tests.
//
// A golden case is a txtar archive under testdata/ holding an input
// ("input.vs" for a schema, "input.vsm" for a migration) and one file per
// expected output. Run the tests with -update to rewrite the outputs.
package codegentest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/resolve"
	"github.com/versed/versed/internal/testutil"
)

var update = flag.Bool("update", false, "rewrite golden files")

// Side parses and prepares a schema for target.
func Side(t testing.TB, target codegen.Target, src string) *migration.Side {
	t.Helper()
	ts := testutil.MustParse(t, src)
	diags := diagnostic.NewCollector(false, false)
	res := resolve.Resolve(ts, diags)
	if diags.HasErrors() {
		t.Fatalf("resolve failed:\n%s", diags.FormatAll())
	}
	return migration.NewSide(ts, res, target.Rules())
}

// Plan parses a migration and synthesizes its functions for target.
func Plan(t testing.TB, target codegen.Target, src string) *migration.Plan {
	t.Helper()
	m := testutil.MustParseMigration(t, src)
	diags := diagnostic.NewCollector(false, false)
	oldRes := resolve.Resolve(m.Old, diags)
	newRes := resolve.Resolve(m.New, diags)
	if diags.HasErrors() {
		t.Fatalf("resolve failed:\n%s", diags.FormatAll())
	}
	return migration.NewPlan(m, oldRes, newRes, target.Rules())
}

// Run checks every testdata/*.txtar archive: types for input.vs and
// migrations for input.vsm, compared with the archive's "output" file.
func Run(t *testing.T, target codegen.Target) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden files in testdata")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}
			files := make(map[string]int, len(archive.Files))
			for i, f := range archive.Files {
				files[f.Name] = i
			}

			var got string
			if i, ok := files["input.vs"]; ok {
				got, err = target.Types(Side(t, target, string(archive.Files[i].Data)))
			} else if i, ok := files["input.vsm"]; ok {
				got, err = target.Migrations(Plan(t, target, string(archive.Files[i].Data)))
			} else {
				t.Fatal("archive has no input.vs or input.vsm")
			}
			if err != nil {
				t.Fatal(err)
			}

			i, ok := files["output"]
			if *update {
				if !ok {
					archive.Files = append(archive.Files, txtar.File{Name: "output"})
					i = len(archive.Files) - 1
				}
				archive.Files[i].Data = []byte(got)
				if err := os.WriteFile(path, txtar.Format(archive), 0644); err != nil {
					t.Fatal(err)
				}
				return
			}
			if !ok {
				t.Fatal("archive has no output file")
			}
			if diff := cmp.Diff(string(archive.Files[i].Data), got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
