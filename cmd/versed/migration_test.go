package main

import (
	"os"
	"strings"
	"testing"

	"github.com/versed/versed/internal/migstate"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestMigrationWorkflow(t *testing.T) {
	const original = "version v1;\nUser = struct { name: string };\n"
	const numbered = "version v1;\nUser = #1 struct { name: #2 string };\n"
	workspace(t, map[string]string{"schema.vs": original})

	code, _, errOut := runCmd(t, "migration", "begin", "schema.vs")
	if code != 0 {
		t.Fatalf("begin: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got := readFile(t, "schema.vs"); got != numbered {
		t.Errorf("schema after begin = %q, want %q", got, numbered)
	}
	if got := readFile(t, "schema.vs.old"); got != numbered {
		t.Errorf(".old = %q, want %q", got, numbered)
	}
	state := migstate.Load(migstate.Path("schema.vs"), "schema.vs.old")
	if state == nil {
		t.Fatal("no migration state after begin")
	}
	if len(state.Kept) != 0 || len(state.Assigned) != 2 {
		t.Errorf("state = %+v", state)
	}

	code, _, errOut = runCmd(t, "migration", "begin", "schema.vs")
	if code != 1 || !strings.Contains(errOut, "a migration is in progress") {
		t.Errorf("second begin: code = %d, stderr = %q", code, errOut)
	}

	edited := strings.Replace(numbered, "version v1", "version v2", 1)
	writeFile(t, "schema.vs", edited)

	code, _, errOut = runCmd(t, "migration", "finish", "schema.vs", "migrations/v2.vsm")
	if code != 0 {
		t.Fatalf("finish: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got := readFile(t, "migrations/v2.vsm"); got != numbered+edited {
		t.Errorf("migration file = %q", got)
	}
	if got, want := readFile(t, "schema.vs"), strings.Replace(original, "v1", "v2", 1); got != want {
		t.Errorf("schema after finish = %q, want %q", got, want)
	}
	for _, path := range []string{"schema.vs.old", migstate.Path("schema.vs")} {
		if exists(path) {
			t.Errorf("%s still exists after finish", path)
		}
	}
	if !strings.Contains(errOut, "wrote migrations/v2.vsm") {
		t.Errorf("stderr = %q", errOut)
	}

	code, _, errOut = runCmd(t, "migration", "check", "migrations/v2.vsm")
	if code != 0 || !strings.Contains(errOut, "0 conversion(s) to write") {
		t.Errorf("check: code = %d, stderr = %q", code, errOut)
	}
}

func TestMigrationBegin_KeepsExistingNumbers(t *testing.T) {
	workspace(t, map[string]string{"schema.vs": "version v1;\nA = #5 struct { b: int };\n"})

	if code, _, errOut := runCmd(t, "migration", "begin", "schema.vs"); code != 0 {
		t.Fatalf("begin: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got, want := readFile(t, "schema.vs"), "version v1;\nA = #5 struct { b: #1 int };\n"; got != want {
		t.Errorf("schema = %q, want %q", got, want)
	}

	writeFile(t, "schema.vs", "version v2;\nA = #5 struct { b: #1 int };\n")
	if code, _, errOut := runCmd(t, "migration", "finish", "schema.vs", "v2.vsm"); code != 0 {
		t.Fatalf("finish: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got, want := readFile(t, "schema.vs"), "version v2;\nA = #5 struct { b: int };\n"; got != want {
		t.Errorf("schema = %q, want %q", got, want)
	}
}

func TestMigrationFinish_WithoutState(t *testing.T) {
	workspace(t, map[string]string{
		"schema.vs":     "version v2;\nA = #5 int;\n",
		"schema.vs.old": "version v1;\nA = #5 int;\n",
	})

	code, _, errOut := runCmd(t, "migration", "finish", "schema.vs", "v2.vsm")
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got, want := readFile(t, "schema.vs"), "version v2;\nA = #5 int;\n"; got != want {
		t.Errorf("schema = %q, want %q", got, want)
	}
	if !strings.Contains(errOut, "warning: no migration state for schema.vs") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestMigrationFinish_StaleState(t *testing.T) {
	workspace(t, map[string]string{"schema.vs": "version v1;\nA = #5 struct { b: int };\n"})
	if code, _, errOut := runCmd(t, "migration", "begin", "schema.vs"); code != 0 {
		t.Fatalf("begin: exit code = %d\nstderr:\n%s", code, errOut)
	}

	// Editing the .old copy after begin invalidates the recorded state.
	writeFile(t, "schema.vs.old", "version v1;\nA = #5 struct { b: #1 int, c: #2 int };\n")
	writeFile(t, "schema.vs", "version v2;\nA = #5 struct { b: #1 int, c: #2 int };\n")

	code, _, errOut := runCmd(t, "migration", "finish", "schema.vs", "v2.vsm")
	if code != 0 {
		t.Fatalf("finish: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got, want := readFile(t, "schema.vs"), "version v2;\nA = #5 struct { b: #1 int, c: #2 int };\n"; got != want {
		t.Errorf("schema = %q, want %q", got, want)
	}
	if !strings.Contains(errOut, "keeping every type number") {
		t.Errorf("stderr = %q", errOut)
	}
	if exists(migstate.Path("schema.vs")) {
		t.Error("the stale state was not removed")
	}
}

func TestMigrationFinish_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "not begun",
			files:   map[string]string{"schema.vs": "version v2;\nA = int;\n"},
			args:    []string{"schema.vs", "v2.vsm"},
			wantErr: "run 'versed migration begin schema.vs' first",
		},
		{
			name: "version unchanged",
			files: map[string]string{
				"schema.vs":     "version v1;\nA = #1 int;\n",
				"schema.vs.old": "version v1;\nA = #1 int;\n",
			},
			args:    []string{"schema.vs", "v2.vsm"},
			wantErr: "the new schema has the same version as the old schema",
		},
		{
			name: "output exists",
			files: map[string]string{
				"schema.vs":     "version v2;\nA = #1 int;\n",
				"schema.vs.old": "version v1;\nA = #1 int;\n",
				"v2.vsm":        "",
			},
			args:    []string{"schema.vs", "v2.vsm"},
			wantErr: "v2.vsm already exists",
		},
		{
			name: "new schema invalid",
			files: map[string]string{
				"schema.vs":     "version v2;\nA = #1 B;\n",
				"schema.vs.old": "version v1;\nA = #1 int;\n",
			},
			args:    []string{"schema.vs", "v2.vsm"},
			wantErr: "schema.vs:2:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, tt.files)
			code, _, errOut := runCmd(t, append([]string{"migration", "finish"}, tt.args...)...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.wantErr)
			}
			if exists("schema.vs.old") != (tt.files["schema.vs.old"] != "") {
				t.Error("a failed finish changed the .old copy")
			}
		})
	}
}

func TestMigrationCheck_Stubs(t *testing.T) {
	workspace(t, map[string]string{"v2.vsm": "version v1; A = #1 int;\nversion v2; A = #1 string;\n"})

	code, _, errOut := runCmd(t, "migration", "check", "v2.vsm")
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, `"v1" to "v2", 1 upgrade and 1 downgrade function(s), 2 conversion(s) to write`) {
		t.Errorf("stderr = %q", errOut)
	}
}
