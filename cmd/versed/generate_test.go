package main

import (
	"path/filepath"
	"strings"
	"testing"
)

const (
	v1Schema    = "version v1;\nUser = struct { name: string };\n"
	v2Migration = "version v1;\nUser = #1 struct { name: #2 string };\nversion v2;\nUser = #1 struct { name: #2 string, age: #3 int };\n"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		files []string
		want  map[string]string // file -> substring
	}{
		{
			name:  "rust types",
			args:  []string{"rust", "types", "-o", "out", "-serde", "-derive", "PartialEq", "schema.vs"},
			files: []string{"out/v1.rs", "out/mod.rs"},
			want: map[string]string{
				"out/v1.rs":  "PartialEq",
				"out/mod.rs": "pub mod v1;",
			},
		},
		{
			name:  "rust types to the default directory",
			args:  []string{"rust", "types", "schema.vs"},
			files: []string{"generated/rust/v1.rs"},
		},
		{
			name:  "rust migration",
			args:  []string{"rust", "migration", "-o", "out", "v2.vsm"},
			files: []string{"out/migrations/v2.rs", "out/migrations/mod.rs", "out/mod.rs"},
			want:  map[string]string{"out/mod.rs": "pub mod migrations;"},
		},
		{
			name:  "typescript types",
			args:  []string{"typescript", "types", "-o", "out", "schema.vs"},
			files: []string{"out/v1.ts", "out/index.ts"},
			want:  map[string]string{"out/index.ts": `export * as v1 from "./v1";`},
		},
		{
			name:  "typescript migration to a single file",
			args:  []string{"typescript", "migration", "-f", "single/upgrade.ts", "v2.vsm"},
			files: []string{"single/upgrade.ts"},
			want:  map[string]string{"single/upgrade.ts": "export function upgradeUser("},
		},
		{
			name:  "go types",
			args:  []string{"go", "types", "-o", "out", "schema.vs"},
			files: []string{"out/v1/types.go"},
			want:  map[string]string{"out/v1/types.go": "package v1"},
		},
		{
			name:  "go migration",
			args:  []string{"go", "migration", "-o", "out", "-import-path", "example.com/app/out", "v2.vsm"},
			files: []string{"out/migrations/v2/migrations.go"},
			want:  map[string]string{"out/migrations/v2/migrations.go": `v1 "example.com/app/out/v1"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, map[string]string{"schema.vs": v1Schema, "v2.vsm": v2Migration})
			code, _, errOut := runCmd(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d\nstderr:\n%s", code, errOut)
			}
			for _, file := range tt.files {
				if !exists(file) {
					t.Errorf("%s was not written", file)
				}
				if !strings.Contains(errOut, filepath.FromSlash(file)) {
					t.Errorf("stderr does not mention %s:\n%s", file, errOut)
				}
			}
			for file, want := range tt.want {
				if got := readFile(t, file); !strings.Contains(got, want) {
					t.Errorf("%s missing %q:\n%s", file, want, got)
				}
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		wantErr string
	}{
		{
			name:    "go migration without an import path",
			args:    []string{"go", "migration", "v2.vsm"},
			code:    1,
			wantErr: "import path",
		},
		{
			name:    "invalid schema",
			args:    []string{"rust", "types", "bad.vs"},
			code:    1,
			wantErr: "bad.vs:2:",
		},
		{
			name:    "invalid derive",
			args:    []string{"rust", "types", "-derive", "Eq, Hash", "schema.vs"},
			code:    1,
			wantErr: "is not a single trait path",
		},
		{
			name:    "output directory is a file",
			args:    []string{"typescript", "types", "-o", "blocker", "schema.vs"},
			code:    3,
			wantErr: "failed to write blocker",
		},
		{
			name:    "missing file argument",
			args:    []string{"typescript", "types"},
			code:    2,
			wantErr: "Usage: versed typescript types [flags] FILE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, map[string]string{
				"schema.vs": v1Schema,
				"v2.vsm":    v2Migration,
				"bad.vs":    "version v1;\nA = B;\n",
				"blocker":   "",
			})
			code, _, errOut := runCmd(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestGenerate_Overwrite(t *testing.T) {
	workspace(t, map[string]string{"schema.vs": v1Schema})
	args := []string{"typescript", "types", "-o", "out", "schema.vs"}

	if code, _, errOut := runCmd(t, args...); code != 0 {
		t.Fatalf("first run: exit code = %d\nstderr:\n%s", code, errOut)
	}
	code, _, errOut := runCmd(t, args...)
	if code != 1 || !strings.Contains(errOut, "use -force to replace it") {
		t.Errorf("second run: code = %d, stderr = %q", code, errOut)
	}

	force := []string{"typescript", "types", "-o", "out", "-force", "schema.vs"}
	if code, _, errOut := runCmd(t, force...); code != 0 {
		t.Fatalf("forced run: exit code = %d\nstderr:\n%s", code, errOut)
	}
	if got := strings.Count(readFile(t, "out/index.ts"), "export * as v1"); got != 1 {
		t.Errorf("index.ts re-exports v1 %d times", got)
	}
}
