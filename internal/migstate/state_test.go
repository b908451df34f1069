package migstate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	if got := Path("schemas/user.vs"); got != "schemas/user.vs.versed-state.json" {
		t.Errorf("Path = %q", got)
	}
	if got := OldPath("schemas/user.vs"); got != "schemas/user.vs.old" {
		t.Errorf("OldPath = %q", got)
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "a.vs")
	os.WriteFile(path, []byte("version v1;"), 0644)
	hash := HashFile(path)
	if hash == "" || hash != Hash([]byte("version v1;")) {
		t.Fatalf("HashFile = %q, want the hash of the contents", hash)
	}

	if got := HashFile(filepath.Join(dir, "nonexistent")); got != "" {
		t.Errorf("HashFile returned %q for a missing file, want empty", got)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "user.vs")
	old := "version v1;\nA = #4 int;\n"
	if err := os.WriteFile(OldPath(schema), []byte(old), 0644); err != nil {
		t.Fatal(err)
	}

	if s := Load(Path(schema), OldPath(schema)); s != nil {
		t.Fatal("Load should return nil for a missing state file")
	}

	state := New(old, []uint64{4}, []uint64{7, 5, 6})
	if err := Save(Path(schema), state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(Path(schema) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded := Load(Path(schema), OldPath(schema))
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}
	if loaded.V != SchemaVersion || loaded.OldHash != state.OldHash || !loaded.Began.Equal(state.Began) {
		t.Errorf("loaded = %+v, want %+v", loaded, state)
	}
	if got := loaded.Assigned; len(got) != 3 || got[0] != 5 || got[2] != 7 {
		t.Errorf("Assigned = %v, want sorted [5 6 7]", got)
	}
	if !loaded.Keep(4) || loaded.Keep(5) {
		t.Errorf("Keep(4) = %v, Keep(5) = %v", loaded.Keep(4), loaded.Keep(5))
	}

	data, _ := os.ReadFile(Path(schema))
	if !strings.Contains(string(data), "\n  \"oldHash\"") {
		t.Errorf("state file is not indented:\n%s", data)
	}

	Delete(Path(schema))
	if _, err := os.Stat(Path(schema)); !os.IsNotExist(err) {
		t.Error("Delete did not remove the state file")
	}
	Delete(Path(schema)) // no panic on a missing file
}

func TestLoad_Misses(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, statePath, oldPath string)
	}{
		{
			name: "invalid json",
			setup: func(t *testing.T, statePath, oldPath string) {
				os.WriteFile(statePath, []byte("not json"), 0644)
			},
		},
		{
			name: "other version",
			setup: func(t *testing.T, statePath, oldPath string) {
				s := New("old", nil, nil)
				s.V = SchemaVersion + 1
				if err := Save(statePath, s); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "stale hash",
			setup: func(t *testing.T, statePath, oldPath string) {
				if err := Save(statePath, New("something else", nil, nil)); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "missing old copy",
			setup: func(t *testing.T, statePath, oldPath string) {
				os.Remove(oldPath)
				if err := Save(statePath, New("old", nil, nil)); err != nil {
					t.Fatal(err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			statePath, oldPath := filepath.Join(dir, "s.json"), filepath.Join(dir, "a.vs.old")
			os.WriteFile(oldPath, []byte("old"), 0644)
			tt.setup(t, statePath, oldPath)
			if s := Load(statePath, oldPath); s != nil {
				t.Errorf("Load = %+v, want a miss", s)
			}
		})
	}
}

func TestKeep_NilState(t *testing.T) {
	var s *State
	if s.Keep(1) {
		t.Error("a nil state keeps no numbers")
	}
}
