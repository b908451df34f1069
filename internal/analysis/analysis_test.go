package analysis

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/naming"
	"github.com/versed/versed/internal/recursion"
)

func messages(c *diagnostic.Collector) string {
	var msgs []string
	for _, d := range c.Diagnostics() {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "\n")
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		strict   bool
		ok       bool
		warnings int
		want     string
	}{
		{
			name: "valid",
			src:  `version v1; User = struct { name: string, friends: [User] };`,
			ok:   true,
		},
		{
			name: "syntax error",
			src:  `version v1; User = struct { name: };`,
			want: "expected",
		},
		{
			name: "unknown type",
			src:  `version v1; User = struct { address: Address };`,
			want: "unknown type 'Address'",
		},
		{
			name: "duplicate number",
			src:  `version v1; A = #1 int; B = #1 string;`,
			want: "the type number #1 was used again here",
		},
		{
			name:     "infinite depth is a warning",
			src:      `version v1; Loop = struct { next: Loop };`,
			ok:       true,
			warnings: 1,
			want:     "the type 'Loop' will unavoidably have infinite depth",
		},
		{
			name:   "strict turns warnings into errors",
			src:    `version v1; Loop = struct { next: Loop };`,
			strict: true,
			want:   "infinite depth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := diagnostic.NewCollector(tt.strict, false)
			s := Analyze("test.vs", tt.src, diags)
			if (s != nil) != tt.ok {
				t.Fatalf("Analyze returned %v, want ok=%v; diagnostics:\n%s", s, tt.ok, diags.FormatAll())
			}
			if got := diags.WarningCount(); got != tt.warnings {
				t.Errorf("warnings = %d, want %d", got, tt.warnings)
			}
			if !strings.Contains(messages(diags), tt.want) {
				t.Errorf("diagnostics %q do not mention %q", messages(diags), tt.want)
			}
		})
	}
}

func TestAnalyze_Results(t *testing.T) {
	diags := diagnostic.NewCollector(false, false)
	s := Analyze("test.vs", `version v1; A = B; B = [A]; C = struct { c: C };`, diags)
	if s == nil {
		t.Fatalf("analysis failed:\n%s", diags.FormatAll())
	}
	if s.File != "test.vs" || s.Tree.Version != "v1" {
		t.Errorf("schema = %+v", s)
	}
	want := []recursion.Depth{recursion.None, recursion.None, recursion.InfiniteDepth}
	for i, d := range want {
		if s.Depths[i] != d {
			t.Errorf("depth of %s = %v, want %v", s.Tree.Types[i].Name, s.Depths[i], d)
		}
	}
	side := s.Side(naming.Rust)
	if !side.Newtypes[0] {
		t.Errorf("A should be a newtype")
	}
}

func TestAnalyzeMigration(t *testing.T) {
	t.Run("same version", func(t *testing.T) {
		diags := diagnostic.NewCollector(false, false)
		m := AnalyzeMigration("m.vsm", `version v1; A = int; version v1; A = int;`, diags)
		if m != nil {
			t.Fatal("migration between equal versions was accepted")
		}
		if !strings.Contains(messages(diags), "the new schema has the same version as the old schema") {
			t.Errorf("diagnostics = %q", messages(diags))
		}
	})

	t.Run("errors on either side", func(t *testing.T) {
		diags := diagnostic.NewCollector(false, false)
		m := AnalyzeMigration("m.vsm", `version v1; A = int; version v2; A = B;`, diags)
		if m != nil || !strings.Contains(messages(diags), "unknown type 'B'") {
			t.Errorf("m = %v, diagnostics = %q", m, messages(diags))
		}
	})

	t.Run("plan", func(t *testing.T) {
		diags := diagnostic.NewCollector(false, false)
		m := AnalyzeMigration("m.vsm", `version v1; A = #1 struct { x: #2 int };
version v2; A = #1 struct { x: #2 int, y: int };`, diags)
		if m == nil {
			t.Fatalf("analysis failed:\n%s", diags.FormatAll())
		}
		if m.Old.Tree.Version != "v1" || m.New.Tree.Version != "v2" {
			t.Errorf("versions = %q, %q", m.Old.Tree.Version, m.New.Tree.Version)
		}
		p := m.Plan(naming.Rust)
		if len(p.Up) != 2 || len(p.Down) != 2 {
			t.Errorf("got %d upgrades and %d downgrades, want 2 each", len(p.Up), len(p.Down))
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.vs")
	if err := os.WriteFile(path, []byte("version v1;\nA = int;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	diags := diagnostic.NewCollector(false, false)
	s, err := Load(path, diags)
	if err != nil || s == nil {
		t.Fatalf("Load = %v, %v", s, err)
	}
	if src, ok := diags.Source(path); !ok || src != s.Source {
		t.Errorf("source not registered with the collector")
	}

	_, err = Load(filepath.Join(dir, "missing.vs"), diags)
	if !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "failed to read schema") {
		t.Errorf("err = %v", err)
	}
	_, err = LoadMigration(filepath.Join(dir, "missing.vsm"), diags)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestCache(t *testing.T) {
	c, err := NewCache(2, false, false)
	if err != nil {
		t.Fatal(err)
	}
	src := `version v1; Loop = struct { next: Loop };`

	first := diagnostic.NewCollector(false, false)
	a := c.Analyze("a.vs", src, first)
	second := diagnostic.NewCollector(false, false)
	b := c.Analyze("a.vs", src, second)

	if a == nil || a != b {
		t.Errorf("cached analysis not reused: %p, %p", a, b)
	}
	if first.WarningCount() != 1 || second.WarningCount() != 1 {
		t.Errorf("warnings = %d, %d, want 1 each", first.WarningCount(), second.WarningCount())
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}

	c.Analyze("a.vs", src+"\nB = int;", diagnostic.NewCollector(false, false))
	c.Analyze("b.vs", src, diagnostic.NewCollector(false, false))
	if hits, misses := c.Stats(); hits != 1 || misses != 3 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	if _, err := NewCache(0, false, false); err == nil {
		t.Error("NewCache(0) succeeded")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c, err := NewCache(DefaultCacheSize, false, false)
	if err != nil {
		t.Fatal(err)
	}
	const workers = 16
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			file := []string{"a.vs", "b.vs"}[i%2]
			diags := diagnostic.NewCollector(false, false)
			if s := c.Analyze(file, "version v1; A = int;", diags); s == nil {
				t.Errorf("%s: %s", file, messages(diags))
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	if hits+misses != workers {
		t.Errorf("stats = %d hits, %d misses, want %d lookups", hits, misses, workers)
	}
	if misses < 2 {
		t.Errorf("misses = %d, want at least one per file", misses)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}
