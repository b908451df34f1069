package resolve

import (
	"testing"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/testutil"
)

func TestResolve_FieldReference(t *testing.T) {
	ts := testutil.MustParse(t, "version v1; A = struct { b: B }; B = int;")
	diags := diagnostic.NewCollector(false, false)
	res := Resolve(ts, diags)

	if n := len(diags.Diagnostics()); n != 0 {
		t.Fatalf("got %d diagnostics, want 0:\n%s", n, diags.FormatAll())
	}
	b := testutil.Find(t, ts, "A.b")
	if got := res.Of(b); got != 1 {
		t.Errorf("B resolves to %d, want 1", got)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		message   string
		secondary string
		hint      string
	}{
		{
			name:      "duplicate declaration",
			src:       "version v1; A = int; A = string;",
			message:   "the name 'A' was declared multiple times",
			secondary: "the name 'A' was first used here",
		},
		{
			name:      "duplicate field",
			src:       "version v1; A = struct { x: int, x: string };",
			message:   "the field 'x' was declared multiple times",
			secondary: "the field 'x' was first used here",
		},
		{
			name:      "duplicate variant",
			src:       "version v1; A = enum { x, y, x };",
			message:   "the variant 'x' was declared multiple times",
			secondary: "the variant 'x' was first used here",
		},
		{
			name:    "unknown type",
			src:     "version v1; User = int; A = Usr;",
			message: "unknown type 'Usr'",
			hint:    "did you mean 'User'?",
		},
		{
			name:    "unknown type without suggestion",
			src:     "version v1; A = Completely;",
			message: "unknown type 'Completely'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.MustParse(t, tt.src)
			diags := diagnostic.NewCollector(false, false)
			Resolve(ts, diags)

			got := diags.Diagnostics()
			if len(got) != 1 {
				t.Fatalf("got %d diagnostics, want 1:\n%s", len(got), diags.FormatAll())
			}
			d := got[0]
			if !d.Fatal() || d.Message != tt.message {
				t.Errorf("diagnostic = %q (fatal=%v), want fatal %q", d.Message, d.Fatal(), tt.message)
			}
			if tt.secondary != "" && (d.Secondary == nil || d.Secondary.Message != tt.secondary) {
				t.Errorf("secondary = %v, want %q", d.Secondary, tt.secondary)
			}
			if d.Hint != tt.hint {
				t.Errorf("hint = %q, want %q", d.Hint, tt.hint)
			}
		})
	}
}

func TestResolve_DuplicateUsesFirstBinding(t *testing.T) {
	ts := testutil.MustParse(t, "version v1; A = int; A = string; B = A;")
	res := Resolve(ts, diagnostic.NewCollector(false, false))
	if got := res.Of(testutil.Find(t, ts, "B")); got != 0 {
		t.Errorf("A resolves to %d, want the first declaration 0", got)
	}
}

// Every identifier of an accepted tree resolves to a valid index, and
// every other node carries Invalid.
func TestResolve_Totality(t *testing.T) {
	ts := testutil.MustParse(t, `version v1;
		A = struct { b: B, list: [enum { x: A, y: [C] }] };
		B = enum { a: A, c: C, u };
		C = [B];
	`)
	diags := diagnostic.NewCollector(false, false)
	res := Resolve(ts, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", diags.FormatAll())
	}

	identifiers := 0
	ast.Walk(ts, func(ty ast.Type) bool {
		if _, ok := ty.(*ast.Identifier); ok {
			identifiers++
			if idx := res.Of(ty); idx < 0 || idx >= len(ts.Types) {
				t.Errorf("identifier %d resolved to invalid index %d", ty.ID(), idx)
			}
		} else if res.Of(ty) != Invalid {
			t.Errorf("non-identifier %d carries %d", ty.ID(), res.Of(ty))
		}
		return true
	})
	if identifiers != 6 {
		t.Errorf("walked %d identifiers, want 6", identifiers)
	}
}
