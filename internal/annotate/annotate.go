// Package annotate manages stable type numbers: it assigns numbers to the
// types of a schema, produces the text edits that add or remove their
// "#N" syntax, and rejects numbers used twice.
//
// Numbers are the only identity a type keeps across schema versions. They
// do not depend on names, positions or shapes, so renaming, reordering or
// reshaping a type does not break the pairing of its versions.
package annotate

import (
	"fmt"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/rewrite"
)

// Annotate numbers every type node of ts that has no number yet. Nodes
// are visited in pre-order and each receives the smallest positive number
// not already used. It returns the insertions that write the numbers into
// the source and the numbers it assigned, in the same order.
//
// A fully numbered schema yields no edits.
func Annotate(ts *ast.TypeSet) ([]rewrite.Edit, []uint64) {
	used := make(map[uint64]bool)
	for _, n := range Numbers(ts) {
		used[n] = true
	}

	var (
		edits    []rewrite.Edit
		assigned []uint64
		next     uint64 = 1
	)
	ast.Walk(ts, func(t ast.Type) bool {
		if t.Number() != nil {
			return true
		}
		for used[next] {
			next++
		}
		used[next] = true
		assigned = append(assigned, next)

		span := t.Span()
		text := fmt.Sprintf("#%d ", next)
		if span.Empty() {
			text = fmt.Sprintf(" #%d", next)
		}
		edits = append(edits, rewrite.Insert(span.Start, text))
		return true
	})
	return edits, assigned
}

// Numbers returns the explicit numbers of ts in pre-order.
func Numbers(ts *ast.TypeSet) []uint64 {
	var out []uint64
	ast.Walk(ts, func(t ast.Type) bool {
		if n := t.Number(); n != nil {
			out = append(out, n.Value)
		}
		return true
	})
	return out
}

// Strip returns the deletions that remove every number of ts for which
// keep returns false. A nil keep removes all numbers. Each deletion also
// removes the whitespace between the number and its type, so stripping
// the output of Annotate restores the original text.
func Strip(ts *ast.TypeSet, keep func(uint64) bool) []rewrite.Edit {
	var edits []rewrite.Edit
	ast.Walk(ts, func(t ast.Type) bool {
		n := t.Number()
		if n == nil || (keep != nil && keep(n.Value)) {
			return true
		}
		// "#N type" for written types, "name #N" for bare members whose
		// type span is empty and precedes the number.
		after := n.Span.Start >= t.Span().End && t.Span().Empty()
		edits = append(edits, rewrite.Delete(n.Span, after, !after))
		return true
	})
	return edits
}

// CheckNumbers reports a fatal diagnostic for every number that repeats
// one used earlier in ts.
func CheckNumbers(ts *ast.TypeSet, diags *diagnostic.Collector) {
	first := make(map[uint64]ast.Span)
	ast.Walk(ts, func(t ast.Type) bool {
		n := t.Number()
		if n == nil {
			return true
		}
		if span, ok := first[n.Value]; ok {
			diags.Error(diagnostic.CategoryNumber,
				diagnostic.At(n.Span, "the type number #%d was used again here", n.Value),
				fmt.Sprintf("the type number #%d was used multiple times", n.Value),
			).WithSecondary(diagnostic.At(span, "the type number #%d was first used here", n.Value))
			return true
		}
		first[n.Value] = n.Span
		return true
	})
}
