// Package pairing matches the types of two schema versions by their
// stable numbers.
package pairing

import (
	"cmp"
	"slices"

	"github.com/versed/versed/internal/ast"
)

// Pair is a type of the old schema and the type of the new schema that
// carries the same number.
type Pair struct {
	Number uint64
	Old    ast.Type
	New    ast.Type
}

// Swap returns the pair with its sides exchanged.
func (p Pair) Swap() Pair {
	return Pair{Number: p.Number, Old: p.New, New: p.Old}
}

// Pairs returns the pairs of old and new sorted by number. Numbers present
// on one side only are not paired; they are the types a migration added
// or removed. If a number occurs twice on one side, its first occurrence
// is used.
func Pairs(oldSet, newSet *ast.TypeSet) []Pair {
	olds := index(oldSet)
	news := index(newSet)

	var pairs []Pair
	for n, o := range olds {
		if t, ok := news[n]; ok {
			pairs = append(pairs, Pair{Number: n, Old: o, New: t})
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int { return cmp.Compare(a.Number, b.Number) })
	return pairs
}

// Swapped returns pairs with every pair's sides exchanged.
func Swapped(pairs []Pair) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = p.Swap()
	}
	return out
}

func index(ts *ast.TypeSet) map[uint64]ast.Type {
	m := make(map[uint64]ast.Type)
	ast.Walk(ts, func(t ast.Type) bool {
		if n := t.Number(); n != nil {
			if _, dup := m[n.Value]; !dup {
				m[n.Value] = t
			}
		}
		return true
	})
	return m
}
