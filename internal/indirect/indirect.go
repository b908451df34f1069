// Package indirect decides where generated types need indirection to
// represent recursive schemas.
//
// Generated structs and enums store their members by value, so a cycle of
// references through struct fields and enum variants must contain at
// least one heap-allocated reference (a box). Type aliases are
// transparent, so an alias that refers to itself through lists and other
// aliases must instead become a nominal wrapper type (a newtype).
package indirect

import (
	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/resolve"
)

// Boxes returns a layer marking the identifier nodes that must be stored
// behind a pointer.
//
// For each declaration D, in order, a breadth-first search starts at D's
// type and follows struct fields, enum variants and identifiers, but not
// list elements, which already provide indirection. Every identifier that
// leads back to D is marked. Marked identifiers are not followed again, so
// a cycle found from an earlier declaration is not boxed twice.
func Boxes(ts *ast.TypeSet, res ast.Layer[int]) ast.Layer[bool] {
	boxed := ast.NewLayer[bool](ts)
	for d, nt := range ts.Types {
		expanded := make([]bool, len(ts.Types))
		queue := []ast.Type{nt.Type}
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]

			switch t := t.(type) {
			case *ast.Struct:
				for _, f := range t.Fields {
					queue = append(queue, f.Type)
				}
			case *ast.Enum:
				for _, v := range t.Variants {
					queue = append(queue, v.Type)
				}
			case *ast.List, *ast.Primitive:
			case *ast.Identifier:
				target := res.Of(t)
				if boxed.Of(t) || target == resolve.Invalid {
					continue
				}
				if target == d {
					boxed.Set(t.ID(), true)
					continue
				}
				if !expanded[target] {
					expanded[target] = true
					queue = append(queue, ts.Types[target].Type)
				}
			}
		}
	}
	return boxed
}

// Newtypes reports, per declaration, whether it must be generated as a
// nominal wrapper instead of an alias.
//
// A declaration D is a newtype if D can reach itself following only list
// elements and identifiers; structs and enums are nominal already and end
// the search. Each declaration is searched with its own visited set, in
// order, and declarations already marked are treated as nominal.
func Newtypes(ts *ast.TypeSet, res ast.Layer[int]) []bool {
	marked := make([]bool, len(ts.Types))
	for d, nt := range ts.Types {
		visited := make([]bool, len(ts.Types))
		stack := []ast.Type{nt.Type}
	search:
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch t := t.(type) {
			case *ast.List:
				stack = append(stack, t.Elem)
			case *ast.Identifier:
				target := res.Of(t)
				switch {
				case target == resolve.Invalid:
				case target == d:
					marked[d] = true
					break search
				case !visited[target] && !marked[target]:
					visited[target] = true
					stack = append(stack, ts.Types[target].Type)
				}
			case *ast.Struct, *ast.Enum, *ast.Primitive:
			}
		}
	}
	return marked
}
