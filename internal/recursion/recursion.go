// Package recursion finds declarations whose every value would be
// infinitely large.
package recursion

import (
	"fmt"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/resolve"
)

// Depth classifies how deep the values of a type must be.
type Depth int

const (
	// None means the type has finite values.
	None Depth = iota
	// ContainsNever means the type has no values at all, because it
	// requires an empty enum.
	ContainsNever
	// InfiniteDepth means every value would contain itself.
	InfiniteDepth
)

func (d Depth) String() string {
	switch d {
	case None:
		return "none"
	case ContainsNever:
		return "contains-never"
	case InfiniteDepth:
		return "infinite"
	default:
		return "unknown"
	}
}

// Check computes the depth of every declaration, indexed like ts.Types,
// and warns about each declaration of infinite depth.
//
// The result is the greatest fixpoint of the equations
//
//	struct     = max(fields)
//	enum       = min(variants), ContainsNever when empty
//	list       = None
//	primitive  = None
//	identifier = depth of the referenced declaration
//
// found with a work-list: every declaration starts at InfiniteDepth and is
// re-evaluated whenever a declaration it references decreases.
func Check(ts *ast.TypeSet, res ast.Layer[int], diags *diagnostic.Collector) []Depth {
	c := &checker{
		ts:     ts,
		res:    res,
		depths: make([]Depth, len(ts.Types)),
		values: ast.NewLayer[Depth](ts),
	}

	for i := range c.depths {
		c.depths[i] = InfiniteDepth
	}
	users := referencedBy(ts, res)

	queue := make([]int, len(ts.Types))
	queued := make([]bool, len(ts.Types))
	for i := range queue {
		queue[i] = i
		queued[i] = true
	}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		queued[d] = false

		depth := c.eval(ts.Types[d].Type)
		if depth == c.depths[d] {
			continue
		}
		c.depths[d] = depth
		for _, u := range users[d] {
			if !queued[u] {
				queued[u] = true
				queue = append(queue, u)
			}
		}
	}

	for i, nt := range ts.Types {
		if c.depths[i] == InfiniteDepth {
			diags.Warn(diagnostic.CategoryRecursion,
				diagnostic.At(nt.NameSpan, "every value of this type contains itself"),
				fmt.Sprintf("the type '%s' will unavoidably have infinite depth", nt.Name))
		}
	}
	return c.depths
}

type checker struct {
	ts     *ast.TypeSet
	res    ast.Layer[int]
	depths []Depth
	values ast.Layer[Depth] // scratch space for eval
}

// referencedBy returns, for every declaration, the declarations whose
// types reference it. The resolution arrives as the input layer of the
// traversal; declarations are visited in order, each before its type.
func referencedBy(ts *ast.TypeSet, res ast.Layer[int]) [][]int {
	users := make([][]int, len(ts.Types))
	decl := -1
	ast.Run(ts, res, func(v *ast.Visit[int]) struct{} {
		switch v.Node.(type) {
		case *ast.NamedType:
			decl++
		case *ast.Identifier:
			if v.In != resolve.Invalid {
				users[v.In] = append(users[v.In], decl)
			}
		}
		return struct{}{}
	})
	return users
}

// eval computes the depth of t from the current declaration depths. It
// walks t in post-order with an explicit stack.
func (c *checker) eval(root ast.Type) Depth {
	type frame struct {
		t    ast.Type
		done bool
	}
	stack := []frame{{t: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.done {
			stack = append(stack, frame{t: f.t, done: true})
			for _, m := range ast.Members(f.t) {
				stack = append(stack, frame{t: m.Type})
			}
			continue
		}

		var v Depth
		switch t := f.t.(type) {
		case *ast.Struct:
			v = None
			for _, m := range t.Fields {
				v = max(v, c.values.Of(m.Type))
			}
		case *ast.Enum:
			v = ContainsNever
			for i, m := range t.Variants {
				if i == 0 {
					v = c.values.Of(m.Type)
				} else {
					v = min(v, c.values.Of(m.Type))
				}
			}
		case *ast.List, *ast.Primitive:
			v = None
		case *ast.Identifier:
			if idx := c.res.Of(t); idx != resolve.Invalid {
				v = c.depths[idx]
			}
		}
		c.values.Set(f.t.ID(), v)
	}
	return c.values.Of(root)
}
