// Package resolve binds every identifier of a schema to the index of the
// declaration it names and rejects duplicate names.
package resolve

import (
	"fmt"

	"github.com/agext/levenshtein"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
)

// Invalid is the payload of every node that is not a resolved identifier.
// It must never be used as a declaration index.
const Invalid = -1

// Resolve returns a layer holding, for each identifier node, the index in
// ts.Types of the declaration it references. Duplicate declarations,
// duplicate members and unknown names are reported as fatal diagnostics;
// a duplicated name resolves to its first declaration.
func Resolve(ts *ast.TypeSet, diags *diagnostic.Collector) ast.Layer[int] {
	bindings := make(map[string]int, len(ts.Types))
	for i, nt := range ts.Types {
		if first, ok := bindings[nt.Name]; ok {
			reportDuplicate(diags, "name", nt.Name, nt.NameSpan, ts.Types[first].NameSpan)
			continue
		}
		bindings[nt.Name] = i
	}

	return ast.Run[struct{}, int](ts, nil, func(v *ast.Visit[struct{}]) int {
		switch n := v.Node.(type) {
		case *ast.Identifier:
			if idx, ok := bindings[n.Name]; ok {
				return idx
			}
			d := diags.Error(diagnostic.CategoryName,
				diagnostic.At(n.Span(), "this type is not declared"),
				fmt.Sprintf("unknown type '%s'", n.Name))
			if s := suggest(n.Name, ts); s != "" {
				d.WithHint(fmt.Sprintf("did you mean '%s'?", s))
			}
		case *ast.Struct:
			checkMembers(diags, "field", n.Fields)
		case *ast.Enum:
			checkMembers(diags, "variant", n.Variants)
		}
		return Invalid
	})
}

func checkMembers(diags *diagnostic.Collector, what string, members []*ast.Member) {
	seen := make(map[string]*ast.Member, len(members))
	for _, m := range members {
		if first, ok := seen[m.Name]; ok {
			reportDuplicate(diags, what, m.Name, m.NameSpan, first.NameSpan)
			continue
		}
		seen[m.Name] = m
	}
}

func reportDuplicate(diags *diagnostic.Collector, what, name string, dup, first ast.Span) {
	diags.Error(diagnostic.CategoryName,
		diagnostic.At(dup, "the %s '%s' was used again here", what, name),
		fmt.Sprintf("the %s '%s' was declared multiple times", what, name),
	).WithSecondary(diagnostic.At(first, "the %s '%s' was first used here", what, name))
}

// suggest returns the declared name closest to name, if any is close
// enough to be a plausible typo.
func suggest(name string, ts *ast.TypeSet) string {
	best, bestDist := "", max(1, len(name)/3)+1
	for _, nt := range ts.Types {
		if d := levenshtein.Distance(name, nt.Name, nil); d < bestDist {
			best, bestDist = nt.Name, d
		}
	}
	return best
}
