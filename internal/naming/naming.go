// Package naming derives target-language identifiers for every node of a
// schema: case conversion, reserved-word escaping and disambiguation.
//
// Types defined inline are named after the path that leads to them, so
// the struct in "User = struct { address: struct { ... } }" becomes
// UserAddress in Rust. List elements contribute the word "element".
package naming

import (
	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/resolve"
)

const elementWord = "element"

// Names holds the identifiers chosen for one schema and one target.
type Names struct {
	// Version is the identifier of the schema version (a module or
	// package name).
	Version string

	// Types holds the name each type is referred to by: declarations and
	// their root types carry the declaration's name, inline structs and
	// enums a name derived from their path, and nested identifiers the
	// name of the declaration they reference. Nested lists and
	// primitives have no name.
	Types ast.Layer[string]

	// Members holds the names of fields and variants, unique within
	// their composite.
	Members ast.Layer[string]

	// Variants holds a type name for each enum variant when the rules
	// ask for qualified variants.
	Variants ast.Layer[string]

	// Migration holds a name for every type node, used to derive the
	// names of migration functions. It has its own namespace.
	Migration ast.Layer[string]
}

// Type returns the type name of t.
func (n *Names) Type(t ast.Type) string { return n.Types.Of(t) }

// Member returns the name of m.
func (n *Names) Member(m *ast.Member) string { return n.Members.Of(m) }

// Name computes the identifiers of ts under rules.
func Name(ts *ast.TypeSet, res ast.Layer[int], rules Rules) *Names {
	n := &Names{
		Version:   rules.Version.Apply(Words(ts.Version)),
		Types:     ast.NewLayer[string](ts),
		Members:   ast.NewLayer[string](ts),
		Variants:  ast.NewLayer[string](ts),
		Migration: ast.NewLayer[string](ts),
	}
	paths := Paths(ts)

	// Declarations claim their names before inline types can.
	types := NewScope()
	for _, nt := range ts.Types {
		name := types.Claim(rules.Types.Apply(Words(nt.Name)))
		n.Types.Set(nt.ID(), name)
		n.Types.Set(nt.Type.ID(), name)
	}

	if rules.QualifiedVariants {
		ast.Walk(ts, func(t ast.Type) bool {
			if e, ok := t.(*ast.Enum); ok {
				for _, v := range e.Variants {
					n.Variants.Set(v.ID(), types.Claim(rules.Types.Apply(paths.Of(v.Type))))
				}
			}
			return true
		})
	}

	migrations := NewScope()
	ast.Walk(ts, func(t ast.Type) bool {
		switch t := t.(type) {
		case *ast.Struct, *ast.Enum:
			if n.Types.Of(t) == "" {
				n.Types.Set(t.ID(), types.Claim(rules.Types.Apply(paths.Of(t))))
			}
		}
		n.Migration.Set(t.ID(), migrations.Claim(rules.Migration.Apply(paths.Of(t))))

		if members := ast.Members(t); members != nil {
			style := rules.Fields
			if _, ok := t.(*ast.Enum); ok {
				style = rules.Variants
			}
			scope := NewScope()
			for _, m := range members {
				n.Members.Set(m.ID(), scope.Claim(style.Apply(Words(m.Name))))
			}
		}
		return true
	})

	// Nested identifiers take the name of their declaration. Root types
	// keep the name of the declaration they define.
	ast.Walk(ts, func(t ast.Type) bool {
		if id, ok := t.(*ast.Identifier); ok && n.Types.Of(id) == "" {
			if idx := res.Of(id); idx != resolve.Invalid {
				n.Types.Set(id.ID(), n.Types.Of(ts.Types[idx]))
			}
		}
		return true
	})
	return n
}

// Paths returns, for every type node, the words of the path leading to
// it: the declaration name, then each enclosing member name, with
// "element" for every list element on the way.
func Paths(ts *ast.TypeSet) ast.Layer[[]string] {
	return ast.Run[struct{}, []string](ts, nil, func(v *ast.Visit[struct{}]) []string {
		if _, ok := v.Node.(ast.Type); !ok {
			return nil
		}
		var words []string
		for _, anc := range v.Ancestors {
			switch anc := anc.(type) {
			case *ast.NamedType:
				words = append(words, Words(anc.Name)...)
			case *ast.Member:
				words = append(words, Words(anc.Name)...)
			case *ast.List:
				words = append(words, elementWord)
			}
		}
		return words
	})
}
