// Package rust prints schemas as Rust modules and migrations as Rust
// conversion functions.
//
// Every schema version becomes a module (v1.rs) registered in mod.rs.
// Migrations live in a migrations module next to the versions, one file
// per new version, and refer to both versions through super::super.
package rust

import (
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

const indent = "    "

// Options configure the generated types.
type Options struct {
	// Serde derives Serialize and Deserialize with field and variant
	// names matching the TypeScript output.
	Serde bool

	// Derives are added to the derive list of every type.
	Derives []string
}

// Target prints Rust.
type Target struct {
	opts Options
}

var _ codegen.Target = (*Target)(nil)

// New returns a Rust target.
func New(opts Options) *Target {
	return &Target{opts: opts}
}

func (*Target) Name() string        { return "rust" }
func (*Target) Rules() naming.Rules { return naming.Rust }

func (t *Target) derives() []string {
	out := []string{"Debug", "Clone"}
	if t.opts.Serde {
		out = append(out, "Serialize", "Deserialize")
	}
	return append(out, t.opts.Derives...)
}

// TypesOutput writes VERSION.rs and registers it in mod.rs.
func (t *Target) TypesOutput(s *migration.Side) (*codegen.Output, error) {
	src, err := t.Types(s)
	if err != nil {
		return nil, err
	}
	mod := moduleFile(s.Names.Version)
	return &codegen.Output{
		Files:   []codegen.File{{Path: mod + ".rs", Content: src}},
		Appends: []codegen.Append{{Path: "mod.rs", Line: "pub mod " + s.Names.Version + ";"}},
	}, nil
}

// MigrationsOutput writes migrations/NEW.rs and registers it in
// migrations/mod.rs, and the migrations module in mod.rs.
func (t *Target) MigrationsOutput(p *migration.Plan) (*codegen.Output, error) {
	src, err := t.Migrations(p)
	if err != nil {
		return nil, err
	}
	mod := moduleFile(p.New.Names.Version)
	return &codegen.Output{
		Files: []codegen.File{{Path: "migrations/" + mod + ".rs", Content: src}},
		Appends: []codegen.Append{
			{Path: "migrations/mod.rs", Line: "pub mod " + p.New.Names.Version + ";"},
			{Path: "mod.rs", Line: "pub mod migrations;"},
		},
	}, nil
}

// moduleFile returns the file name of a module: raw identifiers map to
// the bare word.
func moduleFile(mod string) string {
	return strings.TrimPrefix(mod, "r#")
}

// printer prints type expressions of one side. prefix qualifies the
// side's own types ("v1::" in migrations).
type printer struct {
	side   *migration.Side
	prefix string
	taken  map[string]bool
}

func newPrinter(side *migration.Side, prefix string) *printer {
	p := &printer{side: side, prefix: prefix, taken: make(map[string]bool)}
	if prefix == "" {
		ast.Walk(side.Tree, func(t ast.Type) bool {
			if name := side.Names.Type(t); name != "" {
				p.taken[name] = true
			}
			return true
		})
	}
	return p
}

// std returns name, or its full path when a schema type shadows it.
func (p *printer) std(name, path string) string {
	if p.taken[name] {
		return path
	}
	return name
}

// typeExpr is how t is referred to: declarations by name.
func (p *printer) typeExpr(t ast.Type) string {
	if i := p.side.Decl(t); i >= 0 {
		return p.prefix + p.side.Names.Types.Of(p.side.Tree.Types[i])
	}
	return p.inner(t)
}

// inner spells out t even when it is the root of a declaration.
func (p *printer) inner(t ast.Type) string {
	switch t := t.(type) {
	case *ast.Struct, *ast.Enum:
		return p.prefix + p.side.Names.Type(t)
	case *ast.List:
		return p.std("Vec", "::std::vec::Vec") + "<" + p.typeExpr(t.Elem) + ">"
	case *ast.Primitive:
		switch t.Kind {
		case ast.String:
			return p.std("String", "::std::string::String")
		case ast.Int:
			return p.std("i64", "::std::primitive::i64")
		default:
			return "()"
		}
	case *ast.Identifier:
		name := p.prefix + p.target(t)
		if p.side.Boxes.Of(t) {
			return p.std("Box", "::std::boxed::Box") + "<" + name + ">"
		}
		return name
	}
	panic("unreachable")
}

func (p *printer) target(id *ast.Identifier) string {
	if root := p.side.Target(id); root != nil {
		return p.side.Names.Type(root)
	}
	return p.side.Names.Type(id)
}

// isNewtype reports whether t is the root of a declaration printed as a
// tuple struct.
func (p *printer) isNewtype(t ast.Type) bool {
	i := p.side.Decl(t)
	return i >= 0 && p.side.Newtypes[i]
}
