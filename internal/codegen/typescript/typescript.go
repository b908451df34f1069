// Package typescript prints schemas as TypeScript type declarations and
// migrations as TypeScript conversion functions.
//
// Structs become object types, enums unions of { type, value } objects
// tagged with the variant name, and lists arrays. Every version is a
// module (v1.ts) re-exported from index.ts.
package typescript

import (
	"fmt"
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

const indent = "  "

// Target prints TypeScript.
type Target struct{}

var _ codegen.Target = (*Target)(nil)

// New returns a TypeScript target.
func New() *Target { return &Target{} }

func (*Target) Name() string        { return "typescript" }
func (*Target) Rules() naming.Rules { return naming.TypeScript }

// TypesOutput writes VERSION.ts and re-exports it from index.ts.
func (t *Target) TypesOutput(s *migration.Side) (*codegen.Output, error) {
	src, err := t.Types(s)
	if err != nil {
		return nil, err
	}
	mod := s.Names.Version
	return &codegen.Output{
		Files:   []codegen.File{{Path: mod + ".ts", Content: src}},
		Appends: []codegen.Append{{Path: "index.ts", Line: reexport(mod)}},
	}, nil
}

// MigrationsOutput writes migrations/NEW.ts and re-exports it.
func (t *Target) MigrationsOutput(p *migration.Plan) (*codegen.Output, error) {
	src, err := t.Migrations(p)
	if err != nil {
		return nil, err
	}
	mod := p.New.Names.Version
	return &codegen.Output{
		Files: []codegen.File{{Path: "migrations/" + mod + ".ts", Content: src}},
		Appends: []codegen.Append{
			{Path: "migrations/index.ts", Line: reexport(mod)},
			{Path: "index.ts", Line: reexport("migrations")},
		},
	}, nil
}

func reexport(mod string) string {
	return fmt.Sprintf("export * as %s from %s;", mod, codegen.Quote("./"+mod))
}

// printer prints type expressions of one side.
type printer struct {
	side   *migration.Side
	module string // "v1." in migrations
	never  []bool
}

func newPrinter(side *migration.Side, module string) *printer {
	return &printer{side: side, module: module, never: aliasCycles(side)}
}

// aliasCycles marks the declarations that are identifiers leading back to
// themselves through identifiers only. TypeScript rejects such aliases.
func aliasCycles(side *migration.Side) []bool {
	ts := side.Tree
	out := make([]bool, len(ts.Types))
	for i := range ts.Types {
		seen := make(map[int]bool)
		for j := i; !seen[j]; {
			seen[j] = true
			id, ok := ts.Types[j].Type.(*ast.Identifier)
			if !ok {
				break
			}
			j = side.Res.Of(id)
			if j < 0 {
				break
			}
			if j == i {
				out[i] = true
			}
		}
	}
	return out
}

// typeExpr is how t is referred to: declarations by name, everything
// else spelled out.
func (p *printer) typeExpr(t ast.Type) string {
	if i := p.side.Decl(t); i >= 0 {
		return p.module + p.side.Names.Types.Of(p.side.Tree.Types[i])
	}
	return p.inner(t)
}

// inner spells out t even when it is the root of a declaration.
func (p *printer) inner(t ast.Type) string {
	switch t := t.(type) {
	case *ast.Struct:
		if len(t.Fields) == 0 {
			return "{}"
		}
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&sb, "%s%s: %s;\n", indent, p.side.Names.Member(f), codegen.Nest(p.typeExpr(f.Type), indent))
		}
		sb.WriteString("}")
		return sb.String()
	case *ast.Enum:
		if len(t.Variants) == 0 {
			return "never"
		}
		return strings.Join(p.variants(t), " | ")
	case *ast.List:
		elem := p.typeExpr(t.Elem)
		if e, ok := t.Elem.(*ast.Enum); ok && len(e.Variants) > 1 && p.side.Decl(e) < 0 {
			return "(" + elem + ")[]"
		}
		return elem + "[]"
	case *ast.Primitive:
		switch t.Kind {
		case ast.String:
			return "string"
		case ast.Int:
			return "number"
		default:
			return "null"
		}
	case *ast.Identifier:
		if root := p.side.Target(t); root != nil {
			return p.module + p.side.Names.Type(root)
		}
		return p.module + p.side.Names.Type(t)
	}
	panic("unreachable")
}

func (p *printer) variants(e *ast.Enum) []string {
	out := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		out[i] = fmt.Sprintf("{ type: %s; value: %s }",
			codegen.Quote(p.side.Names.Member(v)), p.typeExpr(v.Type))
	}
	return out
}
