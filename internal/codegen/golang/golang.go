// Package golang prints schemas as Go packages and migrations as Go
// conversion functions.
//
// Every version is a package in a directory of its own. Structs become
// struct types whose JSON tags match the TypeScript output, enums sealed
// interfaces implemented by one struct per variant, and lists slices.
// The migrations to a version live in migrations/VERSION and import both
// version packages.
package golang

import (
	"fmt"

	"golang.org/x/tools/imports"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

const indent = "\t"

// Options configure the generated packages.
type Options struct {
	// ImportPath is the import path of the directory holding the version
	// packages. Migrations cannot be printed without it.
	ImportPath string
}

// Target prints Go.
type Target struct {
	opts Options
}

var _ codegen.Target = (*Target)(nil)

// New returns a Go target.
func New(opts Options) *Target {
	return &Target{opts: opts}
}

func (*Target) Name() string        { return "go" }
func (*Target) Rules() naming.Rules { return naming.Go }

// TypesOutput writes VERSION/types.go.
func (t *Target) TypesOutput(s *migration.Side) (*codegen.Output, error) {
	src, err := t.Types(s)
	if err != nil {
		return nil, err
	}
	return &codegen.Output{
		Files: []codegen.File{{Path: s.Names.Version + "/types.go", Content: src}},
	}, nil
}

// MigrationsOutput writes migrations/NEW/migrations.go.
func (t *Target) MigrationsOutput(p *migration.Plan) (*codegen.Output, error) {
	src, err := t.Migrations(p)
	if err != nil {
		return nil, err
	}
	return &codegen.Output{
		Files: []codegen.File{{Path: "migrations/" + p.New.Names.Version + "/migrations.go", Content: src}},
	}, nil
}

// format runs gofmt over generated source.
func format(filename, src string) (string, error) {
	out, err := imports.Process(filename, []byte(src), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return "", fmt.Errorf("formatting generated %s: %w", filename, err)
	}
	return string(out), nil
}

// printer prints type expressions of one side. prefix qualifies the
// side's own types ("v1." in migrations).
type printer struct {
	side   *migration.Side
	prefix string
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
		return "[]" + p.typeExpr(t.Elem)
	case *ast.Primitive:
		switch t.Kind {
		case ast.String:
			return "string"
		case ast.Int:
			return "int64"
		default:
			return "struct{}"
		}
	case *ast.Identifier:
		name := p.prefix + p.target(t)
		if p.pointer(t) {
			return "*" + name
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

// pointer reports whether the boxed identifier id is printed as a
// pointer. Interfaces already hold their value indirectly.
func (p *printer) pointer(id *ast.Identifier) bool {
	if !p.side.Boxes.Of(id) {
		return false
	}
	_, isEnum := p.side.Target(id).(*ast.Enum)
	return !isEnum
}

// isNewtype reports whether t is the root of a declaration printed as a
// defined type rather than an alias.
func (p *printer) isNewtype(t ast.Type) bool {
	i := p.side.Decl(t)
	return i >= 0 && p.side.Newtypes[i]
}
