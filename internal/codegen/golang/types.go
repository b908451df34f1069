package golang

import (
	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

// Types prints the package of s: aliases and defined types first, then
// every struct and enum in pre-order.
func (t *Target) Types(s *migration.Side) (string, error) {
	tp := &typesPrinter{
		printer: &printer{side: s},
		wire:    naming.Name(s.Tree, s.Res, naming.TypeScript),
	}
	hasEnum := false
	ast.Walk(s.Tree, func(n ast.Type) bool {
		if _, ok := n.(*ast.Enum); ok {
			hasEnum = true
		}
		return !hasEnum
	})

	e := codegen.NewEmitter(indent)
	e.Line("// Code generated by versed from version %s. DO NOT EDIT.", codegen.Quote(s.Tree.Version))
	e.Blank()
	e.Line("package %s", s.Names.Version)
	if hasEnum {
		e.Blank()
		e.Line(`import "encoding/json"`)
	}

	for i, nt := range s.Tree.Types {
		switch nt.Type.(type) {
		case *ast.Struct, *ast.Enum:
			continue
		}
		e.Blank()
		if s.Newtypes[i] {
			e.Line("type %s %s", s.Names.Types.Of(nt), tp.inner(nt.Type))
		} else {
			e.Line("type %s = %s", s.Names.Types.Of(nt), tp.inner(nt.Type))
		}
	}

	for _, nt := range s.Tree.Types {
		ast.WalkType(nt.Type, func(n ast.Type) bool {
			switch n := n.(type) {
			case *ast.Struct:
				tp.emitStruct(e, n)
			case *ast.Enum:
				tp.emitEnum(e, n)
			}
			return true
		})
	}

	if hasEnum {
		e.Blank()
		e.Block("type variant[T any] struct")
		e.Line("Type string `json:\"type\"`")
		e.Line("Value T `json:\"value\"`")
		e.EndBlock()
	}
	return format("types.go", e.String())
}

type typesPrinter struct {
	*printer
	wire *naming.Names
}

func (tp *typesPrinter) emitStruct(e *codegen.Emitter, s *ast.Struct) {
	e.Blank()
	e.Block("type %s struct", tp.side.Names.Type(s))
	for _, f := range s.Fields {
		e.Line("%s %s `json:%s`", tp.side.Names.Member(f), tp.typeExpr(f.Type), codegen.Quote(tp.wire.Member(f)))
	}
	e.EndBlock()
}

// emitEnum prints the sealed interface of en and its variant types.
// Variants marshal to the same { "type", "value" } objects as the
// TypeScript unions.
func (tp *typesPrinter) emitEnum(e *codegen.Emitter, en *ast.Enum) {
	name := tp.side.Names.Type(en)
	e.Blank()
	e.Block("type %s interface", name)
	e.Line("is%s()", name)
	e.EndBlock()

	for _, v := range en.Variants {
		vt := tp.side.Names.Variants.Of(v)
		tag := codegen.Quote(tp.wire.Member(v))

		e.Blank()
		e.Block("type %s struct", vt)
		e.Line("Value %s", tp.typeExpr(v.Type))
		e.EndBlock()
		e.Blank()
		e.Line("func (%s) is%s() {}", vt, name)
		e.Blank()
		e.Block("func (v %s) MarshalJSON() ([]byte, error)", vt)
		if p, ok := v.Type.(*ast.Primitive); ok && p.Kind == ast.Unit {
			e.Line("return json.Marshal(variant[any]{Type: %s})", tag)
		} else {
			e.Line("return json.Marshal(variant[%s]{Type: %s, Value: v.Value})", tp.typeExpr(v.Type), tag)
		}
		e.EndBlock()
	}
}
