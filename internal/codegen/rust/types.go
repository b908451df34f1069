package rust

import (
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

// Types prints the declarations of s: type aliases and newtypes first,
// then every struct and enum in pre-order.
func (t *Target) Types(s *migration.Side) (string, error) {
	tp := &typesPrinter{
		printer: newPrinter(s, ""),
		derive:  "#[derive(" + strings.Join(t.derives(), ", ") + ")]",
		serde:   t.opts.Serde,
	}
	if tp.serde {
		tp.wire = naming.Name(s.Tree, s.Res, naming.TypeScript)
	}

	e := codegen.NewEmitter(indent)
	e.Line("// Generated by versed from version %s. Do not edit.", codegen.Quote(s.Tree.Version))
	if tp.serde {
		e.Blank()
		e.Line("use serde::{Deserialize, Serialize};")
	}
	e.Blank()

	for i, nt := range s.Tree.Types {
		switch nt.Type.(type) {
		case *ast.Struct, *ast.Enum:
			continue
		}
		name := s.Names.Types.Of(nt)
		if s.Newtypes[i] {
			e.Line("%s", tp.derive)
			e.Line("pub struct %s(pub %s);", name, tp.inner(nt.Type))
			e.Blank()
		} else {
			e.Line("pub type %s = %s;", name, tp.inner(nt.Type))
			e.Blank()
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
	return strings.TrimRight(e.String(), "\n") + "\n", nil
}

type typesPrinter struct {
	*printer
	derive string
	serde  bool
	wire   *naming.Names
}

// rename emits a serde rename when the wire name of m differs from its
// Rust name.
func (tp *typesPrinter) rename(e *codegen.Emitter, m *ast.Member) {
	if !tp.serde {
		return
	}
	wire := tp.wire.Member(m)
	if wire != strings.TrimPrefix(tp.side.Names.Member(m), "r#") {
		e.Line("#[serde(rename = %s)]", codegen.Quote(wire))
	}
}

func (tp *typesPrinter) emitStruct(e *codegen.Emitter, s *ast.Struct) {
	e.Line("%s", tp.derive)
	e.Block("pub struct %s", tp.side.Names.Type(s))
	for _, f := range s.Fields {
		tp.rename(e, f)
		e.Line("pub %s: %s,", tp.side.Names.Member(f), tp.typeExpr(f.Type))
	}
	e.EndBlock()
	e.Blank()
}

func (tp *typesPrinter) emitEnum(e *codegen.Emitter, en *ast.Enum) {
	e.Line("%s", tp.derive)
	if tp.serde {
		e.Line(`#[serde(tag = "type", content = "value")]`)
	}
	e.Block("pub enum %s", tp.side.Names.Type(en))
	for _, v := range en.Variants {
		tp.rename(e, v)
		e.Line("%s(%s),", tp.side.Names.Member(v), tp.typeExpr(v.Type))
	}
	e.EndBlock()
	e.Blank()
}
