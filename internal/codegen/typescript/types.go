package typescript

import (
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
)

// Types prints one exported type per declaration.
func (t *Target) Types(s *migration.Side) (string, error) {
	p := newPrinter(s, "")

	e := codegen.NewEmitter(indent)
	e.Line("// Generated by versed from version %s. Do not edit.", codegen.Quote(s.Tree.Version))
	e.Blank()

	for i, nt := range s.Tree.Types {
		name := s.Names.Types.Of(nt)
		if en, ok := nt.Type.(*ast.Enum); ok && len(en.Variants) > 0 {
			e.Line("export type %s =", name)
			e.Indent()
			vs := p.variants(en)
			for j, v := range vs {
				end := ""
				if j == len(vs)-1 {
					end = ";"
				}
				e.Line("| %s%s", v, end)
			}
			e.Dedent()
		} else if p.never[i] {
			e.Line("export type %s = never;", name)
		} else {
			e.Line("export type %s = %s;", name, p.inner(nt.Type))
		}
		e.Blank()
	}

	if len(s.Tree.Types) == 0 {
		e.Line("export {};")
	}
	return strings.TrimRight(e.String(), "\n") + "\n", nil
}
