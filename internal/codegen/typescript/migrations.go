package typescript

import (
	"fmt"
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

// Migrations prints the upgrade functions followed by the downgrade
// functions of p. Stubs call a local todo() that throws.
func (t *Target) Migrations(p *migration.Plan) (string, error) {
	oldMod, newMod := p.Old.Names.Version, p.New.Names.Version
	if oldMod == newMod {
		return "", fmt.Errorf("versions %q and %q map to the same TypeScript module %s",
			p.Old.Tree.Version, p.New.Tree.Version, oldMod)
	}

	e := codegen.NewEmitter(indent)
	e.Line("// Generated by versed. Replace every todo() call with a conversion.")
	e.Line("import type * as %s from %s;", oldMod, codegen.Quote("../"+oldMod))
	e.Line("import type * as %s from %s;", newMod, codegen.Quote("../"+newMod))
	e.Blank()
	e.Block("function todo(message: string): never")
	e.Line("throw new Error(message);")
	e.EndBlock()

	oldP, newP := newPrinter(p.Old, oldMod+"."), newPrinter(p.New, newMod+".")
	oldPaths, newPaths := paths(p.Old, oldMod), paths(p.New, newMod)
	for _, fn := range p.Up {
		e.Blank()
		(&funcPrinter{from: oldP, to: newP, fromPaths: oldPaths, toPaths: newPaths, dir: fn.Direction}).emit(e, fn)
	}
	for _, fn := range p.Down {
		e.Blank()
		(&funcPrinter{from: newP, to: oldP, fromPaths: newPaths, toPaths: oldPaths, dir: fn.Direction}).emit(e, fn)
	}
	return e.String(), nil
}

// paths returns, for every type of side, a type expression that reaches
// it from its declaration through indexed access types, such as
// v1.User["address"] or v1.Users[number].
func paths(side *migration.Side, module string) ast.Layer[string] {
	out := ast.NewLayer[string](side.Tree)
	ast.Run[struct{}, struct{}](side.Tree, nil, func(v *ast.Visit[struct{}]) struct{} {
		t, ok := v.Node.(ast.Type)
		if !ok {
			return struct{}{}
		}
		switch parent := v.Parent().(type) {
		case *ast.NamedType:
			out.Set(t.ID(), module+"."+side.Names.Types.Of(parent))
		case *ast.List:
			out.Set(t.ID(), out.Of(parent)+"[number]")
		case *ast.Member:
			composite := v.Ancestors[len(v.Ancestors)-2].(ast.Type)
			name := codegen.Quote(side.Names.Member(parent))
			if _, ok := composite.(*ast.Enum); ok {
				out.Set(t.ID(), fmt.Sprintf("Extract<%s, { type: %s }>[\"value\"]", out.Of(composite), name))
			} else {
				out.Set(t.ID(), out.Of(composite)+"["+name+"]")
			}
		}
		return struct{}{}
	})
	return out
}

type funcPrinter struct {
	from, to           *printer
	fromPaths, toPaths ast.Layer[string]
	dir                migration.Direction
	vars               int
}

func (f *funcPrinter) fresh() string {
	f.vars++
	if f.vars == 1 {
		return "x"
	}
	return fmt.Sprintf("x%d", f.vars)
}

// sigType names t in a signature: identifiers and primitives directly,
// composites through their path.
func sigType(p *printer, paths ast.Layer[string], t ast.Type) string {
	switch t.(type) {
	case *ast.Identifier, *ast.Primitive:
		if p.side.Decl(t) < 0 {
			return p.inner(t)
		}
	}
	return paths.Of(t)
}

func (f *funcPrinter) emit(e *codegen.Emitter, fn *migration.Function) {
	name := f.dir.FuncName(naming.Camel, fn.Ident)
	e.Block("export function %s(value: %s): %s", name,
		sigType(f.from, f.fromPaths, fn.From), sigType(f.to, f.toPaths, fn.To))
	e.Line("return %s;", f.expr(fn.Body, "value"))
	e.EndBlock()
}

func (f *funcPrinter) expr(c migration.Conv, in string) string {
	switch c := c.(type) {
	case *migration.Move:
		return in

	case *migration.Call:
		return f.dir.FuncName(naming.Camel, c.Ident) + "(" + in + ")"

	case *migration.StructConv:
		if len(c.Fields) == 0 {
			return "{}"
		}
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, fc := range c.Fields {
			var value string
			if fc.Old != nil {
				value = f.expr(fc.Conv, in+"."+f.from.side.Names.Member(fc.Old))
			} else {
				value = f.expr(fc.Conv, "")
			}
			fmt.Fprintf(&sb, "%s%s: %s,\n", indent, f.to.side.Names.Member(fc.New), codegen.Nest(value, indent))
		}
		sb.WriteString("}")
		return sb.String()

	case *migration.EnumConv:
		if len(c.Arms) == 0 {
			return in
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "((): %s => {\n", sigType(f.to, f.toPaths, c.To))
		fmt.Fprintf(&sb, "%sswitch (%s.type) {\n", indent, in)
		for _, arm := range c.Arms {
			fmt.Fprintf(&sb, "%s%scase %s:\n", indent, indent, codegen.Quote(f.from.side.Names.Member(arm.Old)))
			var value string
			if arm.New == nil {
				value = f.expr(arm.Conv, "")
			} else {
				payload := f.expr(arm.Conv, in+".value")
				value = fmt.Sprintf("{ type: %s, value: %s }",
					codegen.Quote(f.to.side.Names.Member(arm.New)), payload)
			}
			fmt.Fprintf(&sb, "%sreturn %s;\n", strings.Repeat(indent, 3), codegen.Nest(value, strings.Repeat(indent, 3)))
		}
		fmt.Fprintf(&sb, "%s}\n", indent)
		sb.WriteString("})()")
		return sb.String()

	case *migration.ListConv:
		x := f.fresh()
		elem := f.expr(c.Elem, x)
		if strings.HasPrefix(elem, "{") {
			elem = "(" + elem + ")"
		}
		return fmt.Sprintf("%s.map((%s) => %s)", in, x, elem)

	case *migration.Stub:
		return "todo(" + codegen.Quote(c.Message) + ")"
	}
	panic(fmt.Sprintf("typescript: unexpected conversion %T", c))
}
