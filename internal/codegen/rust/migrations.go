package rust

import (
	"fmt"
	"strings"

	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

var formatEscaper = strings.NewReplacer("{", "{{", "}", "}}")

// Migrations prints the upgrade functions followed by the downgrade
// functions of p. Stubs become todo!() calls naming the change.
func (t *Target) Migrations(p *migration.Plan) (string, error) {
	oldMod, newMod := p.Old.Names.Version, p.New.Names.Version
	if oldMod == newMod {
		return "", fmt.Errorf("versions %q and %q map to the same Rust module %s",
			p.Old.Tree.Version, p.New.Tree.Version, oldMod)
	}

	e := codegen.NewEmitter(indent)
	e.Line("// Generated by versed. Replace every todo!() with a conversion.")
	e.Line("#![allow(unreachable_code, unused_variables)]")
	e.Blank()
	e.Line("use super::super::{%s, %s};", oldMod, newMod)

	oldP, newP := newPrinter(p.Old, oldMod+"::"), newPrinter(p.New, newMod+"::")
	for _, fn := range p.Up {
		e.Blank()
		(&funcPrinter{from: oldP, to: newP, dir: fn.Direction}).emit(e, fn)
	}
	for _, fn := range p.Down {
		e.Blank()
		(&funcPrinter{from: newP, to: oldP, dir: fn.Direction}).emit(e, fn)
	}
	return e.String(), nil
}

type funcPrinter struct {
	from, to *printer
	dir      migration.Direction
	vars     int
}

func (f *funcPrinter) funcName(ident string) string {
	return f.dir.FuncName(naming.Snake, strings.TrimPrefix(ident, "r#"))
}

func (f *funcPrinter) fresh() string {
	f.vars++
	if f.vars == 1 {
		return "x"
	}
	return fmt.Sprintf("x%d", f.vars)
}

func (f *funcPrinter) emit(e *codegen.Emitter, fn *migration.Function) {
	e.Block("pub fn %s(value: %s) -> %s", f.funcName(fn.Ident), f.from.typeExpr(fn.From), f.to.typeExpr(fn.To))
	in := "value"
	if f.from.isNewtype(fn.From) {
		in = "value.0"
	}
	body := f.expr(fn.Body, in)
	if f.to.isNewtype(fn.To) {
		body = f.to.typeExpr(fn.To) + "(" + body + ")"
	}
	e.Line("%s", body)
	e.EndBlock()
}

// expr converts the value of the expression in according to c.
func (f *funcPrinter) expr(c migration.Conv, in string) string {
	switch c := c.(type) {
	case *migration.Move:
		return in

	case *migration.Call:
		arg := in
		if f.from.side.Boxes.Of(c.From) {
			arg = "*" + in
		}
		call := f.funcName(c.Ident) + "(" + arg + ")"
		if f.to.side.Boxes.Of(c.To) {
			return "Box::new(" + call + ")"
		}
		return call

	case *migration.StructConv:
		if len(c.Fields) == 0 {
			return f.to.inner(c.To) + " {}"
		}
		var sb strings.Builder
		sb.WriteString(f.to.inner(c.To) + " {\n")
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
		from, to := f.from.inner(c.From), f.to.inner(c.To)
		if len(c.Arms) == 0 {
			return "match " + in + " {}"
		}
		var sb strings.Builder
		sb.WriteString("match " + in + " {\n")
		for _, arm := range c.Arms {
			variant := from + "::" + f.from.side.Names.Member(arm.Old)
			if arm.New == nil {
				fmt.Fprintf(&sb, "%s%s(_) => %s,\n", indent, variant, f.expr(arm.Conv, ""))
				continue
			}
			x := f.fresh()
			value := f.expr(arm.Conv, x)
			fmt.Fprintf(&sb, "%s%s(%s) => %s::%s(%s),\n", indent, variant, x,
				to, f.to.side.Names.Member(arm.New), codegen.Nest(value, indent))
		}
		sb.WriteString("}")
		return sb.String()

	case *migration.ListConv:
		x := f.fresh()
		return fmt.Sprintf("%s.into_iter().map(|%s| %s).collect::<Vec<_>>()",
			in, x, f.expr(c.Elem, x))

	case *migration.Stub:
		return "todo!(" + codegen.Quote(formatEscaper.Replace(c.Message)) + ")"
	}
	panic(fmt.Sprintf("rust: unexpected conversion %T", c))
}
