package golang

import (
	"errors"
	"fmt"
	"strings"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
)

// ErrNoImportPath is returned when migrations are printed without
// Options.ImportPath.
var ErrNoImportPath = errors.New("go migrations need the import path of the version packages")

// Identifiers the migrations file declares or imports. Version packages
// named like one of them would be shadowed.
var reserved = map[string]bool{"fmt": true, "todo": true, "ptr": true, "value": true, "out": true, "i": true}

// Migrations prints the upgrade functions followed by the downgrade
// functions of p. Stubs become calls to todo, which panics.
func (t *Target) Migrations(p *migration.Plan) (string, error) {
	oldPkg, newPkg := p.Old.Names.Version, p.New.Names.Version
	switch {
	case oldPkg == newPkg:
		return "", fmt.Errorf("versions %q and %q map to the same Go package %s",
			p.Old.Tree.Version, p.New.Tree.Version, oldPkg)
	case reserved[oldPkg] || reserved[newPkg]:
		return "", fmt.Errorf("version packages cannot be named %q or %q in Go migrations", oldPkg, newPkg)
	case t.opts.ImportPath == "":
		return "", ErrNoImportPath
	}
	base := strings.TrimSuffix(t.opts.ImportPath, "/")

	e := codegen.NewEmitter(indent)
	e.Line("// Migrations to version %s generated by versed.", codegen.Quote(p.New.Tree.Version))
	e.Line("// Replace every todo call with a conversion.")
	e.Blank()
	e.Line("package %s", newPkg)
	e.Blank()
	e.Line("import (")
	e.Line("\t%s", codegen.Quote("fmt"))
	e.Blank()
	e.Line("\t%s %s", oldPkg, codegen.Quote(base+"/"+oldPkg))
	e.Line("\t%s %s", newPkg, codegen.Quote(base+"/"+newPkg))
	e.Line(")")

	oldP := &printer{side: p.Old, prefix: oldPkg + "."}
	newP := &printer{side: p.New, prefix: newPkg + "."}
	taken := map[string]bool{oldPkg: true, newPkg: true}
	for _, fn := range p.Up {
		e.Blank()
		(&funcPrinter{from: oldP, to: newP, dir: fn.Direction, taken: taken}).emit(e, fn)
	}
	for _, fn := range p.Down {
		e.Blank()
		(&funcPrinter{from: newP, to: oldP, dir: fn.Direction, taken: taken}).emit(e, fn)
	}

	e.Blank()
	e.Block("func todo[T any](message string) T")
	e.Line("panic(fmt.Sprintf(\"migration not written: %%s\", message))")
	e.EndBlock()
	e.Blank()
	e.Line("func ptr[T any](v T) *T { return &v }")
	return format("migrations.go", e.String())
}

type funcPrinter struct {
	from, to *printer
	dir      migration.Direction
	taken    map[string]bool
	vars     int
}

// fresh returns an unused variable name. Names of imported packages are
// skipped.
func (f *funcPrinter) fresh() string {
	for {
		f.vars++
		name := "x"
		if f.vars > 1 {
			name = fmt.Sprintf("x%d", f.vars)
		}
		if !f.taken[name] {
			return name
		}
	}
}

func (f *funcPrinter) emit(e *codegen.Emitter, fn *migration.Function) {
	from, to := f.from.typeExpr(fn.From), f.to.typeExpr(fn.To)
	e.Block("func %s(value %s) %s", f.dir.FuncName(naming.Pascal, fn.Ident), from, to)
	in := "value"
	if f.from.isNewtype(fn.From) {
		in = f.from.inner(fn.From) + "(value)"
	}
	body := f.expr(fn.Body, in, to)
	if f.to.isNewtype(fn.To) {
		body = to + "(" + body + ")"
	}
	e.Line("return %s", body)
	e.EndBlock()
}

// reads reports whether c reads its input.
func reads(c migration.Conv) bool {
	switch c := c.(type) {
	case *migration.Stub:
		return false
	case *migration.StructConv:
		for _, fc := range c.Fields {
			if fc.Old != nil && reads(fc.Conv) {
				return true
			}
		}
		return false
	case *migration.EnumConv:
		return len(c.Arms) > 0
	}
	return true
}

// expr converts the value of the expression in according to c. typ is
// the Go type of the result.
func (f *funcPrinter) expr(c migration.Conv, in, typ string) string {
	switch c := c.(type) {
	case *migration.Move:
		return in

	case *migration.Call:
		arg := in
		if id, ok := c.From.(*ast.Identifier); ok && f.from.pointer(id) {
			arg = "*" + in
		}
		call := f.dir.FuncName(naming.Pascal, c.Ident) + "(" + arg + ")"
		if id, ok := c.To.(*ast.Identifier); ok && f.to.pointer(id) {
			return "ptr(" + call + ")"
		}
		return call

	case *migration.StructConv:
		lit := f.to.inner(c.To)
		if len(c.Fields) == 0 {
			return lit + "{}"
		}
		var sb strings.Builder
		sb.WriteString(lit + "{\n")
		for _, fc := range c.Fields {
			ft := f.to.typeExpr(fc.New.Type)
			var value string
			if fc.Old != nil {
				value = f.expr(fc.Conv, in+"."+f.from.side.Names.Member(fc.Old), ft)
			} else {
				value = f.expr(fc.Conv, "", ft)
			}
			fmt.Fprintf(&sb, "%s%s: %s,\n", indent, f.to.side.Names.Member(fc.New), codegen.Nest(value, indent))
		}
		sb.WriteString("}")
		return sb.String()

	case *migration.EnumConv:
		if len(c.Arms) == 0 {
			return "nil"
		}
		x := f.fresh()
		used := false
		for _, arm := range c.Arms {
			used = used || arm.New != nil && reads(arm.Conv)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "func() %s {\n", typ)
		if used {
			fmt.Fprintf(&sb, "%sswitch %s := %s.(type) {\n", indent, x, in)
		} else {
			fmt.Fprintf(&sb, "%sswitch %s.(type) {\n", indent, in)
		}
		for _, arm := range c.Arms {
			fmt.Fprintf(&sb, "%scase %s:\n", indent, f.from.prefix+f.from.side.Names.Variants.Of(arm.Old))
			var value string
			if arm.New == nil {
				value = f.expr(arm.Conv, "", typ)
			} else {
				vt := f.to.prefix + f.to.side.Names.Variants.Of(arm.New)
				payload := f.expr(arm.Conv, x+".Value", f.to.typeExpr(arm.New.Type))
				value = vt + "{Value: " + payload + "}"
			}
			fmt.Fprintf(&sb, "%sreturn %s\n", indent+indent, codegen.Nest(value, indent+indent))
		}
		fmt.Fprintf(&sb, "%s}\n", indent)
		fmt.Fprintf(&sb, "%spanic(fmt.Sprintf(\"unknown variant %%T\", %s))\n", indent, in)
		sb.WriteString("}()")
		return sb.String()

	case *migration.ListConv:
		elemType := f.to.typeExpr(c.To.(*ast.List).Elem)
		x := f.fresh()
		elem := f.expr(c.Elem, x, elemType)
		var sb strings.Builder
		fmt.Fprintf(&sb, "func() []%s {\n", elemType)
		fmt.Fprintf(&sb, "%sout := make([]%s, len(%s))\n", indent, elemType, in)
		if reads(c.Elem) {
			fmt.Fprintf(&sb, "%sfor i, %s := range %s {\n", indent, x, in)
		} else {
			fmt.Fprintf(&sb, "%sfor i := range %s {\n", indent, in)
		}
		fmt.Fprintf(&sb, "%sout[i] = %s\n", indent+indent, codegen.Nest(elem, indent+indent))
		fmt.Fprintf(&sb, "%s}\n", indent)
		fmt.Fprintf(&sb, "%sreturn out\n", indent)
		sb.WriteString("}()")
		return sb.String()

	case *migration.Stub:
		return "todo[" + typ + "](" + codegen.Quote(c.Message) + ")"
	}
	panic(fmt.Sprintf("golang: unexpected conversion %T", c))
}
