// Package migration synthesizes conversion functions between two
// versions of a schema.
//
// One function is produced per pair of types sharing a number, in each
// direction. Bodies are built structurally from the two types and
// expressed in a small target-independent IR that the printers in
// internal/codegen turn into source code. Whatever cannot be converted
// automatically becomes a Stub that the generated code reports at run time.
package migration

import (
	"fmt"
	"slices"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/indirect"
	"github.com/versed/versed/internal/naming"
	"github.com/versed/versed/internal/pairing"
	"github.com/versed/versed/internal/resolve"
)

// Direction is the direction of a conversion.
type Direction int

const (
	Upgrade   Direction = iota // old to new
	Downgrade                  // new to old
)

func (d Direction) String() string {
	if d == Downgrade {
		return "downgrade"
	}
	return "upgrade"
}

// FuncName prefixes a migration identifier with the direction. ident is
// expected in the casing of c, except for Camel where it is PascalCase:
// ("upgrade_user", "UpgradeUser", "upgradeUser").
func (d Direction) FuncName(c naming.Case, ident string) string {
	switch c {
	case naming.Snake:
		return d.String() + "_" + ident
	case naming.Camel:
		return d.String() + ident
	default:
		return naming.Pascal.Convert(d.String()) + ident
	}
}

// Side is one schema of a migration together with everything derived
// from it that the synthesizer and the printers read.
type Side struct {
	Tree     *ast.TypeSet
	Res      ast.Layer[int]
	Names    *naming.Names
	Boxes    ast.Layer[bool]
	Newtypes []bool

	roots map[ast.NodeID]int
}

// NewSide names ts under rules and runs the indirection analysis on it.
// res must be the resolution of ts.
func NewSide(ts *ast.TypeSet, res ast.Layer[int], rules naming.Rules) *Side {
	s := &Side{
		Tree:     ts,
		Res:      res,
		Names:    naming.Name(ts, res, rules),
		Boxes:    indirect.Boxes(ts, res),
		Newtypes: indirect.Newtypes(ts, res),
		roots:    make(map[ast.NodeID]int, len(ts.Types)),
	}
	for i, nt := range ts.Types {
		s.roots[nt.Type.ID()] = i
	}
	return s
}

// Decl returns the index of the declaration whose root type is t, or -1
// for a nested type.
func (s *Side) Decl(t ast.Type) int {
	if i, ok := s.roots[t.ID()]; ok {
		return i
	}
	return -1
}

// Target returns the root type of the declaration id refers to, or nil
// when it is unresolved.
func (s *Side) Target(id *ast.Identifier) ast.Type {
	idx := s.Res.Of(id)
	if idx == resolve.Invalid {
		return nil
	}
	return s.Tree.Types[idx].Type
}

// Function converts a value of From into a value of To.
type Function struct {
	Direction Direction
	Number    uint64

	// Ident is the migration identifier of To. Printers combine it with
	// the direction through Direction.FuncName.
	Ident string

	From ast.Type
	To   ast.Type
	Body Conv
}

// Conv is a conversion of a value of one type into a value of another.
// It is one of *Move, *Call, *StructConv, *EnumConv, *ListConv or *Stub.
type Conv interface {
	Ends() (from, to ast.Type)
	isConv()
}

// Edge holds the two types a conversion connects.
type Edge struct {
	From ast.Type
	To   ast.Type
}

func (e Edge) Ends() (from, to ast.Type) { return e.From, e.To }

// Move passes a primitive value through unchanged.
type Move struct{ Edge }

// Call delegates to the function generated for another pair. From and To
// are identifiers whose declarations are paired.
type Call struct {
	Edge
	Number uint64
	Ident  string
}

// StructConv builds the new struct field by field.
type StructConv struct {
	Edge
	Fields []FieldConv
}

// FieldConv fills the field New. Old is nil when no old field carries
// the same number, in which case Conv is a *Stub.
type FieldConv struct {
	New  *ast.Member
	Old  *ast.Member
	Conv Conv
}

// EnumConv converts each variant of the old enum.
type EnumConv struct {
	Edge
	Arms []ArmConv
}

// ArmConv converts the payload of variant Old into variant New. New is nil
// when the variant has no counterpart, in which case Conv is a *Stub.
type ArmConv struct {
	Old  *ast.Member
	New  *ast.Member
	Conv Conv
}

// ListConv converts every element.
type ListConv struct {
	Edge
	Elem Conv
}

// Reason says why a conversion could not be synthesized.
type Reason int

const (
	KindMismatch Reason = iota
	MemberAdded
	MemberRemoved
	PrimitiveChanged
	UnpairedReference
	UnpairedElement
)

func (r Reason) String() string {
	switch r {
	case KindMismatch:
		return "kind mismatch"
	case MemberAdded:
		return "member added"
	case MemberRemoved:
		return "member removed"
	case PrimitiveChanged:
		return "primitive changed"
	case UnpairedReference:
		return "unpaired reference"
	case UnpairedElement:
		return "unpaired element"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Stub marks a conversion a human has to write. Message describes the
// change in terms of the source schemas.
type Stub struct {
	Edge
	Reason  Reason
	Message string
}

func (*Move) isConv()       {}
func (*Call) isConv()       {}
func (*StructConv) isConv() {}
func (*EnumConv) isConv()   {}
func (*ListConv) isConv()   {}
func (*Stub) isConv()       {}

// Stubs returns the stubs of c in pre-order.
func Stubs(c Conv) []*Stub {
	var out []*Stub
	stack := []Conv{c}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch c := c.(type) {
		case *Stub:
			out = append(out, c)
		case *StructConv:
			for i := len(c.Fields) - 1; i >= 0; i-- {
				stack = append(stack, c.Fields[i].Conv)
			}
		case *EnumConv:
			for i := len(c.Arms) - 1; i >= 0; i-- {
				stack = append(stack, c.Arms[i].Conv)
			}
		case *ListConv:
			stack = append(stack, c.Elem)
		}
	}
	return out
}

// Plan is everything needed to print the migrations between two schemas.
type Plan struct {
	Old   *Side
	New   *Side
	Pairs []pairing.Pair
	Up    []*Function
	Down  []*Function
}

// NewPlan prepares both schemas for rules, pairs them and synthesizes the
// functions of both directions.
func NewPlan(m *ast.Migration, oldRes, newRes ast.Layer[int], rules naming.Rules) *Plan {
	p := &Plan{
		Old:   NewSide(m.Old, oldRes, rules),
		New:   NewSide(m.New, newRes, rules),
		Pairs: pairing.Pairs(m.Old, m.New),
	}
	p.Up, p.Down = Migrations(p.Old, p.New, p.Pairs)
	return p
}

// Functions returns the upgrade functions followed by the downgrade ones.
func (p *Plan) Functions() []*Function {
	return append(slices.Clip(p.Up), p.Down...)
}
