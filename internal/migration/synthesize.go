package migration

import (
	"fmt"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/pairing"
)

type synth struct {
	from, to *Side
	paired   map[ast.NodeID]pairing.Pair // keyed by the from-side node
}

// Synthesize returns one function per pair converting from's type into
// to's type. Pairs are read as (Old = from, New = to), so a downgrade
// passes the sides exchanged and the pairs swapped; Migrations does both.
func Synthesize(dir Direction, from, to *Side, pairs []pairing.Pair) []*Function {
	s := &synth{from: from, to: to, paired: make(map[ast.NodeID]pairing.Pair, len(pairs))}
	for _, p := range pairs {
		s.paired[p.Old.ID()] = p
	}

	funcs := make([]*Function, 0, len(pairs))
	for _, p := range pairs {
		funcs = append(funcs, &Function{
			Direction: dir,
			Number:    p.Number,
			Ident:     to.Names.Migration.Of(p.New),
			From:      p.Old,
			To:        p.New,
			Body:      s.conv(p.Old, p.New),
		})
	}
	return funcs
}

// Migrations synthesizes the upgrade functions from old to new and the
// downgrade functions back.
func Migrations(oldSide, newSide *Side, pairs []pairing.Pair) (up, down []*Function) {
	up = Synthesize(Upgrade, oldSide, newSide, pairs)
	down = Synthesize(Downgrade, newSide, oldSide, pairing.Swapped(pairs))
	return up, down
}

func (s *synth) conv(from, to ast.Type) Conv {
	edge := Edge{From: from, To: to}
	switch f := from.(type) {
	case *ast.Struct:
		if t, ok := to.(*ast.Struct); ok {
			return s.structConv(edge, f, t)
		}
	case *ast.Enum:
		if t, ok := to.(*ast.Enum); ok {
			return s.enumConv(edge, f, t)
		}
	case *ast.List:
		if t, ok := to.(*ast.List); ok {
			if p, ok := s.paired[f.Elem.ID()]; ok && p.New == t.Elem {
				return &ListConv{Edge: edge, Elem: s.conv(f.Elem, t.Elem)}
			}
			return &Stub{Edge: edge, Reason: UnpairedElement,
				Message: "the list elements are not paired"}
		}
	case *ast.Primitive:
		if t, ok := to.(*ast.Primitive); ok {
			if f.Kind == t.Kind {
				return &Move{Edge: edge}
			}
			return &Stub{Edge: edge, Reason: PrimitiveChanged,
				Message: fmt.Sprintf("changed from %s to %s", f.Kind, t.Kind)}
		}
	case *ast.Identifier:
		if t, ok := to.(*ast.Identifier); ok {
			return s.call(edge, f, t)
		}
	}
	return &Stub{Edge: edge, Reason: KindMismatch,
		Message: fmt.Sprintf("changed from %s to %s", describe(from), describe(to))}
}

func (s *synth) structConv(edge Edge, from, to *ast.Struct) Conv {
	c := &StructConv{Edge: edge, Fields: make([]FieldConv, len(to.Fields))}
	for i, nf := range to.Fields {
		fc := FieldConv{New: nf}
		if of := match(from.Fields, nf); of != nil {
			fc.Old = of
			fc.Conv = s.conv(of.Type, nf.Type)
		} else {
			fc.Conv = &Stub{Edge: Edge{To: nf.Type}, Reason: MemberAdded,
				Message: fmt.Sprintf("the field '%s' has no counterpart", nf.Name)}
		}
		c.Fields[i] = fc
	}
	return c
}

func (s *synth) enumConv(edge Edge, from, to *ast.Enum) Conv {
	c := &EnumConv{Edge: edge, Arms: make([]ArmConv, len(from.Variants))}
	for i, ov := range from.Variants {
		arm := ArmConv{Old: ov}
		if nv := match(to.Variants, ov); nv != nil {
			arm.New = nv
			arm.Conv = s.conv(ov.Type, nv.Type)
		} else {
			arm.Conv = &Stub{Edge: Edge{From: ov.Type}, Reason: MemberRemoved,
				Message: fmt.Sprintf("the variant '%s' has no counterpart", ov.Name)}
		}
		c.Arms[i] = arm
	}
	return c
}

func (s *synth) call(edge Edge, from, to *ast.Identifier) Conv {
	fromRoot, toRoot := s.from.Target(from), s.to.Target(to)
	if fromRoot != nil && toRoot != nil {
		if p, ok := s.paired[fromRoot.ID()]; ok && p.New == toRoot {
			return &Call{Edge: edge, Number: p.Number, Ident: s.to.Names.Migration.Of(toRoot)}
		}
	}
	return &Stub{Edge: edge, Reason: UnpairedReference,
		Message: fmt.Sprintf("'%s' and '%s' are not paired", from.Name, to.Name)}
}

// match returns the first member of ms whose type carries the number of
// m's type.
func match(ms []*ast.Member, m *ast.Member) *ast.Member {
	n := m.Type.Number()
	if n == nil {
		return nil
	}
	for _, c := range ms {
		if cn := c.Type.Number(); cn != nil && cn.Value == n.Value {
			return c
		}
	}
	return nil
}

func describe(t ast.Type) string {
	switch t := t.(type) {
	case *ast.Identifier:
		return fmt.Sprintf("'%s'", t.Name)
	case *ast.Primitive:
		return t.Kind.String()
	case *ast.Enum:
		return "an enum"
	default:
		return "a " + ast.KindName(t)
	}
}
