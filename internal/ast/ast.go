// Package ast defines the schema type tree. The tree is built once by the
// parser and never modified; analysis passes attach facts to it through
// layers indexed by NodeID (see layer.go).
package ast

import "fmt"

// NodeID identifies a node within one TypeSet. IDs are dense and assigned
// in pre-order, so they can index slices directly.
type NodeID int

// Span is a half-open byte range into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Start, s.End) }

// Node is implemented by every tree node.
type Node interface {
	ID() NodeID
}

// Number is an explicit stable number written as "#N" in the source.
type Number struct {
	Value uint64
	Span  Span
}

// Type is one of *Struct, *Enum, *List, *Primitive or *Identifier.
type Type interface {
	Node
	Span() Span
	Number() *Number
	isType()
}

// Base holds the fields shared by all type nodes.
type Base struct {
	NodeID NodeID
	Loc    Span
	Num    *Number
}

func (b *Base) ID() NodeID      { return b.NodeID }
func (b *Base) Span() Span      { return b.Loc }
func (b *Base) Number() *Number { return b.Num }

// Struct is a product of named fields.
type Struct struct {
	Base
	Fields []*Member
}

// Enum is a tagged union of named variants.
type Enum struct {
	Base
	Variants []*Member
}

// List is a homogeneous sequence.
type List struct {
	Base
	Elem Type
}

// Primitive is a builtin scalar type.
type Primitive struct {
	Base
	Kind PrimitiveKind
}

// Identifier references a declaration by name.
type Identifier struct {
	Base
	Name string
}

func (*Struct) isType()     {}
func (*Enum) isType()       {}
func (*List) isType()       {}
func (*Primitive) isType()  {}
func (*Identifier) isType() {}

// PrimitiveKind enumerates the builtin scalar types.
type PrimitiveKind int

const (
	String PrimitiveKind = iota
	Int
	Unit
)

func (k PrimitiveKind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Unit:
		return "unit"
	default:
		return "unknown"
	}
}

// Member is a struct field or an enum variant.
type Member struct {
	NodeID   NodeID
	Name     string
	NameSpan Span
	Type     Type
}

func (m *Member) ID() NodeID { return m.NodeID }

// NamedType is a top-level declaration "Name = type;".
type NamedType struct {
	NodeID   NodeID
	Name     string
	NameSpan Span
	Type     Type
}

func (n *NamedType) ID() NodeID { return n.NodeID }

// TypeSet is one version of a schema.
type TypeSet struct {
	NodeID      NodeID
	Version     string
	VersionSpan Span
	Types       []*NamedType

	// Count is the number of node IDs allocated for this set.
	Count int
}

func (ts *TypeSet) ID() NodeID { return ts.NodeID }

// Len returns the number of nodes in the set.
func (ts *TypeSet) Len() int { return ts.Count }

// Lookup returns the index of the first declaration named name, or -1.
func (ts *TypeSet) Lookup(name string) int {
	for i, nt := range ts.Types {
		if nt.Name == name {
			return i
		}
	}
	return -1
}

// Migration holds the two schemas of a migration file.
type Migration struct {
	Old *TypeSet
	New *TypeSet
}

// KindName returns a lowercase name for t's node kind.
func KindName(t Type) string {
	switch t := t.(type) {
	case *Struct:
		return "struct"
	case *Enum:
		return "enum"
	case *List:
		return "list"
	case *Primitive:
		return t.Kind.String()
	case *Identifier:
		return "identifier"
	default:
		panic(fmt.Sprintf("ast: unexpected type node %T", t))
	}
}
