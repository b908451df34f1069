package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *TypeSet:
		out := make([]Node, len(n.Types))
		for i, nt := range n.Types {
			out[i] = nt
		}
		return out
	case *NamedType:
		return []Node{n.Type}
	case *Member:
		return []Node{n.Type}
	case *Struct:
		return members(n.Fields)
	case *Enum:
		return members(n.Variants)
	case *List:
		return []Node{n.Elem}
	case *Primitive, *Identifier:
		return nil
	default:
		return nil
	}
}

func members(ms []*Member) []Node {
	out := make([]Node, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// Members returns the fields of a struct or the variants of an enum.
func Members(t Type) []*Member {
	switch t := t.(type) {
	case *Struct:
		return t.Fields
	case *Enum:
		return t.Variants
	default:
		return nil
	}
}

// Walk calls fn for every type node of ts in pre-order, declaration by
// declaration. Returning false from fn skips the node's children.
func Walk(ts *TypeSet, fn func(t Type) bool) {
	for _, nt := range ts.Types {
		WalkType(nt.Type, fn)
	}
}

// WalkType calls fn for t and every type nested in it, in pre-order.
// It uses an explicit stack, so deeply nested input cannot exhaust the
// goroutine stack.
func WalkType(t Type, fn func(t Type) bool) {
	stack := []Type{t}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(t) {
			continue
		}
		switch t := t.(type) {
		case *Struct:
			for i := len(t.Fields) - 1; i >= 0; i-- {
				stack = append(stack, t.Fields[i].Type)
			}
		case *Enum:
			for i := len(t.Variants) - 1; i >= 0; i-- {
				stack = append(stack, t.Variants[i].Type)
			}
		case *List:
			stack = append(stack, t.Elem)
		}
	}
}
