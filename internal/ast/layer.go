package ast

// Layer holds one payload per node of a TypeSet, indexed by NodeID.
// A layer is the unit of information a pass produces: the tree itself is
// shared by every pass and only layers differ between pipeline stages.
type Layer[T any] []T

// NewLayer returns a zero-valued layer sized for ts.
func NewLayer[T any](ts *TypeSet) Layer[T] {
	return make(Layer[T], ts.Len())
}

// Get returns the payload of node id.
func (l Layer[T]) Get(id NodeID) T { return l[id] }

// Set stores the payload of node id.
func (l Layer[T]) Set(id NodeID, v T) { l[id] = v }

// Of returns the payload of n.
func (l Layer[T]) Of(n Node) T { return l[n.ID()] }

// Pair is the payload of two zipped layers.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip combines two layers of the same tree pointwise.
func Zip[A, B any](a Layer[A], b Layer[B]) Layer[Pair[A, B]] {
	if len(a) != len(b) {
		panic("ast: zipping layers of different trees")
	}
	out := make(Layer[Pair[A, B]], len(a))
	for i := range a {
		out[i] = Pair[A, B]{First: a[i], Second: b[i]}
	}
	return out
}

// Map derives a new layer by applying f to every payload of l.
func Map[A, B any](l Layer[A], f func(id NodeID, v A) B) Layer[B] {
	out := make(Layer[B], len(l))
	for i, v := range l {
		out[i] = f(NodeID(i), v)
	}
	return out
}

// Pass turns a tree with an input layer into an output layer.
type Pass[In, Out any] func(ts *TypeSet, in Layer[In]) Layer[Out]

// Then chains two passes. The second pass sees both the tree and the
// first pass's output.
func Then[A, B, C any](first Pass[A, B], second Pass[B, C]) Pass[A, C] {
	return func(ts *TypeSet, in Layer[A]) Layer[C] {
		return second(ts, first(ts, in))
	}
}

// Visit is passed to the visit function of Run.
type Visit[In any] struct {
	Node Node
	In   In

	// Ancestors lists the enclosing nodes, outermost first. The slice is
	// only valid for the duration of the call.
	Ancestors []Node
}

// Parent returns the innermost enclosing node, or nil for the TypeSet.
func (v *Visit[In]) Parent() Node {
	if len(v.Ancestors) == 0 {
		return nil
	}
	return v.Ancestors[len(v.Ancestors)-1]
}

// Run visits every node of ts (the set itself, declarations, members and
// types) in pre-order and stores visit's result for each. in may be nil,
// in which case every visit sees the zero In.
//
// visit may keep state across calls, such as a set of names already
// used, but it cannot reach outputs produced for earlier nodes.
func Run[In, Out any](ts *TypeSet, in Layer[In], visit func(v *Visit[In]) Out) Layer[Out] {
	type frame struct {
		node  Node
		depth int
	}

	out := NewLayer[Out](ts)
	var ancestors []Node
	stack := []frame{{node: ts}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ancestors = ancestors[:f.depth]
		v := &Visit[In]{Node: f.node, Ancestors: ancestors}
		if in != nil {
			v.In = in[f.node.ID()]
		}
		out[f.node.ID()] = visit(v)

		ancestors = append(ancestors, f.node)
		kids := Children(f.node)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], depth: f.depth + 1})
		}
	}
	return out
}
