package tree

// Marks is an algorithm-local side table indexed by NodeID.
type Marks []int

// NewMarks allocates a zeroed Marks table covering every node of t.
func (t *Tree) NewMarks() Marks {
	return make(Marks, len(t.nodes))
}

// LeafToRoot visits every reachable node after all of its descendants.
func (t *Tree) LeafToRoot(visit func(id NodeID)) {
	if t.root == NoNode {
		return
	}
	type frame struct {
		id   NodeID
		next int
	}
	stack := []frame{{id: t.root}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		children := t.nodes[f.id].children
		if f.next < len(children) {
			stack[top].next++
			stack = append(stack, frame{id: children[f.next]})
			continue
		}
		stack = stack[:top]
		visit(f.id)
	}
}

// RootToLeaf visits every reachable node before its children, in pre-order
// with children taken in their stored order.
func (t *Tree) RootToLeaf(visit func(id NodeID)) {
	if t.root == NoNode {
		return
	}
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(id)
		children := t.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// PreorderLabels assigns dense labels 0..CountNodes()-1 in root-to-leaf
// order. Deleted nodes get -1.
func (t *Tree) PreorderLabels() []int {
	labels := make([]int, len(t.nodes))
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	t.RootToLeaf(func(id NodeID) {
		labels[id] = next
		next++
	})
	return labels
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		d++
	}
	return d
}
