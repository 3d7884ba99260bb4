package tree

import (
	"fmt"
)

// DeleteNode splices a non-root node out of the tree. Its children become
// children of its parent and the pixels it owned are re-attributed to the
// parent. Areas are unchanged: they already include descendants.
func (t *Tree) DeleteNode(id NodeID) error {
	n, p, err := t.deletable(id)
	if err != nil {
		return err
	}
	parent := &t.nodes[p]

	t.removeChild(p, id)
	for _, c := range n.children {
		t.nodes[c].parent = p
		parent.children = append(parent.children, c)
	}
	t.detach(id, parent.canonical)
	return nil
}

// DeleteNodeAndChildren removes the subtree rooted at id. Every pixel of the
// subtree is re-attributed to id's parent.
func (t *Tree) DeleteNodeAndChildren(id NodeID) error {
	_, p, err := t.deletable(id)
	if err != nil {
		return err
	}
	target := t.nodes[p].canonical

	t.removeChild(p, id)
	stack := []NodeID{id}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[d].children...)
		t.detach(d, target)
	}
	return nil
}

// DeleteNodesWithFlag deletes, with the semantics of DeleteNode, every
// non-root node whose mark equals value, and returns how many were deleted.
//
// Each parent's child list is rebuilt in a single pass: unmarked children are
// kept, the children of a marked child are queued behind the list and scanned
// in turn, so adopted children are filtered too. The store is compressed
// every CompressInterval deletions to keep find chains short.
func (t *Tree) DeleteNodesWithFlag(marks Marks, value int) (int, error) {
	if len(marks) < len(t.nodes) {
		return 0, fmt.Errorf("marks cover %d nodes, tree has %d", len(marks), len(t.nodes))
	}
	deleted := 0
	stack := []NodeID{t.root}
	var queue []NodeID
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		queue = append(queue[:0], t.nodes[u].children...)
		kept := t.nodes[u].children[:0]
		target := t.nodes[u].canonical
		for j := 0; j < len(queue); j++ {
			c := queue[j]
			if marks[c] != value {
				t.nodes[c].parent = u
				kept = append(kept, c)
				continue
			}
			if _, _, err := t.deletable(c); err != nil {
				t.nodes[u].children = append(kept, queue[j:]...)
				return deleted, err
			}
			queue = append(queue, t.nodes[c].children...)
			t.detach(c, target)
			deleted++
			if deleted%t.compressInterval == 0 {
				t.store.CompressAll()
			}
		}
		t.nodes[u].children = kept
		stack = append(stack, kept...)
	}
	if deleted > 0 {
		t.store.CompressAll()
	}
	return deleted, nil
}

// Prune deletes every non-root node selected by f and returns the count.
// The filter is evaluated on the tree as it stands before any deletion.
func (t *Tree) Prune(f Filter) (int, error) {
	marks := t.NewMarks()
	var ferr error
	t.RootToLeaf(func(id NodeID) {
		if ferr != nil || id == t.root {
			return
		}
		ok, err := f.Filter(t, id)
		if err != nil {
			ferr = err
			return
		}
		if ok {
			marks[id] = 1
		}
	})
	if ferr != nil {
		return 0, ferr
	}
	return t.DeleteNodesWithFlag(marks, 1)
}

// deletable returns the node and its parent, or an error if id may not be deleted.
func (t *Tree) deletable(id NodeID) (*Node, NodeID, error) {
	n, err := t.node(id)
	if err != nil {
		return nil, NoNode, err
	}
	if id == t.root {
		return nil, NoNode, ErrRootDeletion
	}
	if n.parent == NoNode {
		return nil, NoNode, fmt.Errorf("%w: non-root node %d has no parent", ErrCorruptTree, id)
	}
	return n, n.parent, nil
}

// detach re-attributes id's pixels to the set whose canonical pixel is
// target, clears id's cache slot and marks it dead, keeping store and cache
// in agreement.
func (t *Tree) detach(id NodeID, target int) {
	n := &t.nodes[id]
	t.store.LinkNoRankCheckIndex(target, n.canonical)
	t.nodeAt[n.canonical] = NoNode
	n.children = nil
	n.parent = NoNode
	n.alive = false
	t.live--
	for _, col := range t.attrs {
		col[id] = nil
	}
}
