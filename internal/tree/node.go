package tree

import (
	"errors"
	"fmt"
)

// NodeID addresses a node in a Tree's arena.
type NodeID int32

// NoNode is the parent of the root and the cache value of non-canonical pixels.
const NoNode NodeID = -1

var (
	// ErrRootDeletion is returned when a pruning operation targets the root.
	ErrRootDeletion = errors.New("tree: the root node cannot be deleted")
	// ErrCorruptTree signals a broken structural invariant, such as a non-root
	// node without a parent or a pixel whose canonical point has no node.
	ErrCorruptTree = errors.New("tree: structural invariant violated")
	// ErrDeadNode is returned when an operation targets a node already removed.
	ErrDeadNode = errors.New("tree: node has been deleted")
	// ErrUnsupportedGrid is returned by Build for grids it cannot partition.
	ErrUnsupportedGrid = errors.New("tree: unsupported grid")
)

// Node is one region of the tree: a maximal connected set of pixels at or
// beyond its level.
type Node struct {
	level     []float64
	area      int
	canonical int
	parent    NodeID
	children  []NodeID
	alive     bool
}

// Level returns the node's level. The slice must not be modified.
func (n *Node) Level() []float64 {
	return n.level
}

// Area returns the pixel count of the node and all its descendants.
func (n *Node) Area() int {
	return n.area
}

// Parent returns the parent ID, or NoNode for the root.
func (n *Node) Parent() NodeID {
	return n.parent
}

// Children returns the ordered child IDs. The slice must not be modified.
func (n *Node) Children() []NodeID {
	return n.children
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Alive reports whether the node is still part of the tree.
func (n *Node) Alive() bool {
	return n.alive
}

func (t *Tree) node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: node %d out of range", ErrCorruptTree, id)
	}
	n := &t.nodes[id]
	if !n.alive {
		return nil, fmt.Errorf("%w: node %d", ErrDeadNode, id)
	}
	return n, nil
}

func (t *Tree) removeChild(parent, child NodeID) {
	ch := t.nodes[parent].children
	for i, c := range ch {
		if c == child {
			t.nodes[parent].children = append(ch[:i], ch[i+1:]...)
			return
		}
	}
}
