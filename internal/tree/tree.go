package tree

import (
	"fmt"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/unionfind"
)

// DefaultCompressInterval is the number of deletions between forced path
// compressions during DeleteNodesWithFlag.
const DefaultCompressInterval = 1024

// Tree is a hierarchical partition of a grid into nested regions.
type Tree struct {
	img      *grid.Grid
	adj      grid.Adjacency
	polarity Polarity

	store  *unionfind.Store
	nodes  []Node
	nodeAt []NodeID // canonical pixel index -> node
	root   NodeID
	live   int

	attrs            map[Kind][][]float64
	compressInterval int
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node with the given ID, or nil if id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Image returns the grid the tree was built from.
func (t *Tree) Image() *grid.Grid {
	return t.img
}

// Adjacency returns the base adjacency used to build the tree.
func (t *Tree) Adjacency() grid.Adjacency {
	return t.adj
}

// Polarity reports whether this is a max-tree or a min-tree.
func (t *Tree) Polarity() Polarity {
	return t.polarity
}

// Canonical returns the canonical point of a node.
func (t *Tree) Canonical(id NodeID) grid.Point {
	return t.img.PointAt(t.nodes[id].canonical)
}

// FindNodeAt resolves p through the disjoint-set store to its canonical
// point and returns the node cached for it.
func (t *Tree) FindNodeAt(p grid.Point) (NodeID, error) {
	if !t.img.InBounds(p.X, p.Y, p.Z, 0) {
		return NoNode, fmt.Errorf("point %v outside %s grid", p, t.img.Shape())
	}
	return t.owner(t.img.PointIndex(p))
}

// owner returns the node owning pixel i.
func (t *Tree) owner(i int) (NodeID, error) {
	c := t.store.FindIndex(i)
	id := t.nodeAt[c]
	if id == NoNode {
		return NoNode, fmt.Errorf("%w: canonical point %v has no node", ErrCorruptTree, t.img.PointAt(c))
	}
	return id, nil
}

// owners resolves the owner of every pixel.
func (t *Tree) owners() ([]NodeID, error) {
	out := make([]NodeID, t.img.Len())
	for i := range out {
		id, err := t.owner(i)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// IsMember reports whether p belongs to the region of node id, that is,
// whether id is p's owner or one of its ancestors.
func (t *Tree) IsMember(p grid.Point, id NodeID) (bool, error) {
	cur, err := t.FindNodeAt(p)
	if err != nil {
		return false, err
	}
	for cur != NoNode {
		if cur == id {
			return true, nil
		}
		cur = t.nodes[cur].parent
	}
	return false, nil
}

// OwnedPoints returns the pixels whose owner is exactly id, descendants excluded.
func (t *Tree) OwnedPoints(id NodeID) ([]grid.Point, error) {
	if _, err := t.node(id); err != nil {
		return nil, err
	}
	var pts []grid.Point
	for i := 0; i < t.img.Len(); i++ {
		o, err := t.owner(i)
		if err != nil {
			return nil, err
		}
		if o == id {
			pts = append(pts, t.img.PointAt(i))
		}
	}
	return pts, nil
}

// CountNodes returns the number of nodes reachable from the root.
func (t *Tree) CountNodes() int {
	n := 0
	t.RootToLeaf(func(NodeID) { n++ })
	return n
}

// CountLeaves returns the number of reachable nodes without children.
func (t *Tree) CountLeaves() int {
	n := 0
	t.RootToLeaf(func(id NodeID) {
		if t.nodes[id].IsLeaf() {
			n++
		}
	})
	return n
}

// Restitute rebuilds an image in which every pixel takes the level of the
// node that owns it.
func (t *Tree) Restitute() (*grid.Grid, error) {
	out := t.img.NewLike(t.img.Bands)
	for i := 0; i < out.Len(); i++ {
		id, err := t.owner(i)
		if err != nil {
			return nil, err
		}
		copy(out.VectorAt(i), t.nodes[id].level)
	}
	return out, nil
}

// Validate checks the invariants every mutator must preserve:
//   - the cache and the disjoint-set store agree for every pixel
//   - every live node is canonical for its own set
//   - parent and child links are mutual and only the root lacks a parent
//   - each area equals owned pixels plus children's areas
func (t *Tree) Validate() error {
	own := make([]int, len(t.nodes))
	for i := 0; i < t.img.Len(); i++ {
		id, err := t.owner(i)
		if err != nil {
			return err
		}
		if !t.nodes[id].alive {
			return fmt.Errorf("%w: pixel %v owned by deleted node %d", ErrCorruptTree, t.img.PointAt(i), id)
		}
		own[id]++
	}

	for id := range t.nodes {
		n := &t.nodes[id]
		if !n.alive {
			if t.nodeAt[n.canonical] == NodeID(id) {
				return fmt.Errorf("%w: deleted node %d still cached", ErrCorruptTree, id)
			}
			continue
		}
		if t.nodeAt[n.canonical] != NodeID(id) {
			return fmt.Errorf("%w: cache slot of node %d points at %d", ErrCorruptTree, id, t.nodeAt[n.canonical])
		}
		if c := t.store.FindIndex(n.canonical); c != n.canonical {
			return fmt.Errorf("%w: node %d canonical %v resolves to %v", ErrCorruptTree, id,
				t.img.PointAt(n.canonical), t.img.PointAt(c))
		}
		if NodeID(id) != t.root && n.parent == NoNode {
			return fmt.Errorf("%w: non-root node %d has no parent", ErrCorruptTree, id)
		}
		area := own[id]
		for _, c := range n.children {
			if t.nodes[c].parent != NodeID(id) || !t.nodes[c].alive {
				return fmt.Errorf("%w: child %d of node %d does not link back", ErrCorruptTree, c, id)
			}
			area += t.nodes[c].area
		}
		if area != n.area {
			return fmt.Errorf("%w: node %d area %d, want %d", ErrCorruptTree, id, n.area, area)
		}
	}

	if reached := t.CountNodes(); reached != t.live {
		return fmt.Errorf("%w: %d nodes reachable, %d alive", ErrCorruptTree, reached, t.live)
	}
	return nil
}
