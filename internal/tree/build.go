package tree

import (
	"fmt"
	"sort"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/unionfind"
)

// Polarity selects which end of the level order sits at the leaves.
type Polarity int

const (
	// MaxTree puts the highest levels at the leaves.
	MaxTree Polarity = iota
	// MinTree puts the lowest levels at the leaves.
	MinTree
)

// String returns "max" or "min".
func (p Polarity) String() string {
	if p == MinTree {
		return "min"
	}
	return "max"
}

// Compare orders two pixel vectors, returning a negative number when a < b,
// zero when equal and a positive number when a > b.
type Compare func(a, b []float64) int

// Lexicographic compares vectors band by band. For single-band grids it is
// the natural numeric order.
func Lexicographic(a, b []float64) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Options configures Build.
type Options struct {
	// Adjacency is the base connectivity. The zero value means grid.Conn4.
	// Grids with more than one z slice need a volumetric adjacency.
	Adjacency grid.Adjacency

	// Polarity selects a max-tree or a min-tree.
	Polarity Polarity

	// Compare orders pixel vectors. Nil means Lexicographic.
	Compare Compare

	// CompressInterval is the number of deletions between forced path
	// compressions in DeleteNodesWithFlag. Zero means DefaultCompressInterval.
	CompressInterval int
}

// Build constructs the region tree of g.
//
// # Algorithm
//
// Pixels are sorted from the leaf end of the order to the root end (highest
// first for a max-tree) and merged with their already processed neighbors
// through a build-phase unionfind.Store using union by rank. Each merge hangs
// the head of the neighbor's partial tree under the current pixel. A second
// pass in reverse order canonicalizes parents so that every pixel points at
// the first pixel of its level region.
//
// The tree then gets its own store in which each canonical pixel is a root and
// every other pixel is linked under its canonical pixel, so that Find yields
// the canonical point of the owning node.
func Build(g *grid.Grid, opts Options) (*Tree, error) {
	adj := opts.Adjacency.OrDefault()
	if g.Duration != 1 {
		return nil, fmt.Errorf("%w: %d time frames, want 1", ErrUnsupportedGrid, g.Duration)
	}
	if adj.Temporal() {
		return nil, fmt.Errorf("%w: temporal adjacency %s", ErrUnsupportedGrid, adj)
	}
	if g.Depth > 1 && !adj.Volumetric() {
		return nil, fmt.Errorf("%w: %d slices need a volumetric adjacency, got %s", ErrUnsupportedGrid, g.Depth, adj)
	}
	cmp := opts.Compare
	if cmp == nil {
		cmp = Lexicographic
	}
	interval := opts.CompressInterval
	if interval <= 0 {
		interval = DefaultCompressInterval
	}

	n := g.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		c := cmp(g.VectorAt(order[a]), g.VectorAt(order[b]))
		if opts.Polarity == MinTree {
			return c < 0
		}
		return c > 0
	})

	parent := make([]int, n)
	head := make([]int, n) // set canonical index -> pixel heading that partial tree
	processed := make([]bool, n)
	zpar := unionfind.New(g.Width, g.Height, g.Depth)
	var nbrs []int

	for _, p := range order {
		parent[p] = p
		head[p] = p
		zpar.MakeSetIndex(p)
		processed[p] = true

		x, y, z, t := g.Coords(p)
		nbrs = adj.Neighbors(g, nbrs[:0], x, y, z, t)
		for _, q := range nbrs {
			if !processed[q] {
				continue
			}
			rp, rq := zpar.FindIndex(p), zpar.FindIndex(q)
			if rp == rq {
				continue
			}
			parent[head[rq]] = p
			lost, _ := zpar.LinkIndex(rp, rq)
			survivor := rp
			if lost == rp {
				survivor = rq
			}
			head[survivor] = p
		}
	}

	for k := n - 1; k >= 0; k-- {
		p := order[k]
		q := parent[p]
		if cmp(g.VectorAt(parent[q]), g.VectorAt(q)) == 0 {
			parent[p] = parent[q]
		}
	}

	t := &Tree{
		img:              g,
		adj:              adj,
		polarity:         opts.Polarity,
		store:            unionfind.NewFull(g.Width, g.Height, g.Depth),
		nodes:            make([]Node, 0, n/4+1),
		nodeAt:           make([]NodeID, n),
		root:             NoNode,
		attrs:            make(map[Kind][][]float64),
		compressInterval: interval,
	}
	for i := range t.nodeAt {
		t.nodeAt[i] = NoNode
	}

	// Root end first, so a parent node always exists before its children.
	for k := n - 1; k >= 0; k-- {
		p := order[k]
		q := parent[p]
		isRoot := q == p
		if !isRoot && cmp(g.VectorAt(q), g.VectorAt(p)) == 0 {
			t.store.LinkNoRankCheckIndex(q, p)
			continue
		}
		id := NodeID(len(t.nodes))
		level := make([]float64, g.Bands)
		copy(level, g.VectorAt(p))
		nd := Node{level: level, canonical: p, parent: NoNode, alive: true}
		if isRoot {
			if t.root != NoNode {
				return nil, fmt.Errorf("%w: grid is not connected under %s adjacency", ErrUnsupportedGrid, adj)
			}
			t.root = id
		} else {
			nd.parent = t.nodeAt[q]
			t.nodes[nd.parent].children = append(t.nodes[nd.parent].children, id)
		}
		t.nodes = append(t.nodes, nd)
		t.nodeAt[p] = id
	}
	t.live = len(t.nodes)

	// Children are created after their parents, so a reverse arena sweep
	// accumulates areas bottom-up.
	for i := 0; i < n; i++ {
		id, err := t.owner(i)
		if err != nil {
			return nil, err
		}
		t.nodes[id].area++
	}
	for id := len(t.nodes) - 1; id >= 0; id-- {
		if p := t.nodes[id].parent; p != NoNode {
			t.nodes[p].area += t.nodes[id].area
		}
	}
	return t, nil
}
