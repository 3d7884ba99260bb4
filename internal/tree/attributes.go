package tree

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// Area copies the node areas maintained by construction.
type Area struct{}

func (Area) Kind() Kind { return KindArea }

func (Area) Compute(t *Tree) error {
	t.LeafToRoot(func(id NodeID) {
		t.SetAttribute(KindArea, id, []float64{float64(t.nodes[id].area)})
	})
	return nil
}

func (Area) MergeWith(t *Tree, into, from NodeID) error {
	return mergeAdd(t, KindArea, into, from)
}

// Sum is the per-band sum of the pixel values of a node and its descendants.
type Sum struct{}

func (Sum) Kind() Kind { return KindSum }

func (Sum) Compute(t *Tree) error {
	own, err := t.ownSums()
	if err != nil {
		return err
	}
	t.LeafToRoot(func(id NodeID) {
		s := own[id]
		for _, c := range t.nodes[id].children {
			floats.Add(s, t.attrs[KindSum][c])
		}
		t.SetAttribute(KindSum, id, s)
	})
	return nil
}

func (Sum) MergeWith(t *Tree, into, from NodeID) error {
	return mergeAdd(t, KindSum, into, from)
}

// Energy is the square root of the summed squared norms of the pixel
// vectors of a node and its descendants.
type Energy struct{}

func (Energy) Kind() Kind { return KindEnergy }

func (Energy) Compute(t *Tree) error {
	owners, err := t.owners()
	if err != nil {
		return err
	}
	sq := make([]float64, len(t.nodes))
	for i, id := range owners {
		v := t.img.VectorAt(i)
		sq[id] += floats.Dot(v, v)
	}
	t.LeafToRoot(func(id NodeID) {
		for _, c := range t.nodes[id].children {
			sq[id] += sq[c]
		}
	})
	t.LeafToRoot(func(id NodeID) {
		t.SetAttribute(KindEnergy, id, []float64{math.Sqrt(sq[id])})
	})
	return nil
}

func (Energy) MergeWith(t *Tree, into, from NodeID) error {
	a, err := t.Scalar(KindEnergy, into)
	if err != nil {
		return err
	}
	b, err := t.Scalar(KindEnergy, from)
	if err != nil {
		return err
	}
	t.attrs[KindEnergy][into][0] = math.Hypot(a, b)
	return nil
}

// Perimeter counts the boundary transitions of the pixels a node owns
// directly. Each connected fragment of owned pixels is walked with the
// tree's adjacency, and every 4-neighbor of a visited pixel that is out of
// bounds or owned by another node adds one.
type Perimeter struct{}

func (Perimeter) Kind() Kind { return KindPerimeter }

func (Perimeter) Compute(t *Tree) error {
	owners, err := t.owners()
	if err != nil {
		return err
	}
	g := t.img
	count := make([]float64, len(t.nodes))
	visited := make([]bool, len(owners))
	four := grid.Conn4().Offsets()
	var stack, nbrs []int

	for start, id := range owners {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y, z, tt := g.Coords(i)
			for _, o := range four {
				j, ok := g.Shift(x, y, z, tt, o)
				if !ok || owners[j] != id {
					count[id]++
				}
			}
			nbrs = t.adj.Neighbors(g, nbrs[:0], x, y, z, tt)
			for _, j := range nbrs {
				if !visited[j] && owners[j] == id {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	t.LeafToRoot(func(id NodeID) {
		t.SetAttribute(KindPerimeter, id, []float64{count[id]})
	})
	return nil
}

func (Perimeter) MergeWith(*Tree, NodeID, NodeID) error {
	return ErrMergeUnsupported
}

// Volume integrates a node's area over the level range it spans.
//
// For scalar grids volume(n) = Σ volume(c) + area(n)·(level(n) − level(parent)),
// with the root measured from zero; min-trees therefore get negative volumes.
//
// For vector grids each node accumulates a vector S(n) = Σ S(c) + area(n)·d,
// with d the level difference to the parent, and the squared norm of S(n) is
// built from the children's sums as
//
//	q(n) = |ΣS(c)|² + 2·area(n)·(ΣS(c)·d) + area(n)²·(d·d)
//
// The stored value is √q(n), taken in a separate pass once every q is known.
type Volume struct{}

func (Volume) Kind() Kind { return KindVolume }

func (Volume) Compute(t *Tree) error {
	if t.img.Bands == 1 {
		t.LeafToRoot(func(id NodeID) {
			n := &t.nodes[id]
			v := float64(n.area) * (n.level[0] - t.parentLevel(id)[0])
			for _, c := range n.children {
				v += t.attrs[KindVolume][c][0]
			}
			t.SetAttribute(KindVolume, id, []float64{v})
		})
		return nil
	}

	bands := t.img.Bands
	sums := make([][]float64, len(t.nodes))
	quad := make([]float64, len(t.nodes))
	d := make([]float64, bands)
	t.LeafToRoot(func(id NodeID) {
		n := &t.nodes[id]
		s := make([]float64, bands)
		for _, c := range n.children {
			floats.Add(s, sums[c])
		}
		floats.SubTo(d, n.level, t.parentLevel(id))
		a := float64(n.area)
		quad[id] = floats.Dot(s, s) + 2*a*floats.Dot(s, d) + a*a*floats.Dot(d, d)
		floats.AddScaled(s, a, d)
		sums[id] = s
	})
	t.LeafToRoot(func(id NodeID) {
		t.SetAttribute(KindVolume, id, []float64{math.Sqrt(math.Max(quad[id], 0))})
	})
	return nil
}

func (Volume) MergeWith(t *Tree, into, from NodeID) error {
	return mergeAdd(t, KindVolume, into, from)
}

// Compactness is Area / Perimeter².
type Compactness struct{}

func (Compactness) Kind() Kind { return KindCompactness }

func (Compactness) Compute(t *Tree) error {
	return t.ratio(KindCompactness, KindPerimeter, func(area, p float64) float64 {
		return area / (p * p)
	})
}

func (Compactness) MergeWith(*Tree, NodeID, NodeID) error { return ErrMergeUnsupported }

// Complexity is Perimeter / Area.
type Complexity struct{}

func (Complexity) Kind() Kind { return KindComplexity }

func (Complexity) Compute(t *Tree) error {
	return t.ratio(KindComplexity, KindPerimeter, func(area, p float64) float64 {
		return p / area
	})
}

func (Complexity) MergeWith(*Tree, NodeID, NodeID) error { return ErrMergeUnsupported }

// Simplicity is Area / Perimeter.
type Simplicity struct{}

func (Simplicity) Kind() Kind { return KindSimplicity }

func (Simplicity) Compute(t *Tree) error {
	return t.ratio(KindSimplicity, KindPerimeter, func(area, p float64) float64 {
		return area / p
	})
}

func (Simplicity) MergeWith(*Tree, NodeID, NodeID) error { return ErrMergeUnsupported }

// EnergyPerPixel is Energy / Area.
type EnergyPerPixel struct{}

func (EnergyPerPixel) Kind() Kind { return KindEnergyPerPixel }

func (EnergyPerPixel) Compute(t *Tree) error {
	return t.ratio(KindEnergyPerPixel, KindEnergy, func(area, e float64) float64 {
		return e / area
	})
}

func (EnergyPerPixel) MergeWith(*Tree, NodeID, NodeID) error { return ErrMergeUnsupported }

// ratio attaches f(area, prerequisite) to every node, failing on the first
// node that lacks the prerequisite.
func (t *Tree) ratio(kind, prereq Kind, f func(area, v float64) float64) error {
	var err error
	t.LeafToRoot(func(id NodeID) {
		if err != nil {
			return
		}
		v, e := t.Scalar(prereq, id)
		if e != nil {
			err = e
			return
		}
		t.SetAttribute(kind, id, []float64{f(float64(t.nodes[id].area), v)})
	})
	return err
}

// ownSums returns, per node, the sum of the pixel vectors it owns directly.
func (t *Tree) ownSums() ([][]float64, error) {
	owners, err := t.owners()
	if err != nil {
		return nil, err
	}
	own := make([][]float64, len(t.nodes))
	for i, id := range owners {
		if own[id] == nil {
			own[id] = make([]float64, t.img.Bands)
		}
		floats.Add(own[id], t.img.VectorAt(i))
	}
	return own, nil
}

// parentLevel returns the level of id's parent, or a zero vector for the root.
func (t *Tree) parentLevel(id NodeID) []float64 {
	if p := t.nodes[id].parent; p != NoNode {
		return t.nodes[p].level
	}
	return make([]float64, len(t.nodes[id].level))
}

func mergeAdd(t *Tree, kind Kind, into, from NodeID) error {
	a, err := t.Attribute(kind, into)
	if err != nil {
		return err
	}
	b, err := t.Attribute(kind, from)
	if err != nil {
		return err
	}
	floats.Add(a, b)
	return nil
}
