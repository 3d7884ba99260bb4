package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// twoPeaks has a level-1 background with a level-3 peak at x=1 and a
// level-2 peak at x=3, each two pixels tall.
var twoPeaks = [][]float64{
	{1, 1, 1, 1},
	{1, 3, 1, 2},
	{1, 3, 1, 2},
	{1, 1, 1, 1},
}

// ramp is the single row 0 1 2 1 0.
var ramp = [][]float64{{0, 1, 2, 1, 0}}

func mustGrid(t *testing.T, rows [][]float64) *grid.Grid {
	t.Helper()
	g, err := grid.FromRows(rows)
	require.NoError(t, err)
	return g
}

func mustBuild(t *testing.T, g *grid.Grid, opts Options) *Tree {
	t.Helper()
	tr, err := Build(g, opts)
	require.NoError(t, err)
	require.NoError(t, tr.Validate())
	return tr
}

func nodeAt(t *testing.T, tr *Tree, x, y int) NodeID {
	t.Helper()
	id, err := tr.FindNodeAt(grid.Pt(x, y))
	require.NoError(t, err)
	return id
}

func randomGrid(rng *rand.Rand, w, h, levels int) *grid.Grid {
	g := grid.New2D(w, h, 1)
	for i := range g.Pix {
		g.Pix[i] = float64(rng.Intn(levels))
	}
	return g
}

func TestBuildMaxTree(t *testing.T) {
	g := mustGrid(t, twoPeaks)
	tr := mustBuild(t, g, Options{})

	assert.Equal(t, 3, tr.CountNodes())
	assert.Equal(t, 2, tr.CountLeaves())

	root := tr.Node(tr.Root())
	assert.Equal(t, []float64{1}, root.Level())
	assert.Equal(t, 16, root.Area())
	assert.Equal(t, NoNode, root.Parent())

	a := nodeAt(t, tr, 1, 1)
	b := nodeAt(t, tr, 3, 2)
	assert.Equal(t, a, nodeAt(t, tr, 1, 2))
	assert.Equal(t, []float64{3}, tr.Node(a).Level())
	assert.Equal(t, []float64{2}, tr.Node(b).Level())
	assert.Equal(t, 2, tr.Node(a).Area())
	assert.Equal(t, tr.Root(), tr.Node(a).Parent())
	assert.Equal(t, tr.Root(), nodeAt(t, tr, 0, 0))
	assert.Equal(t, grid.Pt(1, 1), tr.Canonical(a))
}

func TestBuildMinTree(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, ramp), Options{Polarity: MinTree})

	assert.Equal(t, MinTree, tr.Polarity())
	assert.Equal(t, 5, tr.CountNodes())
	assert.Equal(t, 2, tr.CountLeaves())
	assert.Equal(t, []float64{2}, tr.Node(tr.Root()).Level())

	left := nodeAt(t, tr, 0, 0)
	assert.Equal(t, []float64{0}, tr.Node(left).Level())
	mid := tr.Node(left).Parent()
	assert.Equal(t, []float64{1}, tr.Node(mid).Level())
	assert.Equal(t, 2, tr.Node(mid).Area())
	assert.Equal(t, 2, tr.Depth(left))
}

func TestBuildRejectsUnsupportedGrids(t *testing.T) {
	g := mustGrid(t, ramp)
	_, err := Build(g, Options{Adjacency: grid.Conn6T()})
	assert.ErrorIs(t, err, ErrUnsupportedGrid)

	_, err = Build(grid.New(2, 2, 2, 1, 1), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedGrid)

	_, err = Build(grid.New(2, 2, 1, 2, 1), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedGrid)

	tr, err := Build(grid.New(2, 2, 2, 1, 1), Options{Adjacency: grid.Conn6()})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.CountNodes())
}

func TestBuildRandomIsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, pol := range []Polarity{MaxTree, MinTree} {
		for _, adj := range []grid.Adjacency{grid.Conn4(), grid.Conn8()} {
			for trial := 0; trial < 20; trial++ {
				g := randomGrid(rng, 9, 7, 4)
				tr := mustBuild(t, g, Options{Adjacency: adj, Polarity: pol})

				assert.Equal(t, g.Len(), tr.Node(tr.Root()).Area())
				out, err := tr.Restitute()
				require.NoError(t, err)
				assert.Equal(t, g.Pix, out.Pix, "%s %s trial %d", pol, adj, trial)

				// Levels move monotonically away from the root.
				tr.RootToLeaf(func(id NodeID) {
					p := tr.Node(id).Parent()
					if p == NoNode {
						return
					}
					c := Lexicographic(tr.Node(id).Level(), tr.Node(p).Level())
					if pol == MaxTree {
						assert.Positive(t, c)
					} else {
						assert.Negative(t, c)
					}
				})
			}
		}
	}
}

func TestIsMember(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, ramp), Options{})
	peak := nodeAt(t, tr, 2, 0)
	shoulder := tr.Node(peak).Parent()

	for _, tc := range []struct {
		name string
		p    grid.Point
		id   NodeID
		want bool
	}{
		{"owner", grid.Pt(2, 0), peak, true},
		{"ancestor", grid.Pt(2, 0), tr.Root(), true},
		{"sibling level", grid.Pt(1, 0), shoulder, true},
		{"not in peak", grid.Pt(1, 0), peak, false},
		{"background", grid.Pt(0, 0), shoulder, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tr.IsMember(tc.p, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := tr.IsMember(grid.Pt(9, 0), peak)
	assert.Error(t, err)
}

func TestOwnedPoints(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, ramp), Options{})
	shoulder := tr.Node(nodeAt(t, tr, 2, 0)).Parent()

	pts, err := tr.OwnedPoints(shoulder)
	require.NoError(t, err)
	assert.ElementsMatch(t, []grid.Point{grid.Pt(1, 0), grid.Pt(3, 0)}, pts)
}

func TestTraversalOrder(t *testing.T) {
	tr := mustBuild(t, randomGrid(rand.New(rand.NewSource(3)), 8, 8, 5), Options{})

	post := map[NodeID]int{}
	tr.LeafToRoot(func(id NodeID) { post[id] = len(post) })
	pre := map[NodeID]int{}
	tr.RootToLeaf(func(id NodeID) { pre[id] = len(pre) })

	require.Len(t, post, tr.CountNodes())
	require.Len(t, pre, tr.CountNodes())
	for id := range pre {
		for _, c := range tr.Node(id).Children() {
			assert.Less(t, post[c], post[id])
			assert.Less(t, pre[id], pre[c])
		}
	}

	labels := tr.PreorderLabels()
	assert.Equal(t, 0, labels[tr.Root()])
	for id, p := range pre {
		assert.Equal(t, p, labels[id])
	}
}

func TestTraversalHandlesDeepChains(t *testing.T) {
	const n = 20000
	row := make([]float64, n)
	for i := range row {
		row[i] = float64(i)
	}
	tr := mustBuild(t, mustGrid(t, [][]float64{row}), Options{})
	assert.Equal(t, n, tr.CountNodes())
	assert.Equal(t, 1, tr.CountLeaves())
}
