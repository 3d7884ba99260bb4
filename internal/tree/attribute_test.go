package tree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

func scalar(t *testing.T, tr *Tree, kind Kind, id NodeID) float64 {
	t.Helper()
	v, err := tr.Scalar(kind, id)
	require.NoError(t, err)
	return v
}

func TestAttributesOnTwoPeaks(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, twoPeaks), Options{})
	require.NoError(t, tr.ComputeAttributes(
		KindArea, KindSum, KindEnergy, KindPerimeter, KindVolume,
		KindCompactness, KindComplexity, KindSimplicity, KindEnergyPerPixel,
	))
	root := tr.Root()
	a := nodeAt(t, tr, 1, 1)
	b := nodeAt(t, tr, 3, 1)

	assert.Equal(t, 16.0, scalar(t, tr, KindArea, root))
	assert.Equal(t, 2.0, scalar(t, tr, KindArea, a))

	assert.Equal(t, 22.0, scalar(t, tr, KindSum, root))
	assert.Equal(t, 6.0, scalar(t, tr, KindSum, a))
	assert.Equal(t, 4.0, scalar(t, tr, KindSum, b))

	assert.InDelta(t, math.Sqrt(38), scalar(t, tr, KindEnergy, root), 1e-12)
	assert.InDelta(t, math.Sqrt(18), scalar(t, tr, KindEnergy, a), 1e-12)

	assert.Equal(t, 6.0, scalar(t, tr, KindPerimeter, a))
	assert.Equal(t, 6.0, scalar(t, tr, KindPerimeter, b))
	assert.Equal(t, 24.0, scalar(t, tr, KindPerimeter, root))

	assert.Equal(t, 4.0, scalar(t, tr, KindVolume, a))
	assert.Equal(t, 2.0, scalar(t, tr, KindVolume, b))
	assert.Equal(t, 22.0, scalar(t, tr, KindVolume, root))

	assert.InDelta(t, 2.0/36, scalar(t, tr, KindCompactness, a), 1e-12)
	assert.InDelta(t, 3.0, scalar(t, tr, KindComplexity, a), 1e-12)
	assert.InDelta(t, 1.0/3, scalar(t, tr, KindSimplicity, a), 1e-12)
	assert.InDelta(t, math.Sqrt(18)/2, scalar(t, tr, KindEnergyPerPixel, a), 1e-12)
}

func TestRootSumAndAreaMatchImage(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, pol := range []Polarity{MaxTree, MinTree} {
		g := randomGrid(rng, 10, 10, 8)
		tr := mustBuild(t, g, Options{Polarity: pol})
		require.NoError(t, tr.ComputeAttributes(KindArea, KindSum, KindVolume))

		root := tr.Root()
		assert.Equal(t, float64(g.Len()), scalar(t, tr, KindArea, root))
		assert.InDelta(t, g.Sum()[0], scalar(t, tr, KindSum, root), 1e-9)
		// Volume telescopes to the sum of levels over all pixels.
		assert.InDelta(t, g.Sum()[0], scalar(t, tr, KindVolume, root), 1e-9)
	}
}

func TestMinTreeVolumesAreSigned(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, ramp), Options{Polarity: MinTree})
	require.NoError(t, tr.ComputeAttributes(KindVolume))

	left := nodeAt(t, tr, 0, 0)
	assert.Equal(t, -1.0, scalar(t, tr, KindVolume, left))
	assert.Equal(t, -3.0, scalar(t, tr, KindVolume, tr.Node(left).Parent()))
	assert.Equal(t, 4.0, scalar(t, tr, KindVolume, tr.Root()))
}

func TestVectorVolume(t *testing.T) {
	// Two identical bands: every level difference lies along (1, 1), so the
	// vector volume is √2 times the scalar one.
	src := mustGrid(t, twoPeaks)
	g := grid.New2D(src.Width, src.Height, 2)
	for i, v := range src.Pix {
		g.Pix[2*i] = v
		g.Pix[2*i+1] = v
	}
	tr := mustBuild(t, g, Options{})
	require.NoError(t, tr.ComputeAttributes(KindVolume, KindSum))

	assert.InDelta(t, 22*math.Sqrt2, scalar(t, tr, KindVolume, tr.Root()), 1e-9)
	assert.InDelta(t, 4*math.Sqrt2, scalar(t, tr, KindVolume, nodeAt(t, tr, 1, 1)), 1e-9)

	sum, err := tr.Attribute(KindSum, tr.Root())
	require.NoError(t, err)
	assert.Equal(t, []float64{22, 22}, sum)
}

func TestEnergyIsZeroOnlyForZeroRegions(t *testing.T) {
	g := mustGrid(t, [][]float64{{0, 0, 0}, {0, 5, 0}})
	tr := mustBuild(t, g, Options{})
	require.NoError(t, tr.ComputeAttributes(KindEnergy))

	tr.RootToLeaf(func(id NodeID) {
		assert.GreaterOrEqual(t, scalar(t, tr, KindEnergy, id), 0.0)
	})
	assert.Equal(t, 5.0, scalar(t, tr, KindEnergy, tr.Root()))

	zero := mustBuild(t, grid.New2D(3, 3, 1), Options{})
	require.NoError(t, zero.ComputeAttributes(KindEnergy))
	assert.Equal(t, 0.0, scalar(t, zero, KindEnergy, zero.Root()))
}

func TestRatiosNeedPrerequisites(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, twoPeaks), Options{})
	for _, k := range []Kind{KindCompactness, KindComplexity, KindSimplicity, KindEnergyPerPixel} {
		err := tr.ComputeAttributes(k)
		assert.ErrorIs(t, err, ErrAttributeNotFound, "kind %s", k)
	}
	assert.ErrorIs(t, tr.ComputeAttributes(Kind("nope")), ErrUnknownKind)
}

func TestMergeWith(t *testing.T) {
	tr := mustBuild(t, mustGrid(t, twoPeaks), Options{})
	require.NoError(t, tr.ComputeAttributes(KindArea, KindSum, KindEnergy, KindPerimeter))
	a := nodeAt(t, tr, 1, 1)
	b := nodeAt(t, tr, 3, 1)

	area, _ := Lookup(KindArea)
	require.NoError(t, area.MergeWith(tr, a, b))
	assert.Equal(t, 4.0, scalar(t, tr, KindArea, a))

	sum, _ := Lookup(KindSum)
	require.NoError(t, sum.MergeWith(tr, a, b))
	assert.Equal(t, 10.0, scalar(t, tr, KindSum, a))

	energy, _ := Lookup(KindEnergy)
	require.NoError(t, energy.MergeWith(tr, a, b))
	assert.InDelta(t, math.Sqrt(18+8), scalar(t, tr, KindEnergy, a), 1e-12)

	perim, _ := Lookup(KindPerimeter)
	assert.ErrorIs(t, perim.MergeWith(tr, a, b), ErrMergeUnsupported)

	vol, _ := Lookup(KindVolume)
	assert.ErrorIs(t, vol.MergeWith(tr, a, b), ErrAttributeNotFound)
}

type depthAttr struct{}

func (depthAttr) Kind() Kind { return "depth" }

func (depthAttr) Compute(t *Tree) error {
	t.RootToLeaf(func(id NodeID) {
		t.SetAttribute("depth", id, []float64{float64(t.Depth(id))})
	})
	return nil
}

func (depthAttr) MergeWith(*Tree, NodeID, NodeID) error { return ErrMergeUnsupported }

func TestRegisterCustomAttribute(t *testing.T) {
	Register(depthAttr{})
	assert.Contains(t, Kinds(), Kind("depth"))

	tr := mustBuild(t, mustGrid(t, ramp), Options{})
	require.NoError(t, tr.ComputeAttributes("depth"))
	assert.Equal(t, 2.0, scalar(t, tr, "depth", nodeAt(t, tr, 2, 0)))

	n, err := tr.Prune(AttributeBelow{Kind: "depth", Threshold: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, tr.Validate())
}
