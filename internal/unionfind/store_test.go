package unionfind

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

func TestNewFull_Singletons(t *testing.T) {
	s := NewFull(3, 2, 1)

	for i := 0; i < s.Len(); i++ {
		p := s.PointOf(i)
		if got := s.Find(p); got != p {
			t.Errorf("Find(%v) = %v, want itself", p, got)
		}
	}
	assert.Equal(t, 6, s.Records())
}

func TestMakeSet_Twice(t *testing.T) {
	s := New(2, 2, 1)
	assert.True(t, s.MakeSet(grid.Pt(1, 1)))
	assert.False(t, s.MakeSet(grid.Pt(1, 1)))
	assert.True(t, s.Has(grid.Pt(1, 1)))
	assert.False(t, s.Has(grid.Pt(0, 0)))
}

func TestIndexPointRoundTrip(t *testing.T) {
	s := New(4, 3, 2)
	for i := 0; i < s.Len(); i++ {
		require.Equal(t, i, s.Index(s.PointOf(i)))
	}
}

func TestIndex_OutOfBoundsPanics(t *testing.T) {
	s := New(2, 2, 1)
	assert.Panics(t, func() { s.Index(grid.Pt(2, 0)) })
	assert.Panics(t, func() { s.Find(grid.Pt(0, 0)) }, "Find without MakeSet")
}

func TestLink_ByRank(t *testing.T) {
	s := NewFull(4, 1, 1)
	a, b, c := grid.Pt(0, 0), grid.Pt(1, 0), grid.Pt(2, 0)

	// Tie: second argument's root goes under the first, whose rank grows.
	lost, ok := s.Link(a, b)
	require.True(t, ok)
	assert.Equal(t, b, lost)
	assert.Equal(t, a, s.Find(b))
	assert.Equal(t, 1, s.Rank(a))

	// Lower rank attaches under higher rank regardless of argument order.
	lost, ok = s.Link(c, a)
	require.True(t, ok)
	assert.Equal(t, c, lost)
	assert.Equal(t, a, s.Find(c))
	assert.Equal(t, 1, s.Rank(a))

	// Already joined.
	_, ok = s.Link(b, c)
	assert.False(t, ok)
}

func TestLinkNoRankCheck_UsesRootsParent(t *testing.T) {
	s := NewFull(3, 1, 1)
	a, b, c := grid.Pt(0, 0), grid.Pt(1, 0), grid.Pt(2, 0)

	s.LinkNoRankCheck(a, b) // b -> a
	s.LinkNoRankCheck(b, c) // c -> parent(b) == a, not b itself

	assert.Equal(t, a, s.Find(c))
	assert.Equal(t, 0, s.Rank(a), "no rank bookkeeping")
}

func TestChangePointLink_LeavesPhantom(t *testing.T) {
	s := NewFull(3, 1, 1)
	a, b, c := grid.Pt(0, 0), grid.Pt(1, 0), grid.Pt(2, 0)

	s.LinkNoRankCheck(b, c) // c resolves through b's record
	s.ChangePointLink(b, a)

	assert.Equal(t, a, s.Find(b))
	// c still hangs off b's old record, which is now a phantom root.
	assert.Equal(t, b, s.Find(c))
	assert.Equal(t, 1, s.Phantoms())
	assert.Equal(t, 4, s.Records())
}

func TestFind_CompressesPath(t *testing.T) {
	s := NewFull(5, 1, 1)
	// Build the chain 4 -> 3 -> 2 -> 1 -> 0 without rank.
	for x := 4; x > 0; x-- {
		s.LinkNoRankCheck(grid.Pt(x-1, 0), grid.Pt(x, 0))
	}
	s.Find(grid.Pt(4, 0))
	for r := 1; r < 5; r++ {
		assert.Equal(t, int32(0), s.records[r].parent, "record %d", r)
	}
}

func TestCompressAll(t *testing.T) {
	s := NewFull(6, 1, 1)
	for x := 5; x > 0; x-- {
		s.LinkNoRankCheck(grid.Pt(x-1, 0), grid.Pt(x, 0))
	}
	s.CompressAll()
	for r := range s.records {
		assert.Equal(t, int32(0), s.records[r].parent)
	}
}

// TestSoundness compares random Link sequences with a naive component
// relabeling reference.
func TestSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 64

	for trial := 0; trial < 20; trial++ {
		s := NewFull(8, 8, 1)
		ref := make([]int, n)
		for i := range ref {
			ref[i] = i
		}

		for k := 0; k < 40; k++ {
			i, j := rng.Intn(n), rng.Intn(n)
			s.LinkIndex(i, j)
			from, to := ref[j], ref[i]
			for m := range ref {
				if ref[m] == from {
					ref[m] = to
				}
			}
		}

		for i := 0; i < n; i++ {
			c := s.FindIndex(i)
			require.Equal(t, c, s.FindIndex(c), "find must be idempotent")
			for j := 0; j < n; j++ {
				same := s.FindIndex(i) == s.FindIndex(j)
				require.Equal(t, ref[i] == ref[j], same, "points %d and %d", i, j)
			}
		}
	}
}

// TestSoundness_OrderIndependent checks that equivalent union sets give the
// same partition whatever order they are applied in.
func TestSoundness_OrderIndependent(t *testing.T) {
	pairs := [][2]int{{0, 1}, {2, 3}, {1, 3}, {5, 6}, {7, 5}}

	forward := NewFull(8, 1, 1)
	for _, p := range pairs {
		forward.LinkIndex(p[0], p[1])
	}
	backward := NewFull(8, 1, 1)
	for k := len(pairs) - 1; k >= 0; k-- {
		backward.LinkIndex(pairs[k][1], pairs[k][0])
	}

	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.Equal(t,
				forward.FindIndex(i) == forward.FindIndex(j),
				backward.FindIndex(i) == backward.FindIndex(j))
		}
	}
}
