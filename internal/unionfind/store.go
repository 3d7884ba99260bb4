// Package unionfind implements the coordinate-indexed disjoint-set store shared
// by connected-component labeling and region-tree construction.
//
// The store is a fixed-size 3-D grid of set records. Each record holds a parent
// reference, a rank and the coordinate it was created for. Records are never
// deleted; they are only re-pointed by Link, LinkNoRankCheck and
// ChangePointLink.
//
// Out-of-bounds coordinates and coordinates without a record are programmer
// errors and panic, in the same way that indexing a slice out of range does.
package unionfind

import (
	"fmt"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

const noRecord = -1

type record struct {
	parent int32 // record index; equal to its own index for a root
	rank   int32
	point  int32 // coordinate index the record was created for
}

// Store is a disjoint-set forest over the coordinates of a Width x Height x
// Depth volume.
//
// A Store is not safe for concurrent use.
type Store struct {
	width, height, depth int

	records []record
	// slot maps a coordinate index to its current record, or noRecord.
	slot     []int32
	phantoms int
}

// New creates a store for a width x height x depth volume with no sets.
func New(width, height, depth int) *Store {
	n := width * height * depth
	slot := make([]int32, n)
	for i := range slot {
		slot[i] = noRecord
	}
	return &Store{
		width:   width,
		height:  height,
		depth:   depth,
		records: make([]record, 0, n),
		slot:    slot,
	}
}

// NewFull creates a store and calls MakeSet for every coordinate.
func NewFull(width, height, depth int) *Store {
	s := New(width, height, depth)
	for i := range s.slot {
		s.MakeSetIndex(i)
	}
	return s
}

// Len returns the number of coordinates the store covers.
func (s *Store) Len() int {
	return len(s.slot)
}

// Records returns the number of records allocated, phantoms included.
func (s *Store) Records() int {
	return len(s.records)
}

// Phantoms returns how many records were orphaned by ChangePointLink.
func (s *Store) Phantoms() int {
	return s.phantoms
}

// Index returns the coordinate index of p.
func (s *Store) Index(p grid.Point) int {
	if p.X < 0 || p.X >= s.width || p.Y < 0 || p.Y >= s.height || p.Z < 0 || p.Z >= s.depth {
		panic(fmt.Sprintf("unionfind: point %v outside %dx%dx%d store", p, s.width, s.height, s.depth))
	}
	return (p.Z*s.height+p.Y)*s.width + p.X
}

// PointOf is the inverse of Index.
func (s *Store) PointOf(i int) grid.Point {
	return grid.Point{X: i % s.width, Y: (i / s.width) % s.height, Z: i / (s.width * s.height)}
}

// Has reports whether MakeSet has been called for p.
func (s *Store) Has(p grid.Point) bool {
	return s.slot[s.Index(p)] != noRecord
}

// MakeSet creates a singleton set for p. It returns false, leaving the store
// untouched, when p already has a record.
func (s *Store) MakeSet(p grid.Point) bool {
	return s.MakeSetIndex(s.Index(p))
}

// MakeSetIndex is MakeSet addressed by coordinate index.
func (s *Store) MakeSetIndex(i int) bool {
	if s.slot[i] != noRecord {
		return false
	}
	r := int32(len(s.records))
	s.records = append(s.records, record{parent: r, point: int32(i)})
	s.slot[i] = r
	return true
}

// Find returns the canonical point of the set containing p.
func (s *Store) Find(p grid.Point) grid.Point {
	return s.PointOf(s.FindIndex(s.Index(p)))
}

// FindIndex returns the canonical coordinate index of the set containing
// coordinate i.
func (s *Store) FindIndex(i int) int {
	return int(s.records[s.find(s.recordOf(i))].point)
}

// Same reports whether p and q belong to the same set.
func (s *Store) Same(p, q grid.Point) bool {
	return s.find(s.recordOf(s.Index(p))) == s.find(s.recordOf(s.Index(q)))
}

// Rank returns the rank stored on p's record.
func (s *Store) Rank(p grid.Point) int {
	return int(s.records[s.recordOf(s.Index(p))].rank)
}

// Link merges the sets of p1 and p2 by rank: the lower-rank root is attached
// under the higher-rank one and a tie increments the surviving root's rank.
// It returns the point that stopped being canonical. linked is false, and
// nothing changes, when p1 and p2 were already in the same set.
//
// Link may change which coordinate is canonical for a set, so it belongs to
// build phases only; once callers key data by canonical coordinate they must
// use LinkNoRankCheck instead.
func (s *Store) Link(p1, p2 grid.Point) (nonCanonical grid.Point, linked bool) {
	i, ok := s.LinkIndex(s.Index(p1), s.Index(p2))
	return s.PointOf(i), ok
}

// LinkIndex is Link addressed by coordinate index.
func (s *Store) LinkIndex(i, j int) (int, bool) {
	r1 := s.find(s.recordOf(i))
	r2 := s.find(s.recordOf(j))
	if r1 == r2 {
		return int(s.records[r1].point), false
	}
	if s.records[r1].rank < s.records[r2].rank {
		r1, r2 = r2, r1
	} else if s.records[r1].rank == s.records[r2].rank {
		s.records[r1].rank++
	}
	s.records[r2].parent = r1
	return int(s.records[r2].point), true
}

// LinkNoRankCheck makes child's record point at root's current parent.
//
// No rank bookkeeping is done and root's record is not resolved further, so
// the caller decides the outcome. When root is canonical the child's set is
// absorbed into root's set.
func (s *Store) LinkNoRankCheck(root, child grid.Point) {
	s.LinkNoRankCheckIndex(s.Index(root), s.Index(child))
}

// LinkNoRankCheckIndex is LinkNoRankCheck addressed by coordinate index.
func (s *Store) LinkNoRankCheckIndex(root, child int) {
	rr := s.recordOf(root)
	cr := s.recordOf(child)
	s.records[cr].parent = s.records[rr].parent
}

// ChangePointLink gives p a fresh record whose parent is parent's record.
//
// Any previous record for p is not modified: records that pointed at it keep
// resolving through it, but p itself no longer does. Such orphaned records are
// counted by Phantoms.
func (s *Store) ChangePointLink(p, parent grid.Point) {
	i := s.Index(p)
	pr := s.recordOf(s.Index(parent))
	if s.slot[i] != noRecord {
		s.phantoms++
	}
	r := int32(len(s.records))
	s.records = append(s.records, record{parent: pr, point: int32(i)})
	s.slot[i] = r
}

// CompressAll points every record directly at its root.
func (s *Store) CompressAll() {
	for r := range s.records {
		s.find(int32(r))
	}
}

func (s *Store) recordOf(i int) int32 {
	r := s.slot[i]
	if r == noRecord {
		panic(fmt.Sprintf("unionfind: no set for %v", s.PointOf(i)))
	}
	return r
}

// find returns the root record of r and re-points every record on the path
// at that root.
func (s *Store) find(r int32) int32 {
	root := r
	for s.records[root].parent != root {
		root = s.records[root].parent
	}
	for s.records[r].parent != root {
		r, s.records[r].parent = s.records[r].parent, root
	}
	return root
}
