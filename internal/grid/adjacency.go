package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAdjacency is returned by ParseAdjacency for unrecognised names.
var ErrUnknownAdjacency = errors.New("grid: unknown adjacency")

// Offset is a displacement from a center pixel.
type Offset struct {
	DX, DY, DZ, DT int
}

// Precedes reports whether the neighbor at o is visited before the center in
// raster order (x fastest, then y, z, t).
func (o Offset) Precedes() bool {
	switch {
	case o.DT != 0:
		return o.DT < 0
	case o.DZ != 0:
		return o.DZ < 0
	case o.DY != 0:
		return o.DY < 0
	default:
		return o.DX < 0
	}
}

// Negate returns the opposite offset.
func (o Offset) Negate() Offset {
	return Offset{DX: -o.DX, DY: -o.DY, DZ: -o.DZ, DT: -o.DT}
}

// Adjacency is an immutable, centered set of neighbor offsets.
type Adjacency struct {
	name    string
	offsets []Offset
}

var (
	planar4 = []Offset{{DX: -1}, {DX: 1}, {DY: -1}, {DY: 1}}
	planar8 = []Offset{
		{DX: -1}, {DX: 1}, {DY: -1}, {DY: 1},
		{DX: -1, DY: -1}, {DX: 1, DY: -1}, {DX: -1, DY: 1}, {DX: 1, DY: 1},
	}
)

// Conn4 returns the planar 4-neighbor adjacency.
func Conn4() Adjacency {
	return Adjacency{name: "4", offsets: planar4}
}

// Conn8 returns the planar 8-neighbor adjacency.
func Conn8() Adjacency {
	return Adjacency{name: "8", offsets: planar8}
}

// Conn6 returns the volumetric 6-neighbor adjacency (4 planar + previous/next slice).
func Conn6() Adjacency {
	offsets := append(append([]Offset{}, planar4...), Offset{DZ: -1}, Offset{DZ: 1})
	return Adjacency{name: "6", offsets: offsets}
}

// Conn6T returns 4-adjacency extended with the previous and next time frame.
func Conn6T() Adjacency {
	offsets := append(append([]Offset{}, planar4...), Offset{DT: -1}, Offset{DT: 1})
	return Adjacency{name: "6t", offsets: offsets}
}

// Conn10T returns 8-adjacency extended with the previous and next time frame.
func Conn10T() Adjacency {
	offsets := append(append([]Offset{}, planar8...), Offset{DT: -1}, Offset{DT: 1})
	return Adjacency{name: "10t", offsets: offsets}
}

// ParseAdjacency maps "4", "8", "6", "6t" and "10t" to their adjacency.
// An empty string selects Conn4.
func ParseAdjacency(name string) (Adjacency, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "4":
		return Conn4(), nil
	case "8":
		return Conn8(), nil
	case "6":
		return Conn6(), nil
	case "6t":
		return Conn6T(), nil
	case "10t":
		return Conn10T(), nil
	default:
		return Adjacency{}, fmt.Errorf("%w: %q", ErrUnknownAdjacency, name)
	}
}

// OrDefault returns a, or Conn4 when a is the zero value.
func (a Adjacency) OrDefault() Adjacency {
	if a.IsZero() {
		return Conn4()
	}
	return a
}

// IsZero reports whether a is the zero Adjacency.
func (a Adjacency) IsZero() bool {
	return len(a.offsets) == 0
}

// String returns the adjacency name ("4", "8", "6", "6t" or "10t").
func (a Adjacency) String() string {
	return a.name
}

// Len returns the number of neighbors.
func (a Adjacency) Len() int {
	return len(a.offsets)
}

// Offsets returns a copy of the neighbor offsets.
func (a Adjacency) Offsets() []Offset {
	return append([]Offset(nil), a.offsets...)
}

// Contains reports whether o is one of the neighbor offsets.
func (a Adjacency) Contains(o Offset) bool {
	for _, n := range a.offsets {
		if n == o {
			return true
		}
	}
	return false
}

// Causal returns the offsets of neighbors visited before the center in raster order.
func (a Adjacency) Causal() []Offset {
	var out []Offset
	for _, o := range a.offsets {
		if o.Precedes() {
			out = append(out, o)
		}
	}
	return out
}

// AntiCausal returns the offsets of neighbors visited after the center in raster order.
func (a Adjacency) AntiCausal() []Offset {
	var out []Offset
	for _, o := range a.offsets {
		if !o.Precedes() {
			out = append(out, o)
		}
	}
	return out
}

// Temporal reports whether any offset crosses time frames.
func (a Adjacency) Temporal() bool {
	for _, o := range a.offsets {
		if o.DT != 0 {
			return true
		}
	}
	return false
}

// Volumetric reports whether any offset crosses z slices.
func (a Adjacency) Volumetric() bool {
	for _, o := range a.offsets {
		if o.DZ != 0 {
			return true
		}
	}
	return false
}

// Planar reports whether every offset stays inside one (x, y) plane.
func (a Adjacency) Planar() bool {
	return !a.Temporal() && !a.Volumetric()
}

// Neighbors appends to dst the raster indices of the in-bounds neighbors of
// pixel (x, y, z, t) and returns the extended slice.
func (a Adjacency) Neighbors(g *Grid, dst []int, x, y, z, t int) []int {
	for _, o := range a.offsets {
		if n, ok := g.Shift(x, y, z, t, o); ok {
			dst = append(dst, n)
		}
	}
	return dst
}
