package reconstruct

import (
	"fmt"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// Dilate replaces every pixel by the maximum over its neighborhood, radius
// times in a row. The neighborhood is the pixel plus its adjacency, so a
// radius-r dilation with Conn8 uses a (2r+1)-square element and with Conn4 a
// diamond.
func Dilate(g *grid.Grid, adj grid.Adjacency, radius int) (*grid.Grid, error) {
	return rankFilter(g, adj, radius, Forward)
}

// Erode is the dual of Dilate.
func Erode(g *grid.Grid, adj grid.Adjacency, radius int) (*grid.Grid, error) {
	return rankFilter(g, adj, radius, Inverse)
}

func rankFilter(g *grid.Grid, adj grid.Adjacency, radius int, mode Mode) (*grid.Grid, error) {
	adj = adj.OrDefault()
	if !adj.Planar() {
		return nil, fmt.Errorf("%w: got %s", ErrAdjacency, adj)
	}
	p := &plane{mode: mode}
	cur := g.Clone()
	next := g.Clone()
	offsets := adj.Offsets()
	for r := 0; r < radius; r++ {
		for i := 0; i < g.Len(); i++ {
			x, y, z, t := g.Coords(i)
			for b := 0; b < g.Bands; b++ {
				v := cur.Pix[i*g.Bands+b]
				for _, o := range offsets {
					if n, ok := g.Shift(x, y, z, t, o); ok {
						if w := cur.Pix[n*g.Bands+b]; p.above(w, v) {
							v = w
						}
					}
				}
				next.Pix[i*g.Bands+b] = v
			}
		}
		cur, next = next, cur
	}
	return cur, nil
}

// OpeningByReconstruction erodes g and reconstructs g from the result,
// removing bright structures the element does not fit in while keeping the
// exact shape of everything else.
func OpeningByReconstruction(g *grid.Grid, adj grid.Adjacency, radius int) (*grid.Grid, error) {
	marker, err := Erode(g, adj, radius)
	if err != nil {
		return nil, err
	}
	return Reconstruct(marker, g, Options{Mode: Forward, Adjacency: adj})
}

// ClosingByReconstruction is the dual of OpeningByReconstruction.
func ClosingByReconstruction(g *grid.Grid, adj grid.Adjacency, radius int) (*grid.Grid, error) {
	marker, err := Dilate(g, adj, radius)
	if err != nil {
		return nil, err
	}
	return Reconstruct(marker, g, Options{Mode: Inverse, Adjacency: adj})
}

// HMaxima suppresses every regional maximum whose dynamic is at most h.
func HMaxima(g *grid.Grid, adj grid.Adjacency, h float64) (*grid.Grid, error) {
	return Reconstruct(shifted(g, -h), g, Options{Mode: Forward, Adjacency: adj})
}

// HMinima suppresses every regional minimum whose depth is at most h.
func HMinima(g *grid.Grid, adj grid.Adjacency, h float64) (*grid.Grid, error) {
	return Reconstruct(shifted(g, h), g, Options{Mode: Inverse, Adjacency: adj})
}

// Dynamics returns g - HMaxima(g, h): the part of each peak cut off by the
// h-maxima transform.
func Dynamics(g *grid.Grid, adj grid.Adjacency, h float64) (*grid.Grid, error) {
	r, err := HMaxima(g, adj, h)
	if err != nil {
		return nil, err
	}
	out := g.Clone()
	for i := range out.Pix {
		out.Pix[i] -= r.Pix[i]
	}
	return out, nil
}

// RegionalMaxima marks with 1 every pixel of a regional maximum and with 0
// every other pixel. Levels are assumed to be integral.
func RegionalMaxima(g *grid.Grid, adj grid.Adjacency) (*grid.Grid, error) {
	r, err := Reconstruct(shifted(g, -1), g, Options{Mode: Forward, Adjacency: adj})
	if err != nil {
		return nil, err
	}
	return indicator(g, r, 1), nil
}

// RegionalMinima marks with 1 every pixel of a regional minimum.
func RegionalMinima(g *grid.Grid, adj grid.Adjacency) (*grid.Grid, error) {
	r, err := Reconstruct(shifted(g, 1), g, Options{Mode: Inverse, Adjacency: adj})
	if err != nil {
		return nil, err
	}
	return indicator(g, r, -1), nil
}

func shifted(g *grid.Grid, d float64) *grid.Grid {
	out := g.Clone()
	for i := range out.Pix {
		out.Pix[i] += d
	}
	return out
}

// indicator is 1 where sign*(g-r) is positive.
func indicator(g, r *grid.Grid, sign float64) *grid.Grid {
	out := g.NewLike(g.Bands)
	for i := range out.Pix {
		if sign*(g.Pix[i]-r.Pix[i]) > 0 {
			out.Pix[i] = 1
		}
	}
	return out
}
