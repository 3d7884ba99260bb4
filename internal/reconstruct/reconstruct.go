package reconstruct

import (
	"errors"
	"fmt"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

var (
	// ErrShapeMismatch is returned when marker and mask differ in shape.
	ErrShapeMismatch = errors.New("reconstruct: marker and mask shapes differ")
	// ErrAdjacency is returned for adjacencies that leave the (x, y) plane.
	ErrAdjacency = errors.New("reconstruct: adjacency must be planar")
)

// Mode selects the direction of the reconstruction.
type Mode int

const (
	// Forward reconstructs by dilation, clamping with min against the mask.
	Forward Mode = iota
	// Inverse reconstructs by erosion, clamping with max against the mask.
	Inverse
)

// String returns "forward" or "inverse".
func (m Mode) String() string {
	if m == Inverse {
		return "inverse"
	}
	return "forward"
}

// Options configures Reconstruct.
type Options struct {
	Mode Mode
	// Adjacency must be planar. The zero value means grid.Conn4.
	Adjacency grid.Adjacency
}

// Reconstruct grows marker under mask until stable and returns the result as
// a new grid. Every band, z slice and time frame is reconstructed on its own.
//
// In Forward mode the result lies between min(marker, mask) and mask; in
// Inverse mode between mask and max(marker, mask).
func Reconstruct(marker, mask *grid.Grid, opts Options) (*grid.Grid, error) {
	if !marker.SameShape(mask) {
		return nil, fmt.Errorf("%w: marker %s, mask %s", ErrShapeMismatch, marker.Shape(), mask.Shape())
	}
	adj := opts.Adjacency.OrDefault()
	if !adj.Planar() {
		return nil, fmt.Errorf("%w: got %s", ErrAdjacency, adj)
	}

	out := marker.Clone()
	p := newPlane(marker.Width, marker.Height, adj, opts.Mode)
	for t := 0; t < marker.Duration; t++ {
		for z := 0; z < marker.Depth; z++ {
			base := marker.Index(0, 0, z, t)
			for b := 0; b < marker.Bands; b++ {
				p.load(out, mask, base, b)
				p.run()
				p.store(out, base, b)
			}
		}
	}
	return out, nil
}

// plane is the working state for one (x, y) slice of one band.
type plane struct {
	w, h   int
	mode   Mode
	all    []grid.Offset
	causal []grid.Offset
	anti   []grid.Offset

	j     []float64
	mask  []float64
	queue []int
}

func newPlane(w, h int, adj grid.Adjacency, mode Mode) *plane {
	return &plane{
		w:      w,
		h:      h,
		mode:   mode,
		all:    adj.Offsets(),
		causal: adj.Causal(),
		anti:   adj.AntiCausal(),
		j:      make([]float64, w*h),
		mask:   make([]float64, w*h),
	}
}

func (p *plane) load(marker, mask *grid.Grid, base, band int) {
	for i := range p.j {
		k := (base+i)*marker.Bands + band
		p.j[i] = marker.Pix[k]
		p.mask[i] = mask.Pix[k]
	}
}

func (p *plane) store(out *grid.Grid, base, band int) {
	for i, v := range p.j {
		out.Pix[(base+i)*out.Bands+band] = v
	}
}

// above reports whether a lies strictly beyond b in the propagation direction.
func (p *plane) above(a, b float64) bool {
	if p.mode == Inverse {
		return a < b
	}
	return a > b
}

// clamp keeps v on the mask side of m.
func (p *plane) clamp(v, m float64) float64 {
	if p.above(v, m) {
		return m
	}
	return v
}

func (p *plane) neighbor(x, y int, o grid.Offset) (int, bool) {
	nx, ny := x+o.DX, y+o.DY
	if nx < 0 || nx >= p.w || ny < 0 || ny >= p.h {
		return 0, false
	}
	return ny*p.w + nx, true
}

func (p *plane) run() {
	p.queue = p.queue[:0]

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			i := y*p.w + x
			v := p.j[i]
			for _, o := range p.causal {
				if q, ok := p.neighbor(x, y, o); ok && p.above(p.j[q], v) {
					v = p.j[q]
				}
			}
			p.j[i] = p.clamp(v, p.mask[i])
		}
	}

	for y := p.h - 1; y >= 0; y-- {
		for x := p.w - 1; x >= 0; x-- {
			i := y*p.w + x
			v := p.j[i]
			for _, o := range p.anti {
				if q, ok := p.neighbor(x, y, o); ok && p.above(p.j[q], v) {
					v = p.j[q]
				}
			}
			v = p.clamp(v, p.mask[i])
			p.j[i] = v
			// A later neighbor this pass can no longer raise is left to the queue.
			for _, o := range p.anti {
				q, ok := p.neighbor(x, y, o)
				if ok && p.above(v, p.j[q]) && p.j[q] != p.mask[q] {
					p.queue = append(p.queue, i)
					break
				}
			}
		}
	}

	for head := 0; head < len(p.queue); head++ {
		i := p.queue[head]
		x, y := i%p.w, i/p.w
		v := p.j[i]
		for _, o := range p.all {
			q, ok := p.neighbor(x, y, o)
			if !ok || !p.above(v, p.j[q]) || p.j[q] == p.mask[q] {
				continue
			}
			p.j[q] = p.clamp(v, p.mask[q])
			p.queue = append(p.queue, q)
		}
	}
}
