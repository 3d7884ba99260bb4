package label

import (
	"errors"
	"fmt"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// NoLabel marks background pixels when Options.Background is set.
const NoLabel = -1

var (
	// ErrBandCount indicates an input whose band count does not match the
	// labeling flavour.
	ErrBandCount = errors.New("label: unexpected band count")
)

// Options configures a labeling pass.
type Options struct {
	// Adjacency selects the neighborhood. The zero value means grid.Conn4.
	Adjacency grid.Adjacency

	// Background leaves zero pixels unlabeled (NoLabel) instead of labeling
	// background regions like any other value.
	Background bool
}

// Result is a dense label grid.
type Result struct {
	// Labels holds one band with values in [0, Count) or NoLabel.
	Labels *grid.Grid

	// Count is the number of distinct labels.
	Count int
}

// Sizes returns the pixel count of every label.
func (r *Result) Sizes() []int {
	sizes := make([]int, r.Count)
	for _, v := range r.Labels.Pix {
		if v >= 0 {
			sizes[int(v)]++
		}
	}
	return sizes
}

// Binary labels a single-band grid where any non-zero sample is foreground.
func Binary(g *grid.Grid, opts Options) (*Result, error) {
	if err := checkBands(g, 1); err != nil {
		return nil, err
	}
	pix := g.Pix
	s := &scanner{
		g: g,
		equal: func(i, j int) bool {
			return (pix[i] != 0) == (pix[j] != 0)
		},
	}
	if opts.Background {
		s.background = func(i int) bool { return pix[i] == 0 }
	}
	return s.run(opts.Adjacency.OrDefault()), nil
}

// Labels labels a single-band grid of integer labels. Samples are truncated
// toward zero before comparison.
func Labels(g *grid.Grid, opts Options) (*Result, error) {
	if err := checkBands(g, 1); err != nil {
		return nil, err
	}
	pix := g.Pix
	s := &scanner{
		g: g,
		equal: func(i, j int) bool {
			return int64(pix[i]) == int64(pix[j])
		},
	}
	if opts.Background {
		s.background = func(i int) bool { return int64(pix[i]) == 0 }
	}
	return s.run(opts.Adjacency.OrDefault()), nil
}

// Color labels a three-band grid; neighbors match when all channels are identical.
func Color(g *grid.Grid, opts Options) (*Result, error) {
	if err := checkBands(g, 3); err != nil {
		return nil, err
	}
	pix := g.Pix
	s := &scanner{
		g: g,
		equal: func(i, j int) bool {
			a, b := i*3, j*3
			return pix[a] == pix[b] && pix[a+1] == pix[b+1] && pix[a+2] == pix[b+2]
		},
	}
	if opts.Background {
		s.background = func(i int) bool {
			a := i * 3
			return pix[a] == 0 && pix[a+1] == 0 && pix[a+2] == 0
		}
	}
	return s.run(opts.Adjacency.OrDefault()), nil
}

// Auto dispatches to Color for three-band grids and Labels for single-band grids.
func Auto(g *grid.Grid, opts Options) (*Result, error) {
	switch g.Bands {
	case 3:
		return Color(g, opts)
	case 1:
		return Labels(g, opts)
	default:
		return nil, fmt.Errorf("%w: got %d, want 1 or 3", ErrBandCount, g.Bands)
	}
}

func checkBands(g *grid.Grid, want int) error {
	if g.Bands != want {
		return fmt.Errorf("%w: got %d, want %d", ErrBandCount, g.Bands, want)
	}
	return nil
}
