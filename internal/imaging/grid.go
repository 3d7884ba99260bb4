package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// GrayGrid converts img to a single-band grid of luminance values in [0, 255].
//
// The conversion goes through imaging.Grayscale, so the weights are those of
// github.com/disintegration/imaging. Alpha is ignored.
func GrayGrid(img image.Image) *grid.Grid {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	g := grid.New2D(b.Dx(), b.Dy(), 1)
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			g.Pix[y*g.Width+x] = float64(row[x*4])
		}
	}
	return g
}

// BinaryGrid thresholds img into a single-band grid holding 1 for pixels at
// or above level and 0 elsewhere.
func BinaryGrid(img image.Image, level uint8) *grid.Grid {
	th := segment.Threshold(img, level)
	b := th.Bounds()
	g := grid.New2D(b.Dx(), b.Dy(), 1)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if th.Pix[y*th.Stride+x] != 0 {
				g.Pix[y*g.Width+x] = 1
			}
		}
	}
	return g
}

// FromGrid renders band of the first slice and frame of g as an 8-bit gray
// image. Samples are rounded and clamped to [0, 255].
func FromGrid(g *grid.Grid, band int) (*image.Gray, error) {
	if band < 0 || band >= g.Bands {
		return nil, fmt.Errorf("band %d out of range for %d-band grid", band, g.Bands)
	}
	out := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			out.Pix[y*out.Stride+x] = g.Byte(x, y, 0, 0, band)
		}
	}
	return out, nil
}

// Stretch linearly rescales every band of g so its samples span [0, 255].
// Constant bands map to 0. Use it before FromGrid for grids whose values
// are not gray levels, such as dynamics or label counts.
func Stretch(g *grid.Grid) *grid.Grid {
	out := g.Clone()
	for b := 0; b < g.Bands; b++ {
		lo, hi := 0.0, 0.0
		for i := b; i < len(g.Pix); i += g.Bands {
			v := g.Pix[i]
			if i == b || v < lo {
				lo = v
			}
			if i == b || v > hi {
				hi = v
			}
		}
		for i := b; i < len(out.Pix); i += g.Bands {
			if hi > lo {
				out.Pix[i] = (g.Pix[i] - lo) * 255 / (hi - lo)
			} else {
				out.Pix[i] = 0
			}
		}
	}
	return out
}
