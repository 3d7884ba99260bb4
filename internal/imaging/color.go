package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/label"
)

// ColorGrid converts img to a three-band grid of 8-bit R, G, B values.
// Fully transparent pixels read as black.
func ColorGrid(img image.Image) *grid.Grid {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	g := grid.New2D(b.Dx(), b.Dy(), 3)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c, ok := colorful.MakeColor(rgba.RGBAAt(b.Min.X+x, b.Min.Y+y))
			if !ok {
				continue
			}
			r, gg, bb := c.RGB255()
			g.SetVector(x, y, 0, 0, []float64{float64(r), float64(gg), float64(bb)})
		}
	}
	return g
}

// ParseHexColor parses "#RRGGBB" (the leading '#' is optional).
func ParseHexColor(hex string) (color.RGBA, error) {
	if hex != "" && hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Palette returns n well-separated colors. Hues step by the golden angle so
// neighbouring labels never share a hue, and the palette is deterministic.
func Palette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	const golden = 0.618033988749895
	h := 0.0
	for i := range out {
		h = math.Mod(h+golden, 1)
		v := 0.95
		if i%2 == 1 {
			v = 0.75
		}
		r, g, b := colorful.Hsv(h*360, 0.65, v).Clamped().RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// LabelPreview paints every labeled pixel of the first slice and frame of
// labels with its label's palette color and unlabeled pixels with background.
func LabelPreview(labels *grid.Grid, count int, background color.RGBA) (*image.RGBA, error) {
	if labels.Bands != 1 {
		return nil, fmt.Errorf("label grid has %d bands, want 1", labels.Bands)
	}
	pal := Palette(count)
	out := image.NewRGBA(image.Rect(0, 0, labels.Width, labels.Height))
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			l := labels.Int(x, y, 0, 0, 0)
			c := background
			if l != label.NoLabel {
				if l < 0 || l >= count {
					return nil, fmt.Errorf("label %d at (%d,%d) outside [0,%d)", l, x, y, count)
				}
				c = pal[l]
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out, nil
}
