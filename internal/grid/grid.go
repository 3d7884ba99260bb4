package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyGrid indicates a grid with a zero-sized dimension.
	ErrEmptyGrid = errors.New("grid: all dimensions must be at least 1")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("grid: all rows must have the same length")
)

// Point is a spatial coordinate inside a single time frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Pt is shorthand for a planar point (z = 0).
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// String formats the point as "(x,y,z)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Grid is a dense (x, y, z, t, band) array of float64 samples.
//
// Pix holds Width*Height*Depth*Duration*Bands values with bands interleaved.
// The zero value is not usable; construct grids with New, New2D or FromRows.
type Grid struct {
	Width    int
	Height   int
	Depth    int
	Duration int
	Bands    int
	Pix      []float64
}

// New allocates a zero-filled grid. Non-positive dimensions are treated as 1.
func New(width, height, depth, duration, bands int) *Grid {
	width, height = atLeastOne(width), atLeastOne(height)
	depth, duration, bands = atLeastOne(depth), atLeastOne(duration), atLeastOne(bands)
	return &Grid{
		Width:    width,
		Height:   height,
		Depth:    depth,
		Duration: duration,
		Bands:    bands,
		Pix:      make([]float64, width*height*depth*duration*bands),
	}
}

// New2D allocates a single-slice, single-frame grid.
func New2D(width, height, bands int) *Grid {
	return New(width, height, 1, 1, bands)
}

// FromRows builds a single-band planar grid from row-major values.
//
// rows[y][x] becomes the sample at (x, y). Every row must have the same length.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(rows[0])
	g := New2D(width, len(rows), 1)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", y, len(row), width, ErrNonRectangular)
		}
		copy(g.Pix[y*width:(y+1)*width], row)
	}
	return g, nil
}

// Rows returns band b of the first slice and frame as row-major values.
func (g *Grid) Rows(b int) [][]float64 {
	rows := make([][]float64, g.Height)
	for y := range rows {
		rows[y] = make([]float64, g.Width)
		for x := range rows[y] {
			rows[y][x] = g.At(x, y, 0, 0, b)
		}
	}
	return rows
}

// Len returns the number of pixels (not samples) in the grid.
func (g *Grid) Len() int {
	return g.Width * g.Height * g.Depth * g.Duration
}

// SliceLen returns the number of pixels in one (x, y) plane.
func (g *Grid) SliceLen() int {
	return g.Width * g.Height
}

// Index returns the raster index of pixel (x, y, z, t).
func (g *Grid) Index(x, y, z, t int) int {
	return ((t*g.Depth+z)*g.Height+y)*g.Width + x
}

// Coords is the inverse of Index.
func (g *Grid) Coords(i int) (x, y, z, t int) {
	x = i % g.Width
	i /= g.Width
	y = i % g.Height
	i /= g.Height
	z = i % g.Depth
	t = i / g.Depth
	return x, y, z, t
}

// PointIndex returns the raster index of a spatial point in frame 0.
func (g *Grid) PointIndex(p Point) int {
	return g.Index(p.X, p.Y, p.Z, 0)
}

// PointAt is the inverse of PointIndex for frame-0 indices.
func (g *Grid) PointAt(i int) Point {
	x, y, z, _ := g.Coords(i)
	return Point{X: x, Y: y, Z: z}
}

// InBounds reports whether (x, y, z, t) addresses a pixel of the grid.
func (g *Grid) InBounds(x, y, z, t int) bool {
	return x >= 0 && x < g.Width &&
		y >= 0 && y < g.Height &&
		z >= 0 && z < g.Depth &&
		t >= 0 && t < g.Duration
}

// Shift returns the index of the pixel reached from (x, y, z, t) by o, and
// false when that pixel falls outside the grid.
func (g *Grid) Shift(x, y, z, t int, o Offset) (int, bool) {
	nx, ny, nz, nt := x+o.DX, y+o.DY, z+o.DZ, t+o.DT
	if !g.InBounds(nx, ny, nz, nt) {
		return 0, false
	}
	return g.Index(nx, ny, nz, nt), true
}

// At returns band b of pixel (x, y, z, t).
func (g *Grid) At(x, y, z, t, b int) float64 {
	return g.Pix[g.Index(x, y, z, t)*g.Bands+b]
}

// Set stores v into band b of pixel (x, y, z, t).
func (g *Grid) Set(x, y, z, t, b int, v float64) {
	g.Pix[g.Index(x, y, z, t)*g.Bands+b] = v
}

// Int returns the sample truncated toward zero.
func (g *Grid) Int(x, y, z, t, b int) int {
	return int(g.At(x, y, z, t, b))
}

// Byte returns the sample rounded and clamped to [0, 255].
func (g *Grid) Byte(x, y, z, t, b int) uint8 {
	return ToByte(g.At(x, y, z, t, b))
}

// Vector returns a copy of all bands of pixel (x, y, z, t).
func (g *Grid) Vector(x, y, z, t int) []float64 {
	v := make([]float64, g.Bands)
	copy(v, g.VectorAt(g.Index(x, y, z, t)))
	return v
}

// VectorAt returns the bands of the pixel at raster index i. The slice aliases Pix.
func (g *Grid) VectorAt(i int) []float64 {
	return g.Pix[i*g.Bands : (i+1)*g.Bands : (i+1)*g.Bands]
}

// SetVector stores v into pixel (x, y, z, t). len(v) must equal Bands.
func (g *Grid) SetVector(x, y, z, t int, v []float64) {
	copy(g.VectorAt(g.Index(x, y, z, t)), v)
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.Pix = make([]float64, len(g.Pix))
	copy(c.Pix, g.Pix)
	return &c
}

// NewLike allocates a zero-filled grid with g's shape and the given band count.
func (g *Grid) NewLike(bands int) *Grid {
	return New(g.Width, g.Height, g.Depth, g.Duration, bands)
}

// SameShape reports whether g and o have identical dimensions and bands.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height && g.Depth == o.Depth &&
		g.Duration == o.Duration && g.Bands == o.Bands
}

// Shape formats the grid dimensions as "WxHxDxT/B".
func (g *Grid) Shape() string {
	return fmt.Sprintf("%dx%dx%dx%d/%d", g.Width, g.Height, g.Depth, g.Duration, g.Bands)
}

// Fill sets every sample to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Pix {
		g.Pix[i] = v
	}
}

// Band extracts band b into a new single-band grid.
func (g *Grid) Band(b int) *Grid {
	out := g.NewLike(1)
	for i := range out.Pix {
		out.Pix[i] = g.Pix[i*g.Bands+b]
	}
	return out
}

// Sum returns the per-band sum over all pixels.
func (g *Grid) Sum() []float64 {
	sum := make([]float64, g.Bands)
	for i, v := range g.Pix {
		sum[i%g.Bands] += v
	}
	return sum
}

// ToByte rounds v to the nearest integer and clamps it to [0, 255].
func ToByte(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
