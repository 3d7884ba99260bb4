package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/label"
)

func TestColorGrid(t *testing.T) {
	img := createPatternImage(4, 4)
	img.SetRGBA(3, 3, color.RGBA{}) // transparent

	g := ColorGrid(img)
	if g.Bands != 3 || g.Width != 4 || g.Height != 4 {
		t.Fatalf("shape: got %s, want 4x4 with 3 bands", g.Shape())
	}

	tests := []struct {
		x, y int
		want []float64
	}{
		{0, 0, []float64{255, 0, 0}},
		{3, 0, []float64{0, 255, 0}},
		{0, 3, []float64{0, 0, 255}},
		{2, 2, []float64{255, 255, 255}},
		{3, 3, []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		got := g.Vector(tt.x, tt.y, 0, 0)
		for b := range tt.want {
			if got[b] != tt.want[b] {
				t.Errorf("(%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
				break
			}
		}
	}
}

func TestColorGrid_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 12, 11))
	img.SetRGBA(11, 10, color.RGBA{10, 20, 30, 255})

	g := ColorGrid(img)
	if g.Width != 2 || g.Height != 1 {
		t.Fatalf("shape: got %s, want 2x1", g.Shape())
	}
	if got := g.At(1, 0, 0, 0, 2); got != 30 {
		t.Errorf("blue at (1,0): got %v, want 30", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF8040", color.RGBA{255, 128, 64, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#GG0000", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	pal := Palette(12)
	if len(pal) != 12 {
		t.Fatalf("len: got %d, want 12", len(pal))
	}
	seen := map[color.RGBA]bool{}
	for i, c := range pal {
		if c.A != 255 {
			t.Errorf("color %d not opaque", i)
		}
		if seen[c] {
			t.Errorf("color %d repeats %v", i, c)
		}
		seen[c] = true
	}

	again := Palette(12)
	for i := range pal {
		if pal[i] != again[i] {
			t.Fatal("Palette is not deterministic")
		}
	}
}

func TestLabelPreview(t *testing.T) {
	labels := grid.New2D(3, 1, 1)
	labels.Pix = []float64{label.NoLabel, 0, 1}
	bg := color.RGBA{1, 2, 3, 255}

	img, err := LabelPreview(labels, 2, bg)
	if err != nil {
		t.Fatalf("LabelPreview failed: %v", err)
	}
	pal := Palette(2)
	if got := img.RGBAAt(0, 0); got != bg {
		t.Errorf("background: got %v, want %v", got, bg)
	}
	if got := img.RGBAAt(1, 0); got != pal[0] {
		t.Errorf("label 0: got %v, want %v", got, pal[0])
	}
	if got := img.RGBAAt(2, 0); got != pal[1] {
		t.Errorf("label 1: got %v, want %v", got, pal[1])
	}

	if _, err := LabelPreview(labels, 1, bg); err == nil {
		t.Error("expected error for label beyond count")
	}
	if _, err := LabelPreview(grid.New2D(2, 2, 3), 1, bg); err == nil {
		t.Error("expected error for multi-band labels")
	}
}
