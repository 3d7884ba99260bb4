package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createPatternImage creates an image with different colors in each quadrant.
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			default:
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	out, err := Crop(img, Region{X1: 50, Y1: 0, X2: 100, Y2: 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	b := out.Bounds()
	if b.Min != (image.Point{}) || b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("bounds: got %v, want (0,0)-(50,50)", b)
	}
	r, g, _, _ := out.At(0, 0).RGBA()
	if r != 0 || g>>8 != 255 {
		t.Errorf("top-left of cropped top-right quadrant should be green, got r=%d g=%d", r>>8, g>>8)
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)

	tests := []struct {
		name string
		r    Region
	}{
		{"x1 >= x2", Region{X1: 50, Y1: 0, X2: 50, Y2: 10}},
		{"y1 >= y2", Region{X1: 0, Y1: 20, X2: 10, Y2: 10}},
		{"negative", Region{X1: -1, Y1: 0, X2: 10, Y2: 10}},
		{"beyond width", Region{X1: 0, Y1: 0, X2: 101, Y2: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r); err == nil {
				t.Error("expected error for invalid region")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	img := createPatternImage(20, 10)

	tests := []struct {
		name          string
		scale         float64
		width, height int
	}{
		{"unscaled", 1.0, 20, 10},
		{"zero means unscaled", 0, 20, 10},
		{"up", 2.0, 40, 20},
		{"down", 0.5, 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := EncodePNG(img, tt.scale)
			if err != nil {
				t.Fatalf("EncodePNG failed: %v", err)
			}
			if enc.Width != tt.width || enc.Height != tt.height {
				t.Errorf("dimensions: got %dx%d, want %dx%d", enc.Width, enc.Height, tt.width, tt.height)
			}
			if enc.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", enc.MimeType)
			}

			raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
			if err != nil {
				t.Fatalf("failed to decode base64: %v", err)
			}
			decoded, err := png.Decode(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("payload is not a PNG: %v", err)
			}
			if decoded.Bounds().Dx() != tt.width {
				t.Errorf("decoded width: got %d, want %d", decoded.Bounds().Dx(), tt.width)
			}
		})
	}

	if _, err := EncodePNG(img, 0.01); err == nil {
		t.Error("expected error when scale collapses the image")
	}
}

func TestEncodePNG_NearestNeighborKeepsColors(t *testing.T) {
	img := createPatternImage(4, 4)
	enc, err := EncodePNG(img, 3)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(enc.ImageBase64)
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}

	allowed := map[color.RGBA]bool{
		{255, 0, 0, 255}: true, {0, 255, 0, 255}: true,
		{0, 0, 255, 255}: true, {255, 255, 255, 255}: true,
	}
	b := decoded.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(decoded.At(x, y)).(color.RGBA)
			if !allowed[c] {
				t.Fatalf("pixel (%d,%d) = %v is a blend", x, y, c)
			}
		}
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(createPatternImage(8, 8), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if err := Save(createPatternImage(8, 8), filepath.Join(t.TempDir(), "out.unknown")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
