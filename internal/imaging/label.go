package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/label"
)

// Label modes accepted by LabelImage.
const (
	ModeBinary = "binary"
	ModeGray   = "gray"
	ModeColor  = "color"
)

// LabelRequest describes how LabelImage compares pixels.
type LabelRequest struct {
	// Mode is ModeBinary, ModeGray or ModeColor. Empty means ModeBinary.
	Mode string

	// Threshold overrides DefaultThreshold in binary mode. It must lie in 0-255.
	Threshold *int

	// DefaultThreshold is the binary foreground level used when Threshold is nil.
	DefaultThreshold uint8

	// Background overrides the default, which leaves zero pixels unlabeled
	// in binary mode only.
	Background *bool

	Adjacency grid.Adjacency
}

// LabelImage converts img according to req.Mode and labels its connected
// components: thresholded blobs, gray flat zones or RGB flat zones.
func LabelImage(img image.Image, req LabelRequest) (*label.Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeBinary
	}
	opts := label.Options{Adjacency: req.Adjacency, Background: mode == ModeBinary}
	if req.Background != nil {
		opts.Background = *req.Background
	}

	switch mode {
	case ModeBinary:
		level := req.DefaultThreshold
		if req.Threshold != nil {
			if *req.Threshold < 0 || *req.Threshold > 255 {
				return nil, fmt.Errorf("threshold %d outside 0-255", *req.Threshold)
			}
			level = uint8(*req.Threshold)
		}
		return label.Binary(BinaryGrid(img, level), opts)
	case ModeGray:
		return label.Labels(GrayGrid(img), opts)
	case ModeColor:
		return label.Color(ColorGrid(img), opts)
	default:
		return nil, fmt.Errorf("unknown mode %q, use binary, gray or color", req.Mode)
	}
}
