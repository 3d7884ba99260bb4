package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sort"
	"time"

	"github.com/ironsheep/morph-tools-mcp/internal/config"
	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/imaging"
	"github.com/ironsheep/morph-tools-mcp/internal/label"
	"github.com/ironsheep/morph-tools-mcp/internal/tree"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "morph_label").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.cfg.Debug() {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache and converts them to grids
//  4. Calls the labeling, reconstruction or tree package
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Connected Components
	case "morph_label":
		return s.handleMorphLabel(args)

	// Reconstruction
	case "morph_reconstruct":
		return s.handleMorphReconstruct(args)
	case "morph_hmaxima":
		return s.handleMorphHMaxima(args)
	case "morph_regional_maxima":
		return s.handleMorphRegionalMaxima(args)
	case "morph_opening_by_reconstruction":
		return s.handleMorphOpeningByReconstruction(args)

	// Region Trees
	case "morph_tree_stats":
		return s.handleMorphTreeStats(args)
	case "morph_area_filter":
		return s.handleMorphAreaFilter(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared helpers ===

// adjacency resolves a tool's connectivity argument, falling back to the
// configured default.
func (s *Server) adjacency(name string) (grid.Adjacency, error) {
	if name == "" {
		return s.cfg.Adjacency()
	}
	return config.ParsePlanar(name)
}

// loadImage loads path through the cache and crops it to region when given.
func (s *Server) loadImage(path string, region *imaging.Region) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return img, nil
	}
	return imaging.Crop(img, *region)
}

func (s *Server) loadGray(path string, region *imaging.Region) (*grid.Grid, error) {
	img, err := s.loadImage(path, region)
	if err != nil {
		return nil, err
	}
	return imaging.GrayGrid(img), nil
}

func encodeGray(g *grid.Grid, scale float64) (*imaging.EncodedImage, error) {
	img, err := imaging.FromGrid(g, 0)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(img, scale)
}

func (s *Server) encodeLabels(res *label.Result, scale float64) (*imaging.EncodedImage, error) {
	bg, err := s.cfg.Background()
	if err != nil {
		return nil, err
	}
	img, err := imaging.LabelPreview(res.Labels, res.Count, bg)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(img, scale)
}

func parsePolarity(name string) (tree.Polarity, error) {
	switch name {
	case "", "max":
		return tree.MaxTree, nil
	case "min":
		return tree.MinTree, nil
	default:
		return tree.MaxTree, fmt.Errorf("unknown polarity %q, use max or min", name)
	}
}

// ComponentSize is the pixel count of one labeled component.
type ComponentSize struct {
	Label int `json:"label"`
	Size  int `json:"size"`
}

// largestComponents returns the n biggest components, largest first, ties
// broken by label.
func largestComponents(res *label.Result, n int) []ComponentSize {
	sizes := res.Sizes()
	out := make([]ComponentSize, len(sizes))
	for l, sz := range sizes {
		out[l] = ComponentSize{Label: l, Size: sz}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func changedPixels(a, b *grid.Grid) int {
	n := 0
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			n++
		}
	}
	return n
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
