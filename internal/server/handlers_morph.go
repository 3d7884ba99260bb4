package server

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/imaging"
	"github.com/ironsheep/morph-tools-mcp/internal/label"
	"github.com/ironsheep/morph-tools-mcp/internal/reconstruct"
	"github.com/ironsheep/morph-tools-mcp/internal/tree"
)

// maxListed caps the component and leaf lists in tool results.
const maxListed = 10

// === Connected Component Handlers ===

type morphLabelArgs struct {
	Path         string          `json:"path"`
	Mode         string          `json:"mode"`
	Threshold    *int            `json:"threshold"`
	Background   *bool           `json:"background"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
	Preview      bool            `json:"preview"`
	Scale        float64         `json:"scale"`
}

// LabelResult is returned by morph_label and morph_regional_maxima.
type LabelResult struct {
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Connectivity string                `json:"connectivity"`
	Count        int                   `json:"count"`
	Largest      []ComponentSize       `json:"largest"`
	Preview      *imaging.EncodedImage `json:"preview,omitempty"`
}

func (s *Server) handleMorphLabel(args json.RawMessage) (interface{}, error) {
	var a morphLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	adj, err := s.adjacency(a.Connectivity)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	res, err := imaging.LabelImage(img, imaging.LabelRequest{
		Mode:             a.Mode,
		Threshold:        a.Threshold,
		DefaultThreshold: s.cfg.BinaryThreshold,
		Background:       a.Background,
		Adjacency:        adj,
	})
	if err != nil {
		return nil, err
	}
	return s.labelResult(res, adj, a.Preview, a.Scale)
}

func (s *Server) labelResult(res *label.Result, adj grid.Adjacency, preview bool, scale float64) (*LabelResult, error) {
	out := &LabelResult{
		Width:        res.Labels.Width,
		Height:       res.Labels.Height,
		Connectivity: adj.String(),
		Count:        res.Count,
		Largest:      largestComponents(res, maxListed),
	}
	if preview {
		enc, err := s.encodeLabels(res, scale)
		if err != nil {
			return nil, err
		}
		out.Preview = enc
	}
	return out, nil
}

// === Reconstruction Handlers ===

// ImageResult is returned by tools that produce a filtered gray image.
type ImageResult struct {
	Width         int                   `json:"width"`
	Height        int                   `json:"height"`
	ChangedPixels int                   `json:"changed_pixels"`
	Image         *imaging.EncodedImage `json:"image"`
}

func imageResult(before, after *grid.Grid, scale float64) (*ImageResult, error) {
	enc, err := encodeGray(after, scale)
	if err != nil {
		return nil, err
	}
	return &ImageResult{
		Width:         after.Width,
		Height:        after.Height,
		ChangedPixels: changedPixels(before, after),
		Image:         enc,
	}, nil
}

type morphReconstructArgs struct {
	MarkerPath   string  `json:"marker_path"`
	MaskPath     string  `json:"mask_path"`
	Mode         string  `json:"mode"`
	Connectivity string  `json:"connectivity"`
	Scale        float64 `json:"scale"`
}

func (s *Server) handleMorphReconstruct(args json.RawMessage) (interface{}, error) {
	var a morphReconstructArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	adj, err := s.adjacency(a.Connectivity)
	if err != nil {
		return nil, err
	}
	mode := reconstruct.Forward
	switch a.Mode {
	case "", "forward":
	case "inverse":
		mode = reconstruct.Inverse
	default:
		return nil, fmt.Errorf("unknown mode %q, use forward or inverse", a.Mode)
	}

	marker, err := s.loadGray(a.MarkerPath, nil)
	if err != nil {
		return nil, fmt.Errorf("marker: %w", err)
	}
	mask, err := s.loadGray(a.MaskPath, nil)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	out, err := reconstruct.Reconstruct(marker, mask, reconstruct.Options{Mode: mode, Adjacency: adj})
	if err != nil {
		return nil, err
	}
	return imageResult(mask, out, a.Scale)
}

type morphHMaximaArgs struct {
	Path         string          `json:"path"`
	H            float64         `json:"h"`
	Minima       bool            `json:"minima"`
	Output       string          `json:"output"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
	Scale        float64         `json:"scale"`
}

func (s *Server) handleMorphHMaxima(args json.RawMessage) (interface{}, error) {
	var a morphHMaximaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.H < 0 {
		return nil, fmt.Errorf("h must not be negative, got %g", a.H)
	}
	adj, err := s.adjacency(a.Connectivity)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGray(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	var out *grid.Grid
	switch {
	case a.Output == "dynamics" && a.Minima:
		return nil, fmt.Errorf("dynamics output is only defined for maxima")
	case a.Output == "dynamics":
		dyn, err := reconstruct.Dynamics(g, adj, a.H)
		if err != nil {
			return nil, err
		}
		res, err := imageResult(g, imaging.Stretch(dyn), a.Scale)
		if err != nil {
			return nil, err
		}
		// Pixels the h-maxima filter lowered are the non-zero dynamics.
		res.ChangedPixels = changedPixels(dyn, dyn.NewLike(dyn.Bands))
		return res, nil
	case a.Output != "" && a.Output != "result":
		return nil, fmt.Errorf("unknown output %q, use result or dynamics", a.Output)
	case a.Minima:
		out, err = reconstruct.HMinima(g, adj, a.H)
	default:
		out, err = reconstruct.HMaxima(g, adj, a.H)
	}
	if err != nil {
		return nil, err
	}
	return imageResult(g, out, a.Scale)
}

type morphRegionalArgs struct {
	Path         string          `json:"path"`
	Minima       bool            `json:"minima"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
	Preview      bool            `json:"preview"`
	Scale        float64         `json:"scale"`
}

func (s *Server) handleMorphRegionalMaxima(args json.RawMessage) (interface{}, error) {
	var a morphRegionalArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	adj, err := s.adjacency(a.Connectivity)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGray(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	extrema := reconstruct.RegionalMaxima
	if a.Minima {
		extrema = reconstruct.RegionalMinima
	}
	marks, err := extrema(g, adj)
	if err != nil {
		return nil, err
	}
	res, err := label.Binary(marks, label.Options{Adjacency: adj, Background: true})
	if err != nil {
		return nil, err
	}
	return s.labelResult(res, adj, a.Preview, a.Scale)
}

type morphOpeningArgs struct {
	Path         string          `json:"path"`
	Radius       *int            `json:"radius"`
	Closing      bool            `json:"closing"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
	Scale        float64         `json:"scale"`
}

func (s *Server) handleMorphOpeningByReconstruction(args json.RawMessage) (interface{}, error) {
	var a morphOpeningArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	radius := 1
	if a.Radius != nil {
		radius = *a.Radius
	}
	if radius < 0 {
		return nil, fmt.Errorf("radius must not be negative, got %d", radius)
	}
	adj, err := s.adjacency(a.Connectivity)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGray(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	op := reconstruct.OpeningByReconstruction
	if a.Closing {
		op = reconstruct.ClosingByReconstruction
	}
	out, err := op(g, adj, radius)
	if err != nil {
		return nil, err
	}
	return imageResult(g, out, a.Scale)
}

// === Region Tree Handlers ===

type morphTreeStatsArgs struct {
	Path         string          `json:"path"`
	Polarity     string          `json:"polarity"`
	Attributes   []string        `json:"attributes"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
}

// NodeSummary describes one tree node in tool results.
type NodeSummary struct {
	Level      []float64            `json:"level"`
	Area       int                  `json:"area"`
	X          int                  `json:"x"`
	Y          int                  `json:"y"`
	Attributes map[string][]float64 `json:"attributes,omitempty"`
}

// TreeStatsResult is returned by morph_tree_stats.
type TreeStatsResult struct {
	Polarity      string        `json:"polarity"`
	Connectivity  string        `json:"connectivity"`
	Nodes         int           `json:"nodes"`
	Leaves        int           `json:"leaves"`
	Root          NodeSummary   `json:"root"`
	LargestLeaves []NodeSummary `json:"largest_leaves"`
}

// prerequisites lists, for derived kinds, the kinds they read.
var prerequisites = map[tree.Kind][]tree.Kind{
	tree.KindCompactness:    {tree.KindPerimeter},
	tree.KindComplexity:     {tree.KindPerimeter},
	tree.KindSimplicity:     {tree.KindPerimeter},
	tree.KindEnergyPerPixel: {tree.KindEnergy},
}

// attributePlan orders the requested kinds so prerequisites come first and
// drops duplicates.
func attributePlan(names []string) ([]tree.Kind, error) {
	if len(names) == 0 {
		names = []string{string(tree.KindArea), string(tree.KindVolume)}
	}
	var plan []tree.Kind
	seen := map[tree.Kind]bool{}
	add := func(k tree.Kind) {
		if !seen[k] {
			seen[k] = true
			plan = append(plan, k)
		}
	}
	for _, n := range names {
		k := tree.Kind(n)
		if _, ok := tree.Lookup(k); !ok {
			return nil, fmt.Errorf("unknown attribute %q", n)
		}
		for _, p := range prerequisites[k] {
			add(p)
		}
		add(k)
	}
	return plan, nil
}

func (s *Server) buildTree(path string, region *imaging.Region, polarity, connectivity string) (*tree.Tree, *grid.Grid, error) {
	pol, err := parsePolarity(polarity)
	if err != nil {
		return nil, nil, err
	}
	adj, err := s.adjacency(connectivity)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.loadGray(path, region)
	if err != nil {
		return nil, nil, err
	}
	t, err := tree.Build(g, tree.Options{
		Adjacency:        adj,
		Polarity:         pol,
		CompressInterval: s.cfg.CompressInterval,
	})
	if err != nil {
		return nil, nil, err
	}
	return t, g, nil
}

func summarize(t *tree.Tree, id tree.NodeID, kinds []tree.Kind) NodeSummary {
	n := t.Node(id)
	p := t.Canonical(id)
	sum := NodeSummary{Level: n.Level(), Area: n.Area(), X: p.X, Y: p.Y}
	for _, k := range kinds {
		if v, err := t.Attribute(k, id); err == nil {
			if sum.Attributes == nil {
				sum.Attributes = map[string][]float64{}
			}
			sum.Attributes[string(k)] = v
		}
	}
	return sum
}

func (s *Server) handleMorphTreeStats(args json.RawMessage) (interface{}, error) {
	var a morphTreeStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	plan, err := attributePlan(a.Attributes)
	if err != nil {
		return nil, err
	}
	t, _, err := s.buildTree(a.Path, a.Region, a.Polarity, a.Connectivity)
	if err != nil {
		return nil, err
	}
	if err := t.ComputeAttributes(plan...); err != nil {
		return nil, err
	}

	var leaves []tree.NodeID
	t.RootToLeaf(func(id tree.NodeID) {
		if t.Node(id).IsLeaf() {
			leaves = append(leaves, id)
		}
	})
	sort.SliceStable(leaves, func(i, j int) bool {
		return t.Node(leaves[i]).Area() > t.Node(leaves[j]).Area()
	})
	if len(leaves) > maxListed {
		leaves = leaves[:maxListed]
	}

	res := &TreeStatsResult{
		Polarity:     t.Polarity().String(),
		Connectivity: t.Adjacency().String(),
		Nodes:        t.CountNodes(),
		Leaves:       t.CountLeaves(),
		Root:         summarize(t, t.Root(), plan),
	}
	for _, id := range leaves {
		res.LargestLeaves = append(res.LargestLeaves, summarize(t, id, plan))
	}
	return res, nil
}

type morphAreaFilterArgs struct {
	Path         string          `json:"path"`
	MinArea      int             `json:"min_area"`
	Polarity     string          `json:"polarity"`
	Connectivity string          `json:"connectivity"`
	Region       *imaging.Region `json:"region"`
	Scale        float64         `json:"scale"`
}

// AreaFilterResult is returned by morph_area_filter.
type AreaFilterResult struct {
	ImageResult
	NodesBefore int `json:"nodes_before"`
	NodesAfter  int `json:"nodes_after"`
	Removed     int `json:"removed"`
}

func (s *Server) handleMorphAreaFilter(args json.RawMessage) (interface{}, error) {
	var a morphAreaFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MinArea < 1 {
		return nil, fmt.Errorf("min_area must be at least 1, got %d", a.MinArea)
	}
	t, g, err := s.buildTree(a.Path, a.Region, a.Polarity, a.Connectivity)
	if err != nil {
		return nil, err
	}

	before := t.CountNodes()
	removed, err := t.Prune(tree.AreaBelow(a.MinArea))
	if err != nil {
		return nil, err
	}
	out, err := t.Restitute()
	if err != nil {
		return nil, err
	}
	img, err := imageResult(g, out, a.Scale)
	if err != nil {
		return nil, err
	}
	return &AreaFilterResult{
		ImageResult: *img,
		NodesBefore: before,
		NodesAfter:  t.CountNodes(),
		Removed:     removed,
	}, nil
}
