package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func connectivityProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"4", "8"},
		"description": "Pixel connectivity. Defaults to the server's configured connectivity",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned PNG (nearest-neighbor). Default 1.0",
		"default":     1.0,
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional sub-rectangle to process; x2 and y2 are exclusive",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func polarityProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"max", "min"},
		"description": "max-tree (bright regions are leaves) or min-tree (dark regions are leaves). Default max",
		"default":     "max",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and band count. The decoded image stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop any cached copy and decode the file again. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Connected Components
		{
			Name:        "morph_label",
			Description: "Label the connected components of an image. 'binary' thresholds the gray image and labels foreground blobs; 'gray' labels flat zones of equal gray level; 'color' labels flat zones of identical RGB color. Returns the component count, the largest component sizes and an optional color preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"binary", "gray", "color"},
						"description": "What counts as connected. Default binary",
						"default":     "binary",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Gray level (0-255) at or above which a pixel is foreground in binary mode. Defaults to the configured threshold",
					},
					"background": map[string]interface{}{
						"type":        "boolean",
						"description": "Leave zero pixels unlabeled. Default true in binary mode, false otherwise",
					},
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a PNG with one color per component. Default false",
						"default":     false,
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Reconstruction
		{
			Name:        "morph_reconstruct",
			Description: "Morphological reconstruction of a mask image from a marker image of the same size (both read as gray). 'forward' grows the marker under the mask by dilation; 'inverse' shrinks it above the mask by erosion.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"marker_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the marker image",
					},
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image",
					},
					"mode": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"forward", "inverse"},
						"default": "forward",
					},
					"connectivity": connectivityProperty(),
					"scale":        scaleProperty(),
				},
				"required": []string{"marker_path", "mask_path"},
			},
		},
		{
			Name:        "morph_hmaxima",
			Description: "Suppress peaks (or, with minima=true, basins) whose contrast is at most h. With output='dynamics' returns the removed part, contrast-stretched, instead of the filtered image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"h": map[string]interface{}{
						"type":        "number",
						"description": "Contrast threshold in gray levels",
					},
					"minima": map[string]interface{}{
						"type":    "boolean",
						"default": false,
					},
					"output": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"result", "dynamics"},
						"default": "result",
					},
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
					"scale":        scaleProperty(),
				},
				"required": []string{"path", "h"},
			},
		},
		{
			Name:        "morph_regional_maxima",
			Description: "Find the regional maxima (or minima) of the gray image: plateaus with no brighter (darker) neighbor. Returns how many there are, their sizes and an optional colored preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"minima": map[string]interface{}{
						"type":    "boolean",
						"default": false,
					},
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
					"preview": map[string]interface{}{
						"type":    "boolean",
						"default": false,
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "morph_opening_by_reconstruction",
			Description: "Remove bright structures smaller than the structuring element while restoring the exact outline of everything else. With closing=true removes dark structures instead.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Structuring element radius in pixels. Default 1",
						"default":     1,
					},
					"closing": map[string]interface{}{
						"type":    "boolean",
						"default": false,
					},
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
					"scale":        scaleProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Region Trees
		{
			Name:        "morph_tree_stats",
			Description: "Build the max-tree or min-tree of the gray image and report its node and leaf counts together with the requested attributes of the root and of the largest leaves.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"polarity": polarityProperty(),
					"attributes": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "string",
							"enum": []string{"area", "sum", "energy", "perimeter", "volume",
								"compactness", "complexity", "simplicity", "energy_per_pixel"},
						},
						"description": "Attributes to compute. Prerequisites (perimeter, energy) are added automatically. Default [area, volume]",
					},
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "morph_area_filter",
			Description: "Area opening (max-tree) or area closing (min-tree): remove every bright (dark) component smaller than min_area pixels by pruning the region tree, and return the filtered image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Components with fewer pixels are removed",
					},
					"polarity":     polarityProperty(),
					"connectivity": connectivityProperty(),
					"region":       regionProperty(),
					"scale":        scaleProperty(),
				},
				"required": []string{"path", "min_area"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
