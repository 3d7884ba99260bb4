// Package server implements the MCP (Model Context Protocol) server for the
// morphology tools.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Connected Components:
//   - morph_label: Label binary blobs or gray/color flat zones
//
// Reconstruction:
//   - morph_reconstruct: Reconstruct a mask from a marker image
//   - morph_hmaxima: Suppress peaks or basins of low contrast
//   - morph_regional_maxima: Find regional maxima or minima
//   - morph_opening_by_reconstruction: Opening or closing by reconstruction
//
// Region Trees:
//   - morph_tree_stats: Max-tree or min-tree summary with attributes
//   - morph_area_filter: Area opening or closing by tree pruning
//
// Images are decoded once and cached by path for the lifetime of the
// process. Images larger than the configured pixel limit are rejected.
//
// Tool failures come back as JSON-RPC errors with code -32000 and the Go
// error string in data.
//
// # Usage
//
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
