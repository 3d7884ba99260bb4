// Package imaging connects decoded images to the grid type used by the
// morphology packages.
//
// It loads and caches images from disk, converts them to gray, binary or
// RGB grids, renders grids and label maps back to images, and encodes the
// results as base64 PNG for the MCP server.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Grids produced here always start at (0,0) regardless of the source image's
// bounds.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The conversion functions
// are stateless and can be called concurrently on different images.
//
// # Performance Considerations
//
// A grid holds one float64 per sample, eight times the memory of an 8-bit
// gray image. Use the ImageCache pixel limit to bound what a single request
// can allocate.
package imaging
