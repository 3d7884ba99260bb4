// Package grid provides the dense pixel container consumed by the morphology
// packages.
//
// A Grid is a five-dimensional array addressed by (x, y, z, t, band). Bands are
// stored interleaved, so the values of one pixel are contiguous in Pix and a
// pixel's first band lives at PixelIndex*Bands. Pixels are laid out in raster
// order: x varies fastest, then y, then z, then t.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward, matching the imaging package.
//
// # Adjacency
//
// Adjacency describes a centered neighbor-offset set. Four planar sets and one
// volumetric set are predefined:
//   - Conn4: west, east, north, south
//   - Conn8: Conn4 plus the four diagonals
//   - Conn6: Conn4 plus the previous and next z slice
//   - Conn6T: Conn4 plus the previous and next time frame
//   - Conn10T: Conn8 plus the previous and next time frame
//
// Offsets can be split into the causal half (neighbors visited before the
// center in raster order) and the anti-causal half, which is what the
// scan-based labeling and reconstruction algorithms need.
package grid
