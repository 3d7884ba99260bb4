// Package reconstruct implements grayscale morphological reconstruction and
// the operators built on it.
//
// Reconstruct uses the hybrid scheme: one raster pass and one anti-raster
// pass propagate values along scan order, and a FIFO queue seeded during the
// anti-raster pass finishes the paths neither scan could complete. Each pixel
// is touched a bounded number of times in practice, unlike iterating
// geodesic dilations to a fixed point.
//
// Opening and closing by reconstruction, h-maxima, h-minima, regional
// extrema and dynamics all reduce to one Reconstruct call plus pixel-wise
// arithmetic.
package reconstruct
