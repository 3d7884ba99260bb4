// Package label implements two-pass union-find connected-component labeling.
//
// Three input flavours are supported, each with its own equality rule between
// neighboring pixels:
//   - Binary: single band, pixels are equal when both are zero or both non-zero
//   - Labels: single band of integer labels, pixels are equal when the labels match
//   - Color: three interleaved bands, pixels are equal when all channels match
//
// # Algorithm
//
//  1. Forward raster scan. Each pixel looks only at its causal neighbors (those
//     already visited). Matching neighbors contribute their provisional labels;
//     the pixel takes the minimum and every matching label is merged into that
//     minimum through the equivalence table. A pixel with no match gets a fresh
//     provisional label.
//  2. Equivalence maintenance. Merging rewrites every link on a label's chain
//     to the minimum, keeping the table a shallow forest.
//  3. Compaction. Labels are resolved from highest to lowest. A label that
//     reappears in its own chain marks a cycle; the cycle is collapsed onto the
//     label being resolved. Fixed points of the table receive the dense labels
//     0..Count-1 in ascending provisional order.
//  4. Rewrite. A second scan replaces provisional labels with dense ones.
//
// # Background
//
// With Options.Background set, zero pixels (false, label 0, or black) are
// background: they keep NoLabel and do not contribute to Count. Without it
// every pixel is labeled, background regions included, and the output holds
// no sentinel values.
package label
