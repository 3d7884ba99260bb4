// Package tree implements region trees (max-trees and min-trees) over a grid,
// together with the attribute engine and the pruning operations used by
// attribute filters.
//
// # Representation
//
// Nodes live in an arena and are addressed by NodeID; parent and child edges
// are IDs, never pointers. Every node is keyed by a canonical pixel. Pixel
// ownership is resolved in two steps:
//
//  1. the tree's unionfind.Store maps a pixel to the canonical pixel of its set
//  2. a pixel-indexed cache maps that canonical pixel to its NodeID
//
// Every mutator keeps the two in agreement: when a node is removed its
// canonical record is re-pointed at the parent's canonical record with
// LinkNoRankCheck and its cache slot is cleared in the same step. Validate
// checks the agreement explicitly.
//
// # Traversal
//
// LeafToRoot visits a node only after all of its descendants; RootToLeaf
// visits a node before its children. Both use explicit stacks, since trees
// built over large images can be many thousands of levels deep.
//
// # Attributes
//
// An Attribute computes a value for every node in one whole-tree pass and
// stores it in a side table keyed by Kind. Values are optional per node. Some
// kinds read other kinds (Compactness needs Perimeter); the caller
// computes prerequisites first, and a missing one surfaces as an
// *AttributeNotFoundError.
//
// # Scratch State
//
// Nodes carry no scratch flags. Algorithms that need per-node marks allocate a
// Marks table with NewMarks and pass it explicitly, as DeleteNodesWithFlag does.
//
// A Tree is not safe for concurrent use.
package tree
