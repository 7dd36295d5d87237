// Package tree implements an ordered, in-memory tree container.
//
// A Tree owns a hidden root node; all user nodes are (transitive)
// children of it. Every node references a caller owned payload and carries
// two keys:
//
//   - a NodeKey that is unique for the lifetime of the tree,
//   - an IdentityKey that is derived from the payload. Nodes that share an
//     IdentityKey are called clones: they stand for the same logical value
//     at different positions in the tree.
//
// Both keys are indexed in the tree's Registry, so lookups by identity or
// node key are O(1). Searching with a Matcher walks the tree in pre-order.
//
// Walks come in two flavours: Visit() calls a function per node and lets
// it return a Signal (Continue, SkipSubtree or Stop(value)), while Iter()
// returns a lazy iter.Seq that the caller may abandon at any time.
//
// Nothing in this package locks implicitly. Use Tree.Atomic() to guard a
// sequence of operations when a tree is shared between go routines.
package tree
