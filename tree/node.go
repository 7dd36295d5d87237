package tree

import (
	"fmt"
	"strings"
)

// Node is a single position in a Tree. It references a caller owned
// payload, links back to its parent and owns its ordered children.
//
// Nodes are only created through Add* methods of their parent or tree
// and are registered in the tree's Registry while attached.
type Node struct {
	tree     *Tree
	parent   *Node
	children []*Node

	payload  interface{}
	identity IdentityKey
	key      NodeKey

	// Optional type tag; empty for untyped nodes.
	kind string

	// Free-form annotations of collaborators (e.g. the diff engine).
	meta map[string]interface{}
}

func (nd *Node) String() string {
	if nd == nil {
		return "<nil>"
	}

	if nd.tree == nil {
		return fmt.Sprintf("<removed %q:%d>", nd.Name(), nd.key)
	}

	if nd.IsRoot() {
		return fmt.Sprintf("<root %q>", nd.tree.name)
	}

	if nd.kind != "" {
		return fmt.Sprintf("<node %s:%q:%d>", nd.kind, nd.Name(), nd.key)
	}

	return fmt.Sprintf("<node %q:%d>", nd.Name(), nd.key)
}

// Name returns the string form of the payload.
func (nd *Node) Name() string {
	switch v := nd.payload.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Tree returns the tree owning this node.
func (nd *Node) Tree() *Tree {
	return nd.tree
}

// Payload returns the referenced caller data.
func (nd *Node) Payload() interface{} {
	return nd.payload
}

// Identity returns the identity key shared by all clones of this node.
func (nd *Node) Identity() IdentityKey {
	return nd.identity
}

// Key returns the unique node key.
func (nd *Node) Key() NodeKey {
	return nd.key
}

// Kind returns the type tag of the node (may be empty).
func (nd *Node) Kind() string {
	return nd.kind
}

// Parent returns the parent node. Top level nodes return nil,
// the hidden root is never handed out as a parent.
func (nd *Node) Parent() *Node {
	if nd.parent == nil || nd.parent.IsRoot() {
		return nil
	}

	return nd.parent
}

// Children returns a copy of the child list (may be empty).
func (nd *Node) Children() []*Node {
	if len(nd.children) == 0 {
		return nil
	}

	cpy := make([]*Node, len(nd.children))
	copy(cpy, nd.children)
	return cpy
}

// NChildren returns the number of direct children.
func (nd *Node) NChildren() int {
	return len(nd.children)
}

// Child returns the child at `idx` or nil if out of range.
func (nd *Node) Child(idx int) *Node {
	if idx < 0 || idx >= len(nd.children) {
		return nil
	}

	return nd.children[idx]
}

// Equal compares the payload values of both nodes.
// Use Same() to check for identity of the node itself.
func (nd *Node) Equal(other *Node) bool {
	if nd == nil || other == nil {
		return nd == other
	}

	return payloadEqual(nd.payload, other.payload)
}

// Same reports whether `other` is the very same node.
func (nd *Node) Same(other *Node) bool {
	return nd == other
}

/////// METADATA ///////

// Meta returns the metadata value at `key` or nil.
func (nd *Node) Meta(key string) interface{} {
	if nd.meta == nil {
		return nil
	}

	return nd.meta[key]
}

// HasMeta checks if there is a metadata value stored at `key`.
func (nd *Node) HasMeta(key string) bool {
	_, ok := nd.meta[key]
	return ok
}

// SetMeta stores `value` under `key`.
func (nd *Node) SetMeta(key string, value interface{}) {
	if nd.meta == nil {
		nd.meta = make(map[string]interface{})
	}

	nd.meta[key] = value
}

// ClearMeta removes `key`. An empty key drops all metadata.
func (nd *Node) ClearMeta(key string) {
	if key == "" {
		nd.meta = nil
		return
	}

	delete(nd.meta, key)
	if len(nd.meta) == 0 {
		nd.meta = nil
	}
}

// UpdateMeta merges `values` into the metadata.
// If `replace` is true, previous values are dropped first.
func (nd *Node) UpdateMeta(values map[string]interface{}, replace bool) {
	if replace {
		nd.meta = nil
	}

	for key, value := range values {
		nd.SetMeta(key, value)
	}
}

// MetaMap returns a copy of all metadata (nil if there is none).
func (nd *Node) MetaMap() map[string]interface{} {
	if len(nd.meta) == 0 {
		return nil
	}

	cpy := make(map[string]interface{}, len(nd.meta))
	for key, value := range nd.meta {
		cpy[key] = value
	}

	return cpy
}

/////// NAVIGATION ///////

// IsRoot is true for the hidden root node only.
func (nd *Node) IsRoot() bool {
	return nd.parent == nil
}

// IsTop is true for nodes directly below the hidden root.
func (nd *Node) IsTop() bool {
	return nd.parent != nil && nd.parent.IsRoot()
}

// IsLeaf is true when the node has no children.
func (nd *Node) IsLeaf() bool {
	return len(nd.children) == 0
}

// HasChildren is the negation of IsLeaf.
func (nd *Node) HasChildren() bool {
	return len(nd.children) > 0
}

// IsClone checks if other nodes share the identity key of this node.
func (nd *Node) IsClone() bool {
	return nd.tree.reg.CloneCount(nd.identity) > 1
}

// Clones returns all nodes that share the identity key of this node.
func (nd *Node) Clones(addSelf bool) []*Node {
	clones := nd.tree.reg.Clones(nd.identity)
	if addSelf {
		return clones
	}

	others := clones[:0]
	for _, clone := range clones {
		if clone != nd {
			others = append(others, clone)
		}
	}

	return others
}

// FirstChild returns the first child or nil.
func (nd *Node) FirstChild() *Node {
	return nd.Child(0)
}

// LastChild returns the last child or nil.
func (nd *Node) LastChild() *Node {
	return nd.Child(len(nd.children) - 1)
}

// Index returns the position of this node between its siblings.
// The hidden root returns 0.
func (nd *Node) Index() int {
	if nd.parent == nil {
		return 0
	}

	for idx, sibling := range nd.parent.children {
		if sibling == nd {
			return idx
		}
	}

	panic(fmt.Sprintf("bug: %s is not linked in its parent", nd))
}

// Siblings returns all children of the parent, optionally excluding this node.
func (nd *Node) Siblings(addSelf bool) []*Node {
	if nd.parent == nil {
		return nil
	}

	siblings := make([]*Node, 0, len(nd.parent.children))
	for _, sibling := range nd.parent.children {
		if sibling == nd && !addSelf {
			continue
		}

		siblings = append(siblings, sibling)
	}

	return siblings
}

// FirstSibling returns the first child of the parent (maybe this node).
func (nd *Node) FirstSibling() *Node {
	if nd.parent == nil {
		return nd
	}

	return nd.parent.FirstChild()
}

// LastSibling returns the last child of the parent (maybe this node).
func (nd *Node) LastSibling() *Node {
	if nd.parent == nil {
		return nd
	}

	return nd.parent.LastChild()
}

// PrevSibling returns the predecessor or nil.
func (nd *Node) PrevSibling() *Node {
	if nd.parent == nil {
		return nil
	}

	return nd.parent.Child(nd.Index() - 1)
}

// NextSibling returns the successor or nil.
func (nd *Node) NextSibling() *Node {
	if nd.parent == nil {
		return nil
	}

	return nd.parent.Child(nd.Index() + 1)
}

// IsFirstSibling is true when there is no previous sibling.
func (nd *Node) IsFirstSibling() bool {
	return nd.FirstSibling() == nd
}

// IsLastSibling is true when there is no next sibling.
func (nd *Node) IsLastSibling() bool {
	return nd.LastSibling() == nd
}

// Depth returns the number of ancestors (top level nodes have depth 1).
func (nd *Node) Depth() int {
	depth := 0
	for curr := nd.parent; curr != nil; curr = curr.parent {
		depth++
	}

	return depth
}

// Height returns the maximum depth of the subtree below this node,
// relative to this node.
func (nd *Node) Height() int {
	height := 0
	for _, child := range nd.children {
		if h := child.Height() + 1; h > height {
			height = h
		}
	}

	return height
}

// CountDescendants counts all nodes below this one.
func (nd *Node) CountDescendants(leavesOnly bool) int {
	count := 0
	for _, child := range nd.children {
		if !leavesOnly || child.IsLeaf() {
			count++
		}

		count += child.CountDescendants(leavesOnly)
	}

	return count
}

// Top returns the top level ancestor of this node.
func (nd *Node) Top() *Node {
	curr := nd
	for curr.parent != nil && !curr.parent.IsRoot() {
		curr = curr.parent
	}

	return curr
}

// IsDescendantOf checks if `other` is a (transitive) parent.
func (nd *Node) IsDescendantOf(other *Node) bool {
	for curr := nd.parent; curr != nil; curr = curr.parent {
		if curr == other {
			return true
		}
	}

	return false
}

// IsAncestorOf checks if `other` is below this node.
func (nd *Node) IsAncestorOf(other *Node) bool {
	return other.IsDescendantOf(nd)
}

// ParentList returns the ancestors of this node without the hidden root,
// top-down unless `bottomUp` is set.
func (nd *Node) ParentList(addSelf, bottomUp bool) []*Node {
	parents := []*Node{}

	curr := nd
	if !addSelf {
		curr = nd.parent
	}

	for ; curr != nil && !curr.IsRoot(); curr = curr.parent {
		parents = append(parents, curr)
	}

	if !bottomUp {
		for i, j := 0, len(parents)-1; i < j; i, j = i+1, j-1 {
			parents[i], parents[j] = parents[j], parents[i]
		}
	}

	return parents
}

// CommonAncestor returns the deepest node that is an ancestor (or self)
// of both nodes, or nil if they only share the hidden root.
func (nd *Node) CommonAncestor(other *Node) *Node {
	if nd.tree != other.tree {
		return nil
	}

	seen := make(map[*Node]struct{})
	for _, parent := range nd.ParentList(true, true) {
		seen[parent] = struct{}{}
	}

	for _, parent := range other.ParentList(true, true) {
		if _, ok := seen[parent]; ok {
			return parent
		}
	}

	return nil
}

// Path joins the names of all ancestors and this node with `sep`.
func (nd *Node) Path(sep string) string {
	parents := nd.ParentList(true, false)
	names := make([]string, 0, len(parents))
	for _, parent := range parents {
		names = append(names, parent.Name())
	}

	return sep + strings.Join(names, sep)
}
