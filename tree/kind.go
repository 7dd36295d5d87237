package tree

import "iter"

// AnyKind matches every kind in the *OfKind helpers.
const AnyKind = "*"

func kindMatches(nd *Node, kind string) bool {
	return kind == AnyKind || nd.kind == kind
}

// ChildrenOfKind returns the direct children tagged with `kind`.
func (nd *Node) ChildrenOfKind(kind string) []*Node {
	children := []*Node{}
	for _, child := range nd.children {
		if kindMatches(child, kind) {
			children = append(children, child)
		}
	}

	return children
}

// FirstChildOfKind returns the first child of type `kind` or nil.
func (nd *Node) FirstChildOfKind(kind string) *Node {
	for _, child := range nd.children {
		if kindMatches(child, kind) {
			return child
		}
	}

	return nil
}

// LastChildOfKind returns the last child of type `kind` or nil.
func (nd *Node) LastChildOfKind(kind string) *Node {
	for idx := len(nd.children) - 1; idx >= 0; idx-- {
		if kindMatches(nd.children[idx], kind) {
			return nd.children[idx]
		}
	}

	return nil
}

// HasChildrenOfKind checks for at least one child of type `kind`.
func (nd *Node) HasChildrenOfKind(kind string) bool {
	return nd.FirstChildOfKind(kind) != nil
}

// IterByKind yields all nodes of type `kind` in `order`.
func (t *Tree) IterByKind(kind string, order Order) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for nd := range t.Iter(order) {
			if kindMatches(nd, kind) && !yield(nd) {
				return
			}
		}
	}
}
