package tree

import (
	ie "github.com/sahib/arbor/errors"
)

type positionKind uint8

const (
	positionAppend = positionKind(iota)
	positionIndex
	positionBefore
)

// Position tells where a new or moved node is placed between its siblings.
// The zero value appends.
type Position struct {
	kind   positionKind
	index  int
	before *Node
}

var (
	// Append places the node after all existing children.
	Append = Position{}

	// Prepend places the node before all existing children.
	Prepend = Position{kind: positionIndex, index: 0}
)

// AtIndex inserts before the child currently at `idx`.
// Out-of-range values are clamped.
func AtIndex(idx int) Position {
	return Position{kind: positionIndex, index: idx}
}

// Before inserts right before `sibling`, which must be a child of the
// target parent. A nil sibling means Append.
func Before(sibling *Node) Position {
	if sibling == nil {
		return Append
	}

	return Position{kind: positionBefore, before: sibling}
}

func (pos Position) String() string {
	switch pos.kind {
	case positionIndex:
		if pos.index == 0 {
			return "prepend"
		}
		return "index"
	case positionBefore:
		return "before " + pos.before.String()
	default:
		return "append"
	}
}

// resolve converts `pos` to an insertion index into parent.children.
// `skip` is a node that is about to be removed from the same list
// (used by move) and therefore must not count.
func (pos Position) resolve(parent *Node, skip *Node) (int, error) {
	siblings := len(parent.children)
	if skip != nil && skip.parent == parent {
		siblings--
	}

	switch pos.kind {
	case positionAppend:
		return siblings, nil
	case positionIndex:
		idx := pos.index
		if idx < 0 {
			idx = 0
		}

		if idx > siblings {
			idx = siblings
		}

		return idx, nil
	case positionBefore:
		if pos.before.parent != parent {
			return 0, ie.ErrBadPosition{
				Reason: pos.before.String() + " is not a child of " + parent.String(),
			}
		}

		if pos.before == skip {
			return 0, ie.ErrBadPosition{Reason: "cannot insert a node before itself"}
		}

		idx := 0
		for _, child := range parent.children {
			if child == skip {
				continue
			}

			if child == pos.before {
				return idx, nil
			}

			idx++
		}
	}

	return 0, ie.ErrBadPosition{Reason: "unknown position"}
}
