package tree

import (
	ie "github.com/sahib/arbor/errors"
)

// Verdict is the answer of a Predicate for a single node.
type Verdict uint8

const (
	// Undecided keeps the node only if one of its descendants is kept.
	Undecided = Verdict(iota)
	// Keep keeps the node and goes on checking its descendants.
	Keep
	// Exclude drops the node together with all its descendants.
	Exclude
	// SelectBranch keeps the node and all descendants without checking them.
	SelectBranch
	// KeepSelfOnly keeps the node but drops all its descendants.
	KeepSelfOnly
	// StopFilter ends filtering; everything decided so far stays.
	StopFilter
)

// Predicate decides which nodes survive Filter() and Copy().
type Predicate func(nd *Node) Verdict

// PredicateFromMatcher keeps matching nodes (and their ancestors).
func PredicateFromMatcher(match Matcher) Predicate {
	return func(nd *Node) Verdict {
		if match(nd) {
			return Keep
		}

		return Undecided
	}
}

type stopFilter struct{}

////////////// COPY //////////////

// Copy returns a new tree with copies of all nodes. New nodes reference
// the same payloads. With a non-nil `pred` only selected nodes are copied.
func (t *Tree) Copy(pred Predicate) (*Tree, error) {
	return t.root.Copy(false, pred)
}

// Copy creates a new tree from the subtree of `nd`. If `addSelf` is true,
// `nd` becomes the only top level node of the new tree.
func (nd *Node) Copy(addSelf bool, pred Predicate) (*Tree, error) {
	newTree := NewWithOptions(Options{
		Name:     nd.tree.name + " (copy)",
		Identity: nd.tree.identity,
	})

	target := newTree.root
	if addSelf && !nd.IsRoot() {
		top, err := target.AddCopy(nd, Append, false)
		if err != nil {
			return nil, err
		}

		target = top
	}

	if err := nd.copyInto(target, pred); err != nil {
		return nil, err
	}

	return newTree, nil
}

// CopyInto copies all descendants of `nd` below `target`, which must not
// have any children yet. `target` may belong to another tree.
func (nd *Node) CopyInto(target *Node, pred Predicate) error {
	if target.HasChildren() {
		return ie.Usage("copy target %s is not empty", target)
	}

	if target == nd || target.IsDescendantOf(nd) {
		return ie.Usage("cannot copy %s into itself", nd)
	}

	return nd.copyInto(target, pred)
}

func (nd *Node) copyInto(target *Node, pred Predicate) error {
	if pred == nil {
		return target.addFrom(nd)
	}

	err := target.addFiltered(nd, pred)
	if _, ok := err.(stopFilter); ok {
		return nil
	}

	return err
}

// CopyTo adds a copy of `nd` below `target` at `pos` and returns it.
// All descendants are copied if `deep` is true.
func (nd *Node) CopyTo(target *Node, pos Position, deep bool) (*Node, error) {
	return target.AddCopy(nd, pos, deep)
}

// pendingParent is a source node whose copy is only created once a
// descendant turns out to be selected.
type pendingParent struct {
	src  *Node
	copy *Node
}

// addFiltered appends copies of the selected descendants of `src`.
func (nd *Node) addFiltered(src *Node, pred Predicate) error {
	stack := []*pendingParent{{copy: nd}}

	materialize := func() (*Node, error) {
		parent := stack[0].copy
		for _, pending := range stack[1:] {
			if pending.copy == nil {
				cpy, err := parent.AddCopy(pending.src, Append, false)
				if err != nil {
					return nil, err
				}

				pending.copy = cpy
			}

			parent = pending.copy
		}

		return parent, nil
	}

	var visit func(curr *Node) error
	visit = func(curr *Node) error {
		for _, child := range curr.children {
			stack = append(stack, &pendingParent{src: child})

			switch pred(child) {
			case Undecided:
				if err := visit(child); err != nil {
					return err
				}
			case Keep:
				if _, err := materialize(); err != nil {
					return err
				}

				if err := visit(child); err != nil {
					return err
				}
			case SelectBranch:
				cpy, err := materialize()
				if err != nil {
					return err
				}

				if err := cpy.addFrom(child); err != nil {
					return err
				}
			case KeepSelfOnly:
				if _, err := materialize(); err != nil {
					return err
				}
			case StopFilter:
				return stopFilter{}
			case Exclude:
			}

			stack = stack[:len(stack)-1]
		}

		return nil
	}

	return visit(src)
}

func (stopFilter) Error() string {
	return "stop filter"
}

////////////// FILTER //////////////

// Filter removes all nodes that are not selected by `pred` in place.
func (t *Tree) Filter(pred Predicate) error {
	return t.root.Filter(pred)
}

// Filtered returns a filtered copy of the tree.
func (t *Tree) Filtered(pred Predicate) (*Tree, error) {
	return t.Copy(pred)
}

// Filter removes all descendants of `nd` that are not selected by `pred`.
func (nd *Node) Filter(pred Predicate) error {
	if pred == nil {
		return ie.Usage("filter needs a predicate")
	}

	_, err := nd.filter(pred)
	if _, ok := err.(stopFilter); ok {
		return nil
	}

	return err
}

// filter returns true if any descendant of `nd` was kept.
func (nd *Node) filter(pred Predicate) (bool, error) {
	remove := []*Node{}
	mustKeep := false

	var stopErr error

loop:
	for _, child := range nd.children {
		switch pred(child) {
		case Undecided:
			kept, err := child.filter(pred)
			if err != nil {
				stopErr = err
				break loop
			}

			if kept {
				mustKeep = true
			} else {
				remove = append(remove, child)
			}
		case Keep:
			if _, err := child.filter(pred); err != nil {
				stopErr = err
				mustKeep = true
				break loop
			}

			mustKeep = true
		case SelectBranch:
			mustKeep = true
		case KeepSelfOnly:
			child.RemoveChildren()
			mustKeep = true
		case Exclude:
			remove = append(remove, child)
		case StopFilter:
			stopErr = stopFilter{}
			break loop
		}
	}

	for _, child := range remove {
		if err := child.Remove(); err != nil {
			return mustKeep, err
		}
	}

	if stopErr != nil {
		// Nodes after the stop point are kept; keep the parent chain too.
		return true, stopErr
	}

	return mustKeep, nil
}
