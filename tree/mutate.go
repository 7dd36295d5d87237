package tree

import (
	"sort"

	ie "github.com/sahib/arbor/errors"
	log "github.com/sirupsen/logrus"
)

// AddOptions tunes how a new node is created.
type AddOptions struct {
	// Position between the new siblings; appends by default.
	Position Position

	// Identity overrides the calculated identity key.
	Identity IdentityKey

	// Key forces a node key. It must not be in use yet.
	// Zero means "pick the next free key".
	Key NodeKey

	// Kind tags the node with a type.
	Kind string
}

// Add appends a new child that references `payload`.
func (nd *Node) Add(payload interface{}) (*Node, error) {
	return nd.AddWith(payload, AddOptions{})
}

// AddAt inserts a new child for `payload` at `pos`.
func (nd *Node) AddAt(payload interface{}, pos Position) (*Node, error) {
	return nd.AddWith(payload, AddOptions{Position: pos})
}

// AddKind appends a new child of type `kind`.
func (nd *Node) AddKind(kind string, payload interface{}) (*Node, error) {
	return nd.AddWith(payload, AddOptions{Kind: kind})
}

// AppendChild is Add with an explicit identity key (may be empty).
func (nd *Node) AppendChild(payload interface{}, id IdentityKey) (*Node, error) {
	return nd.AddWith(payload, AddOptions{Identity: id})
}

// PrependChild adds a new first child.
func (nd *Node) PrependChild(payload interface{}, id IdentityKey) (*Node, error) {
	return nd.AddWith(payload, AddOptions{Position: Prepend, Identity: id})
}

// PrependSibling adds a new node right before this one.
func (nd *Node) PrependSibling(payload interface{}, id IdentityKey) (*Node, error) {
	if nd.parent == nil {
		return nil, ie.Usage("the root has no siblings")
	}

	return nd.parent.AddWith(payload, AddOptions{Position: Before(nd), Identity: id})
}

// AppendSibling adds a new node right after this one.
func (nd *Node) AppendSibling(payload interface{}, id IdentityKey) (*Node, error) {
	if nd.parent == nil {
		return nil, ie.Usage("the root has no siblings")
	}

	return nd.parent.AddWith(payload, AddOptions{Position: Before(nd.NextSibling()), Identity: id})
}

// AddWith creates a new child node below `nd` and registers it.
//
// It fails with ErrUniqueConstraint if a child of `nd` already references
// the very same payload, and with ErrUsage for invalid positions.
func (nd *Node) AddWith(payload interface{}, opts AddOptions) (*Node, error) {
	for _, child := range nd.children {
		if sameRef(child.payload, payload) {
			return nil, ie.UniqueConstraint(
				"%s already has a child referencing %q", nd, child.Name(),
			)
		}
	}

	idx, err := opts.Position.resolve(nd, nil)
	if err != nil {
		return nil, err
	}

	id := opts.Identity
	if id == "" {
		id = nd.tree.identity(payload)
	}

	key := opts.Key
	if key == RootKey {
		key = nd.tree.nextKey()
	}

	child := &Node{
		tree:     nd.tree,
		parent:   nd,
		payload:  payload,
		identity: id,
		key:      key,
		kind:     opts.Kind,
	}

	if err := nd.tree.reg.add(child); err != nil {
		return nil, err
	}

	nd.insertChild(idx, child)
	return child, nil
}

// AddCopy adds a new child that references the payload, identity and kind
// of `src`. `src` may come from another tree. If `deep` is true, all
// descendants of `src` are copied as well.
func (nd *Node) AddCopy(src *Node, pos Position, deep bool) (*Node, error) {
	if src.IsRoot() {
		return nil, ie.Usage("cannot copy the hidden root")
	}

	if deep && (src == nd || nd.IsDescendantOf(src)) {
		return nil, ie.Usage("cannot deep-copy %s into itself", src)
	}

	child, err := nd.AddWith(src.payload, AddOptions{
		Position: pos,
		Identity: src.identity,
		Kind:     src.kind,
	})

	if err != nil {
		return nil, err
	}

	if deep {
		if err := child.addFrom(src); err != nil {
			return nil, err
		}
	}

	return child, nil
}

// addFrom appends copies of all descendants of `src`.
func (nd *Node) addFrom(src *Node) error {
	for _, srcChild := range src.children {
		child, err := nd.AddWith(srcChild.payload, AddOptions{
			Identity: srcChild.identity,
			Kind:     srcChild.kind,
		})

		if err != nil {
			return err
		}

		if err := child.addFrom(srcChild); err != nil {
			return err
		}
	}

	return nil
}

func (nd *Node) insertChild(idx int, child *Node) {
	nd.children = append(nd.children, nil)
	copy(nd.children[idx+1:], nd.children[idx:])
	nd.children[idx] = child
}

func (nd *Node) unlinkChild(child *Node) {
	for idx, curr := range nd.children {
		if curr == child {
			nd.children = append(nd.children[:idx], nd.children[idx+1:]...)
			break
		}
	}

	if len(nd.children) == 0 {
		nd.children = nil
	}
}

////////////// PAYLOAD //////////////

// CloneMode decides whether SetPayload affects only one node or all of
// its clones. The zero value is undecided.
type CloneMode uint8

const (
	// CloneModeUnset fails with ErrAmbiguousMatch if the node has clones.
	CloneModeUnset = CloneMode(iota)
	// CloneModeSingle only modifies the node itself.
	CloneModeSingle
	// CloneModeAll modifies the node and all its clones.
	CloneModeAll
)

// SetPayload re-points the payload and/or identity key of `nd`.
// A nil payload keeps the current one; an empty `id` is calculated from
// the new payload (or kept if the payload does not change).
func (nd *Node) SetPayload(payload interface{}, id IdentityKey, mode CloneMode) error {
	if nd.IsRoot() {
		return ie.Usage("cannot set the payload of the hidden root")
	}

	if payload == nil && id == "" {
		return ie.Usage("need a payload or an identity key")
	}

	var newPayload interface{}
	hasNewPayload := payload != nil && !sameRef(payload, nd.payload)
	if hasNewPayload {
		newPayload = payload
		if id == "" {
			id = nd.tree.identity(payload)
		}
	}

	hasNewID := id != "" && id != nd.identity

	reg := nd.tree.reg
	hasClones := reg.CloneCount(nd.identity) > 1
	if hasClones && mode == CloneModeUnset {
		return ie.AmbiguousMatch("%s has clones; decide on CloneModeSingle or CloneModeAll", nd)
	}

	targets := []*Node{nd}
	if hasClones && mode == CloneModeAll {
		targets = reg.Clones(nd.identity)
	}

	for _, target := range targets {
		if hasNewID {
			reg.rekey(target, id)
			target.identity = id
		}

		if hasNewPayload {
			target.payload = newPayload
		}
	}

	return nil
}

// Rename replaces a string payload with `name`.
func (nd *Node) Rename(name string, mode CloneMode) error {
	if _, ok := nd.payload.(string); !ok {
		return ie.Usage("can only rename nodes with string payloads")
	}

	return nd.SetPayload(name, "", mode)
}

////////////// REMOVAL //////////////

// Remove detaches `nd` and destroys its whole subtree.
func (nd *Node) Remove() error {
	return nd.RemoveWith(false, false)
}

// RemoveWith detaches `nd`. If `keepChildren` is set, the children are
// moved up to the parent (at the position of `nd`) first. If `withClones`
// is set, all clones of `nd` are removed as well.
func (nd *Node) RemoveWith(keepChildren, withClones bool) error {
	if nd.tree == nil {
		return ie.Usage("node was already removed")
	}

	if nd.IsRoot() {
		return ie.Usage("cannot remove the hidden root")
	}

	if withClones {
		for _, clone := range nd.Clones(false) {
			// A clone might be part of a subtree that was removed already.
			if clone.tree == nil {
				continue
			}

			if err := clone.RemoveWith(keepChildren, false); err != nil {
				return err
			}
		}

		if nd.tree == nil {
			// `nd` was a descendant of one of its clones.
			return nil
		}
	}

	if keepChildren {
		for _, child := range nd.Children() {
			if err := child.MoveTo(nd.parent, Before(nd)); err != nil {
				return err
			}
		}
	} else {
		nd.RemoveChildren()
	}

	nd.parent.unlinkChild(nd)
	nd.destroy()
	return nil
}

// RemoveChildren destroys all descendants in post-order.
func (nd *Node) RemoveChildren() {
	for _, child := range nd.children {
		child.RemoveChildren()
		child.destroy()
	}

	nd.children = nil
}

func (nd *Node) destroy() {
	nd.tree.reg.remove(nd)
	nd.children = nil
	nd.parent = nil
	nd.tree = nil
	nd.meta = nil
}

// IsAttached checks if the node still belongs to a tree.
func (nd *Node) IsAttached() bool {
	return nd.tree != nil
}

////////////// MOVING //////////////

// MoveTo re-parents `nd` (and its subtree) below `newParent` at `pos`.
// Use tree.Root() as `newParent` to make it a top level node.
// Node keys, identity keys and registrations stay the same.
func (nd *Node) MoveTo(newParent *Node, pos Position) error {
	if nd.IsRoot() || nd.tree == nil {
		return ie.Usage("cannot move %s", nd)
	}

	if newParent == nil || newParent.tree != nd.tree {
		return ie.Usage("can only move %s inside the same tree", nd)
	}

	if newParent == nd || newParent.IsDescendantOf(nd) {
		return ie.Usage("cannot move %s below itself", nd)
	}

	idx, err := pos.resolve(newParent, nd)
	if err != nil {
		return err
	}

	log.Debugf("move %s to %s (%s)", nd, newParent, pos)

	nd.parent.unlinkChild(nd)
	nd.parent = newParent
	newParent.insertChild(idx, nd)
	return nil
}

// SortChildren orders the children with `less` (defaults to by name).
// With `deep`, all descendants are sorted too.
func (nd *Node) SortChildren(less func(a, b *Node) bool, deep bool) {
	if less == nil {
		less = func(a, b *Node) bool {
			return a.Name() < b.Name()
		}
	}

	sort.SliceStable(nd.children, func(i, j int) bool {
		return less(nd.children[i], nd.children[j])
	})

	if deep {
		for _, child := range nd.children {
			child.SortChildren(less, true)
		}
	}
}

// Sort orders the top level nodes (and all descendants if `deep`).
func (t *Tree) Sort(less func(a, b *Node) bool, deep bool) {
	t.root.SortChildren(less, deep)
}
