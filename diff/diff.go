// Package diff compares two trees and produces a third tree that
// describes the structural delta between them.
//
// The result tree references the payloads of the input trees. Every node
// that changed is annotated in its metadata (see the Meta* keys): it was
// either added, removed, moved (moved-here at the new and moved-to at the
// old position), reordered between its siblings or modified according to
// a caller supplied comparison.
//
// Children are matched by identity key, first match wins. Siblings with
// equal identity below the same parent are therefore matched in order of
// appearance, which can misclassify them; no global assignment is done.
package diff

import (
	"fmt"

	"github.com/sahib/arbor/tree"
	log "github.com/sirupsen/logrus"
)

// CompareFunc reports whether the payload of `oldNd` differs from `newNd`.
// `result` is the node in the diff tree; the function may store a string
// under MetaModified to describe the change.
type CompareFunc func(oldNd, newNd, result *tree.Node) bool

// CompareEqual considers nodes modified if their payloads are not equal
// (in the sense of tree.Node.Equal).
func CompareEqual(oldNd, newNd, result *tree.Node) bool {
	return !oldNd.Equal(newNd)
}

// Options configures Diff. The zero value compares structure only.
type Options struct {
	// Ordered also reports nodes that changed their index between siblings.
	Ordered bool

	// Reduce drops all unchanged nodes that have no changed descendants.
	Reduce bool

	// Compare checks matched nodes for modified payloads.
	// Nil disables the check.
	Compare CompareFunc
}

type sourcePair struct {
	oldNd, newNd *tree.Node
}

type differ struct {
	opts Options

	// Nodes that were annotated as added, in creation order.
	added []*tree.Node

	// Maps removed result nodes to their counterpart in the old tree
	// and added result nodes to their counterpart in the new tree.
	sources map[*tree.Node]*tree.Node

	// Pairs that were already compared; guards against re-diffing.
	walked map[sourcePair]struct{}
}

// Diff compares `oldTree` with `newTree` and returns the annotated delta
// tree. Neither input tree is modified.
func Diff(oldTree, newTree *tree.Tree, opts Options) (*tree.Tree, error) {
	result := tree.NewWithOptions(tree.Options{
		Name:     fmt.Sprintf("diff(%q, %q)", oldTree.Name(), newTree.Name()),
		Identity: oldTree.IdentityFunc(),
	})

	df := &differ{
		opts:    opts,
		sources: make(map[*tree.Node]*tree.Node),
		walked:  make(map[sourcePair]struct{}),
	}

	if err := df.walk(oldTree.Root(), newTree.Root(), result.Root()); err != nil {
		return nil, err
	}

	if err := df.reclassify(); err != nil {
		return nil, err
	}

	if opts.Reduce {
		if err := result.Filter(reducePredicate); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func reducePredicate(nd *tree.Node) tree.Verdict {
	if IsChanged(nd) {
		return tree.Keep
	}

	return tree.Undecided
}

// findChild returns the first child in `children` with the same identity.
func findChild(children []*tree.Node, nd *tree.Node) (int, *tree.Node) {
	for idx, child := range children {
		if child.Identity() == nd.Identity() {
			return idx, child
		}
	}

	return -1, nil
}

func (df *differ) checkModified(oldNd, newNd, result *tree.Node) bool {
	if df.opts.Compare == nil || !df.opts.Compare(oldNd, newNd, result) {
		return false
	}

	if !result.HasMeta(MetaModified) {
		result.SetMeta(MetaModified, true)
	}

	return true
}

// walk compares the children of `oldParent` and `newParent`
// and records the outcome below `resParent`.
func (df *differ) walk(oldParent, newParent, resParent *tree.Node) error {
	df.walked[sourcePair{oldParent, newParent}] = struct{}{}

	newChildren := newParent.Children()
	seen := make(map[tree.IdentityKey]struct{})

	for oldIdx, oldChild := range oldParent.Children() {
		seen[oldChild.Identity()] = struct{}{}
		newIdx, newChild := findChild(newChildren, oldChild)

		resChild, err := resParent.AddCopy(oldChild, tree.Append, false)
		if err != nil {
			return err
		}

		if newChild == nil {
			// Removed subtrees are collapsed to their top node.
			log.Debugf("diff: %s was removed", oldChild)
			resChild.SetMeta(MetaClass, ClassRemoved)
			df.sources[resChild] = oldChild
			continue
		}

		if df.opts.Ordered && oldIdx != newIdx {
			resParent.SetMeta(MetaRenumbered, true)
			resChild.SetMeta(MetaOrder, [2]int{oldIdx, newIdx})
		}

		df.checkModified(oldChild, newChild, resChild)

		if !oldChild.HasChildren() && !newChild.HasChildren() {
			continue
		}

		if oldChild.HasChildren() && !newChild.HasChildren() {
			resChild.SetMeta(MetaCleared, true)
		}

		if err := df.walk(oldChild, newChild, resChild); err != nil {
			return err
		}
	}

	for newIdx, newChild := range newChildren {
		if _, ok := seen[newChild.Identity()]; ok {
			continue
		}

		// Try to keep the order of the new tree.
		resChild, err := resParent.AddCopy(newChild, tree.AtIndex(newIdx), true)
		if err != nil {
			return err
		}

		log.Debugf("diff: %s was added", newChild)
		df.markAdded(resChild, newChild)
	}

	return nil
}

// markAdded annotates a freshly copied subtree as added.
func (df *differ) markAdded(resNode, newNode *tree.Node) {
	resNode.SetMeta(MetaClass, ClassAdded)
	df.added = append(df.added, resNode)
	df.sources[resNode] = newNode

	resChildren := resNode.Children()
	for idx, newChild := range newNode.Children() {
		df.markAdded(resChildren[idx], newChild)
	}
}

// reclassify turns added nodes with a removed clone into moves.
// The moved subtree is then compared with its old version,
// so that only real changes inside of it stay annotated.
func (df *differ) reclassify() error {
	// df.added may grow while iterating.
	for idx := 0; idx < len(df.added); idx++ {
		added := df.added[idx]
		if !added.IsAttached() || ClassOf(added) != ClassAdded {
			continue
		}

		removed := []*tree.Node{}
		for _, clone := range added.Clones(false) {
			if ClassOf(clone) == ClassRemoved {
				removed = append(removed, clone)
			}
		}

		if len(removed) == 0 {
			continue
		}

		log.Debugf("diff: %s was moved from %s", added, removed[0])
		added.SetMeta(MetaClass, ClassMovedHere)

		for _, clone := range removed {
			clone.SetMeta(MetaClass, ClassMovedTo)
			if df.checkModified(df.sources[clone], df.sources[added], added) {
				clone.SetMeta(MetaModified, added.Meta(MetaModified))
			}
		}

		oldSrc, newSrc := df.sources[removed[0]], df.sources[added]
		if _, ok := df.walked[sourcePair{oldSrc, newSrc}]; ok {
			continue
		}

		added.RemoveChildren()
		if err := df.walk(oldSrc, newSrc, added); err != nil {
			return err
		}
	}

	return nil
}
