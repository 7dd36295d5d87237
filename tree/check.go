package tree

import (
	"fmt"
)

// SelfCheck validates the internal bookkeeping of the tree. It is slow
// and meant for tests and debugging; a nil error means the tree is sane.
//
// It verifies that every reachable node is linked exactly once to its
// parent and registered exactly once by node key, and that the identity
// registry holds exactly the reachable nodes.
func (t *Tree) SelfCheck() error {
	if t.root.parent != nil || t.root.key != RootKey || t.root.tree != t {
		return fmt.Errorf("hidden root is corrupt")
	}

	seen := make(map[*Node]struct{})
	seenKeys := make(map[NodeKey]struct{})

	for nd := range t.Iter(PreOrder) {
		if _, ok := seen[nd]; ok {
			return fmt.Errorf("%s is reachable twice", nd)
		}

		seen[nd] = struct{}{}

		if nd.tree != t {
			return fmt.Errorf("%s belongs to another tree", nd)
		}

		if nd.parent == nil {
			return fmt.Errorf("%s has no parent", nd)
		}

		links := 0
		for _, sibling := range nd.parent.children {
			if sibling == nd {
				links++
			}
		}

		if links != 1 {
			return fmt.Errorf("%s is linked %d times in its parent", nd, links)
		}

		if nd.children != nil && len(nd.children) == 0 {
			return fmt.Errorf("%s has an empty, non-nil child list", nd)
		}

		if _, ok := seenKeys[nd.key]; ok {
			return fmt.Errorf("node key %d is used twice", nd.key)
		}

		seenKeys[nd.key] = struct{}{}

		if reg := t.reg.Node(nd.key); reg != nd {
			return fmt.Errorf("%s is not registered under its key (got %s)", nd, reg)
		}

		found := false
		for _, clone := range t.reg.byIdentity[nd.identity] {
			if clone == nd {
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("%s is missing in its clone set %q", nd, nd.identity)
		}
	}

	if t.reg.Len() != len(seen) {
		return fmt.Errorf("registry has %d nodes, but %d are reachable", t.reg.Len(), len(seen))
	}

	cloneCount := 0
	for id, clones := range t.reg.byIdentity {
		if len(clones) == 0 {
			return fmt.Errorf("identity %q has an empty clone set", id)
		}

		cloneCount += len(clones)
		for _, clone := range clones {
			if clone.identity != id {
				return fmt.Errorf("%s is filed under %q, but has identity %q", clone, id, clone.identity)
			}

			if _, ok := seen[clone]; !ok {
				return fmt.Errorf("%s is registered, but not reachable", clone)
			}
		}
	}

	if cloneCount != len(seen) {
		return fmt.Errorf("clone sets hold %d nodes, but %d are reachable", cloneCount, len(seen))
	}

	return nil
}
