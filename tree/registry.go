package tree

import (
	ie "github.com/sahib/arbor/errors"
)

// Registry indexes all attached nodes of a tree twice:
// by their unique node key and by their (shared) identity key.
// The identity index is what makes clone lookups O(1).
type Registry struct {
	// NodeKey to node
	byKey map[NodeKey]*Node

	// IdentityKey to all nodes sharing it, in insertion order
	byIdentity map[IdentityKey][]*Node
}

func newRegistry() *Registry {
	return &Registry{
		byKey:      make(map[NodeKey]*Node),
		byIdentity: make(map[IdentityKey][]*Node),
	}
}

// add registers `nd` in both indexes.
func (reg *Registry) add(nd *Node) error {
	if _, ok := reg.byKey[nd.key]; ok {
		return ie.UniqueConstraint("node key %d is already taken", nd.key)
	}

	reg.byKey[nd.key] = nd
	reg.byIdentity[nd.identity] = append(reg.byIdentity[nd.identity], nd)
	return nil
}

// remove unregisters `nd`. Removing the last clone drops the identity key.
func (reg *Registry) remove(nd *Node) {
	delete(reg.byKey, nd.key)
	reg.dropIdentity(nd, nd.identity)
}

func (reg *Registry) dropIdentity(nd *Node, id IdentityKey) {
	clones := reg.byIdentity[id]
	for idx, clone := range clones {
		// Compare by reference; clones are equal by payload.
		if clone == nd {
			clones = append(clones[:idx:idx], clones[idx+1:]...)
			break
		}
	}

	if len(clones) == 0 {
		delete(reg.byIdentity, id)
		return
	}

	reg.byIdentity[id] = clones
}

// rekey moves `nd` from its current identity slot to `id`.
// It does not modify nd.identity itself.
func (reg *Registry) rekey(nd *Node, id IdentityKey) {
	reg.dropIdentity(nd, nd.identity)
	reg.byIdentity[id] = append(reg.byIdentity[id], nd)
}

// Node returns the node registered under `key` or nil.
func (reg *Registry) Node(key NodeKey) *Node {
	return reg.byKey[key]
}

// Clones returns a copy of the clone set of `id` (may be empty).
func (reg *Registry) Clones(id IdentityKey) []*Node {
	clones := reg.byIdentity[id]
	if len(clones) == 0 {
		return nil
	}

	cpy := make([]*Node, len(clones))
	copy(cpy, clones)
	return cpy
}

// CloneCount returns the size of the clone set of `id`.
func (reg *Registry) CloneCount(id IdentityKey) int {
	return len(reg.byIdentity[id])
}

// HasIdentity checks if any attached node uses `id`.
func (reg *Registry) HasIdentity(id IdentityKey) bool {
	_, ok := reg.byIdentity[id]
	return ok
}

// Len is the number of registered nodes.
func (reg *Registry) Len() int {
	return len(reg.byKey)
}

// Unique is the number of distinct identity keys.
func (reg *Registry) Unique() int {
	return len(reg.byIdentity)
}

// Identities calls `fn` for every identity key and its clone set.
// The order is unspecified.
func (reg *Registry) Identities(fn func(id IdentityKey, clones []*Node)) {
	for id, clones := range reg.byIdentity {
		fn(id, clones)
	}
}

// Nodes calls `fn` for every registered node in unspecified order.
func (reg *Registry) Nodes(fn func(nd *Node)) {
	for _, nd := range reg.byKey {
		fn(nd)
	}
}
