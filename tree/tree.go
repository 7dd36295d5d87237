package tree

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	ie "github.com/sahib/arbor/errors"
)

// Options configures a new Tree. The zero value is valid.
type Options struct {
	// Name of the tree, used in logs and renderings.
	// A random uuid is used when empty.
	Name string

	// Identity calculates the identity key for payloads.
	// Defaults to DefaultIdentity.
	Identity IdentityFunc
}

// Tree owns a hidden root node, the node registry and the monotonic
// node key counter. Top level nodes are children of the hidden root.
//
// A Tree does not lock on every operation. Callers that share a tree
// between go routines should wrap their access into Atomic().
type Tree struct {
	name     string
	root     *Node
	reg      *Registry
	identity IdentityFunc

	// Last handed out node key.
	lastKey NodeKey

	mu sync.Mutex
}

// New creates an empty tree.
func New(name string) *Tree {
	return NewWithOptions(Options{Name: name})
}

// NewWithOptions creates an empty tree configured by `opts`.
func NewWithOptions(opts Options) *Tree {
	if opts.Name == "" {
		opts.Name = uuid.New().String()
	}

	if opts.Identity == nil {
		opts.Identity = DefaultIdentity
	}

	tree := &Tree{
		name:     opts.Name,
		reg:      newRegistry(),
		identity: opts.Identity,
	}

	tree.root = &Node{
		tree:     tree,
		payload:  opts.Name,
		identity: RootIdentity,
		key:      RootKey,
	}

	return tree
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree<%q>", t.name)
}

// Name returns the human readable name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// SetName renames the tree.
func (t *Tree) SetName(name string) {
	t.name = name
	t.root.payload = name
}

// Root returns the hidden root node. It is useful as a parent argument
// to Move/CopyTo and as a traversal origin, but it carries no user data.
func (t *Tree) Root() *Node {
	return t.root
}

// Registry gives read access to the node indexes.
func (t *Tree) Registry() *Registry {
	return t.reg
}

// IdentityFunc returns the function used to calculate identity keys.
func (t *Tree) IdentityFunc() IdentityFunc {
	return t.identity
}

// CalcIdentity returns the identity key `payload` would get by default.
func (t *Tree) CalcIdentity(payload interface{}) IdentityKey {
	return t.identity(payload)
}

// nextKey hands out a new unique node key.
func (t *Tree) nextKey() NodeKey {
	for {
		t.lastKey++
		if t.reg.Node(t.lastKey) == nil {
			return t.lastKey
		}
	}
}

////////////// LOCKING //////////////

type lockCtxKey struct{}

// Atomic runs `fn` while holding the tree lock. The lock is re-entrant
// along the call chain: calling Atomic() again with the context passed to
// `fn` does not lock a second time.
func (t *Tree) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if holder, ok := ctx.Value(lockCtxKey{}).(*Tree); ok && holder == t {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(context.WithValue(ctx, lockCtxKey{}, t))
}

////////////// ACCESSORS //////////////

// Len returns the number of nodes, excluding the hidden root.
func (t *Tree) Len() int {
	return t.reg.Len()
}

// CountUnique returns the number of distinct identity keys,
// i.e. clones are counted once.
func (t *Tree) CountUnique() int {
	return t.reg.Unique()
}

// Height returns the maximum depth of all nodes.
func (t *Tree) Height() int {
	return t.root.Height()
}

// TopNodes returns all top level nodes.
func (t *Tree) TopNodes() []*Node {
	return t.root.Children()
}

// First returns the first top level node or nil.
func (t *Tree) First() *Node {
	return t.root.FirstChild()
}

// Last returns the last top level node or nil.
func (t *Tree) Last() *Node {
	return t.root.LastChild()
}

// Clear removes all nodes.
func (t *Tree) Clear() {
	t.root.RemoveChildren()
}

// Contains checks if any node references a payload equal to `payload`.
func (t *Tree) Contains(payload interface{}) bool {
	return t.FindFirstByPayload(payload) != nil
}

////////////// LOOKUP //////////////

// GetByKey returns the node with `key` or nil.
func (t *Tree) GetByKey(key NodeKey) *Node {
	return t.reg.Node(key)
}

// Get returns the single node matching `payload`. Unlike the Find*
// family it fails with ErrNotFound when nothing matches and with
// ErrAmbiguousMatch if there are several clones.
func (t *Tree) Get(payload interface{}) (*Node, error) {
	return t.GetByIdentity(t.identity(payload))
}

// GetByIdentity is like Get but takes an identity key.
func (t *Tree) GetByIdentity(id IdentityKey) (*Node, error) {
	clones := t.reg.Clones(id)
	switch len(clones) {
	case 0:
		return nil, ie.NotFound("identity %q", id)
	case 1:
		return clones[0], nil
	default:
		return nil, ie.AmbiguousMatch(
			"identity %q has %d occurrences; use FindAll() to resolve this",
			id, len(clones),
		)
	}
}

// FindByIdentity returns all clones with identity `id`, at most `max`
// if max > 0.
func (t *Tree) FindByIdentity(id IdentityKey, max int) []*Node {
	clones := t.reg.Clones(id)
	if max > 0 && len(clones) > max {
		clones = clones[:max]
	}

	return clones
}

// FindByPayload is FindByIdentity with the default identity of `payload`.
func (t *Tree) FindByPayload(payload interface{}, max int) []*Node {
	return t.FindByIdentity(t.identity(payload), max)
}

// FindFirstByPayload returns the first registered clone for `payload` or nil.
func (t *Tree) FindFirstByPayload(payload interface{}) *Node {
	if clones := t.FindByPayload(payload, 1); len(clones) > 0 {
		return clones[0]
	}

	return nil
}

// FindAll returns all nodes for which `match` returns true, in pre-order.
// At most `max` results are returned if max > 0.
func (t *Tree) FindAll(match Matcher, max int) []*Node {
	return t.root.FindAll(match, max, false)
}

// FindFirst returns the first pre-order match or nil.
func (t *Tree) FindFirst(match Matcher) *Node {
	return t.root.FindFirst(match, false)
}

////////////// ADDING //////////////

// Add appends a new top level node for `payload`.
func (t *Tree) Add(payload interface{}) (*Node, error) {
	return t.root.Add(payload)
}

// AddWith adds a new top level node with explicit options.
func (t *Tree) AddWith(payload interface{}, opts AddOptions) (*Node, error) {
	return t.root.AddWith(payload, opts)
}

// AddKind appends a new top level node with a kind tag.
func (t *Tree) AddKind(kind string, payload interface{}) (*Node, error) {
	return t.root.AddKind(kind, payload)
}
