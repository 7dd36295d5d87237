package tree

import (
	"context"
	"sync"
	"testing"

	ie "github.com/sahib/arbor/errors"
	"github.com/stretchr/testify/require"
)

func TestTreeBasics(t *testing.T) {
	tree := NewFixture(t, "fixture", false)

	require.Equal(t, 8, tree.Len())
	require.Equal(t, 8, tree.CountUnique())
	require.Equal(t, 3, tree.Height())
	require.Equal(t, "fixture", tree.Name())
	require.Equal(t, []string{"A", "B"}, NodeNames(tree.TopNodes()))
	require.Equal(t, "A", tree.First().Name())
	require.Equal(t, "B", tree.Last().Name())
	require.True(t, tree.Contains("a12"))
	require.False(t, tree.Contains("c"))

	tree.Clear()
	require.Equal(t, 0, tree.Len())
	require.Nil(t, tree.First())
	require.Nil(t, tree.SelfCheck())
}

func TestTreeDefaultName(t *testing.T) {
	tree := New("")
	require.NotEmpty(t, tree.Name())
	require.Equal(t, tree.Name(), tree.Root().Name())
	require.True(t, tree.Root().IsRoot())
	require.Equal(t, RootKey, tree.Root().Key())
	require.Equal(t, RootIdentity, tree.Root().Identity())
}

func TestTreeGet(t *testing.T) {
	tree := NewFixture(t, "clones", true)
	require.Equal(t, 9, tree.Len())
	require.Equal(t, 8, tree.CountUnique())

	nd, err := tree.Get("a12")
	require.Nil(t, err)
	require.Equal(t, "/A/a1/a12", nd.Path("/"))

	_, err = tree.Get("nope")
	require.True(t, ie.IsNotFound(err))

	_, err = tree.Get("a11")
	require.True(t, ie.IsAmbiguousMatch(err))

	clones := tree.FindByPayload("a11", 0)
	require.Len(t, clones, 2)
	require.Equal(t, "/A/a1/a11", clones[0].Path("/"))
	require.Equal(t, "/B/b1/a11", clones[1].Path("/"))
	require.Len(t, tree.FindByPayload("a11", 1), 1)

	require.Equal(t, clones[1], tree.GetByKey(clones[1].Key()))
	require.Nil(t, tree.GetByKey(NodeKey(4242)))
}

func TestTreeClones(t *testing.T) {
	tree := NewFixture(t, "clones", true)
	a11 := tree.FindFirstByPayload("a11")

	require.True(t, a11.IsClone())
	require.Len(t, a11.Clones(true), 2)
	require.Len(t, a11.Clones(false), 1)
	require.Equal(t, "b1", a11.Clones(false)[0].Parent().Name())
	require.True(t, a11.Clones(false)[0].Same(a11))
	require.NotEqual(t, a11.Key(), a11.Clones(false)[0].Key())

	require.False(t, MustGet(t, tree, "a12").IsClone())

	reg := tree.Registry()
	require.Equal(t, 9, reg.Len())
	require.Equal(t, 8, reg.Unique())
	require.Equal(t, 2, reg.CloneCount(a11.Identity()))
	require.True(t, reg.HasIdentity(a11.Identity()))
	require.False(t, reg.HasIdentity("nope"))

	multi := 0
	reg.Identities(func(id IdentityKey, clones []*Node) {
		if len(clones) > 1 {
			multi++
		}
	})
	require.Equal(t, 1, multi)

	seen := 0
	reg.Nodes(func(nd *Node) { seen++ })
	require.Equal(t, 9, seen)
}

func TestTreeUniqueConstraint(t *testing.T) {
	tree := NewFixture(t, "unique", false)
	a := MustGet(t, tree, "A")

	_, err := a.Add("a1")
	require.True(t, ie.IsUniqueConstraint(err))
	require.Equal(t, 8, tree.Len())

	// Same payload below another parent is fine.
	_, err = MustGet(t, tree, "B").Add("a1")
	require.Nil(t, err)
	require.Nil(t, tree.SelfCheck())
}

func TestTreeForcedKeys(t *testing.T) {
	tree := New("keys")

	nd, err := tree.AddWith("x", AddOptions{Key: 2})
	require.Nil(t, err)
	require.Equal(t, NodeKey(2), nd.Key())

	_, err = tree.AddWith("y", AddOptions{Key: 2})
	require.True(t, ie.IsUniqueConstraint(err))

	first := MustAdd(t, tree.Root(), "first")
	second := MustAdd(t, tree.Root(), "second")
	require.Equal(t, NodeKey(1), first.Key())
	require.Equal(t, NodeKey(3), second.Key())

	// Keys are never handed out twice, even after removal.
	require.Nil(t, second.Remove())
	third := MustAdd(t, tree.Root(), "third")
	require.Equal(t, NodeKey(4), third.Key())
	require.Nil(t, tree.SelfCheck())
}

func TestTreeCustomIdentity(t *testing.T) {
	type person struct {
		GUID string
		Name string
	}

	tree := NewWithOptions(Options{
		Name: "people",
		Identity: func(payload interface{}) IdentityKey {
			if p, ok := payload.(*person); ok {
				return IdentityKey(p.GUID)
			}

			return DefaultIdentity(payload)
		},
	})

	alice := &person{GUID: "1", Name: "Alice"}
	alice2 := &person{GUID: "1", Name: "Alice (moved)"}

	dev := MustAdd(t, tree.Root(), "dev")
	ops := MustAdd(t, tree.Root(), "ops")
	MustAdd(t, dev, alice)
	MustAdd(t, ops, alice2)

	require.Len(t, tree.FindByIdentity("1", 0), 2)
	require.Equal(t, IdentityKey("1"), tree.CalcIdentity(alice2))
	require.Nil(t, tree.SelfCheck())
}

func TestTreeAtomic(t *testing.T) {
	tree := New("atomic")
	ctx := context.Background()

	err := tree.Atomic(ctx, func(ctx context.Context) error {
		// Nested calls with the handed down context must not deadlock.
		return tree.Atomic(ctx, func(ctx context.Context) error {
			_, err := tree.Add("nested")
			return err
		})
	})

	require.Nil(t, err)
	require.Equal(t, 1, tree.Len())

	wg := &sync.WaitGroup{}
	errs := make(chan error, 20)
	for idx := 0; idx < 20; idx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs <- tree.Atomic(ctx, func(ctx context.Context) error {
				_, err := tree.Add(idx)
				return err
			})
		}(idx)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.Nil(t, err)
	}

	require.Equal(t, 21, tree.Len())
	require.Nil(t, tree.SelfCheck())
}

func TestNodeNavigation(t *testing.T) {
	tree := NewFixture(t, "nav", false)
	a := MustGet(t, tree, "A")
	a1 := MustGet(t, tree, "a1")
	a11 := MustGet(t, tree, "a11")
	a12 := MustGet(t, tree, "a12")
	a2 := MustGet(t, tree, "a2")
	b11 := MustGet(t, tree, "b11")

	require.True(t, a.IsTop())
	require.Nil(t, a.Parent())
	require.Equal(t, a, a1.Parent())
	require.Equal(t, 1, a.Depth())
	require.Equal(t, 3, a11.Depth())
	require.Equal(t, 2, a.Height())
	require.Equal(t, 4, a.CountDescendants(false))
	require.Equal(t, 3, a.CountDescendants(true))

	require.Equal(t, a11, a1.FirstChild())
	require.Equal(t, a12, a1.LastChild())
	require.Equal(t, 1, a12.Index())
	require.Equal(t, a12, a11.NextSibling())
	require.Equal(t, a11, a12.PrevSibling())
	require.Nil(t, a12.NextSibling())
	require.True(t, a11.IsFirstSibling())
	require.True(t, a12.IsLastSibling())
	require.Equal(t, []string{"a12"}, NodeNames(a11.Siblings(false)))
	require.Equal(t, []string{"a11", "a12"}, NodeNames(a11.Siblings(true)))

	require.Equal(t, a, a11.Top())
	require.True(t, a11.IsDescendantOf(a))
	require.True(t, a.IsAncestorOf(a12))
	require.False(t, a.IsAncestorOf(b11))

	require.Equal(t, []string{"A", "a1"}, NodeNames(a11.ParentList(false, false)))
	require.Equal(t, []string{"a11", "a1", "A"}, NodeNames(a11.ParentList(true, true)))

	require.Equal(t, a1, a11.CommonAncestor(a12))
	require.Equal(t, a, a11.CommonAncestor(a2))
	require.Nil(t, a11.CommonAncestor(b11))
	require.Equal(t, "/A/a1/a11", a11.Path("/"))
}

func TestNodeMeta(t *testing.T) {
	tree := NewFixture(t, "meta", false)
	a1 := MustGet(t, tree, "a1")

	require.False(t, a1.HasMeta("x"))
	require.Nil(t, a1.Meta("x"))

	a1.SetMeta("x", 1)
	a1.UpdateMeta(map[string]interface{}{"y": 2}, false)
	require.Equal(t, 1, a1.Meta("x"))
	require.Equal(t, map[string]interface{}{"x": 1, "y": 2}, a1.MetaMap())

	a1.UpdateMeta(map[string]interface{}{"z": 3}, true)
	require.False(t, a1.HasMeta("x"))
	require.True(t, a1.HasMeta("z"))

	a1.ClearMeta("z")
	require.False(t, a1.HasMeta("z"))

	a1.SetMeta("x", 1)
	a1.ClearMeta("")
	require.Empty(t, a1.MetaMap())
}
