package tree

import (
	"testing"

	ie "github.com/sahib/arbor/errors"
	"github.com/stretchr/testify/require"
)

func TestFindMatchers(t *testing.T) {
	tree := NewFixture(t, "find", true)

	tcs := []struct {
		name     string
		match    Matcher
		expected []string
	}{
		{"payload", MatchPayload("a11"), []string{"a11", "a11"}},
		{"identity", MatchIdentity(tree.CalcIdentity("b1")), []string{"b1"}},
		{"regexp", MustMatchRegexp("a1.*"), []string{"a1", "a11", "a12", "a11"}},
		{"regexp-full", MustMatchRegexp("a"), []string{}},
		{"nil", nil, []string{}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, NodeNames(tree.FindAll(tc.match, 0)))
		})
	}

	require.Len(t, tree.FindAll(MustMatchRegexp("a1.*"), 2), 2)
	require.Equal(t, "B", tree.FindFirst(MustMatchRegexp("[B-Z]")).Name())
	require.Nil(t, tree.FindFirst(MatchPayload("zzz")))
}

func TestFindAddSelf(t *testing.T) {
	tree := NewFixture(t, "self", false)
	a1 := MustGet(t, tree, "a1")
	match := MustMatchRegexp("a1.*")

	require.Equal(t, []string{"a1", "a11", "a12"}, NodeNames(a1.FindAll(match, 0, true)))
	require.Equal(t, []string{"a11", "a12"}, NodeNames(a1.FindAll(match, 0, false)))
	require.Equal(t, "a11", a1.FindFirst(match, false).Name())
}

func TestFindExpr(t *testing.T) {
	tree := NewFixture(t, "expr", true)
	MustGet(t, tree, "a2").SetMeta("color", "red")

	tcs := []struct {
		code     string
		expected []string
	}{
		{`Depth == 3`, []string{"a11", "a12", "a11", "b11"}},
		{`Name startsWith "b" && IsLeaf`, []string{"b11"}},
		{`IsClone`, []string{"a11", "a11"}},
		{`Children > 1`, []string{"A", "a1", "b1"}},
		{`Index == 1 && Depth == 1`, []string{"B"}},
		{`Meta.color == "red"`, []string{"a2"}},
	}

	for _, tc := range tcs {
		t.Run(tc.code, func(t *testing.T) {
			match, err := MatchExpr(tc.code)
			require.Nil(t, err)
			require.Equal(t, tc.expected, NodeNames(tree.FindAll(match, 0)))

			// Second compile is served from the cache.
			_, err = MatchExpr(tc.code)
			require.Nil(t, err)
		})
	}
}

func TestFindBadPatterns(t *testing.T) {
	_, err := MatchExpr(`Name +`)
	require.True(t, ie.IsUsage(err))

	_, err = MatchExpr(`Name`)
	require.True(t, ie.IsUsage(err))

	_, err = MatchRegexp(`(`)
	require.True(t, ie.IsUsage(err))

	require.Panics(t, func() { MustMatchRegexp(`[`) })
}

func TestKinds(t *testing.T) {
	tree := New("org")
	dev, err := tree.AddKind("dept", "Development")
	require.Nil(t, err)

	for _, name := range []string{"Alice", "Bob"} {
		_, err := dev.AddKind("person", name)
		require.Nil(t, err)
	}

	_, err = dev.AddKind("project", "Rewrite")
	require.Nil(t, err)

	require.Equal(t, "dept", dev.Kind())
	require.Equal(t, []string{"Alice", "Bob"}, NodeNames(dev.ChildrenOfKind("person")))
	require.Len(t, dev.ChildrenOfKind(AnyKind), 3)
	require.Equal(t, "Alice", dev.FirstChildOfKind("person").Name())
	require.Equal(t, "Bob", dev.LastChildOfKind("person").Name())
	require.Equal(t, "Rewrite", dev.LastChildOfKind(AnyKind).Name())
	require.Nil(t, dev.FirstChildOfKind("budget"))
	require.True(t, dev.HasChildrenOfKind("project"))
	require.False(t, dev.HasChildrenOfKind("budget"))

	require.Equal(t, []string{"Alice", "Bob"}, Names(tree.IterByKind("person", PreOrder)))
	require.Equal(t, []string{"Development"}, NodeNames(tree.FindAll(MatchKind("dept"), 0)))
	require.Contains(t, dev.String(), "dept:")

	// Copies keep the kind.
	cpy, err := tree.Copy(nil)
	require.Nil(t, err)
	require.Equal(t, []string{"Alice", "Bob"}, Names(cpy.IterByKind("person", PreOrder)))
}

func TestIdentityKeys(t *testing.T) {
	type point struct{ X, Y int }
	p := &point{1, 2}

	require.Equal(t, DefaultIdentity("x"), DefaultIdentity("x"))
	require.NotEqual(t, DefaultIdentity("1"), DefaultIdentity(1))
	require.Equal(t, DefaultIdentity(point{1, 2}), DefaultIdentity(point{1, 2}))
	require.Equal(t, DefaultIdentity(p), DefaultIdentity(p))
	require.NotEqual(t, DefaultIdentity(p), DefaultIdentity(&point{1, 2}))
	require.NotEqual(t, RootIdentity, DefaultIdentity(nil))
}
