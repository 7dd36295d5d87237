package tree

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewFixture builds the standard test tree:
//
//	A
//	├── a1
//	│   ├── a11
//	│   ╰── a12
//	╰── a2
//	B
//	╰── b1
//	    ╰── b11
//
// With `clones` set, `a11` is additionally prepended to `b1`.
func NewFixture(t testing.TB, name string, clones bool) *Tree {
	tree := New(name)

	a := MustAdd(t, tree.Root(), "A")
	a1 := MustAdd(t, a, "a1")
	a11 := MustAdd(t, a1, "a11")
	MustAdd(t, a1, "a12")
	MustAdd(t, a, "a2")
	b := MustAdd(t, tree.Root(), "B")
	b1 := MustAdd(t, b, "b1")
	MustAdd(t, b1, "b11")

	if clones {
		_, err := b1.AddCopy(a11, Prepend, false)
		require.Nil(t, err)
	}

	require.Nil(t, tree.SelfCheck())
	return tree
}

// MustAdd appends `payload` below `parent` or fails the test.
func MustAdd(t testing.TB, parent *Node, payload interface{}) *Node {
	nd, err := parent.Add(payload)
	require.Nil(t, err, "add %v below %s", payload, parent)
	return nd
}

// MustGet looks up the single node for `payload` or fails the test.
func MustGet(t testing.TB, tree *Tree, payload interface{}) *Node {
	nd, err := tree.Get(payload)
	require.Nil(t, err, "get %v", payload)
	return nd
}

// Names returns the names of all nodes in `seq`.
func Names(seq iter.Seq[*Node]) []string {
	names := []string{}
	for nd := range seq {
		names = append(names, nd.Name())
	}

	return names
}

// NodeNames returns the names of `nodes`.
func NodeNames(nodes []*Node) []string {
	names := make([]string, 0, len(nodes))
	for _, nd := range nodes {
		names = append(names, nd.Name())
	}

	return names
}
