package tree

import (
	"testing"

	ie "github.com/sahib/arbor/errors"
	"github.com/stretchr/testify/require"
)

func verdictFor(verdicts map[string]Verdict, fallback Verdict) Predicate {
	return func(nd *Node) Verdict {
		if verdict, ok := verdicts[nd.Name()]; ok {
			return verdict
		}

		return fallback
	}
}

func TestCopyFull(t *testing.T) {
	tree := NewFixture(t, "full", true)

	cpy, err := tree.Copy(nil)
	require.Nil(t, err)
	require.Equal(t, "full (copy)", cpy.Name())
	require.Equal(t, Names(tree.All()), Names(cpy.All()))
	require.Equal(t, tree.Len(), cpy.Len())
	require.Equal(t, tree.CountUnique(), cpy.CountUnique())
	require.Nil(t, cpy.SelfCheck())

	// Copies share the payload but not the nodes.
	orig := MustGet(t, tree, "a12")
	copied := MustGet(t, cpy, "a12")
	require.True(t, orig.Equal(copied))
	require.False(t, orig.Same(copied))
	require.Equal(t, orig.Identity(), copied.Identity())
}

func TestCopySubtree(t *testing.T) {
	tree := NewFixture(t, "sub", false)
	a1 := MustGet(t, tree, "a1")

	cpy, err := a1.Copy(true, nil)
	require.Nil(t, err)
	require.Equal(t, []string{"a1", "a11", "a12"}, Names(cpy.All()))

	cpy, err = a1.Copy(false, nil)
	require.Nil(t, err)
	require.Equal(t, []string{"a11", "a12"}, NodeNames(cpy.TopNodes()))
}

func TestCopyFiltered(t *testing.T) {
	tcs := []struct {
		name     string
		pred     Predicate
		expected []string
	}{
		{
			name:     "matcher",
			pred:     PredicateFromMatcher(MatchPayload("a12")),
			expected: []string{"A", "a1", "a12"},
		}, {
			name:     "exclude",
			pred:     verdictFor(map[string]Verdict{"a1": Exclude}, Keep),
			expected: []string{"A", "a2", "B", "b1", "b11"},
		}, {
			name:     "select-branch",
			pred:     verdictFor(map[string]Verdict{"B": SelectBranch}, Undecided),
			expected: []string{"B", "b1", "b11"},
		}, {
			name:     "keep-self-only",
			pred:     verdictFor(map[string]Verdict{"a1": KeepSelfOnly}, Undecided),
			expected: []string{"A", "a1"},
		}, {
			name:     "stop",
			pred:     verdictFor(map[string]Verdict{"B": StopFilter}, Keep),
			expected: []string{"A", "a1", "a11", "a12", "a2"},
		}, {
			name:     "nothing",
			pred:     verdictFor(nil, Undecided),
			expected: []string{},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tree := NewFixture(t, tc.name, false)

			cpy, err := tree.Filtered(tc.pred)
			require.Nil(t, err)
			require.Equal(t, tc.expected, Names(cpy.All()))
			require.Nil(t, cpy.SelfCheck())

			// The source is untouched.
			require.Equal(t, 8, tree.Len())

			// Filtering in place gives the same result,
			// except for stop which keeps everything after it.
			if tc.name == "stop" {
				return
			}

			require.Nil(t, tree.Filter(tc.pred))
			require.Equal(t, tc.expected, Names(tree.All()))
			require.Nil(t, tree.SelfCheck())
		})
	}
}

func TestFilterInPlaceStop(t *testing.T) {
	tree := NewFixture(t, "stop", false)
	pred := verdictFor(map[string]Verdict{"a12": StopFilter, "a11": Exclude}, Keep)

	require.Nil(t, tree.Filter(pred))
	require.Equal(t, []string{"A", "a1", "a12", "a2", "B", "b1", "b11"}, Names(tree.All()))
	require.Nil(t, tree.SelfCheck())
}

func TestCopyInto(t *testing.T) {
	tree := NewFixture(t, "into", false)
	target := New("target")
	top := MustAdd(t, target.Root(), "top")

	require.Nil(t, MustGet(t, tree, "a1").CopyInto(top, nil))
	require.Equal(t, []string{"top", "a11", "a12"}, Names(target.All()))

	err := MustGet(t, tree, "B").CopyInto(top, nil)
	require.True(t, ie.IsUsage(err))

	err = MustGet(t, tree, "A").CopyInto(MustGet(t, tree, "a2"), nil)
	require.True(t, ie.IsUsage(err))

	require.True(t, ie.IsUsage(tree.Filter(nil)))
}
