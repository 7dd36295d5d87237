package diff

import (
	"fmt"
	"strings"

	"github.com/sahib/arbor/tree"
)

// NodeFormatter renders a node of a diff tree with its annotations,
// e.g. "b1 - [Moved here]" or "a12 - [Modified], [Order -1]".
// It can be passed as Repr to the render package.
func NodeFormatter(nd *tree.Node) string {
	flags := []string{}

	if cl := ClassOf(nd); cl != ClassNone {
		flags = append(flags, cl.Label())
	}

	switch v := nd.Meta(MetaModified).(type) {
	case string:
		flags = append(flags, fmt.Sprintf("Modified (%s)", v))
	case bool:
		if v {
			flags = append(flags, "Modified")
		}
	}

	if renumbered, _ := nd.Meta(MetaRenumbered).(bool); renumbered {
		flags = append(flags, "Renumbered")
	}

	if oldIdx, newIdx, ok := OrderOf(nd); ok {
		flags = append(flags, fmt.Sprintf("Order %+d", newIdx-oldIdx))
	}

	if len(flags) == 0 {
		return nd.Name()
	}

	return nd.Name() + " - [" + strings.Join(flags, "], [") + "]"
}

// Stats counts the annotations of a diff tree.
type Stats struct {
	Added      int
	Removed    int
	MovedHere  int
	MovedTo    int
	Modified   int
	Reordered  int
	Renumbered int
	Unchanged  int
}

// Summary counts the annotated nodes of `result`.
func Summary(result *tree.Tree) Stats {
	stats := Stats{}
	for nd := range result.All() {
		switch ClassOf(nd) {
		case ClassAdded:
			stats.Added++
		case ClassRemoved:
			stats.Removed++
		case ClassMovedHere:
			stats.MovedHere++
		case ClassMovedTo:
			stats.MovedTo++
		}

		if IsModified(nd) {
			stats.Modified++
		}

		if _, _, ok := OrderOf(nd); ok {
			stats.Reordered++
		}

		if renumbered, _ := nd.Meta(MetaRenumbered).(bool); renumbered {
			stats.Renumbered++
		}

		if !IsChanged(nd) {
			stats.Unchanged++
		}
	}

	return stats
}

// Empty is true if the diff found no changes at all.
func (st Stats) Empty() bool {
	return st.Added+st.Removed+st.MovedHere+st.MovedTo+st.Modified+st.Reordered == 0
}

func (st Stats) String() string {
	return fmt.Sprintf(
		"added=%d removed=%d moved=%d modified=%d reordered=%d",
		st.Added, st.Removed, st.MovedHere, st.Modified, st.Reordered,
	)
}
