package render

import (
	"fmt"
	"sort"
	"strings"
)

// Style is the set of connector glyphs drawn in front of each node.
type Style struct {
	// Blank continues the line of an ancestor that was the last sibling.
	Blank string
	// Pipe continues the line of an ancestor that has more siblings below.
	Pipe string
	// LastLeaf and Leaf connect a childless node.
	LastLeaf, Leaf string
	// LastBranch and Branch connect a node that has children.
	// They equal LastLeaf and Leaf except for the compact styles.
	LastBranch, Branch string
}

const (
	// DefaultStyle is used when Options.Style is empty.
	DefaultStyle = "round43"

	// ListStyle prints one node per line without any connectors.
	ListStyle = "list"
)

func simple(blank, pipe, last, mid string) Style {
	return Style{
		Blank:      blank,
		Pipe:       pipe,
		LastLeaf:   last,
		Leaf:       mid,
		LastBranch: last,
		Branch:     mid,
	}
}

func compact(blank, pipe, last, mid, lastBranch, branch string) Style {
	return Style{
		Blank:      blank,
		Pipe:       pipe,
		LastLeaf:   last,
		Leaf:       mid,
		LastBranch: lastBranch,
		Branch:     branch,
	}
}

// Styles maps style names to their glyphs. The digits in the name are the
// indent width and the connector width.
var Styles = map[string]Style{
	"space1": simple(" ", " ", " ", " "),
	"space2": simple("  ", "  ", "  ", "  "),
	"space3": simple("   ", "   ", "   ", "   "),
	"space4": simple("    ", " |  ", "    ", "    "),

	"ascii11": simple(" ", "|", "`", "-"),
	"ascii21": simple("  ", "| ", "` ", "- "),
	"ascii22": simple("  ", "| ", "`-", "+-"),
	"ascii32": simple("   ", "|  ", "`- ", "+- "),
	"ascii42": simple("    ", " |  ", " `- ", " +- "),
	"ascii43": simple("    ", "|   ", "`-- ", "+-- "),

	"lines11":  simple(" ", "│", "└", "├"),
	"lines21":  simple("  ", "│ ", "└ ", "├ "),
	"lines22":  simple("  ", "│ ", "└─", "├─"),
	"lines32":  simple("   ", "│  ", "└─ ", "├─ "),
	"lines42":  simple("    ", " │  ", " └─ ", " ├─ "),
	"lines43":  simple("    ", "│   ", "└── ", "├── "),
	"lines43r": simple("    ", " │  ", " └──", " ├──"),

	"round11":  simple(" ", "│", "╰", "├"),
	"round21":  simple("  ", "│ ", "╰ ", "├ "),
	"round22":  simple("  ", "│ ", "╰─", "├─"),
	"round32":  simple("   ", "│  ", "╰─ ", "├─ "),
	"round42":  simple("    ", " │  ", " ╰─ ", " ├─ "),
	"round43":  simple("    ", "│   ", "╰── ", "├── "),
	"round43r": simple("    ", " │  ", " ╰──", " ├──"),

	"lines32c": compact(" ", "│", "└─ ", "├─ ", "└┬ ", "├┬ "),
	"lines43c": compact("  ", "│ ", "└── ", "├── ", "└─┬ ", "├─┬ "),
	"round32c": compact(" ", "│", "╰─ ", "├─ ", "╰┬ ", "├┬ "),
	"round43c": compact("  ", "│ ", "╰── ", "├── ", "╰─┬ ", "├─┬ "),
}

// StyleNames returns the sorted names of all styles, including ListStyle.
func StyleNames() []string {
	names := []string{ListStyle}
	for name := range Styles {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// StyleByName looks up a style. An empty name yields DefaultStyle.
func StyleByName(name string) (Style, error) {
	if name == "" {
		name = DefaultStyle
	}

	style, ok := Styles[name]
	if !ok {
		return Style{}, fmt.Errorf(
			"invalid style %q; expected one of %s",
			name,
			strings.Join(StyleNames(), "|"),
		)
	}

	return style, nil
}

// IsValidStyle can be used as config validator.
func IsValidStyle(name string) bool {
	if name == ListStyle {
		return true
	}

	_, err := StyleByName(name)
	return err == nil
}
