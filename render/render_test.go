package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/sahib/arbor/diff"
	"github.com/sahib/arbor/tree"
	"github.com/stretchr/testify/require"
)

func requireRendered(t *testing.T, expected, got string) {
	if diff := Compare(expected, got); diff != "" {
		t.Fatalf("rendering differs:\n%s", diff)
	}
}

func TestFormatStyles(t *testing.T) {
	fixture := tree.NewFixture(t, "fixture", false)

	tcs := []struct {
		name     string
		opts     Options
		expected string
	}{
		{
			name: "default",
			opts: Options{},
			expected: `Tree<"fixture">
├── A
│   ├── a1
│   │   ├── a11
│   │   ╰── a12
│   ╰── a2
╰── B
    ╰── b1
        ╰── b11`,
		}, {
			name: "ascii-no-title",
			opts: Options{Style: "ascii32", NoTitle: true},
			expected: "A\n" +
				"+- a1\n" +
				"|  +- a11\n" +
				"|  `- a12\n" +
				"`- a2\n" +
				"B\n" +
				"`- b1\n" +
				"   `- b11",
		}, {
			name: "compact",
			opts: Options{Style: "round43c", Title: "my tree"},
			expected: `my tree
├─┬ A
│ ├─┬ a1
│ │ ├── a11
│ │ ╰── a12
│ ╰── a2
╰─┬ B
  ╰─┬ b1
    ╰── b11`,
		}, {
			name:     "list",
			opts:     Options{Style: ListStyle},
			expected: "A\na1\na11\na12\na2\nB\nb1\nb11",
		}, {
			name: "repr-and-colorize",
			opts: Options{
				Style:   "lines21",
				NoTitle: true,
				Repr: func(nd *tree.Node) string {
					return strings.ToUpper(nd.Name())
				},
				Colorize: func(nd *tree.Node, line string) string {
					if nd.IsLeaf() {
						return line + " *"
					}

					return line
				},
			},
			expected: "A\n" +
				"├ A1\n" +
				"│ ├ A11 *\n" +
				"│ └ A12 *\n" +
				"└ A2 *\n" +
				"B\n" +
				"└ B1\n" +
				"  └ B11 *",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(fixture, tc.opts)
			require.Nil(t, err)
			requireRendered(t, tc.expected, got)
		})
	}
}

func TestFormatNode(t *testing.T) {
	fixture := tree.NewFixture(t, "fixture", false)
	a := tree.MustGet(t, fixture, "A")
	a1 := tree.MustGet(t, fixture, "a1")

	got, err := FormatNode(a1, true, Options{Style: "lines32"})
	require.Nil(t, err)
	requireRendered(t, "a1\n├─ a11\n└─ a12", got)

	got, err = FormatNode(a, false, Options{Style: "lines32"})
	require.Nil(t, err)
	requireRendered(t, "a1\n├─ a11\n└─ a12\na2", got)

	// The hidden root is never rendered itself.
	got, err = FormatNode(fixture.Root(), true, Options{Style: ListStyle})
	require.Nil(t, err)
	require.Equal(t, "A\na1\na11\na12\na2\nB\nb1\nb11", got)
}

func TestFormatEmpty(t *testing.T) {
	got, err := Format(tree.New("empty"), Options{})
	require.Nil(t, err)
	require.Equal(t, `Tree<"empty">`, got)

	got, err = Format(tree.New("empty"), Options{NoTitle: true})
	require.Nil(t, err)
	require.Equal(t, "", got)
}

func TestPrint(t *testing.T) {
	fixture := tree.NewFixture(t, "fixture", false)
	buf := &bytes.Buffer{}
	require.Nil(t, Print(buf, fixture, Options{Style: ListStyle}))
	require.Equal(t, "A\na1\na11\na12\na2\nB\nb1\nb11\n", buf.String())

	err := Print(buf, fixture, Options{Style: "fancy"})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "round43")
}

func TestStyles(t *testing.T) {
	names := StyleNames()
	require.Contains(t, names, ListStyle)
	require.Contains(t, names, DefaultStyle)
	require.Len(t, names, len(Styles)+1)

	for name, style := range Styles {
		require.True(t, IsValidStyle(name))

		// All parts of one style have the same width, except the compact
		// styles whose connectors are wider than the indent.
		width := len([]rune(style.Blank))
		require.Equal(t, width, len([]rune(style.Pipe)), name)
		require.Equal(t, len([]rune(style.Leaf)), len([]rune(style.LastLeaf)), name)
		require.Equal(t, len([]rune(style.Branch)), len([]rune(style.LastBranch)), name)
	}

	require.True(t, IsValidStyle(ListStyle))
	require.True(t, IsValidStyle(""))
	require.False(t, IsValidStyle("nope"))
}

func TestColorizers(t *testing.T) {
	oldNoColor := color.NoColor
	color.NoColor = false
	defer func() {
		color.NoColor = oldNoColor
	}()

	oldTree := tree.New("old")
	tree.MustAdd(t, oldTree.Root(), "a")
	tree.MustAdd(t, oldTree.Root(), "gone")

	newTree := tree.New("new")
	tree.MustAdd(t, newTree.Root(), "a")
	tree.MustAdd(t, newTree.Root(), "b")

	result, err := diff.Diff(oldTree, newTree, diff.Options{})
	require.Nil(t, err)

	got, err := Format(result, Options{Style: ListStyle, Colorize: DiffColors})
	require.Nil(t, err)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "a", lines[0])
	// Added nodes take their index from the new tree.
	require.Equal(t, color.New(color.FgGreen).Sprint("b"), lines[1])
	require.Equal(t, color.New(color.FgRed).Sprint("gone"), lines[2])

	bold := Chain(nil, Highlight(tree.MatchPayload("a"), color.Bold))
	got, err = Format(result, Options{Style: ListStyle, NoTitle: true, Colorize: bold})
	require.Nil(t, err)
	require.True(t, strings.HasPrefix(got, color.New(color.Bold).Sprint("a")+"\n"))
}

func TestCompare(t *testing.T) {
	require.Empty(t, Compare("a\nb", "a\nb"))

	out := Compare("a\nb\nc", "a\nx\nc")
	require.Contains(t, out, "  a\n")
	require.Contains(t, out, "- b\n")
	require.Contains(t, out, "+ x\n")
	require.Contains(t, out, "  c\n")
}
