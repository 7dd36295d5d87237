// Package render draws trees as indented text with connector lines:
//
//	Tree<"fixture">
//	├── A
//	│   ├── a1
//	│   ╰── a2
//	╰── B
//
// The glyphs are chosen by name, see Styles.
package render

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/sahib/arbor/tree"
)

// ReprFunc returns the text for a single node (without connectors).
type ReprFunc func(nd *tree.Node) string

// Colorizer may decorate a fully rendered line, e.g. with ANSI colors.
type Colorizer func(nd *tree.Node, line string) string

// Options tune the rendering.
type Options struct {
	// Style is a key of Styles or ListStyle. Defaults to DefaultStyle.
	Style string

	// Title is printed as first line of a tree rendering. The tree's
	// String() is used if empty. Ignored when rendering a node.
	Title string

	// NoTitle suppresses the title line; top level nodes are then
	// printed without connectors. ListStyle implies NoTitle.
	NoTitle bool

	// Repr defaults to Node.Name().
	Repr ReprFunc

	// Colorize is applied to every node line, if set.
	Colorize Colorizer
}

func (opts Options) repr(nd *tree.Node) string {
	if opts.Repr == nil {
		return nd.Name()
	}

	return opts.Repr(nd)
}

func (opts Options) line(nd *tree.Node, prefix string) string {
	line := prefix + opts.repr(nd)
	if opts.Colorize != nil {
		line = opts.Colorize(nd, line)
	}

	return line
}

func prefixOf(nd *tree.Node, style Style, lstrip int) string {
	b := strings.Builder{}

	depth := 0
	for _, parent := range nd.ParentList(false, false) {
		depth++
		if depth <= lstrip {
			continue
		}

		if parent.IsLastSibling() {
			b.WriteString(style.Blank)
		} else {
			b.WriteString(style.Pipe)
		}
	}

	if depth < lstrip {
		return b.String()
	}

	isLast := nd.IsLastSibling()
	switch {
	case nd.HasChildren() && isLast:
		b.WriteString(style.LastBranch)
	case nd.HasChildren():
		b.WriteString(style.Branch)
	case isLast:
		b.WriteString(style.LastLeaf)
	default:
		b.WriteString(style.Leaf)
	}

	return b.String()
}

// NodeLines renders `nd` and its descendants. If `addSelf` is false only
// the descendants are rendered. The hidden root itself is never rendered.
// The first rendered level has no connectors.
func NodeLines(nd *tree.Node, addSelf bool, opts Options) (iter.Seq[string], error) {
	lstrip := nd.Depth()
	if nd.IsRoot() {
		addSelf = false
	}

	if !addSelf {
		lstrip++
	}

	return nodeLines(nd, addSelf, lstrip, opts)
}

func nodeLines(nd *tree.Node, addSelf bool, lstrip int, opts Options) (iter.Seq[string], error) {
	if opts.Style == ListStyle {
		return func(yield func(string) bool) {
			for child := range nd.Iter(tree.PreOrder, addSelf) {
				if !yield(opts.line(child, "")) {
					return
				}
			}
		}, nil
	}

	style, err := StyleByName(opts.Style)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for child := range nd.Iter(tree.PreOrder, addSelf) {
			if !yield(opts.line(child, prefixOf(child, style, lstrip))) {
				return
			}
		}
	}, nil
}

// Lines renders the whole tree, optionally preceded by a title line.
func Lines(t *tree.Tree, opts Options) (iter.Seq[string], error) {
	hasTitle := !opts.NoTitle && opts.Style != ListStyle

	lstrip := 0
	if !hasTitle {
		lstrip = 1
	}

	nodes, err := nodeLines(t.Root(), false, lstrip, opts)
	if err != nil {
		return nil, err
	}

	if !hasTitle {
		return nodes, nil
	}

	title := opts.Title
	if title == "" {
		title = t.String()
	}

	return func(yield func(string) bool) {
		if !yield(title) {
			return
		}

		for line := range nodes {
			if !yield(line) {
				return
			}
		}
	}, nil
}

func join(lines iter.Seq[string]) string {
	b := strings.Builder{}
	for line := range lines {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(line)
	}

	return b.String()
}

// Format renders the whole tree as one string (without trailing newline).
func Format(t *tree.Tree, opts Options) (string, error) {
	lines, err := Lines(t, opts)
	if err != nil {
		return "", err
	}

	return join(lines), nil
}

// FormatNode is like Format, but for the subtree of `nd`.
func FormatNode(nd *tree.Node, addSelf bool, opts Options) (string, error) {
	lines, err := NodeLines(nd, addSelf, opts)
	if err != nil {
		return "", err
	}

	return join(lines), nil
}

// Print writes the rendering of `t` to `w`, one line at a time.
func Print(w io.Writer, t *tree.Tree, opts Options) error {
	lines, err := Lines(t, opts)
	if err != nil {
		return err
	}

	for line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
