package render

import (
	"github.com/fatih/color"
	"github.com/sahib/arbor/diff"
	"github.com/sahib/arbor/tree"
)

var classColors = map[diff.Classification]*color.Color{
	diff.ClassAdded:     color.New(color.FgGreen),
	diff.ClassRemoved:   color.New(color.FgRed),
	diff.ClassMovedHere: color.New(color.FgCyan),
	diff.ClassMovedTo:   color.New(color.FgYellow),
}

var modifiedColor = color.New(color.FgMagenta)

// DiffColors colors the lines of a diff result by the node's classification.
// Unclassified but modified nodes are magenta.
func DiffColors(nd *tree.Node, line string) string {
	if c, ok := classColors[diff.ClassOf(nd)]; ok {
		return c.Sprint(line)
	}

	if diff.IsModified(nd) {
		return modifiedColor.Sprint(line)
	}

	return line
}

// Highlight returns a Colorizer that paints the lines of matching nodes.
func Highlight(match tree.Matcher, attrs ...color.Attribute) Colorizer {
	c := color.New(attrs...)
	return func(nd *tree.Node, line string) string {
		if match(nd) {
			return c.Sprint(line)
		}

		return line
	}
}

// Chain applies several colorizers in order; nil entries are skipped.
func Chain(colorizers ...Colorizer) Colorizer {
	return func(nd *tree.Node, line string) string {
		for _, fn := range colorizers {
			if fn != nil {
				line = fn(nd, line)
			}
		}

		return line
	}
}
