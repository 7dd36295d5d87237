package render

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Compare returns a line based diff of two renderings. Lines only in
// `expected` start with "- ", lines only in `got` with "+ ", common lines
// with two spaces. An empty string is returned when both are equal.
func Compare(expected, got string) string {
	if expected == got {
		return ""
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	out := strings.Builder{}
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+ "
		case diffpatch.DiffDelete:
			prefix = "- "
		}

		for _, line := range splitLines(d.Text) {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return out.String()
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
