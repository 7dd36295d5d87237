package cmd

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sahib/arbor/tree"
)

// tabWidth is the number of spaces a tab counts for when measuring indent.
const tabWidth = 4

var kindPattern = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)

type outlineLevel struct {
	indent int
	node   *tree.Node

	// Indent of the children seen so far, -1 if none.
	childIndent int
}

func indentOf(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return width
		}
	}

	return width
}

// ParseOutline builds a tree from indented text. Every non-empty line is
// a node, its indent decides the parent. Lines starting with "#" are
// comments. A line of the form "[kind] name" sets the node kind.
// Equal names become clones of each other.
func ParseOutline(r io.Reader, name string) (*tree.Tree, error) {
	t := tree.New(name)
	stack := []*outlineLevel{{indent: -1, node: t.Root(), childIndent: -1}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		indent := indentOf(line)
		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		top := stack[len(stack)-1]
		switch top.childIndent {
		case -1:
			top.childIndent = indent
		case indent:
		default:
			return nil, fmt.Errorf("line %d: indent does not match any previous level", lineNo)
		}

		kind := ""
		if match := kindPattern.FindStringSubmatch(text); match != nil {
			kind, text = match[1], match[2]
		}

		nd, err := top.node.AddKind(kind, text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNo, err)
		}

		stack = append(stack, &outlineLevel{indent: indent, node: nd, childIndent: -1})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return t, nil
}
