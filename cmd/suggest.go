package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"github.com/xrash/smetrics"
)

// Suggestions below this similarity are not shown.
const minSimilarity = 0.6

// maxSuggestions caps the list printed for an unknown command.
const maxSuggestions = 3

// Names other tree tools use for the same thing.
var aliasHints = map[string]string{
	"show":    "print",
	"tree":    "print",
	"cat":     "print",
	"compare": "diff",
	"fsck":    "check",
	"verify":  "check",
	"info":    "stats",
	"grep":    "find",
	"search":  "find",
	"export":  "convert",
	"load":    "import",
}

type suggestion struct {
	name  string
	score float64
}

// similarity is 1 for equal strings and drops with every edit.
// Substitutions count double, so swapped letters score like two edits.
func similarity(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}

	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return float64(total-dist) / float64(total)
}

// resolveCommandPath walks the raw arguments of the root context and
// returns the valid command names before the bad one, together with
// the commands that were possible at that point.
func resolveCommandPath(ctx *cli.Context) ([]string, []cli.Command) {
	root := ctx
	for root.Parent() != nil {
		root = root.Parent()
	}

	args := root.Args()
	cmds := root.App.Commands
	path := []string{}

	// The last argument is the unknown command itself.
	for idx := 0; idx < len(args)-1; idx++ {
		var next *cli.Command
		for cmdIdx := range cmds {
			if cmds[cmdIdx].HasName(args[idx]) {
				next = &cmds[cmdIdx]
				break
			}
		}

		if next == nil || len(next.Subcommands) == 0 {
			break
		}

		path = append(path, next.Name)
		cmds = next.Subcommands
	}

	return path, cmds
}

func rankSuggestions(name string, cmds []cli.Command) []suggestion {
	best := make(map[string]float64)
	for _, cmd := range cmds {
		for _, candidate := range append([]string{cmd.Name}, cmd.Aliases...) {
			if score := similarity(name, candidate); score >= minSimilarity && score > best[cmd.Name] {
				best[cmd.Name] = score
			}
		}
	}

	if hint, ok := aliasHints[name]; ok {
		for _, cmd := range cmds {
			if cmd.Name == hint {
				best[hint] = 1
			}
		}
	}

	ranked := make([]suggestion, 0, len(best))
	for cmdName, score := range best {
		ranked = append(ranked, suggestion{name: cmdName, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}

	return ranked
}

func commandNotFound(ctx *cli.Context, name string) {
	w := ctx.App.Writer
	path, cmds := resolveCommandPath(ctx)

	if len(path) == 0 {
		fmt.Fprintf(w, "`%s` is not a valid command.", color.RedString(name))
	} else {
		fmt.Fprintf(
			w, "`%s` is not a valid subcommand of `%s`.",
			color.RedString(name),
			color.YellowString(strings.Join(path, " ")),
		)
	}

	ranked := rankSuggestions(name, cmds)
	switch len(ranked) {
	case 0:
		fmt.Fprintln(w)
	case 1:
		fmt.Fprintf(w, " Did you maybe mean `%s`?\n", color.GreenString(ranked[0].name))
	default:
		fmt.Fprintln(w, "\n\nDid you maybe mean one of those?")
		for _, s := range ranked {
			fmt.Fprintf(w, "  * %s\n", color.GreenString(s.name))
		}
	}
}
