package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

// Help holds the documentation of a single command.
type Help struct {
	Usage       string
	ArgsUsage   string
	Description string
	Flags       []cli.Flag
}

func die(msg string) {
	// be really pedantic when help is missing.
	panic(msg)
}

var saveFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "format,f",
		Usage: "Encoding of the written snapshot (json or yaml)",
	},
	cli.StringFlag{
		Name:  "compress,c",
		Usage: "Compression of the written snapshot (none, snappy or lz4)",
	},
	cli.BoolFlag{
		Name:  "no-key-map",
		Usage: "Write the long key names into records",
	},
	cli.StringFlag{
		Name:  "name,n",
		Usage: "Set the name of the written tree",
	},
}

// HelpTexts maps the dotted command path to its documentation.
var HelpTexts = map[string]Help{
	"print": {
		Usage:     "Render a snapshot as tree",
		ArgsUsage: "<snapshot>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "node",
				Usage: "Only print the subtree of the first node with this name",
			},
			cli.StringFlag{
				Name:  "filter",
				Usage: "Only print nodes matching this expression (and their parents)",
			},
			cli.BoolFlag{
				Name:  "no-title",
				Usage: "Do not print the tree name as first line",
			},
		},
		Description: `Print all nodes of the snapshot, connected by lines.

   The connector glyphs are selected by --style (see »arbor styles«). The
   expressions given to --filter can refer to these fields of a node:

     Name, Kind, Identity, Key, Depth, Index, Children, IsLeaf, IsClone, Meta

EXAMPLES:

   $ arbor print tree.json
   $ arbor --style ascii32 print --node "src" tree.json
   $ arbor print --filter 'Name startsWith "a" && Depth > 1' tree.json`,
	},
	"diff": {
		Usage:     "Show the differences between two snapshots",
		ArgsUsage: "<old-snapshot> <new-snapshot>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "ordered,o",
				Usage: "Also report nodes that changed their position",
			},
			cli.BoolFlag{
				Name:  "reduce,r",
				Usage: "Only print changed nodes and their parents",
			},
			cli.BoolFlag{
				Name:  "no-compare",
				Usage: "Do not check matched nodes for modified payloads",
			},
			cli.BoolFlag{
				Name:  "stats,s",
				Usage: "Print a summary of the changes",
			},
			cli.BoolFlag{
				Name:  "text,t",
				Usage: "Print a line diff of both renderings instead",
			},
			cli.BoolFlag{
				Name:  "exit-code,e",
				Usage: "Exit with 1 if the trees differ",
			},
		},
		Description: `Compare two trees and print the union of both, annotated with the changes.

   Nodes are matched by their identity below the same parent. Each node of the
   output is either unchanged or marked as one of:

     Added, Removed, Moved here, Moved away, Modified, Renumbered, Order ±N

   A moved node is shown twice: at its old place (Moved away) and at its new
   place (Moved here). Use --reduce to hide unchanged branches.`,
	},
	"stats": {
		Usage:       "Show information about a snapshot",
		ArgsUsage:   "<snapshot>",
		Description: "Print the header and node statistics of a snapshot.",
	},
	"convert": {
		Usage:     "Write a snapshot in another format",
		ArgsUsage: "<input> <output>",
		Flags:     saveFlags,
		Description: `Load a snapshot and write it again, for example with another
   encoding or compression. Custom header values are kept.

EXAMPLES:

   $ arbor convert --format yaml --compress none tree.json tree.yml
   $ arbor convert -c lz4 tree.yml tree.json.lz4`,
	},
	"check": {
		Usage:     "Verify snapshots",
		ArgsUsage: "<snapshot> [<snapshot> ...]",
		Description: `Load every snapshot, verify its checksum and run an internal
   consistency check on the loaded tree.`,
	},
	"find": {
		Usage:     "Print the path of matching nodes",
		ArgsUsage: "<snapshot> <pattern>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "expr,x",
				Usage: "Treat <pattern> as expression instead of regular expression",
			},
			cli.StringFlag{
				Name:  "kind,k",
				Usage: "Only match nodes of this kind",
			},
			cli.IntFlag{
				Name:  "max,m",
				Usage: "Stop after this many matches (0 for all)",
			},
		},
		Description: `Search a snapshot for nodes whose name fully matches <pattern>.
   Exits with 1 if nothing was found.`,
	},
	"import": {
		Usage:     "Create a snapshot from an indented outline",
		ArgsUsage: "<outline|-> <output>",
		Flags:     saveFlags,
		Description: `Read a text file where every line is a node and the indentation
   defines the hierarchy. Lines starting with # are ignored, "[kind] name"
   sets the kind of a node. Nodes with the same name become clones.

EXAMPLE OUTLINE:

   fruits
     [tropical] banana
     apple
   favorites
     apple`,
	},
	"styles": {
		Usage:       "List the available connector styles",
		Description: "Print a small example tree in every connector style.",
	},
	"config": {
		Usage:       "View and modify config options",
		ArgsUsage:   "[list|get|set]",
		Description: "Handle the config of the arbor tool (~/.arbor.yml by default)",
	},
	"config.list": {
		Usage:       "Show all config options",
		Description: "Show all config options, their current value and documentation",
	},
	"config.get": {
		Usage:       "Get a specific config option",
		ArgsUsage:   "<key>",
		Description: "Print the current value of <key>",
	},
	"config.set": {
		Usage:       "Set a specific config option",
		ArgsUsage:   "<key> <value>",
		Description: "Set the value of <key> and write the config file",
	},
	"bug": {
		Usage: "Print a template for bug reports",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "stdout,s",
				Usage: "Print the report to stdout instead of opening the browser",
			},
		},
		Description: "Collect system information and open the issue tracker with a prefilled report.",
	},
	"version": {
		Usage:       "Print the version of arbor",
		Description: "Print the program and snapshot format version",
	},
}

func injectHelp(cmd *cli.Command, path string) {
	help, ok := HelpTexts[path]
	if !ok {
		die(fmt.Sprintf("bug: no such help entry: %v", path))
	}

	cmd.Usage = help.Usage
	cmd.ArgsUsage = help.ArgsUsage
	cmd.Description = help.Description
	cmd.Flags = help.Flags
}

func translateHelp(cmds []cli.Command, prefix []string) {
	for idx := range cmds {
		path := append(append([]string{}, prefix...), cmds[idx].Name)
		injectHelp(&cmds[idx], strings.Join(path, "."))
		translateHelp(cmds[idx].Subcommands, path)
	}
}

// TranslateHelp fills in the usage and description for each command.
// This is separated from the command definition to make things more readable,
// and separate logic from the (lengthy) documentation.
func TranslateHelp(cmds []cli.Command) []cli.Command {
	translateHelp(cmds, nil)
	return cmds
}
