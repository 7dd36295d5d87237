package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sahib/arbor/codec"
	"github.com/sahib/arbor/diff"
	"github.com/sahib/arbor/render"
	"github.com/sahib/arbor/tree"
	"github.com/sahib/arbor/version"
	"github.com/urfave/cli"
)

func handleVersion(ctx *cli.Context) error {
	w := ctx.App.Writer
	fmt.Fprintf(w, "Version:        %s\n", version.String())
	fmt.Fprintf(w, "Snapshot format: %s\n", version.FormatVersion)

	if version.BuildTime != "" {
		fmt.Fprintf(w, "Built:          %s\n", version.BuildTime)
	}

	return nil
}

func handlePrint(ctx *cli.Context) error {
	loaded, err := loadTree(ctx, ctx.Args().First())
	if err != nil {
		return err
	}

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	t := loaded.tree
	if opts.Title == "" {
		opts.Title = t.String()
	}

	if filter := ctx.String("filter"); filter != "" {
		match, err := tree.MatchExpr(filter)
		if err != nil {
			return ExitCode{BadArgs, err.Error()}
		}

		if t, err = t.Filtered(tree.PredicateFromMatcher(match)); err != nil {
			return ExitCode{UnknownError, fmt.Sprintf("filter: %v", err)}
		}
	}

	if name := ctx.String("node"); name != "" {
		nd, err := findNode(t, name)
		if err != nil {
			return err
		}

		out, err := render.FormatNode(nd, true, opts)
		if err != nil {
			return ExitCode{BadArgs, err.Error()}
		}

		fmt.Fprintln(ctx.App.Writer, out)
		return nil
	}

	if err := render.Print(ctx.App.Writer, t, opts); err != nil {
		return ExitCode{UnknownError, err.Error()}
	}

	return nil
}

func handleDiff(ctx *cli.Context) error {
	oldTree, err := loadTree(ctx, ctx.Args().Get(0))
	if err != nil {
		return err
	}

	newTree, err := loadTree(ctx, ctx.Args().Get(1))
	if err != nil {
		return err
	}

	opts := diff.Options{
		Ordered: boolOption(ctx, "ordered", "diff.ordered"),
		Reduce:  boolOption(ctx, "reduce", "diff.reduce"),
	}

	if configFrom(ctx).Bool("diff.compare") && !ctx.Bool("no-compare") {
		opts.Compare = diff.CompareEqual
	}

	result, err := diff.Diff(oldTree.tree, newTree.tree, opts)
	if err != nil {
		return ExitCode{UnknownError, fmt.Sprintf("diff: %v", err)}
	}

	renderOpts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	if ctx.Bool("text") {
		// Compare the plain renderings instead of printing the diff tree.
		renderOpts.Colorize = nil
		oldText, err := render.Format(oldTree.tree, renderOpts)
		if err != nil {
			return ExitCode{BadArgs, err.Error()}
		}

		newText, err := render.Format(newTree.tree, renderOpts)
		if err != nil {
			return ExitCode{BadArgs, err.Error()}
		}

		fmt.Fprint(w, render.Compare(oldText, newText))
	} else {
		renderOpts.Repr = diff.NodeFormatter
		if err := render.Print(w, result, renderOpts); err != nil {
			return ExitCode{UnknownError, err.Error()}
		}
	}

	stats := diff.Summary(result)
	if ctx.Bool("stats") {
		printDiffStats(ctx, stats)
	}

	if ctx.Bool("exit-code") && !stats.Empty() {
		return ExitCode{DiffFound, ""}
	}

	return nil
}

func printDiffStats(ctx *cli.Context, stats diff.Stats) {
	w := ctx.App.Writer
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d\n", color.GreenString("Added:     "), stats.Added)
	fmt.Fprintf(w, "%s %d\n", color.RedString("Removed:   "), stats.Removed)
	fmt.Fprintf(w, "%s %d\n", color.CyanString("Moved:     "), stats.MovedHere)
	fmt.Fprintf(w, "%s %d\n", color.MagentaString("Modified:  "), stats.Modified)
	fmt.Fprintf(w, "%s %d\n", color.YellowString("Reordered: "), stats.Reordered)
	fmt.Fprintf(w, "%s %d\n", "Unchanged: ", stats.Unchanged)
}

func handleStats(ctx *cli.Context) error {
	path := ctx.Args().First()
	loaded, err := loadTree(ctx, path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return ExitCode{BadArgs, err.Error()}
	}

	t := loaded.tree
	clones, leaves := 0, 0
	kinds := make(map[string]int)
	for nd := range t.All() {
		if nd.IsClone() {
			clones++
		}

		if nd.IsLeaf() {
			leaves++
		}

		if nd.Kind() != "" {
			kinds[nd.Kind()]++
		}
	}

	w := ctx.App.Writer
	row := func(key string, value interface{}) {
		fmt.Fprintf(w, "%s %v\n", color.GreenString("%-10s", key+":"), value)
	}

	row("Name", t.Name())
	row("Generator", loaded.header[codec.HeaderGenerator])
	row("Format", loaded.header[codec.HeaderFormatVersion])
	row("Checksum", loaded.header[codec.HeaderChecksum])
	row("Size", fmt.Sprintf("%s (%s)", humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime())))
	row("Nodes", humanize.Comma(int64(t.Len())))
	row("Unique", humanize.Comma(int64(t.CountUnique())))
	row("Clones", humanize.Comma(int64(clones)))
	row("Leaves", humanize.Comma(int64(leaves)))
	row("Top nodes", len(t.TopNodes()))
	row("Height", t.Height())

	if len(kinds) > 0 {
		names := make([]string, 0, len(kinds))
		for kind := range kinds {
			names = append(names, kind)
		}

		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, kind := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, kinds[kind]))
		}

		row("Kinds", strings.Join(parts, " "))
	}

	userKeys := []string{}
	for key := range loaded.header {
		if !strings.HasPrefix(key, "$") {
			userKeys = append(userKeys, key)
		}
	}

	sort.Strings(userKeys)
	for _, key := range userKeys {
		row(key, loaded.header[key])
	}

	return nil
}

func handleConvert(ctx *cli.Context) error {
	loaded, err := loadTree(ctx, ctx.Args().Get(0))
	if err != nil {
		return err
	}

	opts, err := saveOptions(ctx)
	if err != nil {
		return err
	}

	opts.Meta = map[string]interface{}{}
	for key, value := range loaded.header {
		opts.Meta[key] = value
	}

	if name := ctx.String("name"); name != "" {
		loaded.tree.SetName(name)
	}

	return saveTree(ctx, ctx.Args().Get(1), loaded.tree, opts)
}

func handleCheck(ctx *cli.Context) error {
	failed := 0
	w := ctx.App.Writer

	for _, path := range ctx.Args() {
		loaded, err := loadTree(ctx, path)
		if err == nil {
			err = loaded.tree.SelfCheck()
		}

		if err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", checkmarkify(false), path, err)
			continue
		}

		fmt.Fprintf(w, "%s %s (%d nodes)\n", checkmarkify(true), path, loaded.tree.Len())
	}

	if failed > 0 {
		return ExitCode{CheckFailed, fmt.Sprintf("%d of %d files failed the check", failed, ctx.NArg())}
	}

	return nil
}

func handleFind(ctx *cli.Context) error {
	loaded, err := loadTree(ctx, ctx.Args().Get(0))
	if err != nil {
		return err
	}

	pattern := ctx.Args().Get(1)

	var match tree.Matcher
	if ctx.Bool("expr") {
		match, err = tree.MatchExpr(pattern)
	} else {
		match, err = tree.MatchRegexp(pattern)
	}

	if err != nil {
		return ExitCode{BadArgs, err.Error()}
	}

	if kind := ctx.String("kind"); kind != "" {
		byName := match
		match = func(nd *tree.Node) bool {
			return nd.Kind() == kind && byName(nd)
		}
	}

	found := loaded.tree.FindAll(match, ctx.Int("max"))
	for _, nd := range found {
		fmt.Fprintln(ctx.App.Writer, nd.Path("/"))
	}

	if len(found) == 0 {
		return ExitCode{DiffFound, ""}
	}

	return nil
}

func handleImport(ctx *cli.Context) error {
	src, dst := ctx.Args().Get(0), ctx.Args().Get(1)

	var t *tree.Tree
	var err error
	if src == "-" {
		t, err = ParseOutline(os.Stdin, "stdin")
	} else {
		var fd *os.File
		fd, err = os.Open(src)
		if err != nil {
			return ExitCode{BadArgs, err.Error()}
		}

		defer fd.Close()
		t, err = ParseOutline(fd, src)
	}

	if err != nil {
		return ExitCode{BadArgs, err.Error()}
	}

	if name := ctx.String("name"); name != "" {
		t.SetName(name)
	}

	opts, err := saveOptions(ctx)
	if err != nil {
		return err
	}

	return saveTree(ctx, dst, t, opts)
}

func styleSample() (*tree.Tree, error) {
	t := tree.New("sample")
	a, err := t.Add("a")
	if err != nil {
		return nil, err
	}

	if _, err := a.Add("a1"); err != nil {
		return nil, err
	}

	if _, err := a.Add("a2"); err != nil {
		return nil, err
	}

	_, err = t.Add("b")
	return t, err
}

func handleStyles(ctx *cli.Context) error {
	sample, err := styleSample()
	if err != nil {
		return err
	}

	for _, name := range render.StyleNames() {
		out, err := render.Format(sample, render.Options{Style: name, NoTitle: true})
		if err != nil {
			return ExitCode{UnknownError, err.Error()}
		}

		fmt.Fprintln(ctx.App.Writer, color.YellowString(name)+":")
		fmt.Fprintln(ctx.App.Writer, indent(out, "    "))
	}

	return nil
}
