package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
	e "github.com/pkg/errors"
	"github.com/sahib/arbor/codec"
	"github.com/sahib/arbor/render"
	"github.com/sahib/arbor/tree"
	"github.com/sahib/arbor/util/compression"
	"github.com/sahib/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const metaConfigKey = "config"

// ExitCode is an error that maps the error interface to a specific error
// message and a unix exit code
type ExitCode struct {
	Code    int
	Message string
}

func (err ExitCode) Error() string {
	return err.Message
}

func yesify(val bool) string {
	if val {
		return color.GreenString("yes")
	}

	return color.RedString("no")
}

func checkmarkify(val bool) string {
	if val {
		return color.GreenString("✔")
	}

	return color.RedString("✘")
}

// printError simply prints a nicely formatted error to stderr.
func printError(ctx *cli.Context, msg string) {
	fmt.Fprintln(ctx.App.ErrWriter, color.RedString("*** ")+msg)
}

type checkFunc func(ctx *cli.Context) int

func withArgCheck(checker checkFunc, handler cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if code := checker(ctx); code != Success {
			return ExitCode{code, "bad arguments"}
		}

		return handler(ctx)
	}
}

func needAtLeast(min int) checkFunc {
	return func(ctx *cli.Context) int {
		if ctx.NArg() < min {
			if min == 1 {
				log.Warningf("Need at least %d argument.", min)
			} else {
				log.Warningf("Need at least %d arguments.", min)
			}

			if err := cli.ShowCommandHelp(ctx, ctx.Command.Name); err != nil {
				log.Warningf("Failed to display --help: %v", err)
			}

			return BadArgs
		}

		return Success
	}
}

////////////////////////
// CONFIG AND OPTIONS //
////////////////////////

func configFrom(ctx *cli.Context) *config.Config {
	cfg, _ := ctx.App.Metadata[metaConfigKey].(*config.Config)
	return cfg
}

// stringOption prefers a set command flag over the config value.
func stringOption(ctx *cli.Context, flag, key string) string {
	if ctx.IsSet(flag) {
		return ctx.String(flag)
	}

	if ctx.GlobalIsSet(flag) {
		return ctx.GlobalString(flag)
	}

	return configFrom(ctx).String(key)
}

// boolOption is true if the flag is set or the config says so.
func boolOption(ctx *cli.Context, flag, key string) bool {
	return ctx.Bool(flag) || configFrom(ctx).Bool(key)
}

// decideColors configures fatih/color for the whole process.
func decideColors(ctx *cli.Context, cfg *config.Config) {
	mode := cfg.String("render.color")
	switch {
	case ctx.GlobalBool("no-color"):
		mode = "never"
	case ctx.GlobalBool("color"):
		mode = "always"
	}

	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		fd := os.Stdout.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
}

func renderOptions(ctx *cli.Context) (render.Options, error) {
	opts := render.Options{
		Style:   stringOption(ctx, "style", "render.style"),
		NoTitle: ctx.Bool("no-title") || !configFrom(ctx).Bool("render.title"),
	}

	if opts.Style != render.ListStyle {
		if _, err := render.StyleByName(opts.Style); err != nil {
			return opts, ExitCode{BadArgs, err.Error()}
		}
	}

	if !color.NoColor {
		opts.Colorize = render.DiffColors
	}

	return opts, nil
}

func saveOptions(ctx *cli.Context) (codec.SaveOptions, error) {
	opts := codec.SaveOptions{
		NoKeyMap: ctx.Bool("no-key-map") || !configFrom(ctx).Bool("codec.key_map"),
	}

	format, err := codec.FormatFromString(stringOption(ctx, "format", "codec.format"))
	if err != nil {
		return opts, ExitCode{BadArgs, err.Error()}
	}

	algo, err := compression.AlgoFromString(stringOption(ctx, "compress", "codec.compression"))
	if err != nil {
		return opts, ExitCode{BadArgs, err.Error()}
	}

	opts.Format = format
	opts.Compression = algo
	return opts, nil
}

///////////////////
// FILE HANDLING //
///////////////////

type loadedTree struct {
	tree   *tree.Tree
	header codec.Header
	path   string
}

func loadTree(ctx *cli.Context, path string) (*loadedTree, error) {
	opts := codec.LoadOptions{
		SkipVerify: ctx.GlobalBool("no-verify") || !configFrom(ctx).Bool("codec.verify"),
	}

	t, header, err := codec.LoadFile(path, opts)
	if err != nil {
		if os.IsNotExist(e.Cause(err)) {
			return nil, ExitCode{BadArgs, fmt.Sprintf("no such file: %s", path)}
		}

		return nil, ExitCode{BadSnapshot, fmt.Sprintf("failed to load %s: %v", path, err)}
	}

	logVerbose(ctx, "loaded %s with %d nodes", path, t.Len())
	return &loadedTree{tree: t, header: header, path: path}, nil
}

func saveTree(ctx *cli.Context, path string, t *tree.Tree, opts codec.SaveOptions) error {
	if dir := filepath.Dir(path); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return ExitCode{BadArgs, fmt.Sprintf("cannot write to %s: %v", path, err)}
		}
	}

	if err := codec.SaveFile(context.Background(), path, t, opts); err != nil {
		return ExitCode{UnknownError, fmt.Sprintf("failed to save %s: %v", path, err)}
	}

	logVerbose(ctx, "wrote %d nodes to %s (%s, %s)", t.Len(), path, opts.Format, opts.Compression)
	return nil
}

// findNode resolves a node by payload. Of several clones the first
// registered one wins.
func findNode(t *tree.Tree, name string) (*tree.Node, error) {
	nd := t.FindFirstByPayload(name)
	if nd == nil {
		return nil, ExitCode{BadArgs, fmt.Sprintf("no node named %q", name)}
	}

	return nd, nil
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for idx, line := range lines {
		lines[idx] = prefix + line
	}

	return strings.Join(lines, "\n")
}
