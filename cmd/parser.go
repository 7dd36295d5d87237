package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sahib/arbor/defaults"
	arborlog "github.com/sahib/arbor/util/log"
	"github.com/sahib/arbor/version"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func formatGroup(category string) string {
	return strings.ToUpper(category) + " COMMANDS"
}

func setupLogging(ctx *cli.Context) error {
	cfg := configFrom(ctx)

	levelName := cfg.String("log.level")
	if ctx.GlobalIsSet("log-level") {
		levelName = ctx.GlobalString("log-level")
	}

	if ctx.GlobalBool("verbose") {
		levelName = "debug"
	}

	level, err := log.ParseLevel(levelName)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("bad log level: %v", err)}
	}

	log.SetOutput(ctx.App.ErrWriter)
	log.SetLevel(level)
	log.SetFormatter(&arborlog.FancyLogFormatter{
		UseColors:  ctx.App.ErrWriter == os.Stderr && !ctx.GlobalBool("no-color"),
		ShowCaller: cfg.Bool("log.show_caller"),
	})

	return nil
}

func before(ctx *cli.Context) error {
	path := ctx.GlobalString("config")
	cfg, err := defaults.OpenConfigOrDefaults(path)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("failed to open config %s: %v", path, err)}
	}

	ctx.App.Metadata[metaConfigKey] = cfg
	decideColors(ctx, cfg)
	return setupLogging(ctx)
}

// Commandline definition //
////////////////////////////

func newApp(out, errOut io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "arbor"
	app.Usage = "Inspect, compare and convert tree snapshots"
	app.EnableBashCompletion = true
	app.Version = version.String()
	app.Writer = out
	app.ErrWriter = errOut
	app.Metadata = map[string]interface{}{}
	app.CommandNotFound = commandNotFound
	app.Before = before

	// Groups:
	viewGroup := formatGroup("view")
	fileGroup := formatGroup("snapshot")
	miscGroup := formatGroup("misc")

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "Path of the config file",
			Value:  defaults.DefaultPath,
			EnvVar: "ARBOR_CONFIG",
		},
		cli.BoolFlag{
			Name:  "verbose,V",
			Usage: "Print what is happening to stderr",
		},
		cli.StringFlag{
			Name:  "style",
			Usage: "Connector style used for rendering trees",
		},
		cli.BoolFlag{
			Name:  "color",
			Usage: "Always use colors",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "Never use colors",
		},
		cli.BoolFlag{
			Name:  "no-verify",
			Usage: "Do not verify the checksum of loaded snapshots",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Minimum level of log messages",
			EnvVar: "ARBOR_LOG_LEVEL",
		},
	}

	app.Commands = TranslateHelp([]cli.Command{
		{
			Name:     "print",
			Aliases:  []string{"p"},
			Category: viewGroup,
			Action:   withArgCheck(needAtLeast(1), handlePrint),
		}, {
			Name:     "diff",
			Aliases:  []string{"d"},
			Category: viewGroup,
			Action:   withArgCheck(needAtLeast(2), handleDiff),
		}, {
			Name:     "find",
			Category: viewGroup,
			Action:   withArgCheck(needAtLeast(2), handleFind),
		}, {
			Name:     "stats",
			Category: viewGroup,
			Action:   withArgCheck(needAtLeast(1), handleStats),
		}, {
			Name:     "styles",
			Category: viewGroup,
			Action:   handleStyles,
		}, {
			Name:     "convert",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(2), handleConvert),
		}, {
			Name:     "import",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(2), handleImport),
		}, {
			Name:     "check",
			Category: fileGroup,
			Action:   withArgCheck(needAtLeast(1), handleCheck),
		}, {
			Name:     "config",
			Aliases:  []string{"c"},
			Category: miscGroup,
			Action:   handleConfigList,
			Subcommands: []cli.Command{
				{
					Name:    "list",
					Aliases: []string{"ls"},
					Action:  handleConfigList,
				}, {
					Name:   "get",
					Action: withArgCheck(needAtLeast(1), handleConfigGet),
				}, {
					Name:   "set",
					Action: withArgCheck(needAtLeast(2), handleConfigSet),
				},
			},
		}, {
			Name:     "bug",
			Category: miscGroup,
			Action:   handleBugReport,
		}, {
			Name:     "version",
			Category: miscGroup,
			Action:   handleVersion,
		},
	})

	return app
}

func exitCodeOf(app *cli.App, err error) int {
	if err == nil {
		return Success
	}

	if code, ok := err.(ExitCode); ok {
		if code.Message != "" {
			fmt.Fprintln(app.ErrWriter, code.Message)
		}

		return code.Code
	}

	fmt.Fprintln(app.ErrWriter, err)
	return UnknownError
}

func runApp(app *cli.App, args []string) int {
	return exitCodeOf(app, app.Run(args))
}

// RunCmdline starts the arbor commandline tool.
func RunCmdline(args []string) int {
	return runApp(newApp(os.Stdout, os.Stderr), args)
}
