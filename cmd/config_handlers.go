package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sahib/arbor/defaults"
	"github.com/sahib/config"
	"github.com/urfave/cli"
)

func configPath(ctx *cli.Context) (string, error) {
	path := ctx.GlobalString("config")
	if path == "" {
		path = defaults.DefaultPath
	}

	return homedir.Expand(path)
}

func saveConfig(path string, cfg *config.Config) error {
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := cfg.Save(config.NewYamlEncoder(fd)); err != nil {
		fd.Close()
		return err
	}

	return fd.Close()
}

func printConfigDocEntry(ctx *cli.Context, cfg *config.Config, key string) {
	entry := cfg.GetDefault(key)
	val := cfg.Uncast(key)
	if val == "" {
		val = color.YellowString("(empty)")
	}

	defaultMarker := ""
	if cfg.IsDefault(key) {
		defaultMarker = color.CyanString("(default)")
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "%s: %v %s\n", color.GreenString(key), val, defaultMarker)

	defaultVal := fmt.Sprintf("%v", entry.Default)
	if defaultVal == "" {
		defaultVal = color.YellowString("(empty)")
	}

	fmt.Fprintf(w, "  Default:       %v\n", defaultVal)
	fmt.Fprintf(w, "  Documentation: %v\n", strings.TrimSpace(indent(entry.Docs, "                 ")))
}

func handleConfigList(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	keys := cfg.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		printConfigDocEntry(ctx, cfg, key)
	}

	return nil
}

func handleConfigGet(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	key := ctx.Args().First()
	if !cfg.IsValidKey(key) {
		return ExitCode{BadArgs, fmt.Sprintf("no such config key: %s", key)}
	}

	fmt.Fprintln(ctx.App.Writer, cfg.Uncast(key))
	return nil
}

func handleConfigSet(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	key, val := ctx.Args().Get(0), ctx.Args().Get(1)
	if !cfg.IsValidKey(key) {
		return ExitCode{BadArgs, fmt.Sprintf("no such config key: %s", key)}
	}

	casted, err := cfg.Cast(key, val)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	if err := cfg.Set(key, casted); err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	path, err := configPath(ctx)
	if err != nil {
		return ExitCode{UnknownError, err.Error()}
	}

	if err := saveConfig(path, cfg); err != nil {
		return ExitCode{UnknownError, fmt.Sprintf("config save: %v", err)}
	}

	logVerbose(ctx, "saved config to %s", path)
	return nil
}
