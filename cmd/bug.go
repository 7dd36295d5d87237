package cmd

import (
	"bytes"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sahib/arbor/version"
	"github.com/toqueteos/webbrowser"
	"github.com/urfave/cli"
)

const issueTrackerURL = "https://github.com/sahib/arbor/issues"

// cmdOutput runs a command at `path` with `args` and returns it's output.
// No real error checking is done, on errors an empty string is returned.
func cmdOutput(ctx *cli.Context, path string, args ...string) string {
	out, err := exec.Command(path, args...).Output()
	if err != nil {
		// `arbor bug` is best effort.
		logVerbose(ctx, "failed to run %s %s", path, strings.Join(args, " "))
		return ""
	}

	return strings.TrimSpace(string(out))
}

func buildBugReport(ctx *cli.Context) string {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, `Please answer these questions before submitting your issue.
Please include anything else you think is helpful. Thanks!

### What did you do?

### What did you expect to see?

### What did you see instead?

### Can you attach the snapshot files (or a reduced version)?

### System details:`)

	fmt.Fprintf(buf, "go version:     ``%s``\n", runtime.Version())
	fmt.Fprintf(buf, "os/arch:        ``%s/%s``\n", runtime.GOOS, runtime.GOARCH)
	if uname := cmdOutput(ctx, "uname", "-s", "-v", "-m"); uname != "" {
		fmt.Fprintf(buf, "uname -s -v -m: ``%s``\n", uname)
	}

	fmt.Fprintf(
		buf,
		"arbor version:  ``%s [build: %s, format: %s]``\n",
		version.String(),
		version.BuildTime,
		version.FormatVersion,
	)

	return buf.String()
}

// handleBugReport compiles a report of useful info when providing a bug report.
func handleBugReport(ctx *cli.Context) error {
	report := buildBugReport(ctx)

	printToStdout := ctx.Bool("stdout")
	if !printToStdout {
		// Try to open the issue tracker for convenience:
		urlVal := url.Values{}
		urlVal.Set("body", report)
		if err := webbrowser.Open(issueTrackerURL + "/new?" + urlVal.Encode()); err != nil {
			printError(ctx, "I failed to open the issue tracker in your browser.")
			printError(ctx, "Please paste the text below manually at this URL:")
			printError(ctx, issueTrackerURL)
			printToStdout = true
		}
	}

	if printToStdout {
		fmt.Fprintln(ctx.App.Writer, report)
	}

	return nil
}
