package main

import (
	"os"

	"github.com/sahib/arbor/cmd"
)

func main() {
	os.Exit(cmd.RunCmdline(os.Args))
}
