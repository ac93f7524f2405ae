package main

import (
	"fmt"
	"os"

	"github.com/tgienger/kb/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, os.Getenv))
}
