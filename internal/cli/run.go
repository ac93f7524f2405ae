// Package cli parses the command line and runs either a subcommand or
// the interactive board.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/config"
	"github.com/tgienger/kb/internal/db"
	"github.com/tgienger/kb/internal/logging"
)

// Version is printed by --version. Set by main.
var Version = "dev"

func commands() []*Command {
	return []*Command{
		boardsCmd(),
		exportCmd(),
		importCmd(),
	}
}

// Run is the main entry point. args includes the program name. Returns
// the exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string, getenv func(string) string) int {
	fs := flag.NewFlagSet("kb", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	// Flags after the command name belong to the command
	fs.SetInterspersed(false)

	cfgFlags := config.AddFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "Print version and exit")
	showHelp := fs.BoolP("help", "h", false, "Show help")

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	if err := fs.Parse(rest); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, fs)
		return 1
	}

	switch {
	case *showVersion:
		fmt.Fprintln(out, "kb", Version)
		return 0
	case *showHelp:
		printUsage(out, fs)
		return 0
	}

	var cmd *Command
	if fs.NArg() > 0 {
		name := fs.Arg(0)
		for _, c := range commands() {
			if c.Name() == name {
				cmd = c
				break
			}
		}
		if cmd == nil {
			fmt.Fprintln(errOut, "error: unknown command:", name)
			printUsage(errOut, fs)
			return 1
		}
	}

	cfg, err := config.Load(cfgFlags.ConfigFile, getenv)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	cfgFlags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(errOut, "error: logging:", err)
		return 1
	}
	defer closer.Close()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(errOut, "error: opening database:", err)
		return 1
	}
	defer database.Close()

	reg, err := board.Open(database)
	if err != nil {
		log.Error().Err(err).Msg("loading boards")
		fmt.Fprintln(errOut, "error: loading boards:", err)
		return 1
	}

	if cmd == nil {
		if err := runTUI(in, out, reg, cfg); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		return 0
	}

	env := &Env{Out: out, Registry: reg, ExportDir: cfg.ExportDir}
	return cmd.Run(env, errOut, fs.Args()[1:])
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "kb - kanban boards in the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: kb [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command, kb opens the current board.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintln(w, c.HelpLine())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")

	var buf strings.Builder
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(&strings.Builder{})
	fmt.Fprint(w, buf.String())
}
