package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/tgienger/kb/internal/board"
)

// Command is a kb subcommand with its own flags
type Command struct {
	// Flags defines command-specific flags. May be nil.
	Flags *flag.FlagSet

	// Usage is shown after "kb" in help, starting with the command name.
	Usage string

	// Short is the one-line description in the global help listing.
	Short string

	// Exec runs the command after flags are parsed.
	Exec func(env *Env, args []string) error
}

// Env is what a command runs against
type Env struct {
	Out       io.Writer
	Registry  *board.Registry
	ExportDir string
}

func (e *Env) Println(a ...any) {
	_, _ = fmt.Fprintln(e.Out, a...)
}

func (e *Env) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(e.Out, format, a...)
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help output for "kb <cmd> --help".
func (c *Command) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: kb", c.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		fmt.Fprint(w, buf.String())
	}
}

// Run parses flags and executes the command. Returns exit code.
func (c *Command) Run(env *Env, errOut io.Writer, args []string) int {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(env.Out)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		fmt.Fprintln(errOut)
		c.PrintHelp(errOut)
		return 1
	}

	if err := c.Exec(env, c.Flags.Args()); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	return 0
}
