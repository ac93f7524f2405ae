package cli

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

func exportCmd() *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("board", "", "Board id (default: current board)")
	out := fs.StringP("out", "o", "", "Output directory (default: export_dir)")

	return &Command{
		Flags: fs,
		Usage: "export [--board <id>] [--out <dir>]",
		Short: "Write a board to <title>_board.json",
		Exec: func(env *Env, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			boardID := *id
			if boardID == "" {
				boardID = env.Registry.CurrentID()
			}
			dir := *out
			if dir == "" {
				dir = env.ExportDir
			}

			path, err := env.Registry.ExportBoardTo(boardID, dir)
			if err != nil {
				return err
			}
			env.Println(path)
			return nil
		},
	}
}

var errMissingFile = errors.New("file argument is required")

func importCmd() *Command {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cardsOnly := fs.Bool("cards", false, "Replace the current board's cards instead of adding a board")

	return &Command{
		Flags: fs,
		Usage: "import [--cards] <file>",
		Short: "Import a board export as a new board",
		Exec: func(env *Env, args []string) error {
			if len(args) == 0 {
				return errMissingFile
			}
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument %q", args[1])
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if *cardsOnly {
				if err := env.Registry.ImportCards(data); err != nil {
					return err
				}
				cur := env.Registry.Current()
				env.Printf("Replaced cards on %s (%d cards)\n", cur.Title, cur.Cards.Count())
				return nil
			}

			b, err := env.Registry.ImportBoard(data)
			if err != nil {
				return err
			}
			env.Printf("Imported %s as %s\n", b.Title, b.ID)
			return nil
		},
	}
}
