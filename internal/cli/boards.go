package cli

import (
	"fmt"

	"github.com/tgienger/kb/internal/models"
)

func boardsCmd() *Command {
	return &Command{
		Usage: "boards",
		Short: "List boards (* marks the current board)",
		Exec:  execBoards,
	}
}

func execBoards(env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}

	current := env.Registry.CurrentID()
	for _, b := range env.Registry.Boards() {
		mark := " "
		if b.ID == current {
			mark = "*"
		}
		env.Printf("%s %-24s %-40s %3d cards  %s\n",
			mark, b.ID, b.Title, b.Cards.Count(), b.CreatedAt.Local().Format(models.DateLayout))
	}
	return nil
}
