package cli

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/config"
	"github.com/tgienger/kb/internal/ui"
	"github.com/tgienger/kb/internal/ui/views"
)

var errNotTerminal = errors.New("no terminal input available")

func runTUI(in io.Reader, out io.Writer, reg *board.Registry, cfg *config.Config) error {
	if in == nil {
		return errNotTerminal
	}

	app := ui.NewApp(reg, views.Options{
		ExportDir: cfg.ExportDir,
		SoonDays:  cfg.DueSoonDays,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))

	log.Debug().Str("board", reg.CurrentID()).Msg("starting ui")
	_, err := p.Run()
	return err
}
