package views

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/ui/styles"
)

// Options are the settings shared by every view
type Options struct {
	// ExportDir receives exported board files
	ExportDir string
	// SoonDays is the due-soon window
	SoonDays int
	// Now is the clock used for due-date classification
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) soonDays() int {
	if o.SoonDays > 0 {
		return o.SoonDays
	}
	return models.DueSoonDays
}

// SelectedBoard signals that the registry switched to a board that should
// be opened fresh
type SelectedBoard struct {
	ID string
}

// ShowBoards signals to go to the board list
type ShowBoards struct{}

// BackToBoard signals to return to the current board without resetting it
type BackToBoard struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// readImportFile reads a board file named in a path prompt
func readImportFile(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("no file given")
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return os.ReadFile(path)
}

// errorText turns a registry error into the message shown in an alert
func errorText(err error) string {
	switch {
	case errors.Is(err, board.ErrDefaultBoard):
		return "Cannot delete the default board"
	case errors.Is(err, board.ErrLastBoard):
		return "Cannot delete the last board"
	case errors.Is(err, board.ErrInvalidDueDate):
		return "Due date must be YYYY-MM-DD"
	}
	return err.Error()
}

// placeModal centers a boxed modal in the content area
func placeModal(box string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
	return styles.CenterView(centered, width, height)
}

func renderAlert(s *styles.Styles, msg string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Width(clamp(styles.ContentWidth(width)-10, 20, 60)).Align(lipgloss.Center).Render(msg),
		"",
		s.TitleMuted.Render("Press any key to continue"),
	)
	return placeModal(s.Alert.Render(content), width, height)
}

func renderConfirm(s *styles.Styles, title, question string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(question),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return placeModal(content, width, height)
}

func renderPrompt(s *styles.Styles, title, label string, in textinput.Model, width, height int) string {
	inputWidth := clamp(styles.ContentWidth(width)-6, 20, 50)
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		label,
		s.InputFocused.Width(inputWidth).Render(in.View()),
		"",
		s.TitleMuted.Render("↵: confirm • Esc: cancel"),
	)
	return placeModal(content, width, height)
}

func renderHelpPopup(s *styles.Styles, items [][2]string, width, height int) string {
	lines := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, it := range items {
		lines = append(lines, s.HelpKey.Width(8).Render(it[0])+it[1])
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	return placeModal(s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), width, height)
}
