package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/ui/keys"
	"github.com/tgienger/kb/internal/ui/styles"
)

// Editor fields in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldDue
	fieldLabels
	fieldSave
	editorFields
)

type editorAction int

const (
	editorContinue editorAction = iota
	editorCancel
	editorSave
)

// cardEditor is the modal form for creating and editing cards
type cardEditor struct {
	keys     keys.KeyMap
	column   models.Column
	cardID   string // empty for a new card
	title    textinput.Model
	desc     textarea.Model
	priority int // index into models.Priorities
	due      textinput.Model
	labels   textinput.Model
	focusIdx int
}

func newCardEditor(km keys.KeyMap, col models.Column, width int) *cardEditor {
	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(clamp(styles.ContentWidth(width)-10, 20, 50))
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	e := &cardEditor{
		keys:   km,
		column: col,
		title:  newInput("Card title", 200),
		desc:   desc,
		due:    newInput("YYYY-MM-DD", len(models.DateLayout)),
		labels: newInput("feature, bug", 200),
	}
	e.updateFocus()
	return e
}

func editCardEditor(km keys.KeyMap, col models.Column, card models.Card, width int) *cardEditor {
	e := newCardEditor(km, col, width)
	e.cardID = card.ID
	e.title.SetValue(card.Title)
	e.desc.SetValue(card.Description)
	e.due.SetValue(card.DueDate)
	e.labels.SetValue(strings.Join(card.Labels, ", "))
	for i, p := range models.Priorities {
		if p == card.Priority.Normalize() {
			e.priority = i
		}
	}
	return e
}

func (e *cardEditor) isNew() bool {
	return e.cardID == ""
}

// input returns the form contents
func (e *cardEditor) input() board.CardInput {
	return board.CardInput{
		Title:       e.title.Value(),
		Description: e.desc.Value(),
		Priority:    models.Priorities[e.priority],
		DueDate:     e.due.Value(),
		Labels:      models.ParseLabels(e.labels.Value()),
	}
}

func (e *cardEditor) update(msg tea.KeyMsg) (editorAction, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keys.Back):
		return editorCancel, nil

	case key.Matches(msg, e.keys.Save):
		return editorSave, nil

	case key.Matches(msg, e.keys.Tab):
		e.focusIdx = (e.focusIdx + 1) % editorFields
		e.updateFocus()
		return editorContinue, nil

	case msg.String() == "shift+tab":
		e.focusIdx = (e.focusIdx + editorFields - 1) % editorFields
		e.updateFocus()
		return editorContinue, nil

	case key.Matches(msg, e.keys.Enter):
		switch e.focusIdx {
		case fieldSave:
			return editorSave, nil
		case fieldDesc:
			// newline in the textarea
		default:
			e.focusIdx++
			e.updateFocus()
			return editorContinue, nil
		}
	}

	if e.focusIdx == fieldPriority {
		switch {
		case key.Matches(msg, e.keys.Left):
			e.priority = (e.priority + len(models.Priorities) - 1) % len(models.Priorities)
		case key.Matches(msg, e.keys.Right), key.Matches(msg, e.keys.Toggle):
			e.priority = (e.priority + 1) % len(models.Priorities)
		}
		return editorContinue, nil
	}

	var cmd tea.Cmd
	switch e.focusIdx {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
	case fieldDesc:
		e.desc, cmd = e.desc.Update(msg)
	case fieldDue:
		e.due, cmd = e.due.Update(msg)
	case fieldLabels:
		e.labels, cmd = e.labels.Update(msg)
	}
	return editorContinue, cmd
}

func (e *cardEditor) updateFocus() {
	e.title.Blur()
	e.desc.Blur()
	e.due.Blur()
	e.labels.Blur()

	switch e.focusIdx {
	case fieldTitle:
		e.title.Focus()
	case fieldDesc:
		e.desc.Focus()
	case fieldDue:
		e.due.Focus()
	case fieldLabels:
		e.labels.Focus()
	}
}

func (e *cardEditor) view(s *styles.Styles, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	formTitle := "New Card in " + e.column.Title()
	if !e.isNew() {
		formTitle = "Edit Card"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if e.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if e.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(e.title.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(e.desc.View()),
		"Priority:",
		fieldStyle(fieldPriority).Width(inputWidth).Render(e.renderPriorities(s)),
		"Due date:",
		fieldStyle(fieldDue).Width(inputWidth).Render(e.due.View()),
		"Labels (comma separated):",
		fieldStyle(fieldLabels).Width(inputWidth).Render(e.labels.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: priority • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, width, height)
}

func (e *cardEditor) renderPriorities(s *styles.Styles) string {
	var opts []string
	for i, p := range models.Priorities {
		radio := "( )"
		if i == e.priority {
			radio = "(•)"
		}
		style := lipgloss.NewStyle().Foreground(styles.PriorityColor(p))
		opts = append(opts, radio+" "+style.Render(string(p)))
	}
	return strings.Join(opts, "  ")
}
