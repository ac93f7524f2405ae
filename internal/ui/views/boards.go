package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/ui/keys"
	"github.com/tgienger/kb/internal/ui/styles"
)

type boardItem struct {
	board   models.Board
	current bool
}

func (i boardItem) Title() string {
	if i.current {
		return i.board.Title + " •"
	}
	return i.board.Title
}

func (i boardItem) Description() string {
	return fmt.Sprintf("%d cards • created %s", i.board.Cards.Count(), i.board.CreatedAt.Format("Jan 2, 2006"))
}

func (i boardItem) FilterValue() string { return i.board.Title }

type boardDelegate struct {
	styles *styles.Styles
	width  int
}

func (d boardDelegate) Height() int                               { return 2 }
func (d boardDelegate) Spacing() int                              { return 1 }
func (d boardDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d boardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	b, ok := item.(boardItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(b.Title()), descStyle.Render(b.Description()))
}

// BoardListView lists every board and manages them
type BoardListView struct {
	reg      *board.Registry
	opts     Options
	list     list.Model
	delegate *boardDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	creating bool
	newName  textinput.Model
	focusIdx int // 0=name, 1=create

	renaming     bool
	renameTarget string
	renameInput  textinput.Model

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	importing   bool
	importInput textinput.Model

	alert string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewBoardListView creates the board list
func NewBoardListView(reg *board.Registry, opts Options) *BoardListView {
	s := styles.NewStyles()

	delegate := &boardDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Boards"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &BoardListView{
		reg:         reg,
		opts:        opts,
		list:        l,
		delegate:    delegate,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		newName:     newInput("Board name", 100),
		renameInput: newInput("Board title", 100),
		importInput: newInput("path/to/board.json", 500),
	}
	v.Reload()
	return v
}

// Init initializes the view
func (v *BoardListView) Init() tea.Cmd {
	return nil
}

// Reload refreshes the list from the registry and selects the current board
func (v *BoardListView) Reload() {
	boards := v.reg.Boards()
	current := v.reg.CurrentID()

	items := make([]list.Item, len(boards))
	selected := 0
	for i, b := range boards {
		items[i] = boardItem{board: b, current: b.ID == current}
		if b.ID == current {
			selected = i
		}
	}
	v.list.SetItems(items)
	v.list.Select(selected)
}

func (v *BoardListView) selectedBoard() (models.Board, bool) {
	item, ok := v.list.SelectedItem().(boardItem)
	if !ok {
		return models.Board{}, false
	}
	return item.board, true
}

// open switches the registry to id and asks the app to show it
func (v *BoardListView) open(id string) tea.Cmd {
	if err := v.reg.SwitchBoard(id); err != nil {
		v.alert = errorText(err)
		v.Reload()
		return nil
	}
	return func() tea.Msg { return SelectedBoard{ID: id} }
}

// Update handles messages
func (v *BoardListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		idx := v.list.Index()
		v.list.SetSize(contentWidth-4, msg.Height-6)
		v.list.Select(idx)
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.ForceQuit) {
			return v, tea.Quit
		}

		if v.alert != "" {
			v.alert = ""
			return v, nil
		}
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		if v.renaming {
			return v.updateRenaming(msg)
		}

		if v.importing {
			return v.updateImporting(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToBoard{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if b, ok := v.selectedBoard(); ok {
				return v, v.open(b.ID)
			}
		case key.Matches(msg, v.keys.Delete):
			if b, ok := v.selectedBoard(); ok {
				v.confirmingDelete = true
				v.deleteTargetID = b.ID
				v.deleteTargetName = b.Title
				return v, nil
			}
		case key.Matches(msg, v.keys.Rename):
			if b, ok := v.selectedBoard(); ok {
				v.renaming = true
				v.renameTarget = b.ID
				v.renameInput.SetValue(b.Title)
				v.renameInput.CursorEnd()
				v.renameInput.Focus()
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Export):
			if b, ok := v.selectedBoard(); ok {
				path, err := v.reg.ExportBoardTo(b.ID, v.opts.ExportDir)
				if err != nil {
					v.alert = "Error exporting board: " + err.Error()
				} else {
					v.alert = "Board exported to " + path
				}
				return v, nil
			}
		case key.Matches(msg, v.keys.Import):
			v.importing = true
			v.importInput.Reset()
			v.importInput.Focus()
			return v, textinput.Blink
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *BoardListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.reg.DeleteBoard(v.deleteTargetID); err != nil {
			v.alert = errorText(err)
			return v, nil
		}
		v.Reload()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.create()

	case key.Matches(msg, v.keys.Tab), msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 1) % 2
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 0 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.create()
	}

	var cmd tea.Cmd
	if v.focusIdx == 0 {
		v.newName, cmd = v.newName.Update(msg)
	}
	return v, cmd
}

// create makes a new board and switches to it
func (v *BoardListView) create() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		return nil
	}
	b, err := v.reg.CreateBoard(name)
	if err != nil {
		v.alert = errorText(err)
		return nil
	}
	v.creating = false
	v.Reload()
	return v.open(b.ID)
}

func (v *BoardListView) updateFocus() {
	v.newName.Blur()
	if v.focusIdx == 0 {
		v.newName.Focus()
	}
}

func (v *BoardListView) updateRenaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.renaming = false
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		title := strings.TrimSpace(v.renameInput.Value())
		if title == "" {
			return v, nil
		}
		v.renaming = false
		if err := v.reg.RenameBoard(v.renameTarget, title); err != nil {
			v.alert = errorText(err)
			return v, nil
		}
		v.Reload()
		return v, nil
	}

	var cmd tea.Cmd
	v.renameInput, cmd = v.renameInput.Update(msg)
	return v, cmd
}

func (v *BoardListView) updateImporting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.importing = false
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.importing = false
		data, err := readImportFile(v.importInput.Value())
		if err == nil {
			_, err = v.reg.ImportBoard(data)
		}
		if err != nil {
			v.alert = "Error importing board: " + err.Error()
			return v, nil
		}
		v.Reload()
		v.alert = "Board imported successfully!"
		return v, nil
	}

	var cmd tea.Cmd
	v.importInput, cmd = v.importInput.Update(msg)
	return v, cmd
}

// View renders the view
func (v *BoardListView) View() string {
	s := v.styles

	if v.alert != "" {
		return renderAlert(s, v.alert, v.width, v.height)
	}

	if v.showHelpPopup {
		return renderHelpPopup(s, [][2]string{
			{"↵", "open board"},
			{"n", "new board"},
			{"r", "rename board"},
			{"d", "delete board"},
			{"x", "export board"},
			{"i", "import board"},
			{"esc", "back to board"},
			{"q", "quit"},
		}, v.width, v.height)
	}

	if v.confirmingDelete {
		return renderConfirm(s, "Delete Board?",
			fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", v.deleteTargetName),
			v.width, v.height)
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if v.renaming {
		return renderPrompt(s, "Rename Board", "Title:", v.renameInput, v.width, v.height)
	}

	if v.importing {
		return renderPrompt(s, "Import Board", "File:", v.importInput, v.width, v.height)
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *BoardListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	btnStyle := s.Button
	if v.focusIdx == 0 {
		nameStyle = s.InputFocused
	} else {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Board"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	return placeModal(form, v.width, v.height)
}

func (v *BoardListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s rename • %s del • %s export • %s import • %s back • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("x"),
			v.styles.HelpKey.Render("i"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
