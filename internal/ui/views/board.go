package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/filter"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/ui/keys"
	"github.com/tgienger/kb/internal/ui/styles"
)

// filterOption is one checkbox in the filter panel
type filterOption struct {
	group string
	value string
	label string
}

// BoardView shows the three columns of the current board
type BoardView struct {
	reg    *board.Registry
	opts   Options
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	board    models.Board
	visible  models.Cards
	criteria filter.Criteria

	// UI state
	col     int // index into models.Columns
	cursor  [3]int
	scrollY [3]int

	searching   bool
	searchInput textinput.Model

	// Filter panel
	filtering    bool
	filterCursor int

	// Card editor modal, nil when closed
	editor *cardEditor

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetCol  models.Column
	confirmingWipe   bool

	renaming    bool
	renameInput textinput.Model

	importing   bool
	importInput textinput.Model

	// alert is shown over everything until a key is pressed
	alert string

	showHelpPopup bool
}

// NewBoardView creates a view of the registry's current board with a
// clean search and filter state
func NewBoardView(reg *board.Registry, opts Options) *BoardView {
	search := newInput("Search cards...", 100)

	v := &BoardView{
		reg:         reg,
		opts:        opts,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		criteria:    filter.Criteria{SoonDays: opts.soonDays()},
		searchInput: search,
		renameInput: newInput("Board title", 100),
		importInput: newInput("path/to/board.json", 500),
	}
	v.Refresh()
	return v
}

// Init initializes the view
func (v *BoardView) Init() tea.Cmd {
	return nil
}

// Refresh reloads the current board from the registry. Landing on a
// different board drops search text and filters.
func (v *BoardView) Refresh() {
	cur := v.reg.Current()
	if cur.ID != v.board.ID {
		v.resetTransient()
	}
	v.board = cur
	v.applyFilter()
}

func (v *BoardView) resetTransient() {
	v.criteria.Reset()
	v.searchInput.Reset()
	v.searching = false
	v.filtering = false
	v.filterCursor = 0
	v.col = 0
	v.cursor = [3]int{}
	v.scrollY = [3]int{}
}

func (v *BoardView) applyFilter() {
	v.visible = v.criteria.ApplyAll(v.board.Cards, v.opts.now())
	for i, col := range models.Columns {
		if v.cursor[i] >= len(v.visible[col]) {
			v.cursor[i] = max(0, len(v.visible[col])-1)
		}
	}
	v.ensureVisible()
}

// Criteria returns the active search and filter state
func (v *BoardView) Criteria() filter.Criteria {
	return v.criteria
}

// Board returns the board being shown
func (v *BoardView) Board() models.Board {
	return v.board
}

func (v *BoardView) column() models.Column {
	return models.Columns[v.col]
}

// selected returns the card under the cursor in the focused column
func (v *BoardView) selected() (models.Card, bool) {
	cards := v.visible[v.column()]
	if len(cards) == 0 {
		return models.Card{}, false
	}
	return cards[v.cursor[v.col]], true
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ensureVisible()
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.ForceQuit) {
			return v, tea.Quit
		}

		// Alerts and the help popup close on any key
		if v.alert != "" {
			v.alert = ""
			return v, nil
		}
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete || v.confirmingWipe {
			return v.updateConfirm(msg)
		}

		if v.editor != nil {
			return v.updateEditing(msg)
		}

		if v.renaming {
			return v.updateRenaming(msg)
		}

		if v.importing {
			return v.updateImporting(msg)
		}

		if v.filtering {
			return v.updateFilterPanel(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.searching {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.searching = false
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.criteria.Search = v.searchInput.Value()
			v.applyFilter()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Boards):
		return v, func() tea.Msg { return ShowBoards{} }

	case key.Matches(msg, v.keys.MoveLeft):
		return v, v.moveSelected(-1)

	case key.Matches(msg, v.keys.MoveRight):
		return v, v.moveSelected(1)

	case key.Matches(msg, v.keys.Left):
		if v.col > 0 {
			v.col--
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.col < len(models.Columns)-1 {
			v.col++
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor[v.col] > 0 {
			v.cursor[v.col]--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor[v.col] < len(v.visible[v.column()])-1 {
			v.cursor[v.col]++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.editor = newCardEditor(v.keys, v.column(), v.width)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if card, ok := v.selected(); ok {
			v.editor = editCardEditor(v.keys, v.column(), card, v.width)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if card, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = card.ID
			v.deleteTargetCol = v.column()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		v.toggleSelected()
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.filtering = true
		v.filterCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Clear):
		v.criteria.Reset()
		v.searchInput.Reset()
		v.applyFilter()
		return v, nil

	case key.Matches(msg, v.keys.Rename):
		v.renaming = true
		v.renameInput.SetValue(v.board.Title)
		v.renameInput.CursorEnd()
		v.renameInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Export):
		path, err := v.reg.ExportBoardTo(v.board.ID, v.opts.ExportDir)
		if err != nil {
			v.alert = "Error exporting board: " + err.Error()
			return v, nil
		}
		v.alert = "Board exported to " + path
		return v, nil

	case key.Matches(msg, v.keys.Import):
		v.importing = true
		v.importInput.Reset()
		v.importInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Wipe):
		v.confirmingWipe = true
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// moveSelected moves the selected card dir columns over and keeps it
// selected in its new column
func (v *BoardView) moveSelected(dir int) tea.Cmd {
	card, ok := v.selected()
	if !ok {
		return nil
	}
	target := v.col + dir
	if target < 0 || target >= len(models.Columns) {
		return nil
	}

	if err := v.reg.MoveCard(card.ID, v.column(), models.Columns[target]); err != nil {
		v.alert = errorText(err)
		return nil
	}
	v.Refresh()

	v.col = target
	if i := slices.IndexFunc(v.visible[v.column()], func(c models.Card) bool { return c.ID == card.ID }); i >= 0 {
		v.cursor[v.col] = i
	}
	v.ensureVisible()
	return nil
}

// toggleSelected flips completion. Only cards with a due date carry the
// checkbox.
func (v *BoardView) toggleSelected() {
	card, ok := v.selected()
	if !ok || card.DueDate == "" {
		return
	}
	if err := v.reg.SetCompleted(v.column(), card.ID, !card.Completed); err != nil {
		v.alert = errorText(err)
		return
	}
	v.Refresh()
}

func (v *BoardView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		var err error
		if v.confirmingDelete {
			err = v.reg.DeleteCard(v.deleteTargetCol, v.deleteTargetID)
		} else {
			err = v.reg.ClearCards()
		}
		v.confirmingDelete = false
		v.confirmingWipe = false
		if err != nil {
			v.alert = errorText(err)
			return v, nil
		}
		v.Refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		v.confirmingWipe = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := v.editor.update(msg)
	switch action {
	case editorCancel:
		v.editor = nil
		return v, nil
	case editorSave:
		v.saveCard()
		return v, nil
	}
	return v, cmd
}

// saveCard stores the editor contents. The editor stays open when the
// input is rejected.
func (v *BoardView) saveCard() {
	e := v.editor
	in := e.input()
	if strings.TrimSpace(in.Title) == "" {
		v.alert = "Please enter a card title"
		return
	}

	var (
		card models.Card
		err  error
	)
	if e.isNew() {
		card, err = v.reg.AddCard(e.column, in)
	} else {
		card, err = v.reg.UpdateCard(e.column, e.cardID, in)
	}
	if err != nil {
		log.Warn().Err(err).Msg("card not saved")
		v.alert = errorText(err)
		return
	}

	v.editor = nil
	v.Refresh()
	v.col = slices.Index(models.Columns, e.column)
	if i := slices.IndexFunc(v.visible[e.column], func(c models.Card) bool { return c.ID == card.ID }); i >= 0 {
		v.cursor[v.col] = i
	}
	v.ensureVisible()
}

func (v *BoardView) updateRenaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.renaming = false
		v.renameInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		title := strings.TrimSpace(v.renameInput.Value())
		if title == "" {
			return v, nil
		}
		if err := v.reg.RenameBoard(v.board.ID, title); err != nil {
			v.alert = errorText(err)
			return v, nil
		}
		v.renaming = false
		v.renameInput.Blur()
		v.Refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.renameInput, cmd = v.renameInput.Update(msg)
	return v, cmd
}

func (v *BoardView) updateImporting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.importing = false
		v.importInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.importing = false
		v.importInput.Blur()

		data, err := readImportFile(v.importInput.Value())
		if err == nil {
			_, err = v.reg.ImportBoard(data)
		}
		if err != nil {
			v.alert = "Error importing board: " + err.Error()
			return v, nil
		}
		v.Refresh()
		v.alert = "Board imported successfully!"
		return v, nil
	}

	var cmd tea.Cmd
	v.importInput, cmd = v.importInput.Update(msg)
	return v, cmd
}

// filterOptions lists the filter panel checkboxes in display order
func (v *BoardView) filterOptions() []filterOption {
	var opts []filterOption
	for _, p := range slices.Backward(models.Priorities) {
		opts = append(opts, filterOption{group: "Priority", value: string(p), label: string(p)})
	}
	for _, s := range models.DueStatuses {
		opts = append(opts, filterOption{group: "Due", value: string(s), label: s.Label()})
	}
	for _, l := range filter.LabelOptions(v.board.Cards) {
		label := l
		if l == filter.NoLabels {
			label = "No Labels"
		}
		opts = append(opts, filterOption{group: "Labels", value: l, label: label})
	}
	return opts
}

func (v *BoardView) isChecked(o filterOption) bool {
	switch o.group {
	case "Priority":
		return slices.Contains(v.criteria.Priorities, models.Priority(o.value))
	case "Due":
		return slices.Contains(v.criteria.Due, models.DueStatus(o.value))
	}
	return slices.Contains(v.criteria.Labels, o.value)
}

func (v *BoardView) updateFilterPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := v.filterOptions()

	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Filter):
		v.filtering = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.filterCursor > 0 {
			v.filterCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.filterCursor < len(opts)-1 {
			v.filterCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		o := opts[v.filterCursor]
		switch o.group {
		case "Priority":
			v.criteria.TogglePriority(models.Priority(o.value))
		case "Due":
			v.criteria.ToggleDue(models.DueStatus(o.value))
		default:
			v.criteria.ToggleLabel(o.value)
		}
		v.applyFilter()
		return v, nil

	case key.Matches(msg, v.keys.Clear):
		v.criteria.ClearFilters()
		v.applyFilter()
		return v, nil

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}

	return v, nil
}

func (v *BoardView) visibleCards() int {
	// Each card is about 4 lines plus a margin
	available := max(v.height-12, 5)
	return max(available/5, 1)
}

func (v *BoardView) ensureVisible() {
	n := v.visibleCards()
	for i := range v.cursor {
		if v.cursor[i] < v.scrollY[i] {
			v.scrollY[i] = v.cursor[i]
		} else if v.cursor[i] >= v.scrollY[i]+n {
			v.scrollY[i] = v.cursor[i] - n + 1
		}
	}
}

// View renders the view
func (v *BoardView) View() string {
	s := v.styles

	if v.alert != "" {
		return renderAlert(s, v.alert, v.width, v.height)
	}

	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(s, "Delete Card?", "Are you sure you want to delete this card?", v.width, v.height)
	}

	if v.confirmingWipe {
		return renderConfirm(s, "Clear Board?", "Are you sure you want to clear all data? This cannot be undone.", v.width, v.height)
	}

	if v.editor != nil {
		return v.editor.view(s, v.width, v.height)
	}

	if v.renaming {
		return renderPrompt(s, "Rename Board", "Title:", v.renameInput, v.width, v.height)
	}

	if v.importing {
		return renderPrompt(s, "Import Board", "File:", v.importInput, v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	if v.filtering {
		b.WriteString(v.renderFilterPanel())
	} else {
		b.WriteString(v.renderColumns())
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterBoard(b.String(), v.width, v.height)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	boardWidth := styles.BoardWidth(v.width)

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(boardWidth/3, 10, 40)).Render(v.searchInput.View())

	filterLabel := "Filters"
	if n := v.criteria.Active(); n > 0 {
		filterLabel = fmt.Sprintf("Filters (%d)", n)
	}
	filterStyle := s.Button
	if v.filtering {
		filterStyle = s.ButtonFocused
	}

	backBtn := s.Button.Render("← Boards")

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		backBtn, "  ", searchBox, "  ", filterStyle.Render(filterLabel+" ▼"),
	)

	title := s.Title.Render(v.board.Title) + " " +
		s.TitleMuted.Render(fmt.Sprintf("(%d cards)", v.board.Cards.Count()))
	return lipgloss.JoinVertical(lipgloss.Left, title, header)
}

func (v *BoardView) renderFilterPanel() string {
	s := v.styles
	var lines []string
	group := ""
	for i, o := range v.filterOptions() {
		if o.group != group {
			if group != "" {
				lines = append(lines, "")
			}
			group = o.group
			lines = append(lines, s.ColumnTitle.Render(group))
		}
		checkbox := "[ ]"
		if v.isChecked(o) {
			checkbox = "[x]"
		}
		itemStyle := s.ListItem
		if i == v.filterCursor {
			itemStyle = s.ListSelected
		}
		lines = append(lines, itemStyle.Render(checkbox+" "+o.label))
	}
	lines = append(lines, "", s.TitleMuted.Render("Space/↵: toggle • c: clear • Esc: close"))
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderColumns() string {
	boardWidth := styles.BoardWidth(v.width)
	colWidth := max((boardWidth-6)/len(models.Columns), 16)

	var cols []string
	for i, col := range models.Columns {
		cols = append(cols, v.renderColumn(i, col, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *BoardView) renderColumn(idx int, col models.Column, width int) string {
	s := v.styles
	focused := idx == v.col

	cards := v.visible[col]
	header := s.ColumnTitle.Render(col.Title()) + " " +
		s.TitleMuted.Render(fmt.Sprintf("%d", len(cards)))

	inner := width - 4
	items := []string{header, ""}
	if len(cards) == 0 {
		items = append(items, s.TitleMuted.Render("No cards"))
	}

	end := min(v.scrollY[idx]+v.visibleCards(), len(cards))
	for i := v.scrollY[idx]; i < end; i++ {
		items = append(items, v.renderCard(cards[i], focused && i == v.cursor[idx], inner))
	}
	if end < len(cards) {
		items = append(items, s.TitleMuted.Render(fmt.Sprintf("↓ %d more", len(cards)-end)))
	}

	style := s.Column
	if focused {
		style = s.ColumnFocused
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *BoardView) renderCard(card models.Card, selected bool, width int) string {
	s := v.styles
	today := v.opts.now()

	titleStyle := s.CardTitle
	if card.Completed {
		titleStyle = s.CardCompleted
	}

	title := titleStyle.Render(card.Title)
	if card.DueDate != "" {
		box := "☐ "
		if card.Completed {
			box = "☑ "
		}
		title = box + title
	}
	lines := []string{title}

	if card.Description != "" {
		lines = append(lines, s.CardMeta.Render(card.Description))
	}

	var meta []string
	if p := card.Priority.Normalize(); p != models.PriorityNone {
		meta = append(meta, lipgloss.NewStyle().Foreground(styles.PriorityColor(p)).Bold(true).Render(strings.ToUpper(string(p))))
	}
	for _, l := range card.Labels {
		meta = append(meta, s.Label.Render("#"+l))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, " "))
	}

	if due := card.DueText(today, v.opts.soonDays()); due != "" {
		color := styles.DueColor(card.DueStatusAt(today, v.opts.soonDays()))
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(due))
	}
	lines = append(lines, s.CardMeta.Render("Created "+card.CreatedAt.In(today.Location()).Format("Jan 2, 2006")))

	style := s.Card
	if selected {
		style = s.CardSelected
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderHelp() string {
	s := v.styles
	// At narrow widths, show hint to press ? for help
	if w := styles.BoardWidth(v.width); w > 0 && w < 80 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s del • %s move • %s done • %s search • %s filter • %s boards • %s help • %s quit",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("<>"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("f"),
			s.HelpKey.Render("esc"),
			s.HelpKey.Render("?"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *BoardView) renderHelpPopup() string {
	return renderHelpPopup(v.styles, [][2]string{
		{"←→↑↓", "navigate"},
		{"< >", "move card to column"},
		{"n", "new card"},
		{"e / ↵", "edit card"},
		{"d", "delete card"},
		{"space", "toggle completed"},
		{"/", "search"},
		{"f", "filters"},
		{"c", "clear search and filters"},
		{"t", "rename board"},
		{"x", "export board"},
		{"i", "import board"},
		{"C", "clear all cards"},
		{"esc / b", "boards"},
		{"q", "quit"},
	}, v.width, v.height)
}
