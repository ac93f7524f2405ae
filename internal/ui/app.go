package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewBoards
)

type App struct {
	reg         *board.Registry
	opts        views.Options
	currentView View
	boardView   *views.BoardView
	boardList   *views.BoardListView
	width       int
	height      int
}

// Creates a new application showing the current board
func NewApp(reg *board.Registry, opts views.Options) *App {
	return &App{
		reg:         reg,
		opts:        opts,
		currentView: ViewBoard,
		boardView:   views.NewBoardView(reg, opts),
		boardList:   views.NewBoardListView(reg, opts),
	}
}

func (a *App) Init() tea.Cmd {
	return a.boardView.Init()
}

// CurrentView reports which screen is showing
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

// openBoard shows the current board with a fresh search and filter state
func (a *App) openBoard() tea.Cmd {
	a.currentView = ViewBoard
	a.boardView = views.NewBoardView(a.reg, a.opts)

	return tea.Batch(a.boardView.Init(), a.resize())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both views persist, so both track the size
		a.boardList.Update(msg)
		a.boardView.Update(msg)
		return a, nil

	case views.SelectedBoard:
		return a, a.openBoard()

	case views.ShowBoards:
		a.currentView = ViewBoards
		a.boardList.Reload()
		return a, tea.Batch(a.boardList.Init(), a.resize())

	case views.BackToBoard:
		a.currentView = ViewBoard
		a.boardView.Refresh()
		return a, a.resize()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewBoards:
		_, cmd = a.boardList.Update(msg)
	case ViewBoard:
		_, cmd = a.boardView.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewBoards {
		return a.boardList.View()
	}
	return a.boardView.View()
}
