package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/ui/views"
)

type memStore map[string]string

func (m memStore) GetItem(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memStore) SetItems(items map[string]string) error {
	for k, v := range items {
		m[k] = v
	}
	return nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	reg, err := board.Open(memStore{})
	require.NoError(t, err)

	app := NewApp(reg, views.Options{
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) },
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// dispatch feeds a navigation message produced by cmd back into the app
func dispatch(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	a.Update(cmd())
}

func TestApp_OpensOnCurrentBoard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	assert.Equal(t, ViewBoard, app.CurrentView())
	assert.Contains(t, app.View(), models.DefaultBoardTitle)
}

func TestApp_SwitchingBoardsResetsFilters(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	other, err := app.reg.CreateBoard("Other")
	require.NoError(t, err)

	app.Update(key("/"))
	app.Update(key("x"))
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app.Update(key("f"))
	app.Update(key(" "))
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, "x", app.boardView.Criteria().Search)
	require.Equal(t, 1, app.boardView.Criteria().Active())

	_, cmd := app.Update(key("b"))
	dispatch(t, app, cmd)
	require.Equal(t, ViewBoards, app.CurrentView())

	app.Update(key("j"))
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	dispatch(t, app, cmd)

	assert.Equal(t, ViewBoard, app.CurrentView())
	assert.Equal(t, other.ID, app.boardView.Board().ID)
	assert.True(t, app.boardView.Criteria().IsZero())
}

func TestApp_BackKeepsFiltersOnSameBoard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	app.Update(key("/"))
	app.Update(key("x"))
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	dispatch(t, app, cmd)
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	dispatch(t, app, cmd)

	assert.Equal(t, ViewBoard, app.CurrentView())
	assert.Equal(t, "x", app.boardView.Criteria().Search)
}

func TestApp_BackAfterDeletingCurrentBoard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	other, err := app.reg.CreateBoard("Other")
	require.NoError(t, err)
	require.NoError(t, app.reg.SwitchBoard(other.ID))
	app.boardView.Refresh()

	app.Update(key("/"))
	app.Update(key("x"))
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, cmd := app.Update(key("b"))
	dispatch(t, app, cmd)
	app.Update(key("d"))
	app.Update(key("y"))

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	dispatch(t, app, cmd)

	assert.Equal(t, models.DefaultBoardID, app.boardView.Board().ID)
	assert.True(t, app.boardView.Criteria().IsZero())
}
