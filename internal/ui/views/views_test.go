package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/models"
)

// memStore is an in-memory board.Storage
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

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T) *board.Registry {
	t.Helper()
	reg, err := board.Open(memStore{}, board.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return reg
}

func testOptions(t *testing.T) Options {
	return Options{
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return fixedNow },
	}
}

func addCard(t *testing.T, reg *board.Registry, col models.Column, in board.CardInput) models.Card {
	t.Helper()
	card, err := reg.AddCard(col, in)
	require.NoError(t, err)
	return card
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// press sends each key in order and returns the command from the last one
func press(m tea.Model, msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// typeText sends s one rune at a time
func typeText(m tea.Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

// msgOf runs cmd and returns its message, or nil
func msgOf(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}
