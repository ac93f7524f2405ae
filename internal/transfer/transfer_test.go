package transfer_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/transfer"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func sampleBoard() models.Board {
	done := now.Add(-time.Hour)
	cards := models.NewCards()
	cards[models.ColumnTodo] = []models.Card{{
		ID: "c1", Title: "Write docs", Description: "README", Priority: models.PriorityHigh,
		DueDate: "2024-03-12", Labels: []string{"documentation"}, CreatedAt: now, UpdatedAt: now,
	}}
	cards[models.ColumnDone] = []models.Card{{
		ID: "c2", Title: "Ship", Priority: models.PriorityNone, Labels: []string{},
		DueDate: "2024-03-01", Completed: true, CompletedDate: &done, CreatedAt: now, UpdatedAt: now,
	}}
	return models.Board{ID: "board_x", Title: "Sprint 1", CreatedAt: now, Cards: cards}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Sprint_1_board.json", transfer.FileName("Sprint 1"))
	assert.Equal(t, "Q3__Plans__board.json", transfer.FileName("Q3 (Plans)"))
	assert.Equal(t, "caf__board.json", transfer.FileName("café"))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	orig := sampleBoard()

	data, err := transfer.EncodeBoard(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"title\": \"Sprint 1\"")

	got, err := transfer.DecodeBoard(data)
	require.NoError(t, err)

	if diff := cmp.Diff(orig, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBoard_AcceptsBrowserExport(t *testing.T) {
	t.Parallel()

	doc := `{
  "id": "board_lq2abc",
  "title": "Home",
  "createdAt": "2024-03-01T10:00:00.000Z",
  "cards": {
    "todo": [
      {
        "id": "lq2x1",
        "title": "Fix sink",
        "description": "",
        "priority": "medium",
        "dueDate": "",
        "labels": ["chores"],
        "createdAt": "2024-03-01T10:00:00.000Z",
        "updatedAt": "2024-03-01T10:05:00.000Z",
        "completedDate": null
      }
    ],
    "doing": [],
    "done": []
  }
}`

	b, err := transfer.DecodeBoard([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Home", b.Title)
	require.Len(t, b.Cards[models.ColumnTodo], 1)

	card := b.Cards[models.ColumnTodo][0]
	assert.Equal(t, "Fix sink", card.Title)
	assert.Equal(t, models.PriorityMedium, card.Priority)
	assert.Equal(t, []string{"chores"}, card.Labels)
	assert.Nil(t, card.CompletedDate)
}

func TestDecodeBoard_AcceptsComments(t *testing.T) {
	t.Parallel()

	doc := `{
		// hand edited
		"title": "Notes",
		"cards": {"todo": [{"title": "a"},],},
	}`

	b, err := transfer.DecodeBoard([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Notes", b.Title)
	assert.Len(t, b.Cards[models.ColumnTodo], 1)
}

func TestDecodeBoard_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `this is not json`},
		{"array", `[]`},
		{"missing title", `{"cards": {}}`},
		{"empty title", `{"title": "", "cards": {}}`},
		{"blank title", `{"title": "   ", "cards": {}}`},
		{"missing cards", `{"title": "x"}`},
		{"cards not object", `{"title": "x", "cards": []}`},
		{"column not array", `{"title": "x", "cards": {"todo": {}}}`},
		{"card without title", `{"title": "x", "cards": {"todo": [{"id": "1"}]}}`},
		{"blank card title", `{"title": "x", "cards": {"todo": [], "doing": [{"title": "ok"}, {"title": "   "}]}}`},
		{"label not string", `{"title": "x", "cards": {"todo": [{"title": "a", "labels": [1]}]}}`},
		{"bad timestamp", `{"title": "x", "cards": {"todo": [{"title": "a", "createdAt": "yesterday"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := transfer.DecodeBoard([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, transfer.ErrInvalidFormat)
		})
	}
}

func TestDecodeCards(t *testing.T) {
	t.Parallel()

	cards, err := transfer.DecodeCards([]byte(`{"todo": [{"title": "a"}], "doing": [], "done": []}`))
	require.NoError(t, err)
	assert.Len(t, cards[models.ColumnTodo], 1)

	for _, doc := range []string{
		`{"todo": [], "doing": []}`,
		`{"todo": [], "done": []}`,
		`{"doing": [], "done": []}`,
		`{"todo": null, "doing": [], "done": []}`,
		`{"todo": [{"title": " \t "}], "doing": [], "done": []}`,
	} {
		_, err := transfer.DecodeCards([]byte(doc))
		assert.ErrorIs(t, err, transfer.ErrInvalidFormat, doc)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	completed := now
	in := models.Cards{
		models.ColumnTodo: {
			{ID: "", Title: "  no id  ", Priority: "urgent", Labels: []string{" a ", "", "a"}},
			{ID: "dup", Title: "first"},
		},
		models.ColumnDone: {
			{ID: "dup", Title: "second", DueDate: "tomorrow", CompletedDate: &completed},
		},
		models.Column("backlog"): {
			{ID: "lost", Title: "dropped"},
		},
	}

	out := transfer.Normalize(in, now, sequentialIDs())

	require.Len(t, out[models.ColumnTodo], 2)
	require.Len(t, out[models.ColumnDone], 1)
	assert.NotContains(t, out, models.Column("backlog"))
	assert.Empty(t, out[models.ColumnDoing])
	assert.NotNil(t, out[models.ColumnDoing])

	first := out[models.ColumnTodo][0]
	assert.Equal(t, "gen-1", first.ID)
	assert.Equal(t, "no id", first.Title)
	assert.Equal(t, models.PriorityNone, first.Priority)
	assert.Equal(t, []string{"a"}, first.Labels)
	assert.Equal(t, now, first.CreatedAt)
	assert.Equal(t, now, first.UpdatedAt)

	assert.Equal(t, "dup", out[models.ColumnTodo][1].ID)

	second := out[models.ColumnDone][0]
	assert.Equal(t, "gen-2", second.ID)
	assert.Empty(t, second.DueDate)
	assert.Nil(t, second.CompletedDate)
}

func TestWriteExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := sampleBoard()

	data, err := transfer.EncodeBoard(b)
	require.NoError(t, err)
	path, err := transfer.WriteExport(dir, b.Title, data)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sprint_1_board.json"), path)

	data, err = os.ReadFile(path)
	require.NoError(t, err)

	got, err := transfer.DecodeBoard(data)
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)

	// Overwrites in place
	b.Title = "Sprint 1"
	b.Cards[models.ColumnTodo] = nil
	data, err = transfer.EncodeBoard(b)
	require.NoError(t, err)
	_, err = transfer.WriteExport(dir, b.Title, data)
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	got, err = transfer.DecodeBoard(data)
	require.NoError(t, err)
	assert.Empty(t, got.Cards[models.ColumnTodo])
}
