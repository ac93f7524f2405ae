package board_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kb/internal/board"
	"github.com/tgienger/kb/internal/db"
	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/transfer"
)

func TestOpen_SeedsDefaultBoard(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	r, _ := openRegistry(t, store)

	assert.Len(t, r.Boards(), 1)
	assert.Equal(t, models.DefaultBoardID, r.CurrentID())

	cur := r.Current()
	assert.Equal(t, models.DefaultBoardTitle, cur.Title)
	for _, col := range models.Columns {
		assert.NotNil(t, cur.Cards[col], col)
	}
	assert.Zero(t, store.writes, "opening must not write")
}

func TestOpen_RestoresMissingDefaultBoard(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	store.items[board.KeyBoards] = `{"board_a":{"id":"board_a","title":"A","cards":{"todo":[{"id":"c1","title":"x"}]}}}`
	store.items[board.KeyCurrentID] = "board_a"

	r, _ := openRegistry(t, store)

	assert.Len(t, r.Boards(), 2)
	assert.Equal(t, "board_a", r.CurrentID())
	cur := r.Current()
	assert.Len(t, cur.Cards[models.ColumnTodo], 1)
	assert.NotNil(t, cur.Cards[models.ColumnDoing])

	_, err := r.Board(models.DefaultBoardID)
	require.NoError(t, err)
}

func TestOpen_UnknownCurrentFallsBackToDefault(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	store.items[board.KeyCurrentID] = "board_gone"

	r, _ := openRegistry(t, store)
	assert.Equal(t, models.DefaultBoardID, r.CurrentID())
	assert.Equal(t, models.DefaultBoardTitle, r.Current().Title)
}

func TestOpen_CorruptBoards(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	store.items[board.KeyBoards] = `{not json`

	_, err := board.Open(store)
	require.Error(t, err)
}

func TestCreateBoard(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	r, _ := openRegistry(t, store)

	b, err := r.CreateBoard("  Work  ")
	require.NoError(t, err)
	assert.Equal(t, "board_id1", b.ID)
	assert.Equal(t, "Work", b.Title)
	assert.Equal(t, 0, b.Cards.Count())

	assert.Equal(t, models.DefaultBoardID, r.CurrentID(), "create does not switch")
	assert.Contains(t, store.items[board.KeyBoards], `"board_id1"`)

	_, err = r.CreateBoard("   ")
	assert.ErrorIs(t, err, board.ErrEmptyTitle)
	assert.Len(t, r.Boards(), 2)
}

func TestBoards_Order(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())

	_, err := r.CreateBoard("B")
	require.NoError(t, err)
	_, err = r.CreateBoard("A")
	require.NoError(t, err)

	var titles []string
	for _, b := range r.Boards() {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{models.DefaultBoardTitle, "B", "A"}, titles)
}

func TestDeleteBoard(t *testing.T) {
	t.Parallel()

	t.Run("default board is always rejected", func(t *testing.T) {
		t.Parallel()

		r, _ := openRegistry(t, newMemStorage())
		_, err := r.CreateBoard("Other")
		require.NoError(t, err)

		assert.ErrorIs(t, r.DeleteBoard(models.DefaultBoardID), board.ErrDefaultBoard)
		assert.Len(t, r.Boards(), 2)
	})

	t.Run("last board is always rejected", func(t *testing.T) {
		t.Parallel()

		// Open always re-adds the default board, so a lone board is
		// the default itself and any id is refused before lookup.
		r, _ := openRegistry(t, newMemStorage())
		require.Len(t, r.Boards(), 1)

		err := r.DeleteBoard("anything")
		assert.ErrorIs(t, err, board.ErrLastBoard)
		assert.Len(t, r.Boards(), 1)
	})

	t.Run("unknown board", func(t *testing.T) {
		t.Parallel()

		r, _ := openRegistry(t, newMemStorage())
		_, err := r.CreateBoard("Other")
		require.NoError(t, err)

		assert.ErrorIs(t, r.DeleteBoard("board_nope"), board.ErrBoardNotFound)
	})

	t.Run("deleting current switches to default", func(t *testing.T) {
		t.Parallel()

		store := newMemStorage()
		r, _ := openRegistry(t, store)
		b, err := r.CreateBoard("Other")
		require.NoError(t, err)
		require.NoError(t, r.SwitchBoard(b.ID))

		require.NoError(t, r.DeleteBoard(b.ID))
		assert.Equal(t, models.DefaultBoardID, r.CurrentID())
		assert.Equal(t, models.DefaultBoardID, store.items[board.KeyCurrentID])
		assert.Len(t, r.Boards(), 1)
		assert.NotContains(t, store.items[board.KeyBoards], b.ID)
	})

	t.Run("deleting another board keeps current", func(t *testing.T) {
		t.Parallel()

		r, _ := openRegistry(t, newMemStorage())
		a, err := r.CreateBoard("A")
		require.NoError(t, err)
		b, err := r.CreateBoard("B")
		require.NoError(t, err)
		require.NoError(t, r.SwitchBoard(a.ID))

		require.NoError(t, r.DeleteBoard(b.ID))
		assert.Equal(t, a.ID, r.CurrentID())
	})
}

func TestSwitchBoard(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	r, _ := openRegistry(t, store)
	b, err := r.CreateBoard("Other")
	require.NoError(t, err)

	require.NoError(t, r.SwitchBoard(b.ID))
	assert.Equal(t, b.ID, r.CurrentID())
	assert.Equal(t, b.ID, store.items[board.KeyCurrentID])

	assert.ErrorIs(t, r.SwitchBoard("board_missing"), board.ErrBoardNotFound)
	assert.Equal(t, b.ID, r.CurrentID())

	// Cards land on the board that is current
	_, err = r.AddCard(models.ColumnTodo, board.CardInput{Title: "on other"})
	require.NoError(t, err)
	def, err := r.Board(models.DefaultBoardID)
	require.NoError(t, err)
	assert.Equal(t, 0, def.Cards.Count())
	assert.Equal(t, 1, r.Current().Cards.Count())
}

func TestRenameBoard(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())

	require.NoError(t, r.RenameBoard(models.DefaultBoardID, " Home "))
	assert.Equal(t, "Home", r.Current().Title)

	assert.ErrorIs(t, r.RenameBoard(models.DefaultBoardID, ""), board.ErrEmptyTitle)
	assert.ErrorIs(t, r.RenameBoard("board_missing", "x"), board.ErrBoardNotFound)
	assert.Equal(t, "Home", r.Current().Title)
}

func TestPersistence_ReopenSeesSameState(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	r, _ := openRegistry(t, store)

	b, err := r.CreateBoard("Work")
	require.NoError(t, err)
	require.NoError(t, r.SwitchBoard(b.ID))
	_, err = r.AddCard(models.ColumnDoing, board.CardInput{Title: "persist me", Labels: []string{"bug"}})
	require.NoError(t, err)

	reopened, _ := openRegistry(t, store)
	assert.Equal(t, b.ID, reopened.CurrentID())
	if diff := cmp.Diff(r.Boards(), reopened.Boards()); diff != "" {
		t.Fatalf("state after reopen differs (-before +after):\n%s", diff)
	}
}

func TestStorageFailure_LeavesStateUntouched(t *testing.T) {
	t.Parallel()

	store := newMemStorage()
	r, _ := openRegistry(t, store)
	store.failSet = true

	_, err := r.CreateBoard("Nope")
	require.Error(t, err)
	assert.Len(t, r.Boards(), 1)

	_, err = r.AddCard(models.ColumnTodo, board.CardInput{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, 0, r.Current().Cards.Count())
}

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())

	_, err := r.AddCard(models.ColumnTodo, board.CardInput{Title: "a", Priority: models.PriorityHigh, DueDate: "2024-03-12", Labels: []string{"bug"}})
	require.NoError(t, err)
	doing, err := r.AddCard(models.ColumnTodo, board.CardInput{Title: "b", Description: "desc"})
	require.NoError(t, err)
	require.NoError(t, r.MoveCard(doing.ID, models.ColumnTodo, models.ColumnDoing))
	done, err := r.AddCard(models.ColumnDone, board.CardInput{Title: "c", DueDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, r.SetCompleted(models.ColumnDone, done.ID, true))

	orig := r.Current()
	data, err := r.ExportBoard(orig.ID)
	require.NoError(t, err)

	imported, err := r.ImportBoard(data)
	require.NoError(t, err)

	assert.Equal(t, orig.Title+board.ImportedSuffix, imported.Title)
	assert.NotEqual(t, orig.ID, imported.ID)
	assert.Equal(t, imported.ID, r.CurrentID(), "import switches to the new board")

	if diff := cmp.Diff(orig.Cards, imported.Cards); diff != "" {
		t.Fatalf("imported cards differ (-exported +imported):\n%s", diff)
	}
}

func TestImportBoard_Invalid(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())

	_, err := r.ImportBoard([]byte(`{"cards": {}}`))
	require.Error(t, err)
	assert.Len(t, r.Boards(), 1)
	assert.Equal(t, models.DefaultBoardID, r.CurrentID())
}

func TestImportCards_ReplacesCurrentCards(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())
	_, err := r.AddCard(models.ColumnTodo, board.CardInput{Title: "old"})
	require.NoError(t, err)

	err = r.ImportCards([]byte(`{"todo": [], "doing": [{"title": "new"}], "done": []}`))
	require.NoError(t, err)

	cur := r.Current()
	assert.Empty(t, cur.Cards[models.ColumnTodo])
	require.Len(t, cur.Cards[models.ColumnDoing], 1)
	assert.Equal(t, "new", cur.Cards[models.ColumnDoing][0].Title)
	assert.NotEmpty(t, cur.Cards[models.ColumnDoing][0].ID)

	err = r.ImportCards([]byte(`{"todo": []}`))
	require.Error(t, err)
	assert.Len(t, r.Current().Cards[models.ColumnDoing], 1)
}

func TestExportBoardTo(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())

	path, err := r.ExportBoardTo(models.DefaultBoardID, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, path, "Default_Board_board.json")

	_, err = r.ExportBoardTo("board_missing", t.TempDir())
	assert.ErrorIs(t, err, board.ErrBoardNotFound)
}

func TestImport_FailedWriteIsNotPersisted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kb.db")
	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()

	r, _ := openRegistry(t, database)
	_, err = database.Exec(`
		CREATE TRIGGER fail_current BEFORE INSERT ON storage WHEN NEW.key = 'current_board_id'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END;
	`)
	require.NoError(t, err)

	_, err = r.ImportBoard([]byte(`{"title": "X", "cards": {"todo": [{"title": "a"}]}}`))
	require.Error(t, err)
	assert.Len(t, r.Boards(), 1)

	reopened, _ := openRegistry(t, database)
	assert.Len(t, reopened.Boards(), 1, "boards blob rolled back with the current id")
	assert.Equal(t, models.DefaultBoardID, reopened.CurrentID())
}

func TestImport_RejectsBlankCardTitles(t *testing.T) {
	t.Parallel()

	r, _ := openRegistry(t, newMemStorage())
	_, err := r.AddCard(models.ColumnTodo, board.CardInput{Title: "keep"})
	require.NoError(t, err)

	_, err = r.ImportBoard([]byte(`{"title": "X", "cards": {"todo": [{"title": "   "}]}}`))
	require.ErrorIs(t, err, transfer.ErrInvalidFormat)
	assert.Len(t, r.Boards(), 1)

	err = r.ImportCards([]byte(`{"todo": [{"title": " \t "}], "doing": [], "done": []}`))
	require.ErrorIs(t, err, transfer.ErrInvalidFormat)
	cur := r.Current()
	require.Len(t, cur.Cards[models.ColumnTodo], 1)
	assert.Equal(t, "keep", cur.Cards[models.ColumnTodo][0].Title)
}
