// Package board keeps every board and its cards in memory and writes the
// whole set back to storage after each change.
package board

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tgienger/kb/internal/models"
	"github.com/tgienger/kb/internal/transfer"
)

// Storage keys
const (
	KeyBoards    = "boards"
	KeyCurrentID = "current_board_id"
)

// ImportedSuffix is appended to the title of an imported board
const ImportedSuffix = " (Imported)"

// Storage is a flat key-value store of whole JSON documents. SetItems
// writes every pair or none of them.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItems(items map[string]string) error
}

// Option configures a Registry
type Option func(*Registry)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDs overrides the id generator used for cards and boards
func WithIDs(newID func() string) Option {
	return func(r *Registry) { r.newID = newID }
}

// Registry maps board ids to boards and tracks the current board
type Registry struct {
	store     Storage
	now       func() time.Time
	newID     func() string
	boards    map[string]*models.Board
	currentID string
}

// Open loads the boards from store, seeding the default board when it is
// missing.
func Open(store Storage, opts ...Option) (*Registry, error) {
	r := &Registry{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	boards, err := r.load()
	if err != nil {
		return nil, err
	}
	r.boards = boards

	current, ok, err := store.GetItem(KeyCurrentID)
	if err != nil {
		return nil, fmt.Errorf("load current board: %w", err)
	}
	if !ok || current == "" {
		current = models.DefaultBoardID
	}
	r.currentID = current

	log.Debug().Int("boards", len(boards)).Str("current", current).Msg("boards loaded")
	return r, nil
}

func (r *Registry) load() (map[string]*models.Board, error) {
	raw, ok, err := r.store.GetItem(KeyBoards)
	if err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}

	boards := make(map[string]*models.Board)
	if ok {
		if err := json.Unmarshal([]byte(raw), &boards); err != nil {
			return nil, fmt.Errorf("decode stored boards: %w", err)
		}
	}

	for id, b := range boards {
		if b == nil {
			delete(boards, id)
			continue
		}
		if b.ID == "" {
			b.ID = id
		}
		if b.Cards == nil {
			b.Cards = models.NewCards()
		}
		b.Cards.Ensure()
	}

	if _, ok := boards[models.DefaultBoardID]; !ok {
		boards[models.DefaultBoardID] = r.newBoard(models.DefaultBoardID, models.DefaultBoardTitle)
	}
	return boards, nil
}

func (r *Registry) newBoard(id, title string) *models.Board {
	return &models.Board{
		ID:        id,
		Title:     title,
		CreatedAt: r.now(),
		Cards:     models.NewCards(),
	}
}

// commit persists boards and current in one write, then makes them the
// live state. On a storage failure neither the store nor the live state
// changes.
func (r *Registry) commit(boards map[string]*models.Board, current string) error {
	data, err := json.Marshal(boards)
	if err != nil {
		return fmt.Errorf("encode boards: %w", err)
	}
	items := map[string]string{KeyBoards: string(data)}
	if current != r.currentID {
		items[KeyCurrentID] = current
	}
	if err := r.store.SetItems(items); err != nil {
		log.Error().Err(err).Msg("save boards failed")
		return fmt.Errorf("save boards: %w", err)
	}
	r.boards = boards
	r.currentID = current
	return nil
}

// CurrentID returns the id of the board being shown. An unknown stored id
// resolves to the default board.
func (r *Registry) CurrentID() string {
	if _, ok := r.boards[r.currentID]; ok {
		return r.currentID
	}
	return models.DefaultBoardID
}

// Current returns a copy of the current board
func (r *Registry) Current() models.Board {
	return r.boards[r.CurrentID()].Clone()
}

// Board returns a copy of the board with id
func (r *Registry) Board(id string) (models.Board, error) {
	b, ok := r.boards[id]
	if !ok {
		return models.Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	return b.Clone(), nil
}

// Boards lists every board: the default board first, then by creation time
func (r *Registry) Boards() []models.Board {
	out := make([]models.Board, 0, len(r.boards))
	for _, b := range r.boards {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.ID == models.DefaultBoardID) != (b.ID == models.DefaultBoardID) {
			return a.ID == models.DefaultBoardID
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// CreateBoard adds an empty board. It does not switch to it.
func (r *Registry) CreateBoard(title string) (models.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Board{}, ErrEmptyTitle
	}

	b := r.newBoard("board_"+r.newID(), title)
	next := maps.Clone(r.boards)
	next[b.ID] = b
	if err := r.commit(next, r.currentID); err != nil {
		return models.Board{}, err
	}

	log.Info().Str("board", b.ID).Str("title", title).Msg("board created")
	return b.Clone(), nil
}

// DeleteBoard removes a board. The default board and the last remaining
// board cannot be deleted. Deleting the current board switches to the
// default board.
func (r *Registry) DeleteBoard(id string) error {
	if id == models.DefaultBoardID {
		log.Warn().Str("board", id).Msg("refusing to delete default board")
		return ErrDefaultBoard
	}
	if len(r.boards) <= 1 {
		log.Warn().Str("board", id).Msg("refusing to delete last board")
		return ErrLastBoard
	}
	if _, ok := r.boards[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}

	next := maps.Clone(r.boards)
	delete(next, id)

	current := r.currentID
	if current == id {
		current = models.DefaultBoardID
	}
	if err := r.commit(next, current); err != nil {
		return err
	}

	log.Info().Str("board", id).Msg("board deleted")
	return nil
}

// SwitchBoard makes id the current board
func (r *Registry) SwitchBoard(id string) error {
	if _, ok := r.boards[id]; !ok {
		log.Error().Str("board", id).Msg("board not found")
		return fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	if id == r.currentID {
		return nil
	}
	if err := r.store.SetItems(map[string]string{KeyCurrentID: id}); err != nil {
		return fmt.Errorf("save current board: %w", err)
	}
	r.currentID = id
	log.Debug().Str("board", id).Msg("switched board")
	return nil
}

// RenameBoard changes the title of a board
func (r *Registry) RenameBoard(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	b, ok := r.boards[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}

	renamed := b.Clone()
	renamed.Title = title
	next := maps.Clone(r.boards)
	next[id] = &renamed
	return r.commit(next, r.currentID)
}

// ExportBoard returns the formatted JSON document for a board
func (r *Registry) ExportBoard(id string) ([]byte, error) {
	b, err := r.Board(id)
	if err != nil {
		return nil, err
	}
	return transfer.EncodeBoard(b)
}

// ExportBoardTo writes the board's export file into dir
func (r *Registry) ExportBoardTo(id, dir string) (string, error) {
	data, err := r.ExportBoard(id)
	if err != nil {
		return "", err
	}
	path, err := transfer.WriteExport(dir, r.boards[id].Title, data)
	if err != nil {
		return "", err
	}
	log.Info().Str("board", id).Str("path", path).Msg("board exported")
	return path, nil
}

// ImportBoard adds the board described by data as a new board and
// switches to it.
func (r *Registry) ImportBoard(data []byte) (models.Board, error) {
	in, err := transfer.DecodeBoard(data)
	if err != nil {
		return models.Board{}, err
	}

	b := r.newBoard("board_"+r.newID(), in.Title+ImportedSuffix)
	b.Cards = transfer.Normalize(in.Cards, r.now(), r.newID)

	next := maps.Clone(r.boards)
	next[b.ID] = b
	if err := r.commit(next, b.ID); err != nil {
		return models.Board{}, err
	}

	log.Info().Str("board", b.ID).Int("cards", b.Cards.Count()).Msg("board imported")
	return b.Clone(), nil
}

// ImportCards replaces every card on the current board with the card set
// described by data.
func (r *Registry) ImportCards(data []byte) error {
	in, err := transfer.DecodeCards(data)
	if err != nil {
		return err
	}
	cards := transfer.Normalize(in, r.now(), r.newID)
	return r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		return cards, nil
	})
}

// updateCurrent applies fn to a copy of the current board's cards and
// commits the result.
func (r *Registry) updateCurrent(fn func(models.Cards) (models.Cards, error)) error {
	b := r.Current()
	cards, err := fn(b.Cards)
	if err != nil {
		return err
	}
	b.Cards = cards

	next := maps.Clone(r.boards)
	next[b.ID] = &b
	return r.commit(next, r.currentID)
}
