// Package transfer encodes boards for export and decodes and validates
// imported board and card-set documents.
package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tailscale/hujson"

	"github.com/tgienger/kb/internal/models"
)

// ErrInvalidFormat is returned for documents that are not a valid board
// or card set.
var ErrInvalidFormat = errors.New("invalid board format")

var (
	//go:embed schema/board.schema.json
	boardSchemaSrc string
	//go:embed schema/cards.schema.json
	cardsSchemaSrc string

	boardSchema = jsonschema.MustCompileString("board.schema.json", boardSchemaSrc)
	cardsSchema = jsonschema.MustCompileString("cards.schema.json", cardsSchemaSrc)
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName returns the export file name for a board title
func FileName(title string) string {
	return unsafeFileChars.ReplaceAllString(title, "_") + "_board.json"
}

// EncodeBoard renders b as indented JSON with a trailing newline
func EncodeBoard(b models.Board) ([]byte, error) {
	b.Cards.Ensure()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes an encoded board into dir under the export name for
// title and returns the path of the file. An existing file is replaced
// atomically.
func WriteExport(dir, title string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(title))
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// DecodeBoard parses and validates a board document. The result still
// needs Normalize before it is stored.
func DecodeBoard(data []byte) (models.Board, error) {
	var b models.Board
	if err := decode(data, boardSchema, &b); err != nil {
		return models.Board{}, err
	}
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return models.Board{}, fmt.Errorf("%w: title is empty", ErrInvalidFormat)
	}
	if b.Cards == nil {
		b.Cards = models.NewCards()
	}
	if err := checkTitles(b.Cards); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// DecodeCards parses and validates a bare card set holding all three
// columns.
func DecodeCards(data []byte) (models.Cards, error) {
	var c models.Cards
	if err := decode(data, cardsSchema, &c); err != nil {
		return nil, err
	}
	if err := checkTitles(c); err != nil {
		return nil, err
	}
	return c, nil
}

// checkTitles rejects cards whose title is only whitespace
func checkTitles(cards models.Cards) error {
	for col, list := range cards {
		for i, card := range list {
			if strings.TrimSpace(card.Title) == "" {
				return fmt.Errorf("%w: %s card %d has an empty title", ErrInvalidFormat, col, i+1)
			}
		}
	}
	return nil
}

func decode(data []byte, schema *jsonschema.Schema, out any) error {
	// Accept comments and trailing commas from hand-edited files
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	var raw any
	if err := json.Unmarshal(std, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if err := json.Unmarshal(std, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return nil
}

// Normalize makes an imported card set safe to store: unknown columns
// are dropped, missing or repeated ids are reissued, and priorities,
// labels and timestamps are cleaned up.
func Normalize(in models.Cards, now time.Time, newID func() string) models.Cards {
	out := models.NewCards()
	seen := make(map[string]bool)
	for _, col := range models.Columns {
		for _, card := range in[col] {
			card.Title = strings.TrimSpace(card.Title)
			card.Description = strings.TrimSpace(card.Description)
			if card.ID == "" || seen[card.ID] {
				card.ID = newID()
			}
			seen[card.ID] = true
			card.Priority = card.Priority.Normalize()
			card.Labels = models.CleanLabels(card.Labels)
			if _, ok := card.Due(time.UTC); !ok {
				card.DueDate = ""
			}
			if card.CreatedAt.IsZero() {
				card.CreatedAt = now
			}
			if card.UpdatedAt.IsZero() {
				card.UpdatedAt = card.CreatedAt
			}
			if !card.Completed {
				card.CompletedDate = nil
			}
			out[col] = append(out[col], card)
		}
	}
	return out
}
