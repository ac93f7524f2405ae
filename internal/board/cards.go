package board

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgienger/kb/internal/models"
)

// CardInput holds the editable fields of a card
type CardInput struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     string
	Labels      []string
}

func (in CardInput) normalize() (CardInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, ErrEmptyTitle
	}
	in.Description = strings.TrimSpace(in.Description)

	if in.Priority == "" {
		in.Priority = models.PriorityNone
	}
	if !in.Priority.Valid() {
		return in, fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}

	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.DueDate != "" {
		if _, err := time.Parse(models.DateLayout, in.DueDate); err != nil {
			return in, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDueDate, in.DueDate)
		}
	}

	in.Labels = models.CleanLabels(in.Labels)
	return in, nil
}

func checkColumn(col models.Column) error {
	if !col.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, col)
	}
	return nil
}

func indexOf(cards []models.Card, id string) int {
	return slices.IndexFunc(cards, func(c models.Card) bool { return c.ID == id })
}

// Card returns a copy of a card on the current board
func (r *Registry) Card(col models.Column, id string) (models.Card, error) {
	if err := checkColumn(col); err != nil {
		return models.Card{}, err
	}
	cards := r.boards[r.CurrentID()].Cards[col]
	i := indexOf(cards, id)
	if i < 0 {
		return models.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return r.Current().Cards[col][i], nil
}

// AddCard appends a new card to col on the current board
func (r *Registry) AddCard(col models.Column, in CardInput) (models.Card, error) {
	if err := checkColumn(col); err != nil {
		return models.Card{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Card{}, err
	}

	now := r.now()
	card := models.Card{
		ID:          r.newID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Labels:      in.Labels,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		c[col] = append(c[col], card)
		return c, nil
	})
	if err != nil {
		return models.Card{}, err
	}

	log.Debug().Str("card", card.ID).Str("column", string(col)).Msg("card added")
	return card, nil
}

// UpdateCard replaces the editable fields of a card
func (r *Registry) UpdateCard(col models.Column, id string, in CardInput) (models.Card, error) {
	if err := checkColumn(col); err != nil {
		return models.Card{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Card{}, err
	}

	var updated models.Card
	err = r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		i := indexOf(c[col], id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		card := &c[col][i]
		card.Title = in.Title
		card.Description = in.Description
		card.Priority = in.Priority
		card.DueDate = in.DueDate
		card.Labels = in.Labels
		card.UpdatedAt = r.now()
		updated = *card
		return c, nil
	})
	if err != nil {
		return models.Card{}, err
	}
	return updated, nil
}

// DeleteCard removes a card from col
func (r *Registry) DeleteCard(col models.Column, id string) error {
	if err := checkColumn(col); err != nil {
		return err
	}
	err := r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		i := indexOf(c[col], id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		c[col] = slices.Delete(c[col], i, i+1)
		return c, nil
	})
	if err != nil {
		return err
	}
	log.Debug().Str("card", id).Str("column", string(col)).Msg("card deleted")
	return nil
}

// MoveCard takes a card out of from and appends it to to, stamping its
// update time. Moving within the same column does nothing.
func (r *Registry) MoveCard(id string, from, to models.Column) error {
	if err := checkColumn(from); err != nil {
		return err
	}
	if err := checkColumn(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	err := r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		i := indexOf(c[from], id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		card := c[from][i]
		card.UpdatedAt = r.now()
		c[from] = slices.Delete(c[from], i, i+1)
		c[to] = append(c[to], card)
		return c, nil
	})
	if err != nil {
		return err
	}
	log.Debug().Str("card", id).Str("from", string(from)).Str("to", string(to)).Msg("card moved")
	return nil
}

// SetCompleted marks a card done or not done
func (r *Registry) SetCompleted(col models.Column, id string, completed bool) error {
	if err := checkColumn(col); err != nil {
		return err
	}
	return r.updateCurrent(func(c models.Cards) (models.Cards, error) {
		i := indexOf(c[col], id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		now := r.now()
		card := &c[col][i]
		card.Completed = completed
		card.CompletedDate = nil
		if completed {
			card.CompletedDate = &now
		}
		card.UpdatedAt = now
		return c, nil
	})
}

// ClearCards removes every card from the current board
func (r *Registry) ClearCards() error {
	return r.updateCurrent(func(models.Cards) (models.Cards, error) {
		return models.NewCards(), nil
	})
}

// Labels returns every label used on the current board, sorted
func (r *Registry) Labels() []string {
	var labels []string
	for _, col := range models.Columns {
		for _, card := range r.boards[r.CurrentID()].Cards[col] {
			labels = append(labels, card.Labels...)
		}
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}
