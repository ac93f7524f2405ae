// Package filter derives the visible subset of a board's cards from the
// search box and the checked filter criteria.
package filter

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tgienger/kb/internal/models"
)

// NoLabels is the label option matching cards that carry no labels
const NoLabels = "no-labels"

// PresetLabels are always offered in the label filter
var PresetLabels = []string{"feature", "bug", "documentation"}

// Criteria is the current search text and checked filters. Categories
// combine with AND; values inside a category combine with OR. An empty
// category matches everything.
type Criteria struct {
	Search     string
	Priorities []models.Priority
	Due        []models.DueStatus
	Labels     []string

	// SoonDays is the due-soon window; zero means models.DueSoonDays
	SoonDays int
}

// IsZero reports whether no constraint is active
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Search) == "" &&
		len(c.Priorities) == 0 && len(c.Due) == 0 && len(c.Labels) == 0
}

// Active returns the number of checked filter values, excluding search
func (c Criteria) Active() int {
	return len(c.Priorities) + len(c.Due) + len(c.Labels)
}

// Reset clears search text and every checked filter
func (c *Criteria) Reset() {
	c.Search = ""
	c.ClearFilters()
}

// ClearFilters unchecks every filter but keeps the search text
func (c *Criteria) ClearFilters() {
	c.Priorities = nil
	c.Due = nil
	c.Labels = nil
}

// TogglePriority checks or unchecks p
func (c *Criteria) TogglePriority(p models.Priority) {
	c.Priorities = toggle(c.Priorities, p)
}

// ToggleDue checks or unchecks s
func (c *Criteria) ToggleDue(s models.DueStatus) {
	c.Due = toggle(c.Due, s)
}

// ToggleLabel checks or unchecks label
func (c *Criteria) ToggleLabel(label string) {
	c.Labels = toggle(c.Labels, label)
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

func (c Criteria) soonDays() int {
	if c.SoonDays > 0 {
		return c.SoonDays
	}
	return models.DueSoonDays
}

// Match reports whether card passes every non-empty category
func (c Criteria) Match(card models.Card, today time.Time) bool {
	return c.matchSearch(card) &&
		c.matchPriority(card) &&
		c.matchDue(card, today) &&
		c.matchLabels(card)
}

func (c Criteria) matchSearch(card models.Card) bool {
	term := strings.ToLower(strings.TrimSpace(c.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(card.Title), term) ||
		strings.Contains(strings.ToLower(card.Description), term)
}

func (c Criteria) matchPriority(card models.Card) bool {
	if len(c.Priorities) == 0 {
		return true
	}
	return slices.Contains(c.Priorities, card.Priority.Normalize())
}

func (c Criteria) matchDue(card models.Card, today time.Time) bool {
	if len(c.Due) == 0 {
		return true
	}
	return slices.Contains(c.Due, card.DueStatusAt(today, c.soonDays()))
}

func (c Criteria) matchLabels(card models.Card) bool {
	if len(c.Labels) == 0 {
		return true
	}
	if len(card.Labels) == 0 {
		return slices.Contains(c.Labels, NoLabels)
	}
	for _, l := range card.Labels {
		if slices.Contains(c.Labels, l) {
			return true
		}
	}
	return false
}

// Apply returns the cards that match, preserving order
func (c Criteria) Apply(cards []models.Card, today time.Time) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, card := range cards {
		if c.Match(card, today) {
			out = append(out, card)
		}
	}
	return out
}

// ApplyAll filters every column of a board
func (c Criteria) ApplyAll(cards models.Cards, today time.Time) models.Cards {
	out := make(models.Cards, len(models.Columns))
	for _, col := range models.Columns {
		out[col] = c.Apply(cards[col], today)
	}
	return out
}

// LabelOptions lists the labels offered in the filter panel: every label
// in use plus the presets, sorted, followed by NoLabels.
func LabelOptions(cards models.Cards) []string {
	set := make(map[string]bool)
	for _, l := range PresetLabels {
		set[l] = true
	}
	for _, col := range models.Columns {
		for _, card := range cards[col] {
			for _, l := range card.Labels {
				set[l] = true
			}
		}
	}

	labels := make([]string, 0, len(set)+1)
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return append(labels, NoLabels)
}
