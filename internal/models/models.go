package models

import "time"

// DefaultBoardID is the id of the board that always exists
const DefaultBoardID = "default"

// DefaultBoardTitle is the title given to a freshly seeded default board
const DefaultBoardTitle = "Default Board"

// DateLayout is the format of card due dates
const DateLayout = "2006-01-02"

// Column is one of the three fixed task states
type Column string

const (
	ColumnTodo  Column = "todo"
	ColumnDoing Column = "doing"
	ColumnDone  Column = "done"
)

// Columns lists the columns in display order
var Columns = []Column{ColumnTodo, ColumnDoing, ColumnDone}

// Valid reports whether c is one of the fixed columns
func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnDoing, ColumnDone:
		return true
	}
	return false
}

// Title returns the display name of the column
func (c Column) Title() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnDoing:
		return "Doing"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// Priority of a card
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists priorities from lowest to highest
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Normalize maps the empty or unknown priority to none
func (p Priority) Normalize() Priority {
	if p.Valid() {
		return p
	}
	return PriorityNone
}

// Card is a single task on a board
type Card struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      Priority   `json:"priority"`
	DueDate       string     `json:"dueDate"`
	Completed     bool       `json:"completed,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Labels        []string   `json:"labels"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Due parses the card's due date in loc. ok is false when there is no
// date or it cannot be parsed.
func (c Card) Due(loc *time.Location) (time.Time, bool) {
	if c.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, c.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// HasLabel reports whether the card carries label
func (c Card) HasLabel(label string) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Cards maps each column to its ordered list of cards
type Cards map[Column][]Card

// NewCards returns an empty card set with all three columns present
func NewCards() Cards {
	return Cards{
		ColumnTodo:  []Card{},
		ColumnDoing: []Card{},
		ColumnDone:  []Card{},
	}
}

// Ensure fills in any missing column with an empty list
func (c Cards) Ensure() {
	for _, col := range Columns {
		if c[col] == nil {
			c[col] = []Card{}
		}
	}
}

// Find returns the column and index holding the card with id
func (c Cards) Find(id string) (Column, int, bool) {
	for _, col := range Columns {
		for i, card := range c[col] {
			if card.ID == id {
				return col, i, true
			}
		}
	}
	return "", -1, false
}

// Count returns the total number of cards across all columns
func (c Cards) Count() int {
	n := 0
	for _, col := range Columns {
		n += len(c[col])
	}
	return n
}

// Clone returns a deep copy
func (c Cards) Clone() Cards {
	out := make(Cards, len(c))
	for col, list := range c {
		cp := make([]Card, len(list))
		for i, card := range list {
			cp[i] = card.clone()
		}
		out[col] = cp
	}
	return out
}

func (c Card) clone() Card {
	if c.Labels != nil {
		c.Labels = append([]string(nil), c.Labels...)
	}
	if c.CompletedDate != nil {
		t := *c.CompletedDate
		c.CompletedDate = &t
	}
	return c
}

// Board is a named, independent set of the three columns
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Cards     Cards     `json:"cards"`
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	b.Cards = b.Cards.Clone()
	return b
}
