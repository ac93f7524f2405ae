package board

import "errors"

// Sentinel errors for board and card operations.
var (
	ErrBoardNotFound   = errors.New("board: not found")
	ErrDefaultBoard    = errors.New("board: cannot delete the default board")
	ErrLastBoard       = errors.New("board: cannot delete the last board")
	ErrEmptyTitle      = errors.New("board: title is required")
	ErrCardNotFound    = errors.New("board: card not found")
	ErrInvalidColumn   = errors.New("board: invalid column")
	ErrInvalidPriority = errors.New("board: invalid priority")
	ErrInvalidDueDate  = errors.New("board: invalid due date")
)
