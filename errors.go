package tetris

import "errors"

var (
	// ErrBottomReached signals that a piece could not descend any further
	// and has been locked in place.
	ErrBottomReached = errors.New("tetris: bottom reached")

	// ErrTopReached signals that a new piece could not be placed at the
	// spawn origin. The session is over.
	ErrTopReached = errors.New("tetris: top reached")

	ErrGameOver         = errors.New("tetris: game is over")
	ErrInvalidDirection = errors.New("tetris: invalid direction")
	ErrInvalidAction    = errors.New("tetris: invalid action")
	ErrInvalidKind      = errors.New("tetris: invalid piece kind")

	// ErrOverlap means two pieces claim the same board cell, which the
	// collision checks should have made impossible.
	ErrOverlap = errors.New("tetris: pieces overlap")
)
