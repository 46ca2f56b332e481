package mines

import "errors"

var (
	// ErrInvalidParameters is returned when a game cannot be built from the
	// requested width, height and mine count.
	ErrInvalidParameters = errors.New("invalid game parameters")

	// ErrOutOfBounds is returned by every coordinate-taking call when the
	// point lies outside the grid.
	ErrOutOfBounds = errors.New("point out of bounds")

	// ErrLayoutUnsatisfiable is returned by the first reveal when no layout
	// with an opening at the revealed point could be found.
	ErrLayoutUnsatisfiable = errors.New("layout unsatisfiable")
)
