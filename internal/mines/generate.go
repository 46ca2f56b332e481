package mines

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// MaxLayoutAttempts caps how many fresh layouts the first reveal tries
// before giving up with [ErrLayoutUnsatisfiable].
const MaxLayoutAttempts = 10000

// placeMines lays exactly mineCount mines over the grid, every layout being
// equally likely, and recounts the neighbours. Player marks are kept.
func (g *Grid) placeMines(mineCount int, r *rand.Rand) {
	layout := make([]bool, len(g.cells))
	for i := range mineCount {
		layout[i] = true
	}
	r.Shuffle(len(layout), func(i, j int) {
		layout[i], layout[j] = layout[j], layout[i]
	})
	for i, mine := range layout {
		g.cells[i].HasMine = mine
	}
	g.countAdjacent()
}

func (g *Grid) countAdjacent() {
	for i := range g.cells {
		g.cells[i].AdjacentMines = 0
		if g.cells[i].HasMine {
			continue
		}
		p := g.point(i)
		for _, n := range g.Neighbors(p.X, p.Y) {
			if g.mineAt(n) {
				g.cells[i].AdjacentMines++
			}
		}
	}
}

func (g *Grid) isOpening(x, y int) bool {
	c := g.cells[y*g.width+x]
	return !c.HasMine && c.AdjacentMines == 0
}

// ensureOpening regenerates the layout until x,y is a mine-free cell with
// no mined neighbours. On failure the layout is left untouched.
func (g *Game) ensureOpening(x, y int) error {
	if g.grid.isOpening(x, y) {
		return nil
	}

	free := g.params.Area() - len(g.grid.Neighbors(x, y)) - 1
	if g.params.MineCount > free {
		return fmt.Errorf(
			"%w: %s has no room for an opening at %d:%d",
			ErrLayoutUnsatisfiable, g.params, x, y,
		)
	}

	backup := g.grid.clone()
	for attempt := 1; attempt <= MaxLayoutAttempts; attempt++ {
		g.grid.placeMines(g.params.MineCount, g.rnd)
		if g.grid.isOpening(x, y) {
			Log.WithFields(logrus.Fields{
				"params":   g.params.Seed(),
				"x":        x,
				"y":        y,
				"attempts": attempt,
			}).Debug("regenerated layout for first reveal")
			return nil
		}
	}
	g.grid = backup

	Log.WithFields(logrus.Fields{
		"params": g.params.Seed(),
		"x":      x,
		"y":      y,
	}).Warn("gave up looking for an opening")
	return fmt.Errorf(
		"%w: no opening at %d:%d after %d attempts",
		ErrLayoutUnsatisfiable, x, y, MaxLayoutAttempts,
	)
}
