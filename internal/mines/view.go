package mines

// CellView is the read-only face of a cell. HasMine and AdjacentMines are
// only filled in when Exposed is set, that is once the cell is opened or the
// game is over.
type CellView struct {
	IsOpened      bool `json:"opened"`
	IsFlagged     bool `json:"flagged"`
	Exposed       bool `json:"exposed"`
	HasMine       bool `json:"mine,omitempty"`
	AdjacentMines int  `json:"adjacent_mines,omitempty"`
}

func (g *Game) Cell(x, y int) (CellView, error) {
	c, err := g.grid.At(x, y)
	if err != nil {
		return CellView{}, err
	}
	v := CellView{IsOpened: c.IsOpened, IsFlagged: c.IsFlagged}
	if c.IsOpened || g.gameOver {
		v.Exposed = true
		v.HasMine = c.HasMine
		if !c.HasMine {
			v.AdjacentMines = c.AdjacentMines
		}
	}
	return v, nil
}

// View encodes the player's knowledge of the field, one [CellState] per cell
// in row-major order.
func (g *Game) View() PlayerGrid {
	view := make(PlayerGrid, len(g.grid.cells))
	for i, c := range g.grid.cells {
		switch {
		case c.IsFlagged:
			view[i] = Flagged
		case !c.IsOpened:
			view[i] = Unknown
		case c.HasMine:
			if g.exploded != nil && g.grid.point(i) == *g.exploded {
				view[i] = ExplodedMine
			} else {
				view[i] = UnflaggedMine
			}
		default:
			view[i] = CellState(c.AdjacentMines)
		}
	}
	return view
}

// Exploded returns the mine that ended the game, if any.
func (g *Game) Exploded() (Point, bool) {
	if g.exploded == nil {
		return Point{}, false
	}
	return *g.exploded, true
}

func (g *Game) OpenedCount() (n int) {
	for _, c := range g.grid.cells {
		if c.IsOpened && !c.HasMine {
			n++
		}
	}
	return
}
