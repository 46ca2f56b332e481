package mines

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Game is the authoritative state of one minefield. It is not safe for
// concurrent use: callers run one command at a time.
type Game struct {
	params GameParams
	grid   *Grid
	rnd    *rand.Rand

	flaggedCount    int
	firstRevealDone bool
	gameOver        bool
	won             bool
	timedOut        bool
	exploded        *Point

	listeners listeners
}

func New(params GameParams, r *rand.Rand) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := &Game{params: params, rnd: r}
	g.reset()
	return g, nil
}

func (g *Game) reset() {
	g.grid = NewGrid(g.params.Width, g.params.Height)
	g.grid.placeMines(g.params.MineCount, g.rnd)
	g.flaggedCount = 0
	g.firstRevealDone = false
	g.gameOver = false
	g.won = false
	g.timedOut = false
	g.exploded = nil
}

// Recreate throws away the whole field and lays out a new one with the same
// parameters. Subscriptions survive.
func (g *Game) Recreate() {
	g.reset()
	g.listeners.emit(Event{Kind: Recreated})
}

func (g *Game) Reveal(x, y int) error {
	i, err := g.grid.index(x, y)
	if err != nil {
		return err
	}
	if g.gameOver {
		return nil
	}
	if c := g.grid.cells[i]; c.IsOpened || c.IsFlagged {
		return nil
	}

	if !g.firstRevealDone {
		if err := g.ensureOpening(x, y); err != nil {
			return err
		}
		g.firstRevealDone = true
	}

	if g.grid.cells[i].HasMine {
		g.grid.cells[i].IsOpened = true
		g.gameOver = true
		g.exploded = &Point{x, y}
		g.listeners.emit(Event{
			Kind:         MineTriggered,
			FlaggedCount: g.flaggedCount,
			Point:        g.exploded,
		})
		g.revealMines()
		return nil
	}

	g.floodFill(x, y)
	g.checkWin()
	return nil
}

// floodFill opens x,y and, through a work-list, the whole zero region it
// belongs to together with its numbered border. Mines are never opened.
// Cells are opened as they are queued so each one is queued at most once.
func (g *Game) floodFill(x, y int) {
	var todo []Point
	open := func(p Point) {
		c := &g.grid.cells[p.Y*g.grid.width+p.X]
		if c.IsOpened || c.IsFlagged || c.HasMine {
			return
		}
		c.IsOpened = true
		if c.AdjacentMines == 0 {
			todo = append(todo, p)
		}
	}

	open(Point{x, y})
	for len(todo) > 0 {
		p := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		for _, n := range g.grid.Neighbors(p.X, p.Y) {
			open(n)
		}
	}
}

// revealMines opens every mine and drops every flag. It is a teardown step
// and does not evaluate the outcome again.
func (g *Game) revealMines() {
	for i := range g.grid.cells {
		c := &g.grid.cells[i]
		c.IsFlagged = false
		if c.HasMine {
			c.IsOpened = true
		}
	}
	if g.flaggedCount != 0 {
		g.flaggedCount = 0
		g.listeners.emit(Event{Kind: FlagCountChanged})
	}
}

func (g *Game) ToggleFlag(x, y int) error {
	i, err := g.grid.index(x, y)
	if err != nil {
		return err
	}
	if g.gameOver {
		return nil
	}
	c := &g.grid.cells[i]
	if c.IsOpened {
		return nil
	}
	if !c.IsFlagged && g.flaggedCount >= g.params.MineCount {
		return nil
	}

	c.IsFlagged = !c.IsFlagged
	if c.IsFlagged {
		g.flaggedCount++
	} else {
		g.flaggedCount--
	}
	g.listeners.emit(Event{
		Kind:         FlagCountChanged,
		FlaggedCount: g.flaggedCount,
		Point:        &Point{x, y},
	})

	g.checkWin()
	return nil
}

// Expire ends a running game as lost on time.
func (g *Game) Expire() {
	if g.gameOver {
		return
	}
	g.gameOver = true
	g.timedOut = true
	g.revealMines()
	g.listeners.emit(Event{Kind: TimedOut})
}

func (g *Game) flaggedMines() (n int) {
	for _, c := range g.grid.cells {
		if c.HasMine && c.IsFlagged {
			n++
		}
	}
	return
}

func (g *Game) allSafeOpened() bool {
	for _, c := range g.grid.cells {
		if !c.HasMine && !c.IsOpened {
			return false
		}
	}
	return true
}

func (g *Game) checkWin() {
	if g.gameOver {
		return
	}
	if g.flaggedMines() != g.params.MineCount && !g.allSafeOpened() {
		return
	}

	g.gameOver = true
	g.won = true
	for i := range g.grid.cells {
		g.grid.cells[i].IsFlagged = g.grid.cells[i].HasMine
	}
	g.flaggedCount = g.params.MineCount

	g.listeners.emit(Event{Kind: FlagCountChanged, FlaggedCount: g.flaggedCount})
	g.listeners.emit(Event{Kind: Won, FlaggedCount: g.flaggedCount})
}

func (g *Game) Params() GameParams    { return g.params }
func (g *Game) FlaggedCount() int     { return g.flaggedCount }
func (g *Game) IsGameOver() bool      { return g.gameOver }
func (g *Game) DidWin() bool          { return g.won }
func (g *Game) TimedOut() bool        { return g.timedOut }
func (g *Game) FirstRevealDone() bool { return g.firstRevealDone }

// Dead reports a game lost either on a mine or on time.
func (g *Game) Dead() bool { return g.gameOver && !g.won }
