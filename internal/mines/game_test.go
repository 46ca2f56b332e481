package mines

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params GameParams
		ok     bool
	}{
		{"1x1 no mines", GameParams{Width: 1, Height: 1, MineCount: 0}, false},
		{"1x1 one mine", GameParams{Width: 1, Height: 1, MineCount: 1}, false},
		{"zero width", GameParams{Width: 0, Height: 5, MineCount: 1}, false},
		{"negative height", GameParams{Width: 5, Height: -1, MineCount: 1}, false},
		{"negative mines", GameParams{Width: 5, Height: 5, MineCount: -3}, false},
		{"full board", GameParams{Width: 5, Height: 5, MineCount: 25}, false},
		{"all but one", GameParams{Width: 5, Height: 5, MineCount: 24}, true},
		{"beginner", GameParams{Width: 9, Height: 9, MineCount: 10}, true},
		{"largest board", GameParams{Width: 256, Height: 256, MineCount: 1}, true},
		{"one cell too many", GameParams{Width: MaxArea + 1, Height: 1, MineCount: 1}, false},
		{"too large", GameParams{Width: 100000, Height: 100000, MineCount: 1}, false},
		{"area overflows", GameParams{Width: math.MaxInt/4 + 1, Height: 4, MineCount: 1}, false},
		{"area overflows negative", GameParams{Width: math.MaxInt/2 + 1, Height: 2, MineCount: 1}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, err := New(test.params, newRand(1))
			if test.ok {
				require.NoError(t, err)
				assert.Equal(t, test.params, g.Params())
			} else {
				assert.ErrorIs(t, err, ErrInvalidParameters)
				assert.Nil(t, g)
			}
		})
	}
}

func TestCommandsRejectOutOfBounds(t *testing.T) {
	t.Parallel()

	g, err := New(GameParams{Width: 9, Height: 9, MineCount: 10}, newRand(1))
	require.NoError(t, err)
	before := snap(g)

	for _, p := range []Point{{-1, 0}, {0, -1}, {9, 0}, {0, 9}, {100, 100}} {
		assert.ErrorIs(t, g.Reveal(p.X, p.Y), ErrOutOfBounds)
		assert.ErrorIs(t, g.ToggleFlag(p.X, p.Y), ErrOutOfBounds)
		_, err := g.Cell(p.X, p.Y)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	}
	assert.Equal(t, before, snap(g))
}

// wall lays a full column of mines at x = 2 on a 5x5 grid.
func wall(t *testing.T) *Game {
	t.Helper()
	g, err := New(GameParams{Width: 5, Height: 5, MineCount: 5}, newRand(1))
	require.NoError(t, err)
	layMines(g, Point{2, 0}, Point{2, 1}, Point{2, 2}, Point{2, 3}, Point{2, 4})
	return g
}

func TestFloodFillStopsAtNumberedBorder(t *testing.T) {
	g := wall(t)

	require.NoError(t, g.Reveal(0, 0))

	for y := range 5 {
		for x := range 5 {
			c := g.grid.cells[y*5+x]
			assert.Equal(t, x < 2, c.IsOpened, "cell %d:%d", x, y)
		}
	}
	assert.False(t, g.IsGameOver())
	assert.Equal(t, 10, g.OpenedCount())
}

func TestFloodFillNumberedCellOpensAlone(t *testing.T) {
	g := wall(t)
	g.firstRevealDone = true

	require.NoError(t, g.Reveal(1, 2))

	assert.Equal(t, 1, g.OpenedCount())
	v, err := g.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v.AdjacentMines)
}

func TestFloodFillSkipsFlags(t *testing.T) {
	g := wall(t)
	require.NoError(t, g.ToggleFlag(0, 4))

	require.NoError(t, g.Reveal(0, 0))

	assert.False(t, g.grid.cells[4*5+0].IsOpened)
	assert.True(t, g.grid.cells[4*5+0].IsFlagged)
	assert.Equal(t, 9, g.OpenedCount())
}

// region computes, independently of the engine, the cells a reveal at x,y
// must open.
func region(g *Grid, x, y int) map[Point]bool {
	seen := map[Point]bool{}
	queue := []Point{{x, y}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		c := g.cells[p.Y*g.width+p.X]
		if c.HasMine || c.IsFlagged {
			continue
		}
		seen[p] = true
		if c.AdjacentMines == 0 {
			queue = append(queue, g.Neighbors(p.X, p.Y)...)
		}
	}
	return seen
}

func TestFloodFillOpensMaximalRegion(t *testing.T) {
	t.Parallel()

	params := GameParams{Width: 30, Height: 16, MineCount: 99}
	for seed := range uint64(50) {
		g, err := New(params, newRand(seed))
		require.NoError(t, err)
		g.firstRevealDone = true

		var start *Point
		for i, c := range g.grid.cells {
			if !c.HasMine && c.AdjacentMines == 0 {
				p := g.grid.point(i)
				start = &p
				break
			}
		}
		if start == nil {
			continue
		}

		want := region(g.grid, start.X, start.Y)
		require.NoError(t, g.Reveal(start.X, start.Y))

		for i, c := range g.grid.cells {
			p := g.grid.point(i)
			assert.Equal(t, want[p], c.IsOpened, "seed %d cell %d:%d", seed, p.X, p.Y)
			if c.HasMine {
				assert.False(t, c.IsOpened)
			}
		}
	}
}

func TestFloodFillLargeGrid(t *testing.T) {
	g, err := New(GameParams{Width: 400, Height: 400, MineCount: 1}, newRand(1))
	require.NoError(t, err)
	layMines(g, Point{399, 399})

	require.NoError(t, g.Reveal(0, 0))

	assert.True(t, g.DidWin())
	assert.Equal(t, 400*400-1, g.OpenedCount())
}

func TestRevealMineEndsGame(t *testing.T) {
	g := wall(t)
	g.firstRevealDone = true
	require.NoError(t, g.ToggleFlag(2, 0))
	require.NoError(t, g.ToggleFlag(4, 4))

	var triggered, won, flagChanges int
	g.OnMineTriggered(func() { triggered++ })
	g.OnWon(func() { won++ })
	g.OnFlagCountChanged(func(int) { flagChanges++ })

	require.NoError(t, g.Reveal(2, 2))

	assert.True(t, g.IsGameOver())
	assert.True(t, g.Dead())
	assert.False(t, g.DidWin())
	assert.Equal(t, 1, triggered)
	assert.Zero(t, won)
	assert.Equal(t, 1, flagChanges)
	assert.Zero(t, g.FlaggedCount())

	p, ok := g.Exploded()
	assert.True(t, ok)
	assert.Equal(t, Point{2, 2}, p)

	for i, c := range g.grid.cells {
		assert.False(t, c.IsFlagged)
		assert.Equal(t, c.HasMine, c.IsOpened, "cell %v", g.grid.point(i))
	}

	view := g.View()
	assert.Equal(t, ExplodedMine, view[2*5+2])
	assert.Equal(t, UnflaggedMine, view[0*5+2])
	assert.Equal(t, Unknown, view[0])
}

func TestCommandsAfterGameOverAreNoops(t *testing.T) {
	tests := []struct {
		name string
		end  func(g *Game)
	}{
		{"mine", func(g *Game) {
			g.firstRevealDone = true
			_ = g.Reveal(2, 3)
		}},
		{"won", func(g *Game) {
			for y := range 5 {
				_ = g.ToggleFlag(2, y)
			}
		}},
		{"timeout", func(g *Game) { g.Expire() }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := wall(t)
			test.end(g)
			require.True(t, g.IsGameOver())

			var events int
			g.Subscribe(func(Event) { events++ })
			before := snap(g)

			for y := range 5 {
				for x := range 5 {
					require.NoError(t, g.Reveal(x, y))
					require.NoError(t, g.ToggleFlag(x, y))
				}
			}
			g.Expire()

			assert.Equal(t, before, snap(g))
			assert.Zero(t, events)
		})
	}
}

func TestRevealGuards(t *testing.T) {
	g := wall(t)
	g.firstRevealDone = true

	require.NoError(t, g.ToggleFlag(2, 2))
	before := snap(g)
	require.NoError(t, g.Reveal(2, 2))
	assert.Equal(t, before, snap(g))

	require.NoError(t, g.Reveal(1, 1))
	before = snap(g)
	require.NoError(t, g.Reveal(1, 1))
	assert.Equal(t, before, snap(g))

	// an opened cell cannot be flagged
	require.NoError(t, g.ToggleFlag(1, 1))
	assert.Equal(t, before, snap(g))
}

func TestFlaggedCellDoesNotConsumeFirstReveal(t *testing.T) {
	g := wall(t)
	require.NoError(t, g.ToggleFlag(0, 0))

	require.NoError(t, g.Reveal(0, 0))

	assert.False(t, g.FirstRevealDone())
	assert.Zero(t, g.OpenedCount())
}

func TestFlagBudget(t *testing.T) {
	g, err := New(GameParams{Width: 4, Height: 4, MineCount: 2}, newRand(1))
	require.NoError(t, err)
	layMines(g, Point{3, 3}, Point{3, 2})

	var counts []int
	g.OnFlagCountChanged(func(n int) { counts = append(counts, n) })

	require.NoError(t, g.ToggleFlag(0, 0))
	require.NoError(t, g.ToggleFlag(1, 0))
	assert.Equal(t, 2, g.FlaggedCount())

	before := snap(g)
	require.NoError(t, g.ToggleFlag(2, 0))
	assert.Equal(t, before, snap(g), "flag past the budget")
	assert.False(t, g.grid.cells[2].IsFlagged)

	require.NoError(t, g.ToggleFlag(1, 0))
	assert.Equal(t, 1, g.FlaggedCount())
	require.NoError(t, g.ToggleFlag(2, 0))
	assert.Equal(t, 2, g.FlaggedCount())

	assert.Equal(t, []int{1, 2, 1, 2}, counts)
	assert.False(t, g.IsGameOver())
}

func TestFlaggedCountMatchesFlags(t *testing.T) {
	t.Parallel()

	r := newRand(11)
	g, err := New(GameParams{Width: 8, Height: 8, MineCount: 12}, r)
	require.NoError(t, err)

	for range 500 {
		if g.IsGameOver() {
			break
		}
		_ = g.ToggleFlag(r.IntN(8), r.IntN(8))

		flags := 0
		for _, c := range g.grid.cells {
			if c.IsFlagged {
				flags++
			}
		}
		assert.Equal(t, flags, g.FlaggedCount())
		assert.LessOrEqual(t, g.FlaggedCount(), 12)
	}
}

func TestWinByFlaggingEveryMine(t *testing.T) {
	g := wall(t)

	var won int
	var kinds []EventKind
	g.OnWon(func() { won++ })
	g.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	for y := range 4 {
		require.NoError(t, g.ToggleFlag(2, y))
		assert.False(t, g.IsGameOver())
	}
	require.NoError(t, g.ToggleFlag(2, 4))

	assert.True(t, g.IsGameOver())
	assert.True(t, g.DidWin())
	assert.False(t, g.Dead())
	assert.Equal(t, 1, won)
	assert.Equal(t, 5, g.FlaggedCount())
	assert.Equal(t, []EventKind{
		FlagCountChanged, FlagCountChanged, FlagCountChanged, FlagCountChanged,
		FlagCountChanged, FlagCountChanged, Won,
	}, kinds)
}

func TestWrongFlagsDoNotWin(t *testing.T) {
	g := wall(t)

	for y := range 4 {
		require.NoError(t, g.ToggleFlag(2, y))
	}
	require.NoError(t, g.ToggleFlag(0, 0))

	assert.False(t, g.IsGameOver())
	assert.Equal(t, 4, g.flaggedMines())
}

func TestWinByOpeningEverySafeCell(t *testing.T) {
	g := wall(t)
	require.NoError(t, g.ToggleFlag(4, 0))

	var won int
	g.OnWon(func() { won++ })

	require.NoError(t, g.Reveal(0, 0))
	assert.False(t, g.IsGameOver())

	// the flag on 4:0 keeps the right side from being complete
	require.NoError(t, g.Reveal(4, 2))
	assert.False(t, g.IsGameOver())
	require.NoError(t, g.ToggleFlag(4, 0))
	require.NoError(t, g.Reveal(4, 0))

	assert.True(t, g.DidWin())
	assert.Equal(t, 1, won)
	assert.Equal(t, 5, g.FlaggedCount())
	for _, c := range g.grid.cells {
		assert.Equal(t, c.HasMine, c.IsFlagged)
		assert.Equal(t, !c.HasMine, c.IsOpened)
	}
}

func TestExpire(t *testing.T) {
	g := wall(t)
	require.NoError(t, g.ToggleFlag(0, 0))

	var timedOut int
	g.OnTimedOut(func() { timedOut++ })

	g.Expire()
	g.Expire()

	assert.Equal(t, 1, timedOut)
	assert.True(t, g.IsGameOver())
	assert.True(t, g.TimedOut())
	assert.True(t, g.Dead())
	assert.Zero(t, g.FlaggedCount())
	_, exploded := g.Exploded()
	assert.False(t, exploded)
	for _, c := range g.grid.cells {
		assert.Equal(t, c.HasMine, c.IsOpened)
	}
}

func TestRecreate(t *testing.T) {
	g, err := New(GameParams{Width: 9, Height: 9, MineCount: 10}, newRand(1))
	require.NoError(t, err)

	var kinds []EventKind
	g.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	require.NoError(t, g.Reveal(4, 4))
	require.NoError(t, g.ToggleFlag(0, 0))
	g.Expire()
	require.True(t, g.IsGameOver())

	g.Recreate()

	assert.False(t, g.IsGameOver())
	assert.False(t, g.DidWin())
	assert.False(t, g.TimedOut())
	assert.False(t, g.FirstRevealDone())
	assert.Zero(t, g.FlaggedCount())
	assert.Zero(t, g.OpenedCount())
	assert.Equal(t, 10, countMines(g.grid))
	assert.Equal(t, Recreated, kinds[len(kinds)-1])

	require.NoError(t, g.Reveal(4, 4))
	assert.True(t, g.grid.isOpening(4, 4))
}

func TestUnsubscribe(t *testing.T) {
	g := wall(t)

	var a, b int
	stopA := g.OnFlagCountChanged(func(int) { a++ })
	g.OnFlagCountChanged(func(int) { b++ })

	require.NoError(t, g.ToggleFlag(0, 0))
	stopA()
	stopA()
	require.NoError(t, g.ToggleFlag(0, 0))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestCellViewHidesLayout(t *testing.T) {
	g := wall(t)
	g.firstRevealDone = true

	v, err := g.Cell(2, 0)
	require.NoError(t, err)
	assert.Equal(t, CellView{}, v)

	require.NoError(t, g.Reveal(1, 0))
	v, err = g.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, CellView{IsOpened: true, Exposed: true, AdjacentMines: 2}, v)

	g.Expire()
	v, err = g.Cell(4, 4)
	require.NoError(t, err)
	assert.Equal(t, CellView{Exposed: true}, v)
	v, err = g.Cell(2, 4)
	require.NoError(t, err)
	assert.Equal(t, CellView{IsOpened: true, Exposed: true, HasMine: true}, v)
}
