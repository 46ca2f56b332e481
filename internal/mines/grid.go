package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Cell struct {
	HasMine   bool
	IsOpened  bool
	IsFlagged bool
	// AdjacentMines only makes sense for mine-free cells.
	AdjacentMines int
}

// Grid is a fixed-size row-major field of cells.
type Grid struct {
	width, height int
	cells         []Cell
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(x, y int) bool {
	return 0 <= x && x < g.width && 0 <= y && y < g.height
}

func (g *Grid) index(x, y int) (int, error) {
	if !g.InBounds(x, y) {
		return -1, fmt.Errorf(
			"%w: %d:%d on a %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height,
		)
	}
	return y*g.width + x, nil
}

func (g *Grid) point(i int) Point {
	return Point{X: i % g.width, Y: i / g.width}
}

func (g *Grid) At(x, y int) (Cell, error) {
	i, err := g.index(x, y)
	if err != nil {
		return Cell{}, err
	}
	return g.cells[i], nil
}

func (g *Grid) Set(x, y int, c Cell) error {
	i, err := g.index(x, y)
	if err != nil {
		return err
	}
	g.cells[i] = c
	return nil
}

// Neighbors returns the in-bounds points around x,y, diagonals included.
func (g *Grid) Neighbors(x, y int) []Point {
	points := make([]Point, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.InBounds(x+dx, y+dy) {
				points = append(points, Point{x + dx, y + dy})
			}
		}
	}
	return points
}

func (g *Grid) mineAt(p Point) bool {
	return g.cells[p.Y*g.width+p.X].HasMine
}

func (g *Grid) clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// String draws the real layout: mines as '*', everything else as its count.
func (g *Grid) String() string {
	var b strings.Builder
	for y := range g.height {
		for x := range g.width {
			c := g.cells[y*g.width+x]
			switch {
			case c.HasMine:
				b.WriteString("* ")
			case c.AdjacentMines == 0:
				b.WriteString(". ")
			default:
				b.WriteString(strconv.Itoa(c.AdjacentMines) + " ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

type CellState int8

const (
	Unknown       CellState = -2
	Flagged       CellState = -1
	ExplodedMine  CellState = 65
	UnflaggedMine CellState = 67
	/*
	 * Each item in a player grid is one of the following values:
	 *
	 *  - 0 to 8 mean the cell is open and has a surrounding mine
	 *    count.
	 *
	 *  - -1 means the cell is flagged.
	 *
	 *  - -2 means the cell is closed.
	 *
	 *  - 65 means the cell is the mine the player stepped on.
	 *
	 *  - 67 means the cell is a mine opened once the game was over.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return " "
	case s == Flagged:
		return "F"
	case s == ExplodedMine:
		return "X"
	case s == UnflaggedMine:
		return "*"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// PlayerGrid is what a renderer is allowed to see.
type PlayerGrid []CellState

func (g PlayerGrid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
