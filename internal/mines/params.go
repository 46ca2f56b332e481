package mines

import (
	"fmt"
	"math"
	"strings"
)

// Boards larger than MaxArea cells are refused so a single request cannot
// claim an unbounded amount of memory.
const MaxArea = 1 << 16

type GameParams struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	MineCount int `json:"mine_count"`
}

func (p GameParams) Unpack() (w int, h int, mc int) {
	return p.Width, p.Height, p.MineCount
}

func (p GameParams) Area() int {
	return p.Width * p.Height
}

// Validate reports [ErrInvalidParameters] unless the board is non-empty, no
// larger than [MaxArea] and holds at least one mine and one mine-free cell.
func (p GameParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidParameters, p.Width, p.Height)
	}
	if p.Width > math.MaxInt/p.Height || p.Area() > MaxArea {
		return fmt.Errorf(
			"%w: size %dx%d exceeds %d cells",
			ErrInvalidParameters, p.Width, p.Height, MaxArea,
		)
	}
	if p.MineCount <= 0 || p.MineCount >= p.Area() {
		return fmt.Errorf(
			"%w: %d mines on a %dx%d grid",
			ErrInvalidParameters, p.MineCount, p.Width, p.Height,
		)
	}
	return nil
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, p.Validate()
}

func (p GameParams) PointInBounds(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

func (p GameParams) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Width, p.Height, p.MineCount)
}

type Level struct {
	Name string `json:"name"`
	GameParams
}

var Levels = []Level{
	{"beginner", GameParams{Width: 9, Height: 9, MineCount: 10}},
	{"intermediate", GameParams{Width: 16, Height: 16, MineCount: 40}},
	{"expert", GameParams{Width: 30, Height: 16, MineCount: 99}},
}

// CustomLevel names every board that is not one of [Levels].
const CustomLevel = "custom"

// LevelName returns the name of the preset p matches, or [CustomLevel].
func (p GameParams) LevelName() string {
	for _, l := range Levels {
		if l.GameParams == p {
			return l.Name
		}
	}
	return CustomLevel
}

func LevelByName(name string) (GameParams, bool) {
	for _, l := range Levels {
		if strings.EqualFold(l.Name, name) {
			return l.GameParams, true
		}
	}
	return GameParams{}, false
}
