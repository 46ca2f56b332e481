package handlers

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

var ErrUnknownLevel = errors.New("unknown level")

type CreateNewGameDTO struct {
	Level     string `schema:"level"`
	Width     int    `schema:"width"`
	Height    int    `schema:"height"`
	MineCount int    `schema:"mine_count"`
}

// ParseGameParams reads either a level name or explicit dimensions.
func ParseGameParams(src url.Values) (mines.GameParams, error) {
	var dto CreateNewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.GameParams{}, err
	}
	if dto.Level != "" {
		params, ok := mines.LevelByName(dto.Level)
		if !ok {
			return mines.GameParams{}, fmt.Errorf("%w %q", ErrUnknownLevel, dto.Level)
		}
		return params, nil
	}
	params := mines.GameParams{
		Width:     dto.Width,
		Height:    dto.Height,
		MineCount: dto.MineCount,
	}
	return params, params.Validate()
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

func ParsePosition(src url.Values) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type HighscoreQueryDTO struct {
	Level    string `schema:"level"`
	Seed     string `schema:"seed"`
	Username string `schema:"username"`
	Limit    int    `schema:"limit"`
}

func ParseHighscoreQuery(src url.Values) (HighscoreQueryDTO, error) {
	var dto HighscoreQueryDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type GameSessionDTO struct {
	GameSessionId string           `json:"game_session_id"`
	Generation    int              `json:"generation"`
	Grid          mines.PlayerGrid `json:"grid"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	MineCount     int              `json:"mine_count"`
	FlaggedCount  int              `json:"flagged_count"`
	Dead          bool             `json:"dead"`
	Won           bool             `json:"won"`
	TimedOut      bool             `json:"timed_out"`
	SecondsLeft   int              `json:"seconds_left"`
	StartedAt     int64            `json:"started_at"`
	EndedAt       *int64           `json:"ended_at,omitempty"`
	Events        []mines.Event    `json:"events,omitempty"`
}

func NewGameSessionDTO(s session.Snapshot) *GameSessionDTO {
	var endedAt *int64
	if s.EndedAt != nil {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		GameSessionId: s.ID.String(),
		Generation:    s.Generation,
		Grid:          s.Grid,
		Width:         s.Params.Width,
		Height:        s.Params.Height,
		MineCount:     s.Params.MineCount,
		FlaggedCount:  s.FlaggedCount,
		Dead:          s.Dead,
		Won:           s.Won,
		TimedOut:      s.TimedOut,
		SecondsLeft:   s.SecondsLeft,
		StartedAt:     s.StartedAt.UnixMilli(),
		EndedAt:       endedAt,
		Events:        s.Events,
	}
}
