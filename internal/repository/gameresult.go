package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type GameResult struct {
	GameResultId int64              `db:"game_result_id"`
	SessionId    uuid.UUID          `db:"session_id"`
	Generation   int                `db:"generation"`
	PlayerId     *int64             `db:"player_id"`
	Width        int                `db:"width"`
	Height       int                `db:"height"`
	MineCount    int                `db:"mine_count"`
	Won          bool               `db:"won"`
	TimedOut     bool               `db:"timed_out"`
	StartedAt    time.Time          `db:"started_at"`
	EndedAt      time.Time          `db:"ended_at"`
	CreatedAt    pgtype.Timestamptz `db:"created_at"`
}

type CreateGameResultParams struct {
	SessionId  uuid.UUID
	Generation int
	PlayerId   *int64
	Width      int
	Height     int
	MineCount  int
	Won        bool
	TimedOut   bool
	StartedAt  time.Time
	EndedAt    time.Time
}

func (p CreateGameResultParams) Args() pgx.NamedArgs {
	args := pgx.NamedArgs{
		"session_id": p.SessionId.String(),
		"generation": p.Generation,
		"player_id":  nil,
		"width":      p.Width,
		"height":     p.Height,
		"mine_count": p.MineCount,
		"won":        p.Won,
		"timed_out":  p.TimedOut,
		"started_at": p.StartedAt.UTC(),
		"ended_at":   p.EndedAt.UTC(),
	}
	if p.PlayerId != nil {
		args["player_id"] = *p.PlayerId
	}
	return args
}

func (q *Queries) CreateGameResult(
	ctx context.Context, params CreateGameResultParams,
) (*GameResult, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_result (
			session_id, generation, player_id, width, height, mine_count,
			won, timed_out, started_at, ended_at
		)
		VALUES (
			@session_id, @generation, @player_id, @width, @height, @mine_count,
			@won, @timed_out, @started_at, @ended_at
		)
		RETURNING *;`,
		params.Args(),
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameResult],
	)
}
