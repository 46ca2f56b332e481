// custom query
package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minefield/internal/mines"
)

const DefaultHighscoreLimit = 100

type Highscore struct {
	SessionId  string  `json:"session_id" db:"session_id"`
	Username   *string `json:"username" db:"username"`
	Width      int     `json:"width" db:"width"`
	Height     int     `json:"height" db:"height"`
	MineCount  int     `json:"mine_count" db:"mine_count"`
	PlaytimeMs float64 `json:"playtime_ms" db:"playtime_ms"`
}

type HighscoreFilter struct {
	Username   *string
	GameParams *mines.GameParams
	Limit      int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mineCount",
		)
		args["width"] = f.GameParams.Width
		args["height"] = f.GameParams.Height
		args["mineCount"] = f.GameParams.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		session_id::text,
		username,
		width,
		height,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_result
		LEFT OUTER JOIN player using (player_id)
	WHERE
		won = true
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHighscoreLimit
	}
	args["limit"] = limit
	query += " ORDER BY playtime_ms LIMIT @limit;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
