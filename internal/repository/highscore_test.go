package repository

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vancomm/minefield/internal/mines"
)

func TestHighscoreFilterWhereClause(t *testing.T) {
	username := "ada"
	params := mines.GameParams{Width: 16, Height: 16, MineCount: 40}

	tests := []struct {
		name   string
		filter HighscoreFilter
		clause string
		args   pgx.NamedArgs
	}{
		{
			name:   "empty",
			filter: HighscoreFilter{},
			clause: "",
			args:   pgx.NamedArgs{},
		},
		{
			name:   "username",
			filter: HighscoreFilter{Username: &username},
			clause: "username = @username",
			args:   pgx.NamedArgs{"username": "ada"},
		},
		{
			name:   "params",
			filter: HighscoreFilter{GameParams: &params},
			clause: "width = @width AND height = @height AND mine_count = @mineCount",
			args:   pgx.NamedArgs{"width": 16, "height": 16, "mineCount": 40},
		},
		{
			name:   "both",
			filter: HighscoreFilter{Username: &username, GameParams: &params},
			clause: "username = @username AND width = @width AND height = @height AND mine_count = @mineCount",
			args: pgx.NamedArgs{
				"username": "ada", "width": 16, "height": 16, "mineCount": 40,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clause, args := test.filter.WhereClause()
			assert.Equal(t, test.clause, clause)
			assert.Equal(t, test.args, args)
		})
	}
}

func TestCreateGameResultArgs(t *testing.T) {
	playerId := int64(3)
	p := CreateGameResultParams{PlayerId: &playerId, Width: 9, Height: 9, MineCount: 10, Won: true}

	args := p.Args()
	assert.Equal(t, int64(3), args["player_id"])
	assert.Equal(t, true, args["won"])

	p.PlayerId = nil
	assert.Nil(t, p.Args()["player_id"])
}
