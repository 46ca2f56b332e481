package app

import (
	"context"

	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
)

// resultStore records finished games for the leaderboards.
type resultStore struct {
	repo *repository.Queries
}

func (s resultStore) SaveResult(ctx context.Context, r session.Result) error {
	_, err := s.repo.CreateGameResult(ctx, resultParams(r))
	return err
}

func resultParams(r session.Result) repository.CreateGameResultParams {
	return repository.CreateGameResultParams{
		SessionId:  r.SessionID,
		Generation: r.Generation,
		PlayerId:   r.PlayerID,
		Width:      r.Params.Width,
		Height:     r.Params.Height,
		MineCount:  r.Params.MineCount,
		Won:        r.Won,
		TimedOut:   r.TimedOut,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}
