package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/repository"
)

type HighscoreRepository interface {
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

type HighscoreHandler struct {
	logger *slog.Logger
	repo   HighscoreRepository
}

func NewHighscoreHandler(logger *slog.Logger, repo HighscoreRepository) *HighscoreHandler {
	return &HighscoreHandler{logger: logger, repo: repo}
}

func (h HighscoreHandler) filter(dto HighscoreQueryDTO) (repository.HighscoreFilter, error) {
	filter := repository.HighscoreFilter{Limit: dto.Limit}
	switch {
	case dto.Level != "":
		params, ok := mines.LevelByName(dto.Level)
		if !ok {
			return filter, ErrUnknownLevel
		}
		filter.GameParams = &params
	case dto.Seed != "":
		params, err := mines.ParseSeed(dto.Seed)
		if err != nil {
			return filter, err
		}
		filter.GameParams = params
	}
	if dto.Username != "" {
		filter.Username = &dto.Username
	}
	return filter, nil
}

func (h HighscoreHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseHighscoreQuery(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	filter, err := h.filter(dto)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := h.repo.GetHighscores(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error(
			"failed to fetch highscores", slog.Any("error", err), slog.Any("filter", filter),
		)
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}
	sendJSONOrLog(w, h.logger, highscores)
}
