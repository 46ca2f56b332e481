package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

var ErrInvalidSessionId = errors.New("invalid game session id")

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Manager
	ws       *config.WebSocket
}

func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Manager,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		ws:       ws,
	}
}

// statusOf maps session and engine errors onto response codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, mines.ErrInvalidParameters),
		errors.Is(err, ErrInvalidSessionId),
		errors.Is(err, ErrUnknownLevel):
		return http.StatusBadRequest
	case errors.Is(err, mines.ErrLayoutUnsatisfiable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (g GameHandler) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		g.logger.Error("unable to handle game request", slog.Any("error", err))
	}
	sendError(w, g.logger, status, err)
}

func (g GameHandler) session(r *http.Request) (*session.Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrInvalidSessionId
	}
	return g.sessions.Get(id)
}

func (g GameHandler) Levels(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, mines.Levels)
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseGameParams(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	var playerId *int64
	if claims, loggedIn := middleware.PlayerClaims(r); loggedIn {
		playerId = claims.ID()
	}

	s, err := g.sessions.Create(params, playerId)
	if err != nil {
		g.fail(w, err)
		return
	}

	g.logger.Debug(
		"created game session",
		slog.String("id", s.ID().String()),
		slog.String("params", params.String()),
		slog.Bool("anonymous", playerId == nil),
	)
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(s.Snapshot()))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		g.fail(w, err)
		return
	}
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(s.Snapshot()))
}

func (g GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	g.move(w, r, (*session.Session).Reveal)
}

func (g GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	g.move(w, r, (*session.Session).ToggleFlag)
}

type moveFunc func(*session.Session, context.Context, int, int) (session.Snapshot, error)

func (g GameHandler) move(w http.ResponseWriter, r *http.Request, fn moveFunc) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, err := g.session(r)
	if err != nil {
		g.fail(w, err)
		return
	}

	snap, err := fn(s, r.Context(), pos.X, pos.Y)
	if err != nil {
		g.fail(w, err)
		return
	}
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(snap))
}

func (g GameHandler) Recreate(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		g.fail(w, err)
		return
	}
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(s.Recreate()))
}
