package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/session"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newGameRouter(t *testing.T) (*http.ServeMux, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(session.Options{
		Clock: clock.NewMock(),
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	t.Cleanup(sessions.Close)

	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	game := NewGameHandler(discard, sessions, ws)
	router := http.NewServeMux()
	router.HandleFunc("GET /levels", game.Levels)
	router.HandleFunc("POST /game", game.NewGame)
	router.HandleFunc("GET /game/{id}", game.Fetch)
	router.HandleFunc("POST /game/{id}/reveal", game.Reveal)
	router.HandleFunc("POST /game/{id}/flag", game.Flag)
	router.HandleFunc("POST /game/{id}/recreate", game.Recreate)
	router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)
	return router, sessions
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
