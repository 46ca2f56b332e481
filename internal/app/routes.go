package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/minefield/internal/handlers"
	"github.com/vancomm/minefield/internal/middleware"
)

func (a *App) routes() http.Handler {
	router := http.NewServeMux()

	game := handlers.NewGameHandler(a.logger, a.sessions, a.ws)
	router.HandleFunc("GET /levels", game.Levels)
	router.HandleFunc("POST /game", game.NewGame)
	router.HandleFunc("GET /game/{id}", game.Fetch)
	router.HandleFunc("POST /game/{id}/reveal", game.Reveal)
	router.HandleFunc("POST /game/{id}/flag", game.Flag)
	router.HandleFunc("POST /game/{id}/recreate", game.Recreate)
	router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	highscores := handlers.NewHighscoreHandler(a.logger, a.repo)
	router.HandleFunc("GET /highscores", highscores.Fetch)

	auth := handlers.NewAuth(a.logger, a.repo, a.cookies, a.jwt)
	router.HandleFunc("POST /auth/register", auth.Register)
	router.HandleFunc("POST /auth/login", auth.Login)
	router.HandleFunc("POST /auth/logout", auth.Logout)
	router.HandleFunc("GET /auth/status", auth.Status)

	router.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	router.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	return middleware.Wrap(
		router,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(a.ws.AllowedOrigins...),
		middleware.Logging(a.logger, a.metrics),
	)
}
