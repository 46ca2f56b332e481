package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/repository"
)

type PlayerRepository interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type Auth struct {
	logger  *slog.Logger
	repo    PlayerRepository
	cookies *config.Cookies
	jwt     *config.JWT
}

func NewAuth(
	logger *slog.Logger,
	repo PlayerRepository,
	cookies *config.Cookies,
	jwt *config.JWT,
) *Auth {
	return &Auth{
		logger:  logger,
		repo:    repo,
		cookies: cookies,
		jwt:     jwt,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken      = fmt.Errorf("username taken")
	ErrBadCredentials     = fmt.Errorf("wrong username or password")
)

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	status := &Status{LoggedIn: false}
	if claims, ok := middleware.PlayerClaims(r); ok {
		status = &Status{
			LoggedIn: true,
			Player:   &PlayerInfo{claims.PlayerId, claims.Username},
		}
		a.logger.Debug("refresh cookies")
		if !a.login(w, claims.PlayerId, claims.Username) {
			return
		}
	}
	sendJSONOrLog(w, a.logger, status)
}

type credentials struct {
	username, password string
}

func parseCredentials(r *http.Request) (*credentials, error) {
	if err := r.ParseForm(); err != nil {
		return nil, ErrBadAuthBody
	}
	c := &credentials{
		username: r.FormValue("username"),
		password: r.FormValue("password"),
	}
	if c.username == "" || c.password == "" {
		return nil, ErrBadAuthBody
	}
	// bcrypt ignores everything past 72 bytes
	if len([]byte(c.password)) > 72 {
		return nil, ErrBadPasswordTooLong
	}
	return c, nil
}

// login signs fresh claims into the auth cookies.
func (a Auth) login(w http.ResponseWriter, playerId int64, username string) bool {
	token, err := a.jwt.Sign(config.NewPlayerClaims(playerId, username, a.jwt.TokenLifetime()))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to create a jwt token", slog.Any("error", err))
		return false
	}
	if err := a.cookies.Refresh(w, token); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("failed to set auth cookies", slog.Any("error", err))
		return false
	}
	return true
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	creds, err := parseCredentials(r)
	if err != nil {
		sendError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.password), bcrypt.DefaultCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to hash password", slog.Any("error", err))
		return
	}

	player, err := a.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     creds.username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		sendError(w, a.logger, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to insert player", slog.Any("error", err))
		return
	}

	if !a.login(w, player.PlayerId, player.Username) {
		return
	}
	sendJSONOrLog(w, a.logger, &PlayerInfo{player.PlayerId, player.Username})
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := parseCredentials(r)
	if err != nil {
		sendError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	player, err := a.repo.FetchPlayer(r.Context(), creds.username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("could not fetch player from db", slog.Any("error", err))
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(creds.password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("bcrypt compare error", slog.Any("error", err))
		return
	}

	if !a.login(w, player.PlayerId, player.Username) {
		return
	}
	sendJSONOrLog(w, a.logger, &PlayerInfo{player.PlayerId, player.Username})
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
