package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr        = ":8080"
	DefaultTimeLimit   = 999
	DefaultIdleTimeout = 30 * time.Minute
)

// LoadEnv reads .env files into the environment without overriding
// variables that are already set. Missing files are not an error.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("unable to load %s: %w", name, err)
		}
	}
	return nil
}

type App struct {
	Addr     string
	BasePath string
	// TimeLimit is the countdown length of every game, in seconds.
	TimeLimit   int
	IdleTimeout time.Duration
	LogFile     string
}

func NewApp() (*App, error) {
	app := &App{
		Addr:        DefaultAddr,
		BasePath:    os.Getenv("APP_BASE_PATH"),
		TimeLimit:   DefaultTimeLimit,
		IdleTimeout: DefaultIdleTimeout,
		LogFile:     os.Getenv("LOG_FILE"),
	}

	if addr, ok := os.LookupEnv("APP_ADDR"); ok {
		app.Addr = addr
	}

	if limitStr, ok := os.LookupEnv("GAME_TIME_LIMIT"); ok {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("unable to convert GAME_TIME_LIMIT to int: %w", err)
		}
		if limit <= 0 {
			return nil, fmt.Errorf("GAME_TIME_LIMIT must be positive, got %d", limit)
		}
		app.TimeLimit = limit
	}

	if idleStr, ok := os.LookupEnv("SESSION_IDLE_TIMEOUT"); ok {
		idle, err := time.ParseDuration(idleStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse SESSION_IDLE_TIMEOUT: %w", err)
		}
		app.IdleTimeout = idle
	}

	return app, nil
}
