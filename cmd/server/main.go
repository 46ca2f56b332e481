package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minefield/internal/app"
	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

func newLogger() *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if config.Development() {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// setupGameLogs configures the loggers of the game engine and the session
// manager, optionally mirroring them into a rotated file.
func setupGameLogs(logFile string) error {
	level := logrus.InfoLevel
	if config.Development() {
		level = logrus.DebugLevel
	}

	var hook logrus.Hook
	if logFile != "" {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return err
		}
	}

	for _, log := range []*logrus.Logger{mines.Log, session.Log} {
		log.SetLevel(level)
		if hook != nil {
			log.AddHook(hook)
		}
	}
	return nil
}

func main() {
	envErr := config.LoadEnv()
	logger := newLogger()
	if err := envErr; err != nil {
		logger.Error("failed to load .env", slog.Any("error", err))
		os.Exit(1)
	}

	cfg, err := config.NewApp()
	if err != nil {
		logger.Error("failed to read app config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := setupGameLogs(cfg.LogFile); err != nil {
		logger.Error("failed to set up game logs", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.New(logger, cfg).Start(ctx); err != nil {
		logger.Error("failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
