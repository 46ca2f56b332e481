package config

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	// AllowedOrigins is empty when every origin is accepted.
	AllowedOrigins []string
	Upgrader       websocket.Upgrader
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	// ReadLimit caps a single client message, in bytes.
	ReadLimit int64
}

// NewWebSocket accepts any origin unless WS_ALLOWED_ORIGINS holds a comma
// separated list.
func NewWebSocket() (*WebSocket, error) {
	var origins []string
	checkOrigin := func(r *http.Request) bool {
		return true
	}
	if originsStr, ok := os.LookupEnv("WS_ALLOWED_ORIGINS"); ok && originsStr != "" {
		origins = strings.Split(originsStr, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		checkOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}

	pongWait := 60 * time.Second
	ws := &WebSocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		AllowedOrigins: origins,
		WriteWait:      10 * time.Second,
		PongWait:       pongWait,
		PingPeriod:     pongWait * 9 / 10,
		ReadLimit:      4096,
	}

	return ws, nil
}
