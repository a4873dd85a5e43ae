package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
	// MoveDelay paces streamed moves so that clients can animate them.
	MoveDelay time.Duration
}

func NewWebSocket() *WebSocket {
	return &WebSocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		WriteTimeout: 10 * time.Second,
		MoveDelay:    envDuration("WS_MOVE_DELAY", 0),
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	value, err := requireEnv(name)
	if err != nil {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
