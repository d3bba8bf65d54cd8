package http

import (
	"github.com/nats-io/nats.go"

	"github.com/jortega/routesketch/internal/adapters/valkey"
	"github.com/jortega/routesketch/internal/core/usecases"
)

// Dependencies holds everything the HTTP handlers need.
type Dependencies struct {
	Editor *usecases.Editor
	Hub    *Hub
	NATS   *nats.Conn
	Cache  *valkey.Cache
}
