package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// Hub fans route snapshots out to connected WebSocket clients. It implements
// ports.SnapshotPublisher, so the editor pushes to it like any other
// observer. Clients are strictly passive: inbound frames are read only to
// notice the close.
type Hub struct {
	mu    sync.RWMutex
	conns map[chan []byte]struct{}
	last  []byte

	log *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[chan []byte]struct{}),
		log:   slog.Default(),
	}
}

// PublishSnapshot broadcasts the read model to every client. A client that
// cannot keep up skips intermediate snapshots; only the latest matters.
func (h *Hub) PublishSnapshot(ctx context.Context, snap domain.RouteSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last = data
	for ch := range h.conns {
		select {
		case ch <- data:
		default:
			// Slow client: drain the stale frame and queue the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
	h.mu.Unlock()

	metrics.SnapshotsPublished.WithLabelValues("ws").Inc()
	return nil
}

// Relay feeds a snapshot from another source (e.g. a NATS subscription)
// into the broadcast path.
func (h *Hub) Relay(ctx context.Context, snap domain.RouteSnapshot) error {
	return h.PublishSnapshot(ctx, snap)
}

func (h *Hub) register() chan []byte {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	if h.last != nil {
		ch <- h.last
	}
	h.conns[ch] = struct{}{}
	h.mu.Unlock()
	metrics.ActiveWebSockets.Inc()
	return ch
}

func (h *Hub) unregister(ch chan []byte) {
	h.mu.Lock()
	delete(h.conns, ch)
	h.mu.Unlock()
	metrics.ActiveWebSockets.Dec()
}

// WebSocketHandler upgrades a client and streams route snapshots to it,
// starting with the current state.
func WebSocketHandler(hub *Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		hub.log.Debug("ws client connected", "remote", remoteAddr)

		ch := hub.register()
		defer hub.unregister(ch)

		done := make(chan struct{})

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case data := <-ch:
					if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				case <-ticker.C:
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Clients never send commands; read only to detect the close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		hub.log.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
