package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

const (
	// SnapshotSubject carries the full route read model after every
	// committed mutation.
	SnapshotSubject = "routesketch.route.snapshot"

	streamName = "ROUTE_SNAPSHOTS"
)

// Publisher implements ports.SnapshotPublisher over NATS JetStream, fanning
// the route read model out to display surfaces on other instances.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the snapshot stream exists.
// Only the latest snapshot matters, so the stream keeps a single message
// per subject.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:              streamName,
		Subjects:          []string{"routesketch.route.>"},
		Retention:         nats.LimitsPolicy,
		MaxMsgsPerSubject: 1,
		MaxAge:            time.Hour,
		Storage:           nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSnapshot pushes the read model. Called after every committed
// mutation; best-effort from the editor's point of view.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap domain.RouteSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := p.js.Publish(SnapshotSubject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	metrics.SnapshotsPublished.WithLabelValues("nats").Inc()
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for readiness checks.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
