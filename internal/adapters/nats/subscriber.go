package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jortega/routesketch/internal/core/domain"
)

// Subscriber relays route snapshots published by other instances, letting a
// WebSocket hub mirror edits it did not perform itself.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSnapshots delivers each published route snapshot to handler.
// DeliverLastPerSubject replays the current route to a fresh subscriber
// before live updates start.
func (s *Subscriber) SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, snap domain.RouteSnapshot) error) error {
	sub, err := s.js.Subscribe(SnapshotSubject, func(msg *nats.Msg) {
		var snap domain.RouteSnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, snap); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverLastPerSubject(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
