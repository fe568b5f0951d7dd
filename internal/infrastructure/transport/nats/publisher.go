// Package nats wires the Queue Service onto a NATS bus: event publishing,
// wildcard event subscription routed through application/service.Router,
// and request/reply RPC handlers for pop and get_scale_target.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/cubr/queue/internal/domain/event"
)

// EventSubjectPrefix is the subject namespace outbound lifecycle events are
// published under: "queue.event.<Kind>".
const EventSubjectPrefix = "queue.event."

// EventWildcardSubject is the subject the event listener subscribes to for
// every inbound event kind.
const EventWildcardSubject = "queue.event.>"

// Publisher publishes domain events onto NATS subjects named
// "queue.event.<Kind>", JSON-encoded.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher wraps an established NATS connection as an event.Publisher.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish implements event.Publisher.
func (p *Publisher) Publish(ctx context.Context, kind event.Kind, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish %s: encode: %w", kind, err)
	}
	subject := EventSubjectPrefix + string(kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

var _ event.Publisher = (*Publisher)(nil)
