package metrics

import (
	"context"

	"github.com/cubr/queue/internal/domain/event"
)

// InstrumentedPublisher wraps an event.Publisher, recording a counter
// increment for every outbound event kind before delegating.
type InstrumentedPublisher struct {
	next event.Publisher
	c    *Collector
}

// WrapPublisher returns an event.Publisher that records metrics around next.
func WrapPublisher(next event.Publisher, c *Collector) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, c: c}
}

// Publish implements event.Publisher.
func (p *InstrumentedPublisher) Publish(ctx context.Context, kind event.Kind, payload any) error {
	err := p.next.Publish(ctx, kind, payload)
	if err == nil {
		p.c.RecordLifecycleEvent(string(kind))
	}
	return err
}

var _ event.Publisher = (*InstrumentedPublisher)(nil)
