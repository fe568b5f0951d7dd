package nats

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/cubr/queue/internal/domain/event"
	"github.com/cubr/queue/internal/domain/service"
)

// Router is the minimal surface the event listener needs from
// application/service.Router — kept as an interface so this package never
// imports the application layer directly.
type Router interface {
	Route(ctx context.Context, kind event.Kind, hdr event.Header, payload []byte) error
}

// EventListener subscribes to EventWildcardSubject and routes every
// message through Router. Decode/dispatch errors are logged, never
// returned to the caller: a single malformed message must not take down
// the listener.
type EventListener struct {
	conn   *nats.Conn
	router Router
	logger service.Logger
}

// NewEventListener constructs an EventListener.
func NewEventListener(conn *nats.Conn, router Router, logger service.Logger) *EventListener {
	return &EventListener{conn: conn, router: router, logger: logger}
}

// Listen subscribes and blocks until ctx is canceled or the subscription
// itself fails, whichever comes first — either is treated as fatal by the
// caller's select.
func (l *EventListener) Listen(ctx context.Context) error {
	msgs := make(chan *nats.Msg, 256)
	sub, err := l.conn.ChanSubscribe(EventWildcardSubject, msgs)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *EventListener) handle(ctx context.Context, msg *nats.Msg) {
	kind := event.Kind(strings.TrimPrefix(msg.Subject, EventSubjectPrefix))
	hdr := event.Header{EventID: msg.Header.Get("Event-Id")}

	if err := l.router.Route(ctx, kind, hdr, msg.Data); err != nil {
		l.logger.Error("event handling failed", "kind", kind, "error", err)
	}
}
