package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cubr/queue/internal/domain/event"
)

// Router dispatches a decoded envelope tag to the matching QueueService
// handler. It holds no reference back to the transport that invokes it —
// the transport calls Route and nothing else — avoiding the cyclic
// reference a bidirectional wiring would create.
type Router struct {
	svc *QueueService
}

// NewRouter constructs a Router bound to a single QueueService.
func NewRouter(svc *QueueService) *Router {
	return &Router{svc: svc}
}

// Route unmarshals payload according to kind and invokes the matching
// handler. An unrecognised kind is a silent no-op: the router must never
// fail on a tag it doesn't understand, since the event subject is
// wildcard-subscribed and future event kinds may be introduced without a
// corresponding handler yet deployed.
func (r *Router) Route(ctx context.Context, kind event.Kind, hdr event.Header, payload []byte) error {
	switch kind {
	case event.KindRenderSubmitted:
		var e event.RenderSubmitted
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("route %s: decode: %w", kind, err)
		}
		return r.svc.RenderSubmitted(ctx, hdr, e)

	case event.KindRenderCancelRequested:
		var e event.RenderCancelRequested
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("route %s: decode: %w", kind, err)
		}
		return r.svc.RenderCancelRequested(ctx, hdr, e)

	case event.KindJobComplete:
		var e event.JobComplete
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("route %s: decode: %w", kind, err)
		}
		return r.svc.JobComplete(ctx, hdr, e)

	case event.KindJobFailed:
		var e event.JobFailed
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("route %s: decode: %w", kind, err)
		}
		return r.svc.JobFailed(ctx, hdr, e)

	case event.KindJobCanceled:
		var e event.JobCanceled
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("route %s: decode: %w", kind, err)
		}
		return r.svc.JobCanceled(ctx, hdr, e)

	default:
		return nil
	}
}
