// Package event defines the inbound/outbound event payloads the Queue
// Service exchanges over the bus, plus the small Publisher interface the
// service depends on to emit lifecycle events. The wire encoding and the
// actual bus connection live in internal/infrastructure/transport/nats;
// this package only knows about Go types.
package event

import "context"

// Kind tags the variant of an event envelope, used by the event router's
// tag-dispatch and by outbound subject naming.
type Kind string

const (
	// Inbound event kinds, consumed by the Queue Service event handlers.
	KindRenderSubmitted       Kind = "RenderSubmitted"
	KindRenderCancelRequested Kind = "RenderCancelRequested"
	KindJobComplete           Kind = "JobComplete"
	KindJobFailed             Kind = "JobFailed"
	KindJobCanceled           Kind = "JobCanceled"

	// Outbound event kinds, published by the Queue Service.
	KindRenderPending  Kind = "RenderPending"
	KindRenderRunning  Kind = "RenderRunning"
	KindRenderComplete Kind = "RenderComplete"
	KindRenderFailed   Kind = "RenderFailed"
	KindRenderCanceled Kind = "RenderCanceled"
	KindJobRunning     Kind = "JobRunning"
)

// Header carries opaque envelope metadata alongside a payload. Handlers
// receive it but the Queue Service's logic never inspects it; it exists so
// the transport layer has somewhere to put delivery metadata (e.g. a
// redelivery count) without changing handler signatures.
type Header struct {
	EventID string `json:"event_id,omitempty"`
}

// RenderSubmitted is the inbound event that materialises a new Render.
type RenderSubmitted struct {
	UserID             string `json:"user_id"`
	ID                 string `json:"id"`
	FileID             string `json:"file_id"`
	FileVersion        int32  `json:"file_version"`
	FrameStart         int32  `json:"frame_start"`
	FrameEnd           int32  `json:"frame_end"`
	Step               int32  `json:"step"`
	Slices             int32  `json:"slices"`
	SubscriptionItemID string `json:"subscription_item_id"`
}

// RenderCancelRequested is the inbound event requesting render deletion.
type RenderCancelRequested struct {
	ID string `json:"id"`
}

// JobComplete is the inbound event reporting a job's successful completion.
type JobComplete struct {
	RenderID string `json:"render_id"`
	Frame    int32  `json:"frame"`
	Slice    int32  `json:"slice"`
}

// JobFailed is the inbound event reporting a job's failure.
type JobFailed struct {
	RenderID string `json:"render_id"`
	Frame    int32  `json:"frame"`
	Slice    int32  `json:"slice"`
}

// JobCanceled is the inbound event reporting a job's cancellation.
type JobCanceled struct {
	RenderID string `json:"render_id"`
	Frame    int32  `json:"frame"`
	Slice    int32  `json:"slice"`
}

// RenderPending is published once a render has been materialised.
type RenderPending struct {
	ID string `json:"id"`
}

// RenderRunning is published the first time a render's pointer advances.
type RenderRunning struct {
	ID string `json:"id"`
}

// RenderComplete is published when a render's in-flight jobs drain to zero
// with every job counted as completed or failed.
type RenderComplete struct {
	ID string `json:"id"`
}

// RenderFailed is published when a still's single job fails.
type RenderFailed struct {
	ID string `json:"id"`
}

// RenderCanceled is published when a render is explicitly canceled.
type RenderCanceled struct {
	ID string `json:"id"`
}

// JobRunning is published every time pop reserves a job.
type JobRunning struct {
	UserID   string `json:"user_id"`
	Frame    int32  `json:"frame"`
	Slice    int32  `json:"slice"`
	RenderID string `json:"render_id"`
	WorkerID string `json:"worker_id"`
}

// Publisher publishes an outbound event of the given kind. Implementations
// serialise payload onto the bus; the Queue Service never blocks retrying a
// failed publish.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, payload any) error
}
