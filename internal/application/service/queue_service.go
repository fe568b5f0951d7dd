// Package service implements the Queue Service: the RPC surface (pop,
// get_scale_target) and the event-handler surface (render_submitted,
// render_cancel_requested, job_complete, job_failed, job_canceled) that
// together drive the Render lifecycle state machine. It depends only on
// the domain repository contracts, the domain event Publisher, and a
// Logger — never on NATS or Postgres directly.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cubr/queue/internal/domain/entity"
	"github.com/cubr/queue/internal/domain/event"
	"github.com/cubr/queue/internal/domain/loadbalance"
	"github.com/cubr/queue/internal/domain/repository"
	"github.com/cubr/queue/internal/domain/service"
)

// ErrQueueEmpty is the benign pop error: no non-drained render was
// available to reserve a job from.
var ErrQueueEmpty = errors.New("queue empty")

// PopRequest is the inbound pop RPC payload.
type PopRequest struct {
	WorkerID string
}

// PopResponse is the outbound pop RPC payload on success.
type PopResponse struct {
	UserID             string
	RenderID           string
	Frame              int32
	Slice              int32
	FileID             string
	FileVersion        int32
	TotalSlices        int32
	WorkerID           string
	SubscriptionItemID string
}

// GetScaleTargetResponse is the outbound get_scale_target RPC payload.
type GetScaleTargetResponse struct {
	Target uint64
}

// QueueService is the Queue Service core: job assignment and the render
// lifecycle state machine.
type QueueService struct {
	render repository.RenderRepository
	job    repository.JobRepository
	event  event.Publisher
	logger service.Logger
}

// New constructs a QueueService from its four collaborators: the render
// repository, the job repository, the event publisher, and the logger. None
// of them are cloned or copied internally; the service holds them as
// independent handles with no back-reference.
func New(render repository.RenderRepository, job repository.JobRepository, pub event.Publisher, logger service.Logger) *QueueService {
	return &QueueService{render: render, job: job, event: pub, logger: logger}
}

// Pop selects an active render via the load balancer, reserves its next
// job slot, persists the advanced pointer, records the in-flight job, and
// emits JobRunning (and, for a render's first pop, RenderRunning) before
// returning the job payload.
func (s *QueueService) Pop(ctx context.Context, req PopRequest) (*PopResponse, error) {
	log := s.logger.With("worker_id", req.WorkerID)

	queue, err := s.render.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("pop: load queue: %w", err)
	}

	r := loadbalance.Select(queue)
	if r == nil {
		return nil, ErrQueueEmpty
	}

	if r.IsQueueDrained() {
		return nil, ErrQueueEmpty
	}

	j := r.GetJob(req.WorkerID)
	if j == nil {
		// The snapshot disagreed with the predicate above: treat as
		// corruption, delete the offending render, and fail the RPC so the
		// worker retries against a clean queue.
		log.Error("render snapshot disagreed with is_queue_drained, deleting", "render_id", r.ID)
		if delErr := s.render.Delete(ctx, r.ID); delErr != nil {
			return nil, fmt.Errorf("pop: delete corrupt render %s: %w", r.ID, delErr)
		}
		return nil, fmt.Errorf("pop: render %s produced no job despite non-drained snapshot", r.ID)
	}

	wasFirst := r.IsFirst()

	if wasFirst {
		if err := s.event.Publish(ctx, event.KindRenderRunning, event.RenderRunning{ID: r.ID}); err != nil {
			return nil, fmt.Errorf("pop: publish RenderRunning for render %s: %w", r.ID, err)
		}
	}

	r.AdvancePointer()
	if err := s.render.UpdatePointer(ctx, r); err != nil {
		return nil, fmt.Errorf("pop: update pointer for render %s: %w", r.ID, err)
	}

	if err := s.job.Store(ctx, j); err != nil {
		return nil, fmt.Errorf("pop: store job (%s,%d,%d): %w", j.RenderID, j.Frame, j.Slice, err)
	}

	if err := s.event.Publish(ctx, event.KindJobRunning, event.JobRunning{
		UserID:   j.UserID,
		Frame:    j.Frame,
		Slice:    j.Slice,
		RenderID: r.ID,
		WorkerID: req.WorkerID,
	}); err != nil {
		return nil, fmt.Errorf("pop: publish JobRunning for render %s: %w", r.ID, err)
	}

	log.Info("popped job", "render_id", r.ID, "frame", j.Frame, "slice", j.Slice)

	return &PopResponse{
		UserID:             j.UserID,
		RenderID:           r.ID,
		Frame:              j.Frame,
		Slice:              j.Slice,
		FileID:             j.FileID,
		FileVersion:        j.FileVersion,
		TotalSlices:        j.TotalSlices,
		WorkerID:           req.WorkerID,
		SubscriptionItemID: r.SubscriptionItemID,
	}, nil
}

// GetScaleTarget sums remaining jobs across every non-terminal render.
// Each term is widened to uint64 before summation to avoid overflow
// across many renders.
func (s *QueueService) GetScaleTarget(ctx context.Context) (*GetScaleTargetResponse, error) {
	renders, err := s.render.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_scale_target: load queue: %w", err)
	}

	var target uint64
	for _, r := range renders {
		target += uint64(r.RemainingJobs())
	}

	s.logger.Debug("computed scale target", "target", target, "renders", len(renders))

	return &GetScaleTargetResponse{Target: target}, nil
}

// RenderSubmitted materialises a new Render. Duplicate delivery upserts
// the same row; pointer and counters reset to their initial values.
func (s *QueueService) RenderSubmitted(ctx context.Context, _ event.Header, e event.RenderSubmitted) error {
	r := entity.NewRender(e.UserID, e.ID, e.FileID, e.FileVersion, e.FrameStart, e.FrameEnd, e.Step, e.Slices, e.SubscriptionItemID)

	if err := s.render.Store(ctx, r); err != nil {
		return fmt.Errorf("render_submitted %s: store: %w", e.ID, err)
	}

	if err := s.event.Publish(ctx, event.KindRenderPending, event.RenderPending{ID: e.ID}); err != nil {
		return fmt.Errorf("render_submitted %s: publish RenderPending: %w", e.ID, err)
	}

	s.logger.Info("render submitted", "render_id", e.ID, "total_jobs", r.TotalJobs)
	return nil
}

// RenderCancelRequested deletes a render on cancellation. In-flight jobs
// for the deleted render remain until a job_* event arrives; those
// handlers tolerate the missing render.
func (s *QueueService) RenderCancelRequested(ctx context.Context, _ event.Header, e event.RenderCancelRequested) error {
	if err := s.render.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("render_cancel_requested %s: delete: %w", e.ID, err)
	}

	if err := s.event.Publish(ctx, event.KindRenderCanceled, event.RenderCanceled{ID: e.ID}); err != nil {
		return fmt.Errorf("render_cancel_requested %s: publish RenderCanceled: %w", e.ID, err)
	}

	s.logger.Info("render canceled", "render_id", e.ID)
	return nil
}

// JobCanceled removes the in-flight job row. No counter change, no
// outbound event.
func (s *QueueService) JobCanceled(ctx context.Context, _ event.Header, e event.JobCanceled) error {
	if err := s.job.Delete(ctx, e.RenderID, e.Frame, e.Slice); err != nil {
		return fmt.Errorf("job_canceled (%s,%d,%d): delete: %w", e.RenderID, e.Frame, e.Slice, err)
	}
	return nil
}

// JobComplete retires an in-flight job as successful and, once every job
// for the render is accounted for, finishes the render.
func (s *QueueService) JobComplete(ctx context.Context, _ event.Header, e event.JobComplete) error {
	if err := s.job.Delete(ctx, e.RenderID, e.Frame, e.Slice); err != nil {
		return fmt.Errorf("job_complete (%s,%d,%d): delete job: %w", e.RenderID, e.Frame, e.Slice, err)
	}

	r, err := s.render.IncrementCompletedJobs(ctx, e.RenderID)
	if err != nil {
		return fmt.Errorf("job_complete %s: increment completed jobs: %w", e.RenderID, err)
	}
	if r == nil {
		// The render was already canceled; nothing more to do.
		return nil
	}

	return s.maybeFinishComplete(ctx, r)
}

// JobFailed retires an in-flight job as failed. A still (frame_start ==
// frame_end) is terminally failed by a single JobFailed even with other
// slices still in flight; an animation absorbs per-frame failures as if
// they were completions.
func (s *QueueService) JobFailed(ctx context.Context, _ event.Header, e event.JobFailed) error {
	if err := s.job.Delete(ctx, e.RenderID, e.Frame, e.Slice); err != nil {
		return fmt.Errorf("job_failed (%s,%d,%d): delete job: %w", e.RenderID, e.Frame, e.Slice, err)
	}

	r, err := s.render.IncrementCompletedJobs(ctx, e.RenderID)
	if err != nil {
		return fmt.Errorf("job_failed %s: increment completed jobs: %w", e.RenderID, err)
	}
	if r == nil {
		// The render was already canceled or failed; nothing more to do.
		return nil
	}

	if r.IsStill() {
		if err := s.render.Delete(ctx, e.RenderID); err != nil {
			return fmt.Errorf("job_failed %s: delete still: %w", e.RenderID, err)
		}
		if err := s.event.Publish(ctx, event.KindRenderFailed, event.RenderFailed{ID: e.RenderID}); err != nil {
			return fmt.Errorf("job_failed %s: publish RenderFailed: %w", e.RenderID, err)
		}
		s.logger.Info("render failed", "render_id", e.RenderID)
		return nil
	}

	return s.maybeFinishComplete(ctx, r)
}

// maybeFinishComplete checks whether a render has zero in-flight jobs and
// every job accounted for, and if so deletes it and emits RenderComplete.
// Shared by job_complete and the animation branch of job_failed.
func (s *QueueService) maybeFinishComplete(ctx context.Context, r *entity.Render) error {
	inflight, err := s.job.Count(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("render %s: count in-flight jobs: %w", r.ID, err)
	}

	if inflight == 0 && r.IsComplete() {
		if err := s.render.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("render %s: delete on completion: %w", r.ID, err)
		}
		if err := s.event.Publish(ctx, event.KindRenderComplete, event.RenderComplete{ID: r.ID}); err != nil {
			return fmt.Errorf("render %s: publish RenderComplete: %w", r.ID, err)
		}
		s.logger.Info("render complete", "render_id", r.ID)
	}

	return nil
}
