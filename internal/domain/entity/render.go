// Package entity holds the pure, persistence-agnostic domain types for the
// render queue: Render and Job. Neither type talks to a database or a bus;
// AdvancePointer moves the pointer of the Render in place, and the caller is
// responsible for persisting the new position through a repository.
package entity

// Render represents one submitted render: a range of frames, a per-frame
// slice count, and a pointer to the next (frame, slice) coordinate to hand
// out via pop.
type Render struct {
	UserID string
	ID     string

	FileID      string
	FileVersion int32

	FrameStart int32
	FrameEnd   int32
	Step       int32
	Slices     int32

	PointerFrame int32
	PointerSlice int32

	TotalJobs     int32
	CompletedJobs int32

	SubscriptionItemID string
}

// NewRender constructs a Render with its pointer at the first coordinate
// and its counters at zero.
func NewRender(userID, id, fileID string, fileVersion, frameStart, frameEnd, step, slices int32, subscriptionItemID string) *Render {
	return &Render{
		UserID:             userID,
		ID:                 id,
		FileID:             fileID,
		FileVersion:        fileVersion,
		FrameStart:         frameStart,
		FrameEnd:           frameEnd,
		Step:               step,
		Slices:             slices,
		PointerFrame:       frameStart,
		PointerSlice:       0,
		TotalJobs:          TotalJobs(frameStart, frameEnd, step, slices),
		CompletedJobs:      0,
		SubscriptionItemID: subscriptionItemID,
	}
}

// TotalJobs computes frames * slices, where frames = 1 + (frameEnd -
// frameStart) / step using truncating integer division. Inputs are assumed
// non-negative with step > 0; a trailing partial frame is silently dropped
// if frameEnd-frameStart isn't an exact multiple of step.
func TotalJobs(frameStart, frameEnd, step, slices int32) int32 {
	frames := 1 + (frameEnd-frameStart)/step
	return frames * slices
}

// GetJob returns the Job at the current pointer for the given worker, or
// nil if the queue is already drained. It does not mutate the Render.
func (r *Render) GetJob(workerID string) *Job {
	if r.IsQueueDrained() {
		return nil
	}
	return &Job{
		UserID:      r.UserID,
		RenderID:    r.ID,
		Frame:       r.PointerFrame,
		Slice:       r.PointerSlice,
		FileID:      r.FileID,
		FileVersion: r.FileVersion,
		TotalSlices: r.Slices,
		WorkerID:    workerID,
	}
}

// AdvancePointer moves the pointer to the next (frame, slice) coordinate.
func (r *Render) AdvancePointer() {
	r.PointerSlice++
	if r.PointerSlice >= r.Slices {
		r.PointerSlice = 0
		r.PointerFrame += r.Step
	}
}

// IsQueueDrained reports whether no further coordinates remain to reserve.
func (r *Render) IsQueueDrained() bool {
	return r.PointerFrame > r.FrameEnd
}

// IsComplete reports whether every job has reported completion or failure.
func (r *Render) IsComplete() bool {
	return r.CompletedJobs >= r.TotalJobs
}

// IsFirst reports whether the pointer is still at its initial position.
func (r *Render) IsFirst() bool {
	return r.PointerFrame == r.FrameStart && r.PointerSlice == 0
}

// IsStill reports whether this render spans a single frame, making any
// JobFailed for it terminal.
func (r *Render) IsStill() bool {
	return r.FrameStart == r.FrameEnd
}

// RemainingJobs returns total_jobs - completed_jobs, used by get_scale_target.
func (r *Render) RemainingJobs() int32 {
	return r.TotalJobs - r.CompletedJobs
}
