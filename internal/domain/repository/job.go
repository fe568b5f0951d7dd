package repository

import (
	"context"

	"github.com/cubr/queue/internal/domain/entity"
)

// JobRepository is the in-flight job tracking contract.
type JobRepository interface {
	// Store inserts a new in-flight job row. A duplicate (RenderID, Frame,
	// Slice) identity is an error; the caller does not retry.
	Store(ctx context.Context, job *entity.Job) error

	// Delete idempotently removes one job by its natural key.
	Delete(ctx context.Context, renderID string, frame, slice int32) error

	// Count returns the number of in-flight jobs for the given render.
	Count(ctx context.Context, renderID string) (int64, error)
}
