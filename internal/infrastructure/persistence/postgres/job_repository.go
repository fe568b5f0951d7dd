package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cubr/queue/internal/domain/entity"
	"github.com/cubr/queue/internal/domain/repository"
)

// JobRepository implements repository.JobRepository against the
// queue.jobs table.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &JobRepository{db: db}
}

// Store inserts a new in-flight job row.
func (r *JobRepository) Store(ctx context.Context, job *entity.Job) error {
	userID, err := uuid.Parse(job.UserID)
	if err != nil {
		return fmt.Errorf("store job (%s,%d,%d): invalid user_id: %w", job.RenderID, job.Frame, job.Slice, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO queue.jobs (user_id, render_id, frame, slice, worker_id)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, job.RenderID, job.Frame, job.Slice, job.WorkerID)
	if err != nil {
		return fmt.Errorf("store job (%s,%d,%d): %w", job.RenderID, job.Frame, job.Slice, err)
	}
	return nil
}

// Delete idempotently removes one job by its natural key.
func (r *JobRepository) Delete(ctx context.Context, renderID string, frame, slice int32) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM queue.jobs WHERE render_id = $1 AND frame = $2 AND slice = $3
	`, renderID, frame, slice)
	if err != nil {
		return fmt.Errorf("delete job (%s,%d,%d): %w", renderID, frame, slice, err)
	}
	return nil
}

// Count returns the number of in-flight jobs for the given render.
func (r *JobRepository) Count(ctx context.Context, renderID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue.jobs WHERE render_id = $1`, renderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs for render %s: %w", renderID, err)
	}
	return count, nil
}
