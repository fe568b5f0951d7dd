package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cubr/queue/internal/domain/entity"
	"github.com/cubr/queue/internal/domain/repository"
)

// RenderRepository implements repository.RenderRepository against the
// queue.queue table.
type RenderRepository struct {
	db *sql.DB
}

// NewRenderRepository constructs a RenderRepository.
func NewRenderRepository(db *sql.DB) repository.RenderRepository {
	return &RenderRepository{db: db}
}

func scanRender(row interface {
	Scan(dest ...any) error
}) (*entity.Render, error) {
	r := &entity.Render{}
	var userID, fileID uuid.UUID
	err := row.Scan(
		&r.ID, &userID, &fileID, &r.FileVersion,
		&r.FrameStart, &r.FrameEnd, &r.Step, &r.Slices,
		&r.PointerFrame, &r.PointerSlice,
		&r.TotalJobs, &r.CompletedJobs, &r.SubscriptionItemID,
	)
	if err != nil {
		return nil, err
	}
	r.UserID = userID.String()
	r.FileID = fileID.String()
	return r, nil
}

const renderColumns = `id, user_id, file_id, file_version, frame_start, frame_end, step, slices, pointer_frame, pointer_slice, total_jobs, completed_jobs, subscription_item_id`

// LoadQueue returns every render row in the queue table.
func (r *RenderRepository) LoadQueue(ctx context.Context) ([]*entity.Render, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+renderColumns+` FROM queue.queue`)
	if err != nil {
		return nil, fmt.Errorf("load_queue: %w", err)
	}
	defer rows.Close()

	var out []*entity.Render
	for rows.Next() {
		render, err := scanRender(rows)
		if err != nil {
			return nil, fmt.Errorf("load_queue: scan: %w", err)
		}
		out = append(out, render)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load_queue: %w", err)
	}
	return out, nil
}

// Load returns a single render by id, or nil if it does not exist.
func (r *RenderRepository) Load(ctx context.Context, id string) (*entity.Render, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+renderColumns+` FROM queue.queue WHERE id = $1`, id)
	render, err := scanRender(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return render, nil
}

// Store upserts a render, overwriting every column on conflict. A
// resubmission of the same (user_id, id) therefore resets pointer and
// counters to whatever the caller passed in.
func (r *RenderRepository) Store(ctx context.Context, render *entity.Render) error {
	userID, err := uuid.Parse(render.UserID)
	if err != nil {
		return fmt.Errorf("store %s: invalid user_id: %w", render.ID, err)
	}
	fileID, err := uuid.Parse(render.FileID)
	if err != nil {
		return fmt.Errorf("store %s: invalid file_id: %w", render.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO queue.queue (id, user_id, file_id, file_version, frame_start, frame_end, step, slices, pointer_frame, pointer_slice, total_jobs, completed_jobs, subscription_item_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, id) DO UPDATE SET
			user_id = $2,
			file_id = $3,
			file_version = $4,
			frame_start = $5,
			frame_end = $6,
			step = $7,
			slices = $8,
			pointer_frame = $9,
			pointer_slice = $10,
			total_jobs = $11,
			completed_jobs = $12,
			subscription_item_id = $13
	`,
		render.ID, userID, fileID, render.FileVersion,
		render.FrameStart, render.FrameEnd, render.Step, render.Slices,
		render.PointerFrame, render.PointerSlice,
		render.TotalJobs, render.CompletedJobs, render.SubscriptionItemID,
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", render.ID, err)
	}
	return nil
}

// UpdatePointer persists the advanced pointer for a render. Last-writer-wins:
// no version check against a concurrent update.
func (r *RenderRepository) UpdatePointer(ctx context.Context, render *entity.Render) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE queue.queue SET pointer_frame = $1, pointer_slice = $2 WHERE id = $3
	`, render.PointerFrame, render.PointerSlice, render.ID)
	if err != nil {
		return fmt.Errorf("update_pointer %s: %w", render.ID, err)
	}
	return nil
}

// IncrementCompletedJobs atomically increments completed_jobs by one in a
// single statement and returns the post-update row. It returns (nil, nil)
// if the render has been concurrently deleted.
func (r *RenderRepository) IncrementCompletedJobs(ctx context.Context, id string) (*entity.Render, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE queue.queue SET completed_jobs = completed_jobs + 1 WHERE id = $1
		RETURNING `+renderColumns+`
	`, id)
	render, err := scanRender(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("increment_completed_jobs %s: %w", id, err)
	}
	return render, nil
}

// Delete idempotently removes a render.
func (r *RenderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM queue.queue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}
