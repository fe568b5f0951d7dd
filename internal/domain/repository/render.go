// Package repository defines the storage contracts the Queue Service
// consumes. Concrete implementations live under
// internal/infrastructure/persistence; the domain package only depends on
// entity types and context, never on database/bus machinery.
package repository

import (
	"context"

	"github.com/cubr/queue/internal/domain/entity"
)

// RenderRepository is the durable CRUD + atomic-increment contract for
// renders. All operations may fail with a transport/storage error
// surfaced to the caller.
type RenderRepository interface {
	// LoadQueue returns all non-terminal renders, in unspecified order.
	LoadQueue(ctx context.Context) ([]*entity.Render, error)

	// Load returns the render with the given id, or nil if none exists.
	Load(ctx context.Context, id string) (*entity.Render, error)

	// Store upserts a render keyed by (UserID, ID), overwriting every column.
	Store(ctx context.Context, render *entity.Render) error

	// UpdatePointer persists PointerFrame/PointerSlice for the given render.
	UpdatePointer(ctx context.Context, render *entity.Render) error

	// IncrementCompletedJobs atomically increments CompletedJobs by one and
	// returns the post-update row, or nil if the render no longer exists
	// (deleted concurrently — a legitimate race).
	IncrementCompletedJobs(ctx context.Context, id string) (*entity.Render, error)

	// Delete idempotently removes the render.
	Delete(ctx context.Context, id string) error
}
