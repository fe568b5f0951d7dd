package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/cubr/queue/internal/domain/entity"
	"github.com/cubr/queue/internal/domain/event"
	"github.com/cubr/queue/internal/domain/service"
)

// fakeRenderRepository is an in-memory RenderRepository used to exercise
// QueueService without Postgres.
type fakeRenderRepository struct {
	mu      sync.Mutex
	renders map[string]*entity.Render
}

func newFakeRenderRepository() *fakeRenderRepository {
	return &fakeRenderRepository{renders: make(map[string]*entity.Render)}
}

func (f *fakeRenderRepository) LoadQueue(ctx context.Context) ([]*entity.Render, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Render, 0, len(f.renders))
	for _, r := range f.renders {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRenderRepository) Load(ctx context.Context, id string) (*entity.Render, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.renders[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRenderRepository) Store(ctx context.Context, render *entity.Render) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *render
	f.renders[render.ID] = &cp
	return nil
}

func (f *fakeRenderRepository) UpdatePointer(ctx context.Context, render *entity.Render) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.renders[render.ID]
	if !ok {
		return fmt.Errorf("render %s not found", render.ID)
	}
	existing.PointerFrame = render.PointerFrame
	existing.PointerSlice = render.PointerSlice
	return nil
}

func (f *fakeRenderRepository) IncrementCompletedJobs(ctx context.Context, id string) (*entity.Render, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.renders[id]
	if !ok {
		return nil, nil
	}
	r.CompletedJobs++
	cp := *r
	return &cp, nil
}

func (f *fakeRenderRepository) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.renders, id)
	return nil
}

// fakeJobRepository is an in-memory JobRepository keyed by the
// (renderID, frame, slice) natural key.
type fakeJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*entity.Job
}

func newFakeJobRepository() *fakeJobRepository {
	return &fakeJobRepository{jobs: make(map[string]*entity.Job)}
}

func jobKey(renderID string, frame, slice int32) string {
	return fmt.Sprintf("%s/%d/%d", renderID, frame, slice)
}

func (f *fakeJobRepository) Store(ctx context.Context, job *entity.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := jobKey(job.RenderID, job.Frame, job.Slice)
	if _, exists := f.jobs[key]; exists {
		return fmt.Errorf("job %s already exists", key)
	}
	cp := *job
	f.jobs[key] = &cp
	return nil
}

func (f *fakeJobRepository) Delete(ctx context.Context, renderID string, frame, slice int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, jobKey(renderID, frame, slice))
	return nil
}

func (f *fakeJobRepository) Count(ctx context.Context, renderID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, j := range f.jobs {
		if j.RenderID == renderID {
			n++
		}
	}
	return n, nil
}

// fakePublisher records every published event in order, for assertions.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	kind    event.Kind
	payload any
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (f *fakePublisher) Publish(ctx context.Context, kind event.Kind, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{kind: kind, payload: payload})
	return nil
}

func (f *fakePublisher) kinds() []event.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.Kind, len(f.events))
	for i, e := range f.events {
		out[i] = e.kind
	}
	return out
}

func (f *fakePublisher) count(kind event.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// nopLogger discards everything; satisfies domain/service.Logger for tests.
type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                    {}
func (nopLogger) Info(msg string, args ...any)                     {}
func (nopLogger) Warn(msg string, args ...any)                     {}
func (nopLogger) Error(msg string, args ...any)                    {}
func (l nopLogger) With(args ...any) service.Logger                { return l }
func (l nopLogger) WithContext(ctx context.Context) service.Logger { return l }
