package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalJobs(t *testing.T) {
	cases := []struct {
		name                                       string
		frameStart, frameEnd, step, slices, expect int32
	}{
		{"single frame single slice", 5, 5, 1, 1, 1},
		{"single frame multi slice", 5, 5, 1, 3, 3},
		{"animation", 1, 3, 1, 2, 6},
		{"stepped animation exact", 0, 10, 2, 1, 6},
		{"stepped animation truncates trailing partial frame", 0, 9, 2, 1, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := TotalJobs(c.frameStart, c.frameEnd, c.step, c.slices)
			assert.Equal(t, c.expect, got)
		})
	}
}

func TestNewRenderInitialState(t *testing.T) {
	r := NewRender("user-1", "render-1", "file-1", 1, 1, 3, 1, 2, "sub-item-1")

	assert.EqualValues(t, 6, r.TotalJobs)
	assert.EqualValues(t, 0, r.CompletedJobs)
	assert.Equal(t, r.FrameStart, r.PointerFrame)
	assert.EqualValues(t, 0, r.PointerSlice)
	assert.True(t, r.IsFirst(), "expected IsFirst() to be true for a freshly constructed render")
	assert.False(t, r.IsQueueDrained(), "freshly constructed render must not be queue-drained")
	assert.False(t, r.IsComplete(), "freshly constructed render must not be complete")
}

func TestAdvancePointerEnumeratesPrefix(t *testing.T) {
	r := NewRender("u", "r", "f", 1, 1, 3, 1, 2, "sub")

	var got [][2]int32
	for !r.IsQueueDrained() {
		job := r.GetJob("worker")
		require.NotNil(t, job, "GetJob returned nil before queue drained")
		got = append(got, [2]int32{job.Frame, job.Slice})
		r.AdvancePointer()
	}

	want := [][2]int32{{1, 0}, {1, 1}, {2, 0}, {2, 1}, {3, 0}, {3, 1}}
	assert.Equal(t, want, got)
	assert.Nil(t, r.GetJob("worker"), "GetJob must return nil once queue-drained")
}

func TestIsFirstOnlyAtInitialPointer(t *testing.T) {
	r := NewRender("u", "r", "f", 1, 1, 3, 1, 2, "sub")
	assert.True(t, r.IsFirst(), "expected first pointer position to satisfy IsFirst")
	r.AdvancePointer()
	assert.False(t, r.IsFirst(), "IsFirst must be false after the pointer has advanced")
}

func TestIsStill(t *testing.T) {
	still := NewRender("u", "r", "f", 1, 5, 5, 1, 3, "sub")
	assert.True(t, still.IsStill(), "frame_start == frame_end must be a still")

	animation := NewRender("u", "r", "f", 1, 1, 3, 1, 3, "sub")
	assert.False(t, animation.IsStill(), "frame_start != frame_end must not be a still")
}

func TestIsCompleteAndRemainingJobs(t *testing.T) {
	r := NewRender("u", "r", "f", 1, 5, 5, 1, 3, "sub")
	assert.EqualValues(t, 3, r.RemainingJobs())

	r.CompletedJobs = 2
	assert.False(t, r.IsComplete(), "2/3 completed must not be complete")

	r.CompletedJobs = 3
	assert.True(t, r.IsComplete(), "3/3 completed must be complete")
	assert.EqualValues(t, 0, r.RemainingJobs())
}
