package loadbalance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubr/queue/internal/domain/entity"
)

func drained(id string) *entity.Render {
	r := entity.NewRender("u", id, "f", 1, 1, 1, 1, 1, "sub")
	r.AdvancePointer()
	return r
}

func active(id string) *entity.Render {
	return entity.NewRender("u", id, "f", 1, 1, 5, 1, 1, "sub")
}

func TestSelectEmptyQueue(t *testing.T) {
	assert.Nil(t, Select(nil))
}

func TestSelectSkipsDrainedRenders(t *testing.T) {
	d := drained("drained")
	a := active("active")
	got := Select([]*entity.Render{d, a})
	require.NotNil(t, got, "Select returned nil, want the active render")
	assert.Equal(t, "active", got.ID)
}

func TestSelectAllDrainedReturnsNil(t *testing.T) {
	assert.Nil(t, Select([]*entity.Render{drained("a"), drained("b")}), "want nil when all renders are drained")
}

func TestSelectDistributesAcrossActiveRenders(t *testing.T) {
	renders := []*entity.Render{active("r1"), active("r2"), active("r3")}
	counts := map[string]int{}
	const trials = 10000
	for i := 0; i < trials; i++ {
		got := Select(renders)
		require.NotNil(t, got, "Select returned nil with active renders present")
		counts[got.ID]++
	}
	for _, id := range []string{"r1", "r2", "r3"} {
		share := float64(counts[id]) / float64(trials)
		assert.InDeltaf(t, 1.0/3.0, share, 0.085, "render %q got share %.3f, want roughly 1/3", id, share)
	}
}
