// Package loadbalance selects which active render a pop request should be
// served from. Selection is stateless: it filters out queue-drained
// renders and picks uniformly at random among the rest, approximating fair
// share across tenants without tracking any per-tenant state.
package loadbalance

import (
	"math/rand"

	"github.com/cubr/queue/internal/domain/entity"
)

// Select returns a uniformly random non-drained render from renders, or nil
// if none remain. Tie-breaking is randomised, not round-robin.
func Select(renders []*entity.Render) *entity.Render {
	candidates := make([]*entity.Render, 0, len(renders))
	for _, r := range renders {
		if !r.IsQueueDrained() {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rand.Intn(len(candidates))]
}
