package world

import (
	"time"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/geom"
)

// PendingMerkabaSpawn carries the position of the brick that caused it,
// captured when its contact was classified.
type PendingMerkabaSpawn struct {
	Source           ecs.EntityID
	Position         geom.Vec3
	Remaining        time.Duration
	AngleVarianceDeg float64
	MinSpeed         float64
}

// MerkabaQueue holds decided but not yet materialized spawns in FIFO order.
type MerkabaQueue struct {
	pending []PendingMerkabaSpawn
}

func NewMerkabaQueue() *MerkabaQueue {
	return &MerkabaQueue{pending: make([]PendingMerkabaSpawn, 0, 4)}
}

func (q *MerkabaQueue) Push(p PendingMerkabaSpawn) {
	q.pending = append(q.pending, p)
}

// Advance counts every entry down by dt and removes and returns the ones
// whose delay has elapsed, preserving order.
func (q *MerkabaQueue) Advance(dt time.Duration) []PendingMerkabaSpawn {
	var ready []PendingMerkabaSpawn
	kept := q.pending[:0]
	for _, p := range q.pending {
		p.Remaining -= dt
		if p.Remaining <= 0 {
			ready = append(ready, p)
			continue
		}
		kept = append(kept, p)
	}
	q.pending = kept
	return ready
}

// Pending returns a copy of the queued entries.
func (q *MerkabaQueue) Pending() []PendingMerkabaSpawn {
	out := make([]PendingMerkabaSpawn, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *MerkabaQueue) Len() int { return len(q.pending) }

func (q *MerkabaQueue) Clear() { q.pending = q.pending[:0] }
