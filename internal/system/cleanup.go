package system

import (
	"time"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/world"
)

// CleanupSystem ends the frame: event queues are dropped and the per-pass
// hazard limiter is reset. Phase 10 (Cleanup).
type CleanupSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewCleanupSystem(ws *world.State, bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{world: ws, bus: bus}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FrameLoss.Reset()
	s.bus.Clear()
}
