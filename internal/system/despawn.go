package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/world"
)

// DespawnSystem removes every despawn-marked entity and all its components.
// Phase 5 (Despawn).
type DespawnSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewDespawnSystem(ws *world.State, log *zap.Logger) *DespawnSystem {
	return &DespawnSystem{world: ws, log: log}
}

func (s *DespawnSystem) Phase() coresys.Phase { return coresys.PhaseDespawn }

func (s *DespawnSystem) Update(_ time.Duration) {
	if s.world.Marked.Len() == 0 {
		return
	}
	for _, id := range s.world.Marked.IDs() {
		s.world.ECS.MarkForDestruction(id)
	}
	n := s.world.ECS.FlushDestroyQueue()
	s.world.Marked.Clear()
	if n > 0 {
		s.log.Debug("despawned", zap.Int("count", n))
	}
}
