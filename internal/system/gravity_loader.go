package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/world"
)

// GravityLoaderSystem applies the current level's gravity. It runs every pass
// but only resets Current when the level number changes, so runtime gravity
// changes survive. Phase 1 (Load).
type GravityLoaderSystem struct {
	world    *world.State
	bus      *event.Bus
	fallback geom.Vec3
	log      *zap.Logger
}

func NewGravityLoaderSystem(ws *world.State, bus *event.Bus, fallback geom.Vec3, log *zap.Logger) *GravityLoaderSystem {
	return &GravityLoaderSystem{world: ws, bus: bus, fallback: fallback, log: log}
}

func (s *GravityLoaderSystem) Phase() coresys.Phase { return coresys.PhaseLoad }

func (s *GravityLoaderSystem) Update(_ time.Duration) {
	def := s.world.Current
	if def == nil {
		return
	}
	g, ok := def.GravityVec()
	if !ok {
		g = s.fallback
	} else if err := world.ValidateGravity(g); err != nil {
		s.log.Warn("level gravity rejected, using default",
			zap.Uint32("level", def.Number), zap.Error(err))
		g = s.fallback
	}
	if s.world.Gravity.ApplyLevel(def.Number, g) {
		s.log.Info("level gravity applied",
			zap.Uint32("level", def.Number), zap.Stringer("gravity", g))
		event.Emit(s.bus, event.GravityChanged{Gravity: g})
	}
}
