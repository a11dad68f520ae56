package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/world"
)

// GravityHook supplies the random gravity vector; *scripting.Engine
// implements it.
type GravityHook interface {
	QueerGravity(fallback func() geom.Vec3) geom.Vec3
}

// GravityBrickSystem sets Current gravity when a gravity brick is destroyed.
// Notifications are processed in order, so the last one in a pass wins.
// Phase 4 (Effects).
type GravityBrickSystem struct {
	world *world.State
	bus   *event.Bus
	table *data.BrickTable
	hook  GravityHook // may be nil
	rng   *rand.Rand
	log   *zap.Logger
}

func NewGravityBrickSystem(ws *world.State, bus *event.Bus, table *data.BrickTable, hook GravityHook, rng *rand.Rand, log *zap.Logger) *GravityBrickSystem {
	return &GravityBrickSystem{world: ws, bus: bus, table: table, hook: hook, rng: rng, log: log}
}

func (s *GravityBrickSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *GravityBrickSystem) Update(_ time.Duration) {
	for _, ev := range event.Read[event.BrickDestroyed](s.bus) {
		g, ok := s.target(ev.TypeID)
		if !ok {
			continue
		}
		if err := s.world.Gravity.Set(g); err != nil {
			s.log.Warn("gravity brick ignored",
				zap.Stringer("brick", ev.Brick), zap.Uint8("brick_type", ev.TypeID), zap.Error(err))
			continue
		}
		s.log.Debug("gravity changed", zap.Uint8("brick_type", ev.TypeID), zap.Stringer("gravity", g))
		event.Emit(s.bus, event.GravityChanged{Gravity: g})
	}
}

func (s *GravityBrickSystem) target(id uint8) (geom.Vec3, bool) {
	if g, ok := s.table.Gravity(id); ok {
		return g, true
	}
	if !s.table.IsQueerGravity(id) {
		return geom.Zero, false
	}
	fallback := func() geom.Vec3 { return s.table.QueerGravity(s.rng) }
	if s.hook == nil {
		return fallback(), true
	}
	return s.hook.QueerGravity(fallback), true
}

// GravityResetSystem restores the level gravity after a life is lost.
// Registered after HazardSystem. Phase 4 (Effects).
type GravityResetSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewGravityResetSystem(ws *world.State, bus *event.Bus) *GravityResetSystem {
	return &GravityResetSystem{world: ws, bus: bus}
}

func (s *GravityResetSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *GravityResetSystem) Update(_ time.Duration) {
	if event.Count[event.LifeLost](s.bus) == 0 {
		return
	}
	g := &s.world.Gravity
	if g.Current == g.LevelDefault {
		return
	}
	g.ResetToLevelDefault()
	event.Emit(s.bus, event.GravityChanged{Gravity: g.Current})
}
