package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// HazardSystem takes a life when the paddle touches a hazard brick. At most
// one life goes per pass, however many such contacts it holds.
// Phase 4 (Effects).
type HazardSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewHazardSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *HazardSystem {
	return &HazardSystem{world: ws, bus: bus, log: log}
}

func (s *HazardSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *HazardSystem) Update(_ time.Duration) {
	for _, rec := range event.Read[event.BrickContact](s.bus) {
		if rec.Kind != event.ContactPaddle || !data.IsHazard(rec.TypeID) {
			continue
		}
		loseLife(s.world, s.bus, s.log, event.LifeLost{Cause: event.CausePaddleHazard, Brick: rec.Brick, Other: rec.Other})
		return
	}
}

// loseLife takes a life unless one was already taken this pass or none are
// left. Every life loss cause goes through here so they share the limiter.
func loseLife(ws *world.State, bus *event.Bus, log *zap.Logger, ev event.LifeLost) bool {
	if ws.Lives.Lives == 0 || ws.FrameLoss.LifeLossEmitted {
		return false
	}
	ws.FrameLoss.LifeLossEmitted = true
	ev.Lives = ws.Lives.Lose()
	log.Info("life lost",
		zap.Stringer("cause", ev.Cause), zap.Stringer("brick", ev.Brick), zap.Stringer("other", ev.Other), zap.Int("lives", ev.Lives))
	event.Emit(bus, ev)
	if ev.Lives == 0 {
		event.Emit(bus, event.GameOver{Score: ws.Score.Current})
	}
	return true
}

// LivesSystem awards extra lives: one per destroyed extra-life brick and,
// when enabled, one per milestone tier. Clamped to the maximum.
// Phase 4 (Effects).
type LivesSystem struct {
	world            *world.State
	bus              *event.Bus
	milestoneRewards bool
}

func NewLivesSystem(ws *world.State, bus *event.Bus, milestoneRewards bool) *LivesSystem {
	return &LivesSystem{world: ws, bus: bus, milestoneRewards: milestoneRewards}
}

func (s *LivesSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *LivesSystem) Update(_ time.Duration) {
	for _, ev := range event.Read[event.BrickDestroyed](s.bus) {
		if ev.TypeID != data.ExtraLife {
			continue
		}
		if s.world.Lives.Gain() {
			event.Emit(s.bus, event.ExtraLifeAwarded{Brick: ev.Brick, Lives: s.world.Lives.Lives})
		}
	}
	if !s.milestoneRewards {
		return
	}
	for range event.Read[event.MilestoneReached](s.bus) {
		if s.world.Lives.Gain() {
			event.Emit(s.bus, event.ExtraLifeAwarded{Lives: s.world.Lives.Lives})
		}
	}
}
