package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/world"
)

// ContactLossSystem handles the contacts that involve no brick: a ball or a
// merkaba reaching the lower goal, and a merkaba hitting the paddle.
// Registered after HazardSystem, with which it shares the one-life-per-pass
// limit. Phase 4 (Effects).
type ContactLossSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewContactLossSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *ContactLossSystem {
	return &ContactLossSystem{world: ws, bus: bus, log: log}
}

func (s *ContactLossSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *ContactLossSystem) Update(_ time.Duration) {
	for _, c := range event.Read[event.ContactStarted](s.bus) {
		if ball, ok := pair(c, s.world.IsBall, s.world.IsGoal); ok {
			loseLife(s.world, s.bus, s.log, event.LifeLost{Cause: event.CauseLowerGoal, Other: ball})
			s.world.MarkForDespawn(ball)
			continue
		}
		if m, ok := pair(c, s.world.IsMerkaba, s.world.IsGoal); ok {
			if s.world.MarkForDespawn(m) {
				event.Emit(s.bus, event.MerkabaDespawned{Entity: m})
			}
			continue
		}
		if m, ok := pair(c, s.world.IsMerkaba, s.world.IsPaddle); ok {
			loseLife(s.world, s.bus, s.log, event.LifeLost{Cause: event.CauseMerkabaPaddle, Other: m})
		}
	}
}

// pair returns the side of c matching first when the other side matches
// second, in either order.
func pair(c event.ContactStarted, first, second func(ecs.EntityID) bool) (ecs.EntityID, bool) {
	switch {
	case first(c.A) && second(c.B):
		return c.A, true
	case first(c.B) && second(c.A):
		return c.B, true
	}
	return 0, false
}

// RoundResetSystem ends the round after a life is lost: balls and merkabas
// are despawned, any paddle size effect is cancelled and, while lives
// remain, a ball respawn is scheduled. Registered after every life loss
// source. Phase 4 (Effects).
type RoundResetSystem struct {
	world *world.State
	bus   *event.Bus
	delay time.Duration
	log   *zap.Logger
}

func NewRoundResetSystem(ws *world.State, bus *event.Bus, respawnDelay time.Duration, log *zap.Logger) *RoundResetSystem {
	return &RoundResetSystem{world: ws, bus: bus, delay: respawnDelay, log: log}
}

func (s *RoundResetSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *RoundResetSystem) Update(_ time.Duration) {
	if event.Count[event.LifeLost](s.bus) == 0 {
		return
	}
	for _, id := range s.world.Balls.IDs() {
		s.world.MarkForDespawn(id)
	}
	for _, id := range s.world.Merkabas.IDs() {
		if s.world.MarkForDespawn(id) {
			event.Emit(s.bus, event.MerkabaDespawned{Entity: id})
		}
	}
	if s.world.ClearPaddleEffect() {
		event.Emit(s.bus, event.PaddleSizeChanged{Effect: event.PaddleNormal, Width: world.PaddleBaseWidth})
	}
	if s.world.Lives.Lives > 0 {
		s.world.Respawn.Schedule(s.delay)
		s.log.Debug("ball respawn scheduled", zap.Duration("delay", s.delay))
	}
}

// BallRespawnSystem puts a new ball at the level's spawn point once the
// respawn countdown runs out. Phase 6 (Spawn).
type BallRespawnSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewBallRespawnSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *BallRespawnSystem {
	return &BallRespawnSystem{world: ws, bus: bus, log: log}
}

func (s *BallRespawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *BallRespawnSystem) Update(dt time.Duration) {
	if !s.world.Respawn.Advance(dt) {
		return
	}
	id := s.world.RespawnBall()
	pos := s.world.BallSpawn()
	s.log.Debug("ball respawned", zap.Stringer("ball", id), zap.Stringer("position", pos))
	event.Emit(s.bus, event.BallRespawned{Ball: id, Position: pos})
}
