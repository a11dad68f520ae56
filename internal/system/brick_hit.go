package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// BrickHitSystem applies contact records to bricks in arrival order: ball
// contacts step multi-hit bricks down their chain or destroy ball-destructible
// bricks, paddle contacts destroy paddle-destroyable bricks. Each step reads
// the currently stored id, so two contacts on one brick in a frame step it
// twice. Phase 3 (Update).
type BrickHitSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewBrickHitSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *BrickHitSystem {
	return &BrickHitSystem{world: ws, bus: bus, log: log}
}

func (s *BrickHitSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BrickHitSystem) Update(_ time.Duration) {
	for _, rec := range event.Read[event.BrickContact](s.bus) {
		if s.world.IsMarked(rec.Brick) {
			continue
		}
		brick, ok := s.world.Bricks.Get(rec.Brick)
		if !ok {
			s.log.Debug("contact for unknown brick", zap.Stringer("brick", rec.Brick))
			continue
		}
		cur := brick.TypeID
		switch rec.Kind {
		case event.ContactBall:
			if next, ok := data.NextMultiHitID(cur); ok {
				brick.TypeID = next
				event.Emit(s.bus, event.MultiHitBrickHit{Brick: rec.Brick, Previous: cur, New: next})
				continue
			}
			if data.IsBallDestructible(cur) {
				s.destroy(rec.Brick, cur, rec.Other)
			}
		case event.ContactPaddle:
			if data.IsPaddleDestroyable(cur) {
				s.destroy(rec.Brick, cur, rec.Other)
			}
		}
	}
}

func (s *BrickHitSystem) destroy(brick ecs.EntityID, typeID uint8, by ecs.EntityID) {
	s.world.MarkForDespawn(brick)
	if !s.world.Ledger.TryNotify(brick) {
		return
	}
	destroyer := by
	event.Emit(s.bus, event.BrickDestroyed{Brick: brick, TypeID: typeID, DestroyedBy: &destroyer})
}

// DestructionSweepSystem notifies despawn-marked bricks that no contact path
// has notified yet, for example bricks marked by the clear level command.
// Runs after BrickHitSystem, ascending entity id order. Phase 3 (Update).
type DestructionSweepSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewDestructionSweepSystem(ws *world.State, bus *event.Bus) *DestructionSweepSystem {
	return &DestructionSweepSystem{world: ws, bus: bus}
}

func (s *DestructionSweepSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DestructionSweepSystem) Update(_ time.Duration) {
	for _, id := range s.world.Marked.IDs() {
		brick, ok := s.world.Bricks.Get(id)
		if !ok {
			continue
		}
		if s.world.Ledger.TryNotify(id) {
			event.Emit(s.bus, event.BrickDestroyed{Brick: id, TypeID: brick.TypeID})
		}
	}
}
