package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// LevelProgressSystem counts the bricks still needed to clear the level. When
// none remain it runs the completion countdown, then emits LevelCompleted and
// loads the next level if there is one. The gravity loader picks up the new
// level number on the following pass. Phase 7 (PostUpdate).
type LevelProgressSystem struct {
	world  *world.State
	bus    *event.Bus
	levels *data.LevelSet
	delay  time.Duration
	log    *zap.Logger
}

func NewLevelProgressSystem(ws *world.State, bus *event.Bus, levels *data.LevelSet, delay time.Duration, log *zap.Logger) *LevelProgressSystem {
	return &LevelProgressSystem{world: ws, bus: bus, levels: levels, delay: delay, log: log}
}

func (s *LevelProgressSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LevelProgressSystem) Update(dt time.Duration) {
	lv := &s.world.Level
	if !lv.Active || s.world.Lives.Lives == 0 {
		return
	}
	lv.Remaining = s.world.RemainingBricks()
	if !lv.Completing {
		if lv.Remaining > 0 {
			return
		}
		lv.Completing = true
		lv.CompleteIn = s.delay
		s.log.Info("level cleared", zap.Uint32("level", lv.Number), zap.Duration("delay", s.delay))
	} else {
		lv.CompleteIn -= dt
	}
	if lv.CompleteIn > 0 {
		return
	}

	number, score := lv.Number, s.world.Score.Current
	lv.Completing = false
	lv.Completed = true
	lv.Active = false
	event.Emit(s.bus, event.LevelCompleted{Number: number, Score: score})

	next := s.levels.Next(number)
	if next == nil {
		s.log.Info("no more levels", zap.Uint32("level", number), zap.Uint32("score", score))
		return
	}
	s.world.LoadLevel(next)
}
