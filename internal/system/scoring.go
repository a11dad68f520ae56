package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// PointsHook overrides table points; *scripting.Engine implements it.
type PointsHook interface {
	BrickPoints(id uint8, fallback uint32) uint32
}

// ScoringSystem awards points for destroyed bricks and reports milestone
// tiers. One ScoreChanged per pass when anything was awarded, then one
// MilestoneReached per tier crossed. Phase 4 (Effects).
type ScoringSystem struct {
	world *world.State
	bus   *event.Bus
	table *data.BrickTable
	hook  PointsHook // may be nil
	log   *zap.Logger
}

func NewScoringSystem(ws *world.State, bus *event.Bus, table *data.BrickTable, hook PointsHook, log *zap.Logger) *ScoringSystem {
	return &ScoringSystem{world: ws, bus: bus, table: table, hook: hook, log: log}
}

func (s *ScoringSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *ScoringSystem) Update(_ time.Duration) {
	var delta uint32
	var tiers []uint32
	for _, ev := range event.Read[event.BrickDestroyed](s.bus) {
		pts := s.table.Points(ev.TypeID)
		if s.hook != nil {
			pts = s.hook.BrickPoints(ev.TypeID, pts)
		}
		delta += pts
		tiers = append(tiers, s.world.Score.Add(pts)...)
	}
	if delta == 0 {
		return
	}
	score := s.world.Score.Current
	event.Emit(s.bus, event.ScoreChanged{Score: score, Delta: delta})
	for _, tier := range tiers {
		s.log.Info("milestone reached", zap.Uint32("tier", tier), zap.Uint32("score", score))
		event.Emit(s.bus, event.MilestoneReached{Tier: tier, Score: score})
	}
}
