package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/world"
)

// SessionRecorder stores the notable moments of one play session;
// *persist.Session implements it.
type SessionRecorder interface {
	RecordMilestone(ctx context.Context, tier, score uint32) error
	RecordLevel(ctx context.Context, level, score uint32) error
	Finish(ctx context.Context, score uint32, lives int, reason string) error
}

// SessionRecordSystem writes milestones, completed levels and game over to
// the session store. Failures are logged, play continues. Phase 9 (Persist).
type SessionRecordSystem struct {
	world    *world.State
	bus      *event.Bus
	rec      SessionRecorder
	timeout  time.Duration
	finished bool
	log      *zap.Logger
}

func NewSessionRecordSystem(ws *world.State, bus *event.Bus, rec SessionRecorder, timeout time.Duration, log *zap.Logger) *SessionRecordSystem {
	return &SessionRecordSystem{world: ws, bus: bus, rec: rec, timeout: timeout, log: log}
}

func (s *SessionRecordSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SessionRecordSystem) Update(_ time.Duration) {
	milestones := event.Read[event.MilestoneReached](s.bus)
	levels := event.Read[event.LevelCompleted](s.bus)
	over := event.Count[event.GameOver](s.bus) > 0
	if len(milestones) == 0 && len(levels) == 0 && !over {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, m := range milestones {
		if err := s.rec.RecordMilestone(ctx, m.Tier, m.Score); err != nil {
			s.log.Error("record milestone", zap.Uint32("tier", m.Tier), zap.Error(err))
		}
	}
	for _, l := range levels {
		if err := s.rec.RecordLevel(ctx, l.Number, l.Score); err != nil {
			s.log.Error("record level", zap.Uint32("level", l.Number), zap.Error(err))
		}
	}
	if over {
		s.finish(ctx, "game_over")
	}
}

// Finish closes the session record once; later calls are no-ops.
func (s *SessionRecordSystem) Finish(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.finish(ctx, reason)
}

func (s *SessionRecordSystem) finish(ctx context.Context, reason string) {
	if s.finished {
		return
	}
	s.finished = true
	if err := s.rec.Finish(ctx, s.world.Score.Current, s.world.Lives.Lives, reason); err != nil {
		s.log.Error("finish session", zap.String("reason", reason), zap.Error(err))
	}
}
