package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// PaddleSizeSystem runs the timed paddle size effects. A ball hitting a
// shrink or enlarge brick starts that effect, replacing a running one.
// Phase 4 (Effects).
type PaddleSizeSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewPaddleSizeSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *PaddleSizeSystem {
	return &PaddleSizeSystem{world: ws, bus: bus, log: log}
}

func (s *PaddleSizeSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *PaddleSizeSystem) Update(dt time.Duration) {
	if s.world.AdvancePaddleEffect(dt) {
		s.log.Debug("paddle size effect expired")
		event.Emit(s.bus, event.PaddleSizeChanged{Effect: event.PaddleNormal, Width: world.PaddleBaseWidth})
	}
	for _, rec := range event.Read[event.BrickContact](s.bus) {
		if rec.Kind != event.ContactBall {
			continue
		}
		var effect event.PaddleEffect
		switch rec.TypeID {
		case data.PaddleShrink:
			effect = event.PaddleShrunk
		case data.PaddleEnlarge:
			effect = event.PaddleEnlarged
		default:
			continue
		}
		w := s.world.ApplyPaddleEffect(effect)
		s.log.Debug("paddle size effect", zap.Stringer("effect", effect), zap.Float64("width", w))
		event.Emit(s.bus, event.PaddleSizeChanged{Effect: effect, Width: w})
	}
}
