package system

import (
	"time"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
)

// EventDispatchSystem delivers the frame's events to external subscribers
// (feed hub, logging). Phase 8 (Output).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.DispatchAll()
}
