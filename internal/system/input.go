package system

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/world"
)

// ContactSource is the physics collaborator: each call returns the contact
// notifications reported since the previous call, in arrival order.
type ContactSource interface {
	Drain() ([]event.ContactStarted, []event.ContactStopped)
}

// CommandSource is optionally implemented by a ContactSource that also
// carries debug commands (replays do).
type CommandSource interface {
	DrainCommands() []string
}

// ContactCollectSystem drains the physics collaborator into the frame bus.
// Phase 0 (Input).
type ContactCollectSystem struct {
	src   ContactSource
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewContactCollectSystem(src ContactSource, ws *world.State, bus *event.Bus, log *zap.Logger) *ContactCollectSystem {
	return &ContactCollectSystem{src: src, world: ws, bus: bus, log: log}
}

func (s *ContactCollectSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ContactCollectSystem) Update(_ time.Duration) {
	started, stopped := s.src.Drain()
	var cmds []string
	if cs, ok := s.src.(CommandSource); ok {
		cmds = cs.DrainCommands()
	}
	if slices.Contains(cmds, data.CmdRestart) {
		// contacts reported this pass belong to the game being thrown away
		s.restart()
		return
	}

	for _, c := range started {
		event.Emit(s.bus, c)
	}
	for _, c := range stopped {
		event.Emit(s.bus, c)
	}
	for _, cmd := range cmds {
		switch cmd {
		case data.CmdClearLevel:
			n := s.world.ClearLevel()
			s.log.Info("clear level command", zap.Int("marked", n))
		default:
			s.log.Warn("unknown command", zap.String("command", cmd))
		}
	}
}

// restart starts a new game on the current level with full lives.
func (s *ContactCollectSystem) restart() {
	def := s.world.Current
	if def == nil {
		s.log.Warn("restart command without a loaded level")
		return
	}
	s.world.Reset(s.world.Lives.Max)
	s.world.LoadLevel(def)
	s.log.Info("game restarted", zap.Uint32("level", def.Number), zap.Int("lives", s.world.Lives.Lives))
	event.Emit(s.bus, event.GameRestarted{Level: def.Number})
}

// ContactQueue is a ContactSource fed from another goroutine, for a physics
// step running outside the game loop.
type ContactQueue struct {
	started chan event.ContactStarted
	stopped chan event.ContactStopped
	max     int
}

// NewContactQueue creates a queue buffering up to size notifications of each
// kind. Drain returns at most size of each per call.
func NewContactQueue(size int) *ContactQueue {
	return &ContactQueue{
		started: make(chan event.ContactStarted, size),
		stopped: make(chan event.ContactStopped, size),
		max:     size,
	}
}

// Started enqueues a contact start. It reports false when the queue is full.
func (q *ContactQueue) Started(c event.ContactStarted) bool {
	select {
	case q.started <- c:
		return true
	default:
		return false
	}
}

// Stopped enqueues a contact stop. It reports false when the queue is full.
func (q *ContactQueue) Stopped(c event.ContactStopped) bool {
	select {
	case q.stopped <- c:
		return true
	default:
		return false
	}
}

func (q *ContactQueue) Drain() ([]event.ContactStarted, []event.ContactStopped) {
	return drainChan(q.started, q.max), drainChan(q.stopped, q.max)
}

func drainChan[T any](ch chan T, max int) []T {
	var out []T
	for len(out) < max {
		select {
		case c := <-ch:
			out = append(out, c)
		default:
			return out
		}
	}
	return out
}
