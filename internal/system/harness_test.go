package system

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/world"
)

const frame = time.Second / 60

type stubSource struct {
	next []event.ContactStarted
	cmds []string
}

func (s *stubSource) Drain() ([]event.ContactStarted, []event.ContactStopped) {
	out := s.next
	s.next = nil
	return out, nil
}

func (s *stubSource) DrainCommands() []string {
	out := s.cmds
	s.cmds = nil
	return out
}

type cell struct{ row, col int }

// levelDef builds a level with the paddle at (18,10), the ball at (16,10)
// and the given bricks.
func levelDef(number uint32, gravity []float64, bricks map[cell]uint8) *data.LevelDefinition {
	m := make([][]uint8, data.GridRows)
	for i := range m {
		m[i] = make([]uint8, data.GridCols)
	}
	m[18][10] = data.TilePaddle
	m[16][10] = data.TileBall
	for c, id := range bricks {
		m[c.row][c.col] = id
	}
	return &data.LevelDefinition{Number: number, Gravity: gravity, Matrix: m}
}

type harness struct {
	t      *testing.T
	world  *world.State
	bus    *event.Bus
	runner *coresys.Runner
	src    *stubSource
	levels *data.LevelSet
	frames [][]any // events per pass
}

func newHarness(t *testing.T, levels []*data.LevelDefinition, opts ...func(*Deps)) *harness {
	t.Helper()
	log := zap.NewNop()
	set := data.NewLevelSet()
	for _, l := range levels {
		set.Add(l)
	}
	h := &harness{
		t:      t,
		world:  world.NewState(3, 5000, log),
		bus:    event.NewBus(),
		runner: coresys.NewRunner(),
		src:    &stubSource{},
		levels: set,
	}
	d := Deps{
		World:           h.world,
		Bus:             h.bus,
		Source:          h.src,
		Table:           data.DefaultBrickTable(),
		Levels:          set,
		Rng:             rand.New(rand.NewSource(1)),
		DefaultGravity:  geom.V(2, 0, 0),
		CompletionDelay: time.Second,
		Merkaba: MerkabaTuning{
			Delay:            500 * time.Millisecond,
			AngleVarianceDeg: 20,
			MinSpeed:         3,
		},
		Log: log,
	}
	for _, o := range opts {
		o(&d)
	}
	RegisterPipeline(h.runner, d)
	h.bus.Tap(func(f uint64, ev any) {
		for uint64(len(h.frames)) <= f {
			h.frames = append(h.frames, nil)
		}
		h.frames[f] = append(h.frames[f], ev)
	})
	h.world.LoadLevel(set.First())
	return h
}

// tick runs one pass with the given contacts and returns its events.
func (h *harness) tick(contacts ...event.ContactStarted) []any {
	f := h.bus.Frame()
	h.src.next = contacts
	h.runner.Tick(frame)
	if f < uint64(len(h.frames)) {
		return h.frames[f]
	}
	return nil
}

func (h *harness) brick(row, col int) ecs.EntityID {
	h.t.Helper()
	id, ok := h.world.BrickAt(row, col)
	if !ok {
		h.t.Fatalf("no brick at %d,%d", row, col)
	}
	return id
}

func (h *harness) ballHit(brick ecs.EntityID) event.ContactStarted {
	return event.ContactStarted{A: h.world.Ball(), B: brick}
}

func (h *harness) paddleHit(brick ecs.EntityID) event.ContactStarted {
	return event.ContactStarted{A: brick, B: h.world.Paddle()}
}

func eventsOf[T any](evs []any) []T {
	var out []T
	for _, ev := range evs {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (h *harness) goalHit(id ecs.EntityID) event.ContactStarted {
	return event.ContactStarted{A: id, B: h.world.Goal()}
}

func (h *harness) merkaba() ecs.EntityID {
	return h.world.SpawnMerkaba(0, geom.V(0, data.SpawnY, 0), geom.V(0, 0, 3))
}

func (h *harness) paddleWidth() float64 {
	h.t.Helper()
	p, ok := h.world.Paddles.Get(h.world.Paddle())
	if !ok {
		h.t.Fatal("no paddle")
	}
	return p.Width
}
