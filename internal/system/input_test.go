package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
)

func TestContactQueueDrain(t *testing.T) {
	q := NewContactQueue(2)
	assert.True(t, q.Started(event.ContactStarted{A: 1, B: 2}))
	assert.True(t, q.Started(event.ContactStarted{A: 3, B: 4}))
	assert.False(t, q.Started(event.ContactStarted{A: 5, B: 6}), "full")
	assert.True(t, q.Stopped(event.ContactStopped{A: 1, B: 2}))

	started, stopped := q.Drain()
	assert.Equal(t, []event.ContactStarted{{A: 1, B: 2}, {A: 3, B: 4}}, started)
	assert.Len(t, stopped, 1)

	started, stopped = q.Drain()
	assert.Empty(t, started)
	assert.Empty(t, stopped)
}

func TestRestartCommandStartsNewGame(t *testing.T) {
	h := newHarness(t, []*data.LevelDefinition{levelDef(1, []float64{0, 0, 5}, map[cell]uint8{
		{2, 2}: data.SimpleBrick,
		{2, 4}: data.GravityTen,
		{3, 3}: data.HazardBrick,
	})})
	first, grav := h.brick(2, 2), h.brick(2, 4)
	h.tick(h.ballHit(first), h.ballHit(grav))
	h.tick(h.paddleHit(h.brick(3, 3)))
	require.Equal(t, uint32(150), h.world.Score.Current)
	require.Equal(t, 2, h.world.Lives.Lives)
	require.Equal(t, 2, h.world.Ledger.Len())
	oldBall, oldPaddle := h.world.Ball(), h.world.Paddle()

	h.src.cmds = []string{data.CmdRestart}
	evs := h.tick(h.ballHit(h.brick(3, 3)))
	require.Equal(t, []event.GameRestarted{{Level: 1}}, eventsOf[event.GameRestarted](evs))
	assert.Empty(t, eventsOf[event.BrickDestroyed](evs), "old contacts are dropped")

	assert.Zero(t, h.world.Score.Current)
	assert.Equal(t, 3, h.world.Lives.Lives)
	assert.Zero(t, h.world.Ledger.Len())
	assert.Equal(t, 3, h.world.Level.Remaining)
	assert.Equal(t, geom.V(0, 0, 5), h.world.Gravity.Current, "loader reapplies level gravity")

	for _, old := range []ecs.EntityID{first, grav, oldBall, oldPaddle} {
		assert.NotContains(t, h.world.Transforms.IDs(), old)
	}
	assert.NotEqual(t, first, h.brick(2, 2), "ids are not reused across games")
	assert.False(t, h.world.ECS.Alive(first))

	evs = h.tick(h.ballHit(h.brick(2, 2)))
	require.Len(t, eventsOf[event.BrickDestroyed](evs), 1)
	assert.Equal(t, uint32(25), h.world.Score.Current)
}
