package world

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
)

func TestLedgerTryNotifyOnce(t *testing.T) {
	l := NewDestroyLedger()
	id := ecs.NewEntityID(5, 0)
	assert.True(t, l.ShouldNotify(id))
	assert.True(t, l.TryNotify(id))
	assert.False(t, l.TryNotify(id))
	assert.False(t, l.ShouldNotify(id))
	assert.True(t, l.TryNotify(ecs.NewEntityID(5, 1)), "new generation is a new brick")
	l.Reset()
	assert.Equal(t, 0, l.Len())
}

func TestGravityApplyLevelIdempotent(t *testing.T) {
	var g GravityConfiguration
	assert.True(t, g.ApplyLevel(42, geom.V(2, 0, 0)))
	assert.Equal(t, geom.V(2, 0, 0), g.LevelDefault)
	assert.Equal(t, geom.V(2, 0, 0), g.Current)
	require.NotNil(t, g.LastLevelNumber)
	assert.Equal(t, uint32(42), *g.LastLevelNumber)

	require.NoError(t, g.Set(geom.V(10, 0, 0)))
	assert.False(t, g.ApplyLevel(42, geom.V(2, 0, 0)))
	assert.Equal(t, geom.V(10, 0, 0), g.Current)
	assert.Equal(t, geom.V(2, 0, 0), g.LevelDefault)

	assert.True(t, g.ApplyLevel(43, geom.V(0, 0, 0)))
	assert.Equal(t, geom.Zero, g.Current)
	assert.Equal(t, geom.Zero, g.LevelDefault)
}

func TestValidateGravity(t *testing.T) {
	assert.NoError(t, ValidateGravity(geom.V(30, -30, 0)))
	assert.ErrorIs(t, ValidateGravity(geom.V(31, 0, 0)), ErrInvalidGravity)
	assert.ErrorIs(t, ValidateGravity(geom.V(math.NaN(), 0, 0)), ErrInvalidGravity)

	var g GravityConfiguration
	g.Current = geom.V(1, 1, 1)
	assert.Error(t, g.Set(geom.V(0, math.Inf(1), 0)))
	assert.Equal(t, geom.V(1, 1, 1), g.Current)
}

func TestScoreMilestones(t *testing.T) {
	s := ScoreState{Interval: 5000}
	assert.Empty(t, s.Add(4990))
	assert.Equal(t, []uint32{1}, s.Add(25))
	assert.Empty(t, s.Add(25))
	assert.Equal(t, []uint32{2, 3}, s.Add(10000))
	assert.Equal(t, uint32(3), s.LastMilestone)
	assert.Empty(t, s.Add(0))
}

func TestLives(t *testing.T) {
	l := LivesState{Lives: 1, Max: 3}
	assert.True(t, l.Gain())
	assert.True(t, l.Gain())
	assert.False(t, l.Gain())
	assert.Equal(t, 3, l.Lives)
	l.Lives = 0
	assert.Equal(t, 0, l.Lose())
}

func TestMerkabaQueueAdvance(t *testing.T) {
	q := NewMerkabaQueue()
	q.Push(PendingMerkabaSpawn{Source: 1, Remaining: 500 * time.Millisecond})
	q.Push(PendingMerkabaSpawn{Source: 2, Remaining: 300 * time.Millisecond})

	assert.Empty(t, q.Advance(200*time.Millisecond))
	ready := q.Advance(100 * time.Millisecond)
	require.Len(t, ready, 1)
	assert.Equal(t, ecs.EntityID(2), ready[0].Source)
	assert.Equal(t, 1, q.Len())

	ready = q.Advance(time.Second)
	require.Len(t, ready, 1)
	assert.Equal(t, 0, q.Len())
}

func testLevel() *data.LevelDefinition {
	m := make([][]uint8, 20)
	for i := range m {
		m[i] = make([]uint8, 20)
	}
	m[4][14] = data.MerkabaBrick
	m[4][10] = data.MerkabaBrick
	m[5][5] = data.Indestructible
	m[18][10] = data.TilePaddle
	m[16][10] = data.TileBall
	return &data.LevelDefinition{Number: 1, Matrix: m}
}

func TestLoadLevelSpawnsMatrix(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())

	assert.Equal(t, 3, s.Bricks.Len())
	assert.Equal(t, 2, s.Level.Remaining, "indestructible does not count")
	assert.True(t, s.Level.Active)

	a, ok := s.BrickAt(4, 14)
	require.True(t, ok)
	tr, _ := s.Transforms.Get(a)
	assert.Equal(t, geom.V(-8.25, 2, 9), tr.Position)

	ball, ok := s.Resolve(data.Ref{Kind: data.RefBall})
	require.True(t, ok)
	assert.True(t, s.Balls.Has(ball))

	_, ok = s.BrickAt(0, 0)
	assert.False(t, ok)
}

func TestLoadLevelReplacesBricks(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())
	old, _ := s.BrickAt(4, 14)
	s.Spawns.Push(PendingMerkabaSpawn{Source: old})

	next := testLevel()
	next.Number = 2
	next.Matrix[4][14] = 0
	s.LoadLevel(next)

	assert.False(t, s.ECS.Alive(old))
	_, ok := s.BrickAt(4, 14)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Spawns.Len())
	assert.Equal(t, 2, s.Bricks.Len())
	assert.Equal(t, uint32(2), s.Level.Number)
}

func TestLoadLevelFallbackPaddle(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(&data.LevelDefinition{Number: 9, Matrix: [][]uint8{{20}}})
	assert.True(t, s.ECS.Alive(s.Paddle()))
	assert.True(t, s.ECS.Alive(s.Ball()))
}

func TestMarkForDespawnOnce(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	id := s.SpawnBrick(data.SimpleBrick, geom.Zero)
	assert.True(t, s.MarkForDespawn(id))
	assert.False(t, s.MarkForDespawn(id))
	assert.Equal(t, 0, s.RemainingBricks())
}

func TestClearLevelMarksCountingOnly(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())
	assert.Equal(t, 2, s.ClearLevel())
	assert.Equal(t, 0, s.RemainingBricks())
	ind, _ := s.BrickAt(5, 5)
	assert.False(t, s.IsMarked(ind))
	assert.Equal(t, 0, s.ClearLevel(), "already marked")
}

func TestLoadLevelSpawnsGoal(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())
	goal := s.Goal()
	assert.True(t, s.IsGoal(goal))
	assert.Equal(t, data.GoalPosition, s.Position(goal))
	assert.Equal(t, data.CellPosition(16, 10), s.BallSpawn())

	id, ok := s.Resolve(data.Ref{Kind: data.RefGoal})
	require.True(t, ok)
	assert.Equal(t, goal, id)

	s.LoadLevel(&data.LevelDefinition{Number: 9, Matrix: [][]uint8{{20}}})
	assert.False(t, s.ECS.Alive(goal), "one goal per level")
	assert.Equal(t, 1, s.Goals.Len())
	assert.Equal(t, geom.V(0, data.SpawnY, 0), s.BallSpawn())
}

func TestRespawnState(t *testing.T) {
	var r RespawnState
	assert.False(t, r.Advance(time.Second), "nothing scheduled")

	r.Schedule(50 * time.Millisecond)
	assert.False(t, r.Advance(30*time.Millisecond))
	assert.True(t, r.Advance(30*time.Millisecond))
	assert.False(t, r.Pending)
	assert.False(t, r.Advance(30*time.Millisecond), "fires once")
}

func TestPaddleWidth(t *testing.T) {
	assert.Equal(t, PaddleBaseWidth, PaddleWidth(event.PaddleNormal))
	assert.InDelta(t, 14, PaddleWidth(event.PaddleShrunk), 1e-9)
	assert.Equal(t, PaddleMaxWidth, PaddleWidth(event.PaddleEnlarged))
}

func TestPaddleEffectTimer(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())
	paddle, _ := s.Paddles.Get(s.Paddle())
	assert.Equal(t, PaddleBaseWidth, paddle.Width)

	s.ApplyPaddleEffect(event.PaddleShrunk)
	assert.InDelta(t, 14, paddle.Width, 1e-9)
	assert.False(t, s.AdvancePaddleEffect(9*time.Second))

	s.ApplyPaddleEffect(event.PaddleEnlarged)
	assert.Equal(t, PaddleEffectDuration, s.PaddleSize.Remaining)
	assert.False(t, s.AdvancePaddleEffect(9*time.Second))
	assert.True(t, s.AdvancePaddleEffect(time.Second))
	assert.Equal(t, PaddleBaseWidth, paddle.Width)
	assert.False(t, s.ClearPaddleEffect(), "already expired")
}

func TestResetKeepsIDsUnique(t *testing.T) {
	s := NewState(3, 5000, zap.NewNop())
	s.LoadLevel(testLevel())
	before := s.Transforms.IDs()
	brick, _ := s.BrickAt(4, 14)
	s.Ledger.RecordNotified(brick)
	s.Score.Add(300)
	s.Lives.Lose()
	s.ApplyPaddleEffect(event.PaddleShrunk)
	s.Respawn.Schedule(time.Second)

	def := s.Current
	s.Reset(3)
	assert.Zero(t, s.Transforms.Len())
	assert.Zero(t, s.Ledger.Len())
	assert.Zero(t, s.Score.Current)
	assert.Equal(t, uint32(5000), s.Score.Interval)
	assert.Equal(t, 3, s.Lives.Lives)
	assert.False(t, s.PaddleSize.Active())
	assert.False(t, s.Respawn.Pending)
	assert.Nil(t, s.Current)

	s.LoadLevel(def)
	for _, id := range s.Transforms.IDs() {
		assert.NotContains(t, before, id)
	}
	for _, id := range before {
		assert.False(t, s.ECS.Alive(id))
	}
}
