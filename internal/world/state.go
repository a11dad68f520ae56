package world

import (
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/component"
	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
)

type cellKey struct{ row, col int }

// State is the simulation world: the ECS container, component stores and
// every piece of session state the pipeline mutates.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	ECS *ecs.World

	Bricks     *ecs.PtrComponentStore[component.Brick]
	Transforms *ecs.PtrComponentStore[component.Transform]
	Balls      *ecs.PtrComponentStore[component.Ball]
	Paddles    *ecs.PtrComponentStore[component.Paddle]
	Marked     *ecs.PtrComponentStore[component.MarkedForDespawn]
	Counting   *ecs.PtrComponentStore[component.CountsTowardsCompletion]
	Merkabas   *ecs.PtrComponentStore[component.Merkaba]
	Goals      *ecs.PtrComponentStore[component.LowerGoal]

	Ledger     *DestroyLedger
	Gravity    GravityConfiguration
	Score      ScoreState
	Lives      LivesState
	FrameLoss  FrameLossState
	Level      LevelState
	Spawns     *MerkabaQueue
	Respawn    RespawnState
	PaddleSize PaddleSizeState

	// Current is the level being played; nil before the first load.
	Current *data.LevelDefinition

	ball      ecs.EntityID
	paddle    ecs.EntityID
	goal      ecs.EntityID
	ballSpawn geom.Vec3
	cells     map[cellKey]ecs.EntityID

	log *zap.Logger
}

// NewState builds an empty world. lives is both the starting and maximum
// life count; milestone is the score interval between milestone tiers.
func NewState(lives int, milestone uint32, log *zap.Logger) *State {
	w := ecs.NewWorld()
	s := &State{
		ECS:        w,
		Bricks:     ecs.NewPtrComponentStore[component.Brick](),
		Transforms: ecs.NewPtrComponentStore[component.Transform](),
		Balls:      ecs.NewPtrComponentStore[component.Ball](),
		Paddles:    ecs.NewPtrComponentStore[component.Paddle](),
		Marked:     ecs.NewPtrComponentStore[component.MarkedForDespawn](),
		Counting:   ecs.NewPtrComponentStore[component.CountsTowardsCompletion](),
		Merkabas:   ecs.NewPtrComponentStore[component.Merkaba](),
		Goals:      ecs.NewPtrComponentStore[component.LowerGoal](),
		Ledger:     NewDestroyLedger(),
		Score:      ScoreState{Interval: milestone},
		Lives:      LivesState{Lives: lives, Max: lives},
		Spawns:     NewMerkabaQueue(),
		cells:      make(map[cellKey]ecs.EntityID),
		log:        log,
	}
	reg := w.Registry()
	reg.Register(s.Bricks)
	reg.Register(s.Transforms)
	reg.Register(s.Balls)
	reg.Register(s.Paddles)
	reg.Register(s.Marked)
	reg.Register(s.Counting)
	reg.Register(s.Merkabas)
	reg.Register(s.Goals)
	return s
}

// SpawnBrick creates a brick at pos. Bricks that count towards completion
// get the marker from their id.
func (s *State) SpawnBrick(typeID uint8, pos geom.Vec3) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Bricks.Set(id, &component.Brick{TypeID: typeID})
	s.Transforms.Set(id, &component.Transform{Position: pos})
	if data.CountsTowardsCompletion(typeID) {
		s.Counting.Set(id, &component.CountsTowardsCompletion{})
	}
	return id
}

// SpawnBall creates the ball, replacing any previous one.
func (s *State) SpawnBall(pos geom.Vec3) ecs.EntityID {
	s.destroyNow(s.ball)
	id := s.ECS.CreateEntity()
	s.Balls.Set(id, &component.Ball{})
	s.Transforms.Set(id, &component.Transform{Position: pos})
	s.ball = id
	return id
}

// SpawnPaddle creates the paddle, replacing any previous one.
func (s *State) SpawnPaddle(pos geom.Vec3) ecs.EntityID {
	s.destroyNow(s.paddle)
	id := s.ECS.CreateEntity()
	s.Paddles.Set(id, &component.Paddle{Width: PaddleWidth(s.PaddleSize.Effect)})
	s.Transforms.Set(id, &component.Transform{Position: pos})
	s.paddle = id
	return id
}

// SpawnMerkaba materializes a merkaba entity.
func (s *State) SpawnMerkaba(source ecs.EntityID, pos, vel geom.Vec3) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Merkabas.Set(id, &component.Merkaba{Source: source, Velocity: vel})
	s.Transforms.Set(id, &component.Transform{Position: pos})
	return id
}

// SpawnGoal creates the lower goal sensor, replacing any previous one.
func (s *State) SpawnGoal(pos geom.Vec3) ecs.EntityID {
	s.destroyNow(s.goal)
	id := s.ECS.CreateEntity()
	s.Goals.Set(id, &component.LowerGoal{})
	s.Transforms.Set(id, &component.Transform{Position: pos})
	s.goal = id
	return id
}

// RespawnBall puts a new ball at the level's ball spawn point.
func (s *State) RespawnBall() ecs.EntityID {
	return s.SpawnBall(s.ballSpawn)
}

func (s *State) Ball() ecs.EntityID   { return s.ball }
func (s *State) Paddle() ecs.EntityID { return s.paddle }
func (s *State) Goal() ecs.EntityID   { return s.goal }

// BallSpawn is where the current level places (and respawns) the ball.
func (s *State) BallSpawn() geom.Vec3 { return s.ballSpawn }

// MarkForDespawn flags a live entity for removal. It reports false when the
// entity is gone or already marked.
func (s *State) MarkForDespawn(id ecs.EntityID) bool {
	if !s.ECS.Alive(id) || s.Marked.Has(id) {
		return false
	}
	s.Marked.Set(id, &component.MarkedForDespawn{})
	return true
}

// IsMarked reports whether id is flagged for removal.
func (s *State) IsMarked(id ecs.EntityID) bool {
	return s.Marked.Has(id)
}

// RemainingBricks counts live, unmarked bricks that count towards completion.
func (s *State) RemainingBricks() int {
	return ecs.Count2(s.Bricks, s.Counting, s.Marked.Has)
}

// BrickType returns the stored brick id of a live brick.
func (s *State) BrickType(id ecs.EntityID) (uint8, bool) {
	b, ok := s.Bricks.Get(id)
	if !ok {
		return 0, false
	}
	return b.TypeID, true
}

// Position returns the entity's transform, or the origin when it has none.
func (s *State) Position(id ecs.EntityID) geom.Vec3 {
	if t, ok := s.Transforms.Get(id); ok {
		return t.Position
	}
	return geom.Zero
}

func (s *State) IsBall(id ecs.EntityID) bool    { return s.Balls.Has(id) }
func (s *State) IsPaddle(id ecs.EntityID) bool  { return s.Paddles.Has(id) }
func (s *State) IsGoal(id ecs.EntityID) bool    { return s.Goals.Has(id) }
func (s *State) IsMerkaba(id ecs.EntityID) bool { return s.Merkabas.Has(id) }

// ClearLevel marks every counting brick for despawn without going through
// contacts. The destruction sweep notifies them. Returns how many were marked.
func (s *State) ClearLevel() int {
	n := 0
	for _, id := range s.Counting.IDs() {
		if s.Bricks.Has(id) && s.MarkForDespawn(id) {
			n++
		}
	}
	return n
}

// Resolve maps a replay reference to its current entity.
func (s *State) Resolve(ref data.Ref) (ecs.EntityID, bool) {
	var id ecs.EntityID
	switch ref.Kind {
	case data.RefBall:
		id = s.ball
	case data.RefPaddle:
		id = s.paddle
	case data.RefGoal:
		id = s.goal
	case data.RefCell:
		id = s.cells[cellKey{ref.Row, ref.Col}]
	}
	if !s.ECS.Alive(id) {
		return 0, false
	}
	return id, true
}

// BrickAt returns the brick spawned from a grid cell of the current level.
func (s *State) BrickAt(row, col int) (ecs.EntityID, bool) {
	return s.Resolve(data.Ref{Kind: data.RefCell, Row: row, Col: col})
}

// LoadLevel replaces the playfield with def: bricks, merkabas and pending
// spawns are dropped, the matrix is normalized and spawned. Gravity is left
// to the loader system, which notices the new level number on the next pass.
func (s *State) LoadLevel(def *data.LevelDefinition) data.NormalizationMetrics {
	for _, id := range s.Bricks.IDs() {
		s.ECS.MarkForDestruction(id)
	}
	for _, id := range s.Merkabas.IDs() {
		s.ECS.MarkForDestruction(id)
	}
	s.ECS.FlushDestroyQueue()
	s.Spawns.Clear()
	s.Respawn = RespawnState{}
	s.PaddleSize = PaddleSizeState{}
	clear(s.cells)

	matrix, metrics := data.NormalizeMatrix(def.Matrix)
	if metrics.Adjusted() {
		s.log.Warn("level matrix normalized",
			zap.Uint32("level", def.Number),
			zap.Int("padded_rows", metrics.PaddedRows),
			zap.Int("truncated_rows", metrics.TruncatedRows),
			zap.Int("padded_cols", metrics.PaddedCols),
			zap.Int("truncated_cols", metrics.TruncatedCols))
	}

	paddleSpawned, ballSpawned := false, false
	for r, row := range matrix {
		for c, v := range row {
			pos := data.CellPosition(r, c)
			switch v {
			case 0:
			case data.TilePaddle:
				if !paddleSpawned {
					s.SpawnPaddle(pos)
					paddleSpawned = true
				}
			case data.TileBall:
				if !ballSpawned {
					s.ballSpawn = pos
					s.SpawnBall(pos)
					ballSpawned = true
				}
			default:
				s.cells[cellKey{r, c}] = s.SpawnBrick(v, pos)
			}
		}
	}
	if !paddleSpawned {
		s.log.Warn("no paddle in level matrix, spawning fallback", zap.Uint32("level", def.Number))
		s.SpawnPaddle(geom.V(0, data.SpawnY, 0))
	}
	if !ballSpawned {
		s.log.Warn("no ball in level matrix, spawning fallback", zap.Uint32("level", def.Number))
		s.ballSpawn = geom.V(0, data.SpawnY, 0)
		s.SpawnBall(s.ballSpawn)
	}
	s.SpawnGoal(data.GoalPosition)
	s.syncPaddleWidth()

	s.Current = def
	s.Level = LevelState{Number: def.Number, Active: true, Remaining: s.RemainingBricks()}
	s.log.Info("level loaded",
		zap.Uint32("level", def.Number),
		zap.Int("bricks", s.Bricks.Len()),
		zap.Int("counting", s.Level.Remaining))
	return metrics
}

// Reset rebuilds session state for a new game. Every entity is destroyed
// through the same pool, so generations keep advancing and no id from the
// previous game is handed out again; that is what lets the ledger be cleared.
func (s *State) Reset(lives int) {
	for _, id := range s.Transforms.IDs() {
		s.ECS.MarkForDestruction(id)
	}
	for _, id := range s.Bricks.IDs() {
		s.ECS.MarkForDestruction(id)
	}
	s.ECS.FlushDestroyQueue()
	s.ECS.Registry().ClearAll()
	s.Ledger.Reset()
	s.Gravity = GravityConfiguration{}
	s.Score = ScoreState{Interval: s.Score.Interval}
	s.Lives = LivesState{Lives: lives, Max: lives}
	s.FrameLoss.Reset()
	s.Level = LevelState{}
	s.Spawns.Clear()
	s.Respawn = RespawnState{}
	s.PaddleSize = PaddleSizeState{}
	s.Current = nil
	s.ball, s.paddle, s.goal = 0, 0, 0
	s.ballSpawn = geom.Vec3{}
	clear(s.cells)
}

func (s *State) destroyNow(id ecs.EntityID) {
	if id == 0 || !s.ECS.Alive(id) {
		return
	}
	s.ECS.MarkForDestruction(id)
	s.ECS.FlushDestroyQueue()
}
