package event

import (
	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/geom"
)

// Physics collaborator notifications.

type ContactStarted struct {
	A, B ecs.EntityID
}

type ContactStopped struct {
	A, B ecs.EntityID
}

// ContactKind names what touched a brick.
type ContactKind uint8

const (
	ContactOther ContactKind = iota
	ContactBall
	ContactPaddle
)

func (k ContactKind) String() string {
	switch k {
	case ContactBall:
		return "ball"
	case ContactPaddle:
		return "paddle"
	default:
		return "other"
	}
}

// BrickContact is a classified contact. TypeID and Position are captured
// when the record is produced and are not re-resolved later.
type BrickContact struct {
	Brick    ecs.EntityID
	TypeID   uint8
	Kind     ContactKind
	Other    ecs.EntityID
	Position geom.Vec3
}

// BrickDestroyed is emitted at most once per brick entity per session.
type BrickDestroyed struct {
	Brick       ecs.EntityID
	TypeID      uint8
	DestroyedBy *ecs.EntityID
}

type MultiHitBrickHit struct {
	Brick    ecs.EntityID
	Previous uint8
	New      uint8
}

type ScoreChanged struct {
	Score uint32
	Delta uint32
}

type MilestoneReached struct {
	Tier  uint32
	Score uint32
}

type GravityChanged struct {
	Gravity geom.Vec3
}

type LifeLossCause uint8

const (
	CausePaddleHazard LifeLossCause = iota + 1
	CauseLowerGoal
	CauseMerkabaPaddle
)

func (c LifeLossCause) String() string {
	switch c {
	case CausePaddleHazard:
		return "paddle_hazard"
	case CauseLowerGoal:
		return "lower_goal"
	case CauseMerkabaPaddle:
		return "merkaba_paddle"
	}
	return "unknown"
}

// LifeLost is emitted at most once per pass, whatever the cause. Brick is
// set for hazard losses only. Other is the entity that touched the brick or
// goal: the paddle, the ball or a merkaba.
type LifeLost struct {
	Cause LifeLossCause
	Brick ecs.EntityID
	Other ecs.EntityID
	Lives int
}

type GameOver struct {
	Score uint32
}

type ExtraLifeAwarded struct {
	Brick ecs.EntityID
	Lives int
}

type MerkabaSpawned struct {
	Entity   ecs.EntityID
	Source   ecs.EntityID
	Position geom.Vec3
	Velocity geom.Vec3
}

type LevelCompleted struct {
	Number uint32
	Score  uint32
}

type MerkabaDespawned struct {
	Entity ecs.EntityID
}

type BallRespawned struct {
	Ball     ecs.EntityID
	Position geom.Vec3
}

// PaddleEffect is the active paddle size modifier.
type PaddleEffect uint8

const (
	PaddleNormal PaddleEffect = iota
	PaddleShrunk
	PaddleEnlarged
)

func (e PaddleEffect) String() string {
	switch e {
	case PaddleShrunk:
		return "shrunk"
	case PaddleEnlarged:
		return "enlarged"
	default:
		return "normal"
	}
}

type PaddleSizeChanged struct {
	Effect PaddleEffect
	Width  float64
}

type GameRestarted struct {
	Level uint32
}
