package component

import (
	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/geom"
)

// Brick tags an entity as a brick. TypeID is the level-format id and is
// authoritative: degradation rewrites it in place.
type Brick struct {
	TypeID uint8
}

// Transform is the world-space position as last reported by physics.
type Transform struct {
	Position geom.Vec3
}

// Ball marks a ball entity.
type Ball struct{}

// Paddle marks the player paddle. Width follows the active size effect.
type Paddle struct {
	Width float64
}

// LowerGoal is the sensor behind the paddle. Balls reaching it cost a life,
// merkabas reaching it are removed.
type LowerGoal struct{}

// MarkedForDespawn is set once; the despawn phase removes the entity.
type MarkedForDespawn struct{}

// CountsTowardsCompletion marks bricks that must be cleared to finish a level.
type CountsTowardsCompletion struct{}

// Merkaba is the spawned pickup. Velocity is the initial linear velocity
// handed to physics when it adopts the body.
type Merkaba struct {
	Source   ecs.EntityID
	Velocity geom.Vec3
}
