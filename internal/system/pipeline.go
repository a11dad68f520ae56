package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/world"
)

// Deps is everything the frame pipeline is built from. Points, Gravity and
// Recorder are optional.
type Deps struct {
	World  *world.State
	Bus    *event.Bus
	Source ContactSource
	Table  *data.BrickTable
	Levels *data.LevelSet

	Points  PointsHook
	Gravity GravityHook
	Rng     *rand.Rand

	DefaultGravity  geom.Vec3
	CompletionDelay time.Duration
	RespawnDelay    time.Duration
	Merkaba         MerkabaTuning
	MilestoneLives  bool

	Recorder       SessionRecorder
	PersistTimeout time.Duration

	Log *zap.Logger
}

// RegisterPipeline registers the frame systems. Registration order inside a
// phase is the dependency order: hit handling before the sweep, every life
// loss source before the gravity and round resets. It returns the session recorder system,
// or nil when no Recorder is given.
func RegisterPipeline(r *coresys.Runner, d Deps) *SessionRecordSystem {
	r.Register(NewContactCollectSystem(d.Source, d.World, d.Bus, d.Log))
	r.Register(NewGravityLoaderSystem(d.World, d.Bus, d.DefaultGravity, d.Log))
	r.Register(NewClassifySystem(d.World, d.Bus))

	r.Register(NewBrickHitSystem(d.World, d.Bus, d.Log))
	r.Register(NewDestructionSweepSystem(d.World, d.Bus))

	r.Register(NewScoringSystem(d.World, d.Bus, d.Table, d.Points, d.Log))
	r.Register(NewGravityBrickSystem(d.World, d.Bus, d.Table, d.Gravity, d.Rng, d.Log))
	r.Register(NewPaddleSizeSystem(d.World, d.Bus, d.Log))
	r.Register(NewHazardSystem(d.World, d.Bus, d.Log))
	r.Register(NewContactLossSystem(d.World, d.Bus, d.Log))
	r.Register(NewLivesSystem(d.World, d.Bus, d.MilestoneLives))
	r.Register(NewMerkabaQueueSystem(d.World, d.Bus, d.Table, d.Merkaba, d.Log))
	r.Register(NewGravityResetSystem(d.World, d.Bus))
	r.Register(NewRoundResetSystem(d.World, d.Bus, d.RespawnDelay, d.Log))

	r.Register(NewDespawnSystem(d.World, d.Log))
	r.Register(NewMerkabaSpawnSystem(d.World, d.Bus, d.Log))
	r.Register(NewBallRespawnSystem(d.World, d.Bus, d.Log))
	r.Register(NewLevelProgressSystem(d.World, d.Bus, d.Levels, d.CompletionDelay, d.Log))
	r.Register(NewEventDispatchSystem(d.Bus))

	var rec *SessionRecordSystem
	if d.Recorder != nil {
		timeout := d.PersistTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		rec = NewSessionRecordSystem(d.World, d.Bus, d.Recorder, timeout, d.Log)
		r.Register(rec)
	}

	r.Register(NewCleanupSystem(d.World, d.Bus))
	return rec
}
