package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/world"
)

// Merkaba launch limits.
const (
	MinAngleVarianceDeg = 5.0
	MaxAngleVarianceDeg = 20.0
	MinMerkabaSpeed     = 0.1
)

// MerkabaTuning is the spawn configuration copied into each queue entry.
type MerkabaTuning struct {
	Delay            time.Duration
	AngleVarianceDeg float64
	MinSpeed         float64
}

// MerkabaQueueSystem queues a spawn for each destroyed merkaba brick at the
// position captured by that brick's own contact record this pass. A
// notification without a record is skipped. Phase 4 (Effects).
type MerkabaQueueSystem struct {
	world  *world.State
	bus    *event.Bus
	table  *data.BrickTable
	tuning MerkabaTuning
	log    *zap.Logger
}

func NewMerkabaQueueSystem(ws *world.State, bus *event.Bus, table *data.BrickTable, tuning MerkabaTuning, log *zap.Logger) *MerkabaQueueSystem {
	return &MerkabaQueueSystem{world: ws, bus: bus, table: table, tuning: tuning, log: log}
}

func (s *MerkabaQueueSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *MerkabaQueueSystem) Update(_ time.Duration) {
	destroyed := event.Read[event.BrickDestroyed](s.bus)
	if len(destroyed) == 0 {
		return
	}
	var records map[ecs.EntityID]event.BrickContact
	for _, ev := range destroyed {
		if !s.table.IsMerkabaTrigger(ev.TypeID) {
			continue
		}
		if records == nil {
			records = firstRecords(event.Read[event.BrickContact](s.bus))
		}
		rec, ok := records[ev.Brick]
		if !ok {
			s.log.Debug("merkaba brick destroyed without contact record", zap.Stringer("brick", ev.Brick))
			continue
		}
		s.world.Spawns.Push(world.PendingMerkabaSpawn{
			Source:           ev.Brick,
			Position:         rec.Position,
			Remaining:        s.tuning.Delay,
			AngleVarianceDeg: s.tuning.AngleVarianceDeg,
			MinSpeed:         s.tuning.MinSpeed,
		})
	}
}

func firstRecords(recs []event.BrickContact) map[ecs.EntityID]event.BrickContact {
	m := make(map[ecs.EntityID]event.BrickContact, len(recs))
	for _, r := range recs {
		if _, seen := m[r.Brick]; !seen {
			m[r.Brick] = r
		}
	}
	return m
}

// MerkabaSpawnSystem is the only consumer of the spawn queue. It counts
// entries down and materializes finished ones at their carried position,
// launching alternately left and right of straight ahead. Phase 6 (Spawn).
type MerkabaSpawnSystem struct {
	world *world.State
	bus   *event.Bus
	flip  bool
	log   *zap.Logger
}

func NewMerkabaSpawnSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *MerkabaSpawnSystem {
	return &MerkabaSpawnSystem{world: ws, bus: bus, log: log}
}

func (s *MerkabaSpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *MerkabaSpawnSystem) Update(dt time.Duration) {
	for _, p := range s.world.Spawns.Advance(dt) {
		sign := 1.0
		if s.flip {
			sign = -1
		}
		s.flip = !s.flip
		vel := MerkabaVelocity(p.AngleVarianceDeg, p.MinSpeed, sign)
		id := s.world.SpawnMerkaba(p.Source, p.Position, vel)
		s.log.Debug("merkaba spawned",
			zap.Stringer("merkaba", id), zap.Stringer("source", p.Source), zap.Stringer("position", p.Position))
		event.Emit(s.bus, event.MerkabaSpawned{Entity: id, Source: p.Source, Position: p.Position, Velocity: vel})
	}
}

// MerkabaVelocity returns the launch velocity: speed along +Z, deflected on X
// by half the clamped angle variance in the direction of sign.
func MerkabaVelocity(varianceDeg, minSpeed, sign float64) geom.Vec3 {
	v := math.Min(math.Max(varianceDeg, MinAngleVarianceDeg), MaxAngleVarianceDeg)
	angle := v * 0.5 * sign * math.Pi / 180
	speed := math.Max(minSpeed, MinMerkabaSpeed)
	return geom.V(math.Tan(angle)*speed, 0, speed)
}
