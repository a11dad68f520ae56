package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain physics contacts
	PhaseLoad                    // 1: level/gravity configuration
	PhaseClassify                // 2: contacts -> brick contact records
	PhaseUpdate                  // 3: degradation, destruction marking + notification
	PhaseEffects                 // 4: score, gravity, hazard, lives, spawn queue
	PhaseDespawn                 // 5: remove marked entities
	PhaseSpawn                   // 6: materialize queued spawns
	PhasePostUpdate              // 7: level progress
	PhaseOutput                  // 8: deliver events to subscribers
	PhasePersist                 // 9: session records
	PhaseCleanup                 // 10: clear frame queues
)

var phaseNames = [...]string{
	"input", "load", "classify", "update", "effects", "despawn",
	"spawn", "post_update", "output", "persist", "cleanup",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
