package system

import (
	"time"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/geom"
)

// TagView is read-only access to the entity tags the classifier needs.
type TagView interface {
	BrickType(id ecs.EntityID) (uint8, bool)
	Position(id ecs.EntityID) geom.Vec3
	IsBall(id ecs.EntityID) bool
	IsPaddle(id ecs.EntityID) bool
}

// Classify turns contact starts into brick contact records in arrival order.
// Contacts with no brick on either side are dropped. When both sides are
// bricks the first is the brick and the contact kind is other. The brick's
// type id and position are captured here.
func Classify(starts []event.ContactStarted, tags TagView) []event.BrickContact {
	out := make([]event.BrickContact, 0, len(starts))
	for _, c := range starts {
		brick, other := c.A, c.B
		typeID, ok := tags.BrickType(brick)
		if !ok {
			brick, other = c.B, c.A
			if typeID, ok = tags.BrickType(brick); !ok {
				continue
			}
		}
		kind := event.ContactOther
		switch {
		case tags.IsBall(other):
			kind = event.ContactBall
		case tags.IsPaddle(other):
			kind = event.ContactPaddle
		}
		out = append(out, event.BrickContact{
			Brick:    brick,
			TypeID:   typeID,
			Kind:     kind,
			Other:    other,
			Position: tags.Position(brick),
		})
	}
	return out
}

// ClassifySystem publishes this frame's brick contact records.
// Phase 2 (Classify).
type ClassifySystem struct {
	tags TagView
	bus  *event.Bus
}

func NewClassifySystem(tags TagView, bus *event.Bus) *ClassifySystem {
	return &ClassifySystem{tags: tags, bus: bus}
}

func (s *ClassifySystem) Phase() coresys.Phase { return coresys.PhaseClassify }

func (s *ClassifySystem) Update(_ time.Duration) {
	for _, rec := range Classify(event.Read[event.ContactStarted](s.bus), s.tags) {
		event.Emit(s.bus, rec)
	}
}
