package world

import "github.com/brkrs/brkgo/internal/core/ecs"

// DestroyLedger remembers every brick that has produced a destruction
// notification this session. Entity ids are generational and never name a
// different brick, so entries are only dropped by Reset on a new session.
type DestroyLedger struct {
	notified map[ecs.EntityID]struct{}
}

func NewDestroyLedger() *DestroyLedger {
	return &DestroyLedger{notified: make(map[ecs.EntityID]struct{}, 256)}
}

// ShouldNotify reports whether id has not been notified yet.
func (l *DestroyLedger) ShouldNotify(id ecs.EntityID) bool {
	_, done := l.notified[id]
	return !done
}

// RecordNotified marks id as notified.
func (l *DestroyLedger) RecordNotified(id ecs.EntityID) {
	l.notified[id] = struct{}{}
}

// TryNotify is the check-and-insert every notification path goes through.
// It returns true exactly once per id.
func (l *DestroyLedger) TryNotify(id ecs.EntityID) bool {
	if !l.ShouldNotify(id) {
		return false
	}
	l.RecordNotified(id)
	return true
}

func (l *DestroyLedger) Len() int { return len(l.notified) }

// Reset forgets every entry. Only called when the world is rebuilt for a
// new session.
func (l *DestroyLedger) Reset() { clear(l.notified) }
