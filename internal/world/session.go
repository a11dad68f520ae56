package world

import "time"

// ScoreState is the running score. Score never decreases.
type ScoreState struct {
	Current       uint32
	LastMilestone uint32 // highest tier reached; tier n is n*Interval points
	Interval      uint32
}

// Add awards points and returns every milestone tier newly crossed, in
// ascending order.
func (s *ScoreState) Add(points uint32) []uint32 {
	if points == 0 {
		return nil
	}
	s.Current += points
	if s.Interval == 0 {
		return nil
	}
	tier := s.Current / s.Interval
	var crossed []uint32
	for t := s.LastMilestone + 1; t <= tier; t++ {
		crossed = append(crossed, t)
	}
	if tier > s.LastMilestone {
		s.LastMilestone = tier
	}
	return crossed
}

// LivesState tracks remaining lives.
type LivesState struct {
	Lives int
	Max   int
}

// Lose removes one life, never going below zero, and returns the remainder.
func (l *LivesState) Lose() int {
	if l.Lives > 0 {
		l.Lives--
	}
	return l.Lives
}

// Gain adds one life clamped to Max. It reports whether a life was added.
func (l *LivesState) Gain() bool {
	if l.Lives >= l.Max {
		return false
	}
	l.Lives++
	return true
}

// FrameLossState limits life loss to one per pass, whatever the cause.
type FrameLossState struct {
	LifeLossEmitted bool
}

func (f *FrameLossState) Reset() { f.LifeLossEmitted = false }

// RespawnState is the pending ball respawn after a life loss.
type RespawnState struct {
	Pending   bool
	Remaining time.Duration
}

// Schedule arms the respawn countdown.
func (r *RespawnState) Schedule(delay time.Duration) {
	r.Pending = true
	r.Remaining = delay
}

// Advance counts down and reports whether the respawn is due now.
func (r *RespawnState) Advance(dt time.Duration) bool {
	if !r.Pending {
		return false
	}
	r.Remaining -= dt
	if r.Remaining > 0 {
		return false
	}
	r.Pending = false
	r.Remaining = 0
	return true
}

// LevelState tracks progress through the current level.
type LevelState struct {
	Number     uint32
	Active     bool
	Remaining  int           // counting bricks left, refreshed each pass
	Completing bool          // countdown running
	CompleteIn time.Duration // time left on the countdown
	Completed  bool
}
