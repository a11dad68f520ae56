package world

import (
	"time"

	"github.com/brkrs/brkgo/internal/core/event"
)

// Paddle size effects from bricks 30 and 32.
const (
	PaddleBaseWidth         = 20.0
	PaddleMinWidth          = 10.0
	PaddleMaxWidth          = 30.0
	PaddleShrinkMultiplier  = 0.7
	PaddleEnlargeMultiplier = 1.5
	PaddleEffectDuration    = 10 * time.Second
)

// PaddleWidth returns the clamped width for an effect.
func PaddleWidth(e event.PaddleEffect) float64 {
	w := PaddleBaseWidth
	switch e {
	case event.PaddleShrunk:
		w *= PaddleShrinkMultiplier
	case event.PaddleEnlarged:
		w *= PaddleEnlargeMultiplier
	}
	return min(max(w, PaddleMinWidth), PaddleMaxWidth)
}

// PaddleSizeState is the timed paddle size effect. A new effect replaces
// the running one and restarts the timer.
type PaddleSizeState struct {
	Effect    event.PaddleEffect
	Remaining time.Duration
}

func (p *PaddleSizeState) Active() bool { return p.Effect != event.PaddleNormal }

// ApplyPaddleEffect starts e for PaddleEffectDuration and returns the new width.
func (s *State) ApplyPaddleEffect(e event.PaddleEffect) float64 {
	s.PaddleSize = PaddleSizeState{Effect: e, Remaining: PaddleEffectDuration}
	return s.syncPaddleWidth()
}

// AdvancePaddleEffect counts the running effect down. It reports true when
// the effect expired during this call.
func (s *State) AdvancePaddleEffect(dt time.Duration) bool {
	if !s.PaddleSize.Active() {
		return false
	}
	s.PaddleSize.Remaining -= dt
	if s.PaddleSize.Remaining > 0 {
		return false
	}
	s.ClearPaddleEffect()
	return true
}

// ClearPaddleEffect restores the base width. It reports whether an effect
// was running.
func (s *State) ClearPaddleEffect() bool {
	was := s.PaddleSize.Active()
	s.PaddleSize = PaddleSizeState{}
	s.syncPaddleWidth()
	return was
}

func (s *State) syncPaddleWidth() float64 {
	w := PaddleWidth(s.PaddleSize.Effect)
	if p, ok := s.Paddles.Get(s.paddle); ok {
		p.Width = w
	}
	return w
}
