package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brkrs/brkgo/internal/core/event"
	"github.com/brkrs/brkgo/internal/data"
)

type memRecorder struct {
	milestones []uint32
	levels     []uint32
	finished   []string
	err        error
}

func (m *memRecorder) RecordMilestone(_ context.Context, tier, _ uint32) error {
	m.milestones = append(m.milestones, tier)
	return m.err
}

func (m *memRecorder) RecordLevel(_ context.Context, level, _ uint32) error {
	m.levels = append(m.levels, level)
	return m.err
}

func (m *memRecorder) Finish(_ context.Context, _ uint32, _ int, reason string) error {
	m.finished = append(m.finished, reason)
	return m.err
}

func TestSessionRecordSystem(t *testing.T) {
	rec := &memRecorder{}
	h := newHarness(t, []*data.LevelDefinition{levelDef(1, nil, map[cell]uint8{
		{2, 2}: data.SimpleBrick,
		{3, 3}: data.HazardBrick,
	})}, func(d *Deps) {
		d.Recorder = rec
		d.CompletionDelay = 0
	})
	h.world.Score.Current = 4990
	h.tick(h.ballHit(h.brick(2, 2)))
	assert.Equal(t, []uint32{1}, rec.milestones)

	h.world.Lives.Lives = 1
	evs := h.tick(h.paddleHit(h.brick(3, 3)))
	require.Len(t, eventsOf[event.GameOver](evs), 1)
	assert.Equal(t, []string{"game_over"}, rec.finished)
}

func TestSessionRecordFinishOnce(t *testing.T) {
	rec := &memRecorder{err: errors.New("db down")}
	h := newHarness(t, []*data.LevelDefinition{levelDef(1, nil, map[cell]uint8{{2, 2}: data.SimpleBrick})},
		func(d *Deps) { d.Recorder = rec; d.CompletionDelay = 0 })
	var sys *SessionRecordSystem
	for _, s := range h.runner.Systems() {
		if r, ok := s.(*SessionRecordSystem); ok {
			sys = r
		}
	}
	require.NotNil(t, sys)

	evs := h.tick(h.ballHit(h.brick(2, 2)))
	require.Len(t, eventsOf[event.LevelCompleted](evs), 1)
	assert.Equal(t, []uint32{1}, rec.levels, "errors are logged, not fatal")

	sys.Finish("shutdown")
	sys.Finish("shutdown")
	assert.Equal(t, []string{"shutdown"}, rec.finished)
}
