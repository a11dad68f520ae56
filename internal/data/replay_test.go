package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brkrs/brkgo/internal/core/ecs"
)

type mapResolver map[Ref]ecs.EntityID

func (m mapResolver) Resolve(ref Ref) (ecs.EntityID, bool) {
	id, ok := m[ref]
	return id, ok
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("cell:4, 14")
	require.NoError(t, err)
	assert.Equal(t, Ref{Kind: RefCell, Row: 4, Col: 14}, r)

	r, err = ParseRef("paddle")
	require.NoError(t, err)
	assert.Equal(t, RefPaddle, r.Kind)

	r, err = ParseRef(" goal ")
	require.NoError(t, err)
	assert.Equal(t, RefGoal, r.Kind)
	assert.Equal(t, "goal", r.String())

	_, err = ParseRef("cell:40,1")
	assert.Error(t, err)
	_, err = ParseRef("wall")
	assert.Error(t, err)
}

func TestReplayCursorDrainsByTick(t *testing.T) {
	rp, err := ParseReplay([]byte(`
frames:
  - tick: 1
    contacts:
      - {a: ball, b: "cell:4,14"}
      - {a: ball, b: "cell:0,0"}
  - tick: 3
    contacts:
      - {a: ball, b: "cell:4,14", stopped: true}
`))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rp.LastTick())

	ball, brick := ecs.NewEntityID(1, 0), ecs.NewEntityID(2, 0)
	cur := NewReplayCursor(rp, mapResolver{
		{Kind: RefBall}:                   ball,
		{Kind: RefCell, Row: 4, Col: 14}: brick,
	})

	s, st := cur.Drain() // tick 0
	assert.Empty(t, s)
	assert.Empty(t, st)

	s, _ = cur.Drain() // tick 1
	require.Len(t, s, 1)
	assert.Equal(t, ball, s[0].A)
	assert.Equal(t, brick, s[0].B)
	assert.Equal(t, 1, cur.Skipped())

	cur.Drain() // tick 2
	s, st = cur.Drain()
	assert.Empty(t, s)
	require.Len(t, st, 1)
	assert.True(t, cur.Done())
}

func TestParseReplayRejectsUnorderedTicks(t *testing.T) {
	_, err := ParseReplay([]byte("frames:\n  - tick: 2\n  - tick: 2\n"))
	assert.ErrorContains(t, err, "not after")
}

func TestReplayCommands(t *testing.T) {
	rp, err := ParseReplay([]byte("frames:\n  - tick: 0\n    commands: [clear_level]\n"))
	require.NoError(t, err)
	cur := NewReplayCursor(rp, mapResolver{})
	cur.Drain()
	assert.Equal(t, []string{CmdClearLevel}, cur.DrainCommands())
	assert.Empty(t, cur.DrainCommands())

	rp, err = ParseReplay([]byte("frames:\n  - tick: 0\n    commands: [restart]\n"))
	require.NoError(t, err)
	cur = NewReplayCursor(rp, mapResolver{})
	cur.Drain()
	assert.Equal(t, []string{CmdRestart}, cur.DrainCommands())

	_, err = ParseReplay([]byte("frames:\n  - tick: 0\n    commands: [explode]\n"))
	assert.ErrorContains(t, err, "unknown command")
}
