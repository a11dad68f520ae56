package scripting

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/geom"
)

const shippedScripts = "../../scripts"

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func fixed() geom.Vec3 { return geom.V(1, 2, 3) }

func TestNoScriptsUsesFallbacks(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.False(t, e.HasHook("brick_points"))
	assert.Equal(t, uint32(25), e.BrickPoints(20, 25))
	assert.Equal(t, fixed(), e.QueerGravity(fixed))
}

func TestBrickPointsHook(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"scoring/points.lua": `
function brick_points(id, default)
  if id == 20 then return 30 end
  if id == 57 then return -1 end
  return nil
end`,
	})
	assert.True(t, e.HasHook("brick_points"))
	assert.Equal(t, uint32(30), e.BrickPoints(20, 25))
	assert.Equal(t, uint32(90), e.BrickPoints(42, 90), "nil falls back")
	assert.Equal(t, uint32(250), e.BrickPoints(57, 250), "negative falls back")
}

func TestBrickPointsErrorFallsBack(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"scoring/bad.lua": `function brick_points(id) error("boom") end`,
	})
	assert.Equal(t, uint32(25), e.BrickPoints(20, 25))
}

func TestQueerGravityHook(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"gravity/queer.lua": `function queer_gravity() return {x = 4, y = 0, z = -2} end`,
	})
	assert.Equal(t, geom.V(4, 0, -2), e.QueerGravity(fixed))
}

func TestQueerGravityBadReturn(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"gravity/queer.lua": `function queer_gravity() return 7 end`,
	})
	assert.Equal(t, fixed(), e.QueerGravity(fixed))
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "x.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.ErrorContains(t, err, "load core scripts")
}

func TestShippedScriptsKeepTablePoints(t *testing.T) {
	e, err := NewEngine(shippedScripts, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)

	assert.False(t, e.HasHook("brick_points"), "shipped scoring script is an example only")
	table := data.DefaultBrickTable()
	for id, want := range map[uint8]uint32{
		data.PaddleDestroyable:    250,
		data.MerkabaBrick:         100,
		data.SimpleBrick:          25,
		data.HazardIndestructible: 0,
	} {
		assert.Equal(t, want, e.BrickPoints(id, table.Points(id)), "brick %d", id)
	}
}

func TestShippedQueerGravityFollowsSeed(t *testing.T) {
	gravities := func(seed int64) []geom.Vec3 {
		e, err := NewEngine(shippedScripts, zap.NewNop())
		require.NoError(t, err)
		defer e.Close()
		require.True(t, e.HasHook("queer_gravity"))
		e.SetRand(rand.New(rand.NewSource(seed)))
		out := make([]geom.Vec3, 5)
		for i := range out {
			out[i] = e.QueerGravity(fixed)
		}
		return out
	}
	a, b := gravities(42), gravities(42)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, gravities(7))
	for _, g := range a {
		assert.True(t, g.X >= -2 && g.X <= 15 && g.Y == 0 && g.Z >= -5 && g.Z <= 5, "gravity %s", g)
	}
}

func TestMathRandomConventions(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"core/rand.lua": `
function roll(m, n)
  if n then return math.random(m, n) end
  if m then return math.random(m) end
  return math.random()
end
function bad() return math.random(3, 1) end`,
	})
	e.SetRand(rand.New(rand.NewSource(3)))

	call := func(args ...lua.LValue) lua.LValue {
		require.NoError(t, e.vm.CallByParam(lua.P{Fn: e.vm.GetGlobal("roll"), NRet: 1, Protect: true}, args...))
		v := e.vm.Get(-1)
		e.vm.Pop(1)
		return v
	}
	for i := 0; i < 50; i++ {
		f := float64(call().(lua.LNumber))
		assert.True(t, f >= 0 && f < 1)
		n := int(call(lua.LNumber(6)).(lua.LNumber))
		assert.True(t, n >= 1 && n <= 6)
		n = int(call(lua.LNumber(-2), lua.LNumber(2)).(lua.LNumber))
		assert.True(t, n >= -2 && n <= 2)
	}
	assert.Error(t, e.vm.CallByParam(lua.P{Fn: e.vm.GetGlobal("bad"), NRet: 1, Protect: true}))
}
