package scripting

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/geom"
)

// Engine wraps a single gopher-lua VM holding optional gameplay hooks.
// Single-goroutine access only (game loop). Every hook has a Go fallback,
// so an empty scripts directory is a valid configuration.
type Engine struct {
	vm  *lua.LState
	rng *rand.Rand
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, rng: rand.New(rand.NewSource(1)), log: log}
	e.installRandom()

	// Core helpers first, then hook directories
	for _, sub := range []string{"core", "scoring", "gravity"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// SetRand makes math.random in scripts draw from rng, so a seeded session
// replays the same script results.
func (e *Engine) SetRand(rng *rand.Rand) {
	if rng != nil {
		e.rng = rng
	}
}

// installRandom replaces math.random and math.randomseed with versions
// backed by the engine's rng, keeping the Lua calling conventions.
func (e *Engine) installRandom() {
	mt, ok := e.vm.GetGlobal("math").(*lua.LTable)
	if !ok {
		return
	}
	e.vm.SetField(mt, "random", e.vm.NewFunction(e.luaRandom))
	e.vm.SetField(mt, "randomseed", e.vm.NewFunction(func(L *lua.LState) int {
		e.rng.Seed(L.CheckInt64(1))
		return 0
	}))
}

// luaRandom: random() is a float in [0,1), random(m) an integer in [1,m]
// and random(m, n) an integer in [m,n].
func (e *Engine) luaRandom(L *lua.LState) int {
	switch L.GetTop() {
	case 0:
		L.Push(lua.LNumber(e.rng.Float64()))
	case 1:
		m := L.CheckInt(1)
		if m < 1 {
			L.ArgError(1, "interval is empty")
		}
		L.Push(lua.LNumber(1 + e.rng.Intn(m)))
	default:
		m, n := L.CheckInt(1), L.CheckInt(2)
		if m > n {
			L.ArgError(2, "interval is empty")
		}
		L.Push(lua.LNumber(m + e.rng.Intn(n-m+1)))
	}
	return 1
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasHook reports whether a global Lua function with the given name exists.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// BrickPoints calls brick_points(id). A missing hook, a nil return or a
// script error yields fallback.
func (e *Engine) BrickPoints(id uint8, fallback uint32) uint32 {
	fn, ok := e.vm.GetGlobal("brick_points").(*lua.LFunction)
	if !ok {
		return fallback
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(id), lua.LNumber(fallback)); err != nil {
		e.log.Error("lua brick_points error", zap.Uint8("brick_type", id), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		if result != lua.LNil {
			e.log.Warn("lua brick_points returned non-number", zap.Uint8("brick_type", id))
		}
		return fallback
	}
	if n < 0 || float64(n) > math.MaxUint32 {
		e.log.Warn("lua brick_points out of range", zap.Uint8("brick_type", id), zap.Float64("points", float64(n)))
		return fallback
	}
	return uint32(n)
}

// QueerGravity calls queer_gravity() which returns a {x=, y=, z=} table.
// Without the hook, or on any error, fallback() is used.
func (e *Engine) QueerGravity(fallback func() geom.Vec3) geom.Vec3 {
	fn, ok := e.vm.GetGlobal("queer_gravity").(*lua.LFunction)
	if !ok {
		return fallback()
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		e.log.Error("lua queer_gravity error", zap.Error(err))
		return fallback()
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua queer_gravity returned non-table")
		return fallback()
	}
	return geom.V(
		float64(lua.LVAsNumber(rt.RawGetString("x"))),
		float64(lua.LVAsNumber(rt.RawGetString("y"))),
		float64(lua.LVAsNumber(rt.RawGetString("z"))),
	)
}

func (e *Engine) Close() {
	e.vm.Close()
}
