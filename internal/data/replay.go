package data

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brkrs/brkgo/internal/core/ecs"
	"github.com/brkrs/brkgo/internal/core/event"
)

// RefKind says what a replay entity reference points at.
type RefKind uint8

const (
	RefBall RefKind = iota + 1
	RefPaddle
	RefCell
	RefGoal
)

// Ref names an entity in a replay: "ball", "paddle", "goal" or
// "cell:ROW,COL" for the brick spawned from that grid cell.
type Ref struct {
	Kind RefKind
	Row  int
	Col  int
}

func (r Ref) String() string {
	switch r.Kind {
	case RefBall:
		return "ball"
	case RefPaddle:
		return "paddle"
	case RefCell:
		return fmt.Sprintf("cell:%d,%d", r.Row, r.Col)
	case RefGoal:
		return "goal"
	}
	return "?"
}

// ParseRef parses a replay entity reference.
func ParseRef(s string) (Ref, error) {
	switch s = strings.TrimSpace(s); s {
	case "ball":
		return Ref{Kind: RefBall}, nil
	case "paddle":
		return Ref{Kind: RefPaddle}, nil
	case "goal":
		return Ref{Kind: RefGoal}, nil
	}
	rest, ok := strings.CutPrefix(s, "cell:")
	if !ok {
		return Ref{}, fmt.Errorf("unknown entity ref %q", s)
	}
	rs, cs, ok := strings.Cut(rest, ",")
	if !ok {
		return Ref{}, fmt.Errorf("cell ref %q: want cell:ROW,COL", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return Ref{}, fmt.Errorf("cell ref %q row: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil {
		return Ref{}, fmt.Errorf("cell ref %q col: %w", s, err)
	}
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return Ref{}, fmt.Errorf("cell ref %q outside %dx%d grid", s, GridRows, GridCols)
	}
	return Ref{Kind: RefCell, Row: row, Col: col}, nil
}

// ReplayContact is one recorded contact notification.
type ReplayContact struct {
	A       string `yaml:"a"`
	B       string `yaml:"b"`
	Stopped bool   `yaml:"stopped,omitempty"`

	refA, refB Ref
}

// Replay commands.
const (
	CmdClearLevel = "clear_level"
	CmdRestart    = "restart"
)

var knownCommands = map[string]bool{CmdClearLevel: true, CmdRestart: true}

// ReplayFrame holds the contacts and commands reported on one tick.
type ReplayFrame struct {
	Tick     uint64          `yaml:"tick"`
	Contacts []ReplayContact `yaml:"contacts"`
	Commands []string        `yaml:"commands,omitempty"`
}

// Replay is a recorded physics contact stream.
type Replay struct {
	Description string        `yaml:"description,omitempty"`
	Frames      []ReplayFrame `yaml:"frames"`
}

// LoadReplay reads and validates a replay file.
func LoadReplay(path string) (*Replay, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return ParseReplay(raw)
}

// ParseReplay decodes replay YAML and resolves every reference.
func ParseReplay(raw []byte) (*Replay, error) {
	var r Replay
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse replay: %w", err)
	}
	var (
		last uint64
		err  error
	)
	for i := range r.Frames {
		f := &r.Frames[i]
		if i > 0 && f.Tick <= last {
			return nil, fmt.Errorf("replay frame %d: tick %d not after %d", i, f.Tick, last)
		}
		last = f.Tick
		for _, cmd := range f.Commands {
			if !knownCommands[cmd] {
				return nil, fmt.Errorf("replay tick %d: unknown command %q", f.Tick, cmd)
			}
		}
		for j := range f.Contacts {
			c := &f.Contacts[j]
			if c.refA, err = ParseRef(c.A); err != nil {
				return nil, fmt.Errorf("replay tick %d: %w", f.Tick, err)
			}
			if c.refB, err = ParseRef(c.B); err != nil {
				return nil, fmt.Errorf("replay tick %d: %w", f.Tick, err)
			}
		}
	}
	return &r, nil
}

// LastTick returns the tick of the final recorded frame.
func (r *Replay) LastTick() uint64 {
	if len(r.Frames) == 0 {
		return 0
	}
	return r.Frames[len(r.Frames)-1].Tick
}

// Resolver maps a reference to the live entity it currently names.
type Resolver interface {
	Resolve(ref Ref) (ecs.EntityID, bool)
}

// ReplayCursor plays a Replay back one tick per Drain call.
type ReplayCursor struct {
	replay   *Replay
	resolver Resolver
	tick     uint64
	next     int
	skipped  int
	commands []string
}

func NewReplayCursor(r *Replay, resolver Resolver) *ReplayCursor {
	return &ReplayCursor{replay: r, resolver: resolver}
}

// Drain returns the contacts recorded for the current tick and advances.
// References that no longer resolve (the brick is gone) are dropped.
func (c *ReplayCursor) Drain() ([]event.ContactStarted, []event.ContactStopped) {
	tick := c.tick
	c.tick++
	if c.next >= len(c.replay.Frames) || c.replay.Frames[c.next].Tick != tick {
		return nil, nil
	}
	f := c.replay.Frames[c.next]
	c.next++
	c.commands = append(c.commands, f.Commands...)

	var started []event.ContactStarted
	var stopped []event.ContactStopped
	for _, rc := range f.Contacts {
		a, okA := c.resolver.Resolve(rc.refA)
		b, okB := c.resolver.Resolve(rc.refB)
		if !okA || !okB {
			c.skipped++
			continue
		}
		if rc.Stopped {
			stopped = append(stopped, event.ContactStopped{A: a, B: b})
		} else {
			started = append(started, event.ContactStarted{A: a, B: b})
		}
	}
	return started, stopped
}

// DrainCommands returns the commands collected since the last call.
func (c *ReplayCursor) DrainCommands() []string {
	out := c.commands
	c.commands = nil
	return out
}

// Done reports whether every recorded frame has been played.
func (c *ReplayCursor) Done() bool {
	return c.next >= len(c.replay.Frames)
}

// Skipped returns how many contacts were dropped for unresolved references.
func (c *ReplayCursor) Skipped() int { return c.skipped }
