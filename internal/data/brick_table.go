package data

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brkrs/brkgo/internal/geom"
)

// Range is a closed float interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) draw(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

type brickTableFile struct {
	DefaultPoints   *uint32             `yaml:"default_points"`
	Points          map[uint8]uint32    `yaml:"points"`
	Gravity         map[uint8][]float64 `yaml:"gravity"`
	QueerGravity    *queerGravityEntry  `yaml:"queer_gravity"`
	MerkabaTriggers []uint8             `yaml:"merkaba_triggers"`
}

type queerGravityEntry struct {
	ID uint8 `yaml:"id"`
	X  Range `yaml:"x"`
	Y  Range `yaml:"y"`
	Z  Range `yaml:"z"`
}

// BrickTable holds per-id scoring and effect data.
type BrickTable struct {
	defaultPoints uint32
	points        map[uint8]uint32
	gravity       map[uint8]geom.Vec3
	queerID       uint8
	queer         [3]Range
	merkaba       map[uint8]struct{}
}

// DefaultBrickTable returns the built-in table.
func DefaultBrickTable() *BrickTable {
	return &BrickTable{
		defaultPoints: 25,
		points: map[uint8]uint32{
			MultiHit1: 50, MultiHit2: 50, MultiHit3: 50, MultiHit4: 50,
			SimpleBrick:          25,
			GravityZero:          125,
			GravityTwo:           75,
			GravityTen:           125,
			GravityTwenty:        150,
			GravityQueer:         250,
			MerkabaBrick:         100,
			ExtraLife:            0,
			HazardBrick:          90,
			PaddleDestroyable:    250,
			Indestructible:       0,
			HazardIndestructible: 0,
		},
		gravity: map[uint8]geom.Vec3{
			GravityZero:   geom.V(0, 0, 0),
			GravityTwo:    geom.V(0, 2, 0),
			GravityTen:    geom.V(0, 10, 0),
			GravityTwenty: geom.V(0, 20, 0),
		},
		queerID: GravityQueer,
		queer:   [3]Range{{Min: -2, Max: 15}, {}, {Min: -5, Max: 5}},
		merkaba: map[uint8]struct{}{MerkabaBrick: {}},
	}
}

// LoadBrickTable loads brick_table.yaml over the built-in defaults. A missing
// file yields the defaults unchanged.
func LoadBrickTable(path string) (*BrickTable, error) {
	t := DefaultBrickTable()
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read brick table: %w", err)
	}
	var f brickTableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse brick table: %w", err)
	}
	if f.DefaultPoints != nil {
		t.defaultPoints = *f.DefaultPoints
	}
	for id, pts := range f.Points {
		t.points[id] = pts
	}
	for id, vec := range f.Gravity {
		v, err := geom.FromSlice(vec)
		if err != nil {
			return nil, fmt.Errorf("brick table gravity %d: %w", id, err)
		}
		t.gravity[id] = v
	}
	if q := f.QueerGravity; q != nil {
		if q.ID != 0 {
			t.queerID = q.ID
		}
		t.queer = [3]Range{q.X, q.Y, q.Z}
	}
	if len(f.MerkabaTriggers) > 0 {
		t.merkaba = make(map[uint8]struct{}, len(f.MerkabaTriggers))
		for _, id := range f.MerkabaTriggers {
			t.merkaba[id] = struct{}{}
		}
	}
	return t, nil
}

// Points returns the score for destroying a brick with the given original id.
func (t *BrickTable) Points(id uint8) uint32 {
	if p, ok := t.points[id]; ok {
		return p
	}
	if _, ok := FromID(id); !ok {
		return 0
	}
	return t.defaultPoints
}

// Gravity returns the fixed gravity target for a gravity-trigger id.
func (t *BrickTable) Gravity(id uint8) (geom.Vec3, bool) {
	v, ok := t.gravity[id]
	return v, ok
}

// IsQueerGravity reports whether id draws a random gravity vector.
func (t *BrickTable) IsQueerGravity(id uint8) bool {
	return id == t.queerID
}

// QueerGravity draws a random gravity vector within the configured ranges.
func (t *BrickTable) QueerGravity(rng *rand.Rand) geom.Vec3 {
	return geom.V(t.queer[0].draw(rng), t.queer[1].draw(rng), t.queer[2].draw(rng))
}

// IsMerkabaTrigger reports whether destroying id queues a merkaba spawn.
func (t *BrickTable) IsMerkabaTrigger(id uint8) bool {
	_, ok := t.merkaba[id]
	return ok
}

// Count returns the number of ids with an explicit point value.
func (t *BrickTable) Count() int {
	return len(t.points)
}
