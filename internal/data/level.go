package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/brkrs/brkgo/internal/geom"
)

// Play field geometry. Rows run along X, columns along Z.
const (
	GridRows   = 20
	GridCols   = 20
	PlaneH     = 30.0
	PlaneW     = 40.0
	CellHeight = PlaneH / GridRows // 1.5 (X)
	CellWidth  = PlaneW / GridCols // 2.0 (Z)
	SpawnY     = 2.0
)

// GoalPosition is the lower goal sensor, just past the last row on the
// paddle's side of the field.
var GoalPosition = geom.V(PlaneH/2, SpawnY, 0)

// LevelDefinition is one level_NNN.yaml file.
type LevelDefinition struct {
	Number      uint32    `yaml:"number"`
	Gravity     []float64 `yaml:"gravity,omitempty"`
	Matrix      [][]uint8 `yaml:"matrix"`
	Description string    `yaml:"description,omitempty"`
	Author      string    `yaml:"author,omitempty"`
}

// GravityVec returns the declared level gravity.
func (l *LevelDefinition) GravityVec() (geom.Vec3, bool) {
	if len(l.Gravity) == 0 {
		return geom.Zero, false
	}
	v, err := geom.FromSlice(l.Gravity)
	if err != nil {
		return geom.Zero, false
	}
	return v, true
}

// NormalizationMetrics records how a matrix was fitted to the grid.
type NormalizationMetrics struct {
	PaddedRows    int
	TruncatedRows int
	PaddedCols    int // summed over rows
	TruncatedCols int // summed over rows
}

// Adjusted reports whether the input did not already match the grid.
func (m NormalizationMetrics) Adjusted() bool {
	return m != NormalizationMetrics{}
}

// NormalizeMatrix pads with empty tiles or truncates to GridRows x GridCols.
// The input is not modified.
func NormalizeMatrix(in [][]uint8) ([][]uint8, NormalizationMetrics) {
	var m NormalizationMetrics
	rows := len(in)
	if rows < GridRows {
		m.PaddedRows = GridRows - rows
	} else if rows > GridRows {
		m.TruncatedRows = rows - GridRows
		rows = GridRows
	}
	out := make([][]uint8, GridRows)
	for r := 0; r < GridRows; r++ {
		row := make([]uint8, GridCols)
		if r < rows {
			src := in[r]
			if len(src) < GridCols {
				m.PaddedCols += GridCols - len(src)
			} else if len(src) > GridCols {
				m.TruncatedCols += len(src) - GridCols
			}
			copy(row, src)
		}
		out[r] = row
	}
	return out, m
}

// CellPosition returns the world position of a grid cell's centre.
func CellPosition(row, col int) geom.Vec3 {
	x := -PlaneH/2 + (float64(row)+0.5)*CellHeight
	z := -PlaneW/2 + (float64(col)+0.5)*CellWidth
	return geom.V(x, SpawnY, z)
}

// LevelPath returns dir/level_NNN.yaml.
func LevelPath(dir string, number uint32) string {
	return filepath.Join(dir, fmt.Sprintf("level_%03d.yaml", number))
}

// LoadLevel reads a single level file.
func LoadLevel(path string) (*LevelDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	var def LevelDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	if len(def.Gravity) != 0 && len(def.Gravity) != 3 {
		return nil, fmt.Errorf("level %s: gravity needs 3 components, got %d", path, len(def.Gravity))
	}
	return &def, nil
}

// LevelSet indexes every level found in a directory by number.
type LevelSet struct {
	levels  map[uint32]*LevelDefinition
	numbers []uint32
}

func NewLevelSet() *LevelSet {
	return &LevelSet{levels: make(map[uint32]*LevelDefinition)}
}

// LoadLevelDir loads every level_*.yaml in dir. A missing directory yields an
// empty set.
func LoadLevelDir(dir string) (*LevelSet, error) {
	s := NewLevelSet()
	paths, err := filepath.Glob(filepath.Join(dir, "level_*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob levels: %w", err)
	}
	for _, p := range paths {
		def, err := LoadLevel(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		s.Add(def)
	}
	return s, nil
}

// Add registers def, replacing any level with the same number.
func (s *LevelSet) Add(def *LevelDefinition) {
	if _, dup := s.levels[def.Number]; !dup {
		s.numbers = append(s.numbers, def.Number)
		sort.Slice(s.numbers, func(i, j int) bool { return s.numbers[i] < s.numbers[j] })
	}
	s.levels[def.Number] = def
}

// Get returns the level with the given number, or nil.
func (s *LevelSet) Get(number uint32) *LevelDefinition {
	return s.levels[number]
}

// First returns the lowest-numbered level, or nil when empty.
func (s *LevelSet) First() *LevelDefinition {
	if len(s.numbers) == 0 {
		return nil
	}
	return s.levels[s.numbers[0]]
}

// Next returns the level after number in ascending order, or nil.
func (s *LevelSet) Next(number uint32) *LevelDefinition {
	i := sort.Search(len(s.numbers), func(i int) bool { return s.numbers[i] > number })
	if i == len(s.numbers) {
		return nil
	}
	return s.levels[s.numbers[i]]
}

// Count returns the number of loaded levels.
func (s *LevelSet) Count() int {
	return len(s.numbers)
}
