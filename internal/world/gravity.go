package world

import (
	"errors"
	"fmt"

	"github.com/brkrs/brkgo/internal/geom"
)

// GravityLimit bounds every gravity component.
const GravityLimit = 30.0

var ErrInvalidGravity = errors.New("invalid gravity")

// ValidateGravity rejects non-finite vectors and components outside
// [-GravityLimit, GravityLimit].
func ValidateGravity(v geom.Vec3) error {
	if !v.IsFinite() {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidGravity, v)
	}
	if !v.WithinBox(GravityLimit) {
		return fmt.Errorf("%w: %s outside ±%g", ErrInvalidGravity, v, GravityLimit)
	}
	return nil
}

// GravityConfiguration owns the level default and the live gravity vector.
// Only the loader writes LevelDefault; gravity bricks and life loss write
// Current.
type GravityConfiguration struct {
	LevelDefault    geom.Vec3
	Current         geom.Vec3
	LastLevelNumber *uint32
}

// ApplyLevel resets both vectors when number differs from the last applied
// level and reports whether it did. For the same level only LevelDefault is
// re-asserted.
func (g *GravityConfiguration) ApplyLevel(number uint32, gravity geom.Vec3) bool {
	if g.LastLevelNumber != nil && *g.LastLevelNumber == number {
		g.LevelDefault = gravity
		return false
	}
	g.LevelDefault = gravity
	g.Current = gravity
	n := number
	g.LastLevelNumber = &n
	return true
}

// Set replaces Current after validation.
func (g *GravityConfiguration) Set(v geom.Vec3) error {
	if err := ValidateGravity(v); err != nil {
		return err
	}
	g.Current = v
	return nil
}

// ResetToLevelDefault restores Current to the level gravity.
func (g *GravityConfiguration) ResetToLevelDefault() {
	g.Current = g.LevelDefault
}
