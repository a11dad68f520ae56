package geom

import (
	"fmt"
	"math"
)

// Vec3 is a world-space vector. Y is up; the play field lies in the XZ plane.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

var Zero = Vec3{}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64           { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) String() string         { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }
func (v Vec3) Components() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec3) IsFinite() bool {
	for _, c := range v.Components() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// WithinBox reports whether every component lies in [-limit, +limit].
func (v Vec3) WithinBox(limit float64) bool {
	for _, c := range v.Components() {
		if c < -limit || c > limit {
			return false
		}
	}
	return true
}

// FromSlice builds a vector from a 3-element slice as found in level files.
func FromSlice(s []float64) (Vec3, error) {
	if len(s) != 3 {
		return Zero, fmt.Errorf("vector needs 3 components, got %d", len(s))
	}
	return Vec3{s[0], s[1], s[2]}, nil
}
