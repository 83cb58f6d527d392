package terrain

import (
	"github.com/adammck/crab/math2d"
)

// Terrain is the scene's static geometry, as seen by limbs and AI.
type Terrain interface {

	// CastObstacleRay walks from start along ray and returns the last free
	// position before hitting terrain, and the distance (in pixels) to the
	// obstacle. The distance is zero if the very first pixel is obstructed, and
	// negative if nothing was hit.
	CastObstacleRay(start, ray math2d.Vector) (math2d.Vector, float64)

	// CastStrengthRay returns the position of the first terrain along the ray
	// whose material is stronger than strength.
	CastStrengthRay(start, ray math2d.Vector, strength float64) (math2d.Vector, bool)

	// GetAltitude returns the distance (in pixels) between the point and the
	// terrain directly below it, up to max.
	GetAltitude(p math2d.Vector, max float64) float64

	// IsSolid returns true if the point is inside terrain.
	IsSolid(p math2d.Vector) bool
}

type Material struct {
	Name     string
	Strength float64
}

var (
	Air   = Material{"air", 0}
	Dirt  = Material{"dirt", 30}
	Grass = Material{"grass", 10}
	Rock  = Material{"rock", 100}

	// Nothing digs through this.
	Concrete = Material{"concrete", 1000}
)
