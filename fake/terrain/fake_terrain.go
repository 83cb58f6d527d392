package terrain

import (
	"math"

	"github.com/adammck/crab/math2d"
)

// Block is a solid rectangle.
type Block struct {
	Min      math2d.Vector
	Max      math2d.Vector
	Strength float64
}

// FakeTerrain is flat ground at GroundY, plus any number of blocks. Everything
// is computed analytically, so tests don't depend on the physics engine.
type FakeTerrain struct {
	GroundY        float64
	GroundStrength float64
	Blocks         []Block

	// Counts calls, so tests can check that casts happen (or don't).
	Casts int
}

func NewFlat(y float64) *FakeTerrain {
	return &FakeTerrain{
		GroundY:        y,
		GroundStrength: 10,
	}
}

func (t *FakeTerrain) strengthAt(p math2d.Vector) (float64, bool) {
	for _, b := range t.Blocks {
		if p.X > b.Min.X && p.X < b.Max.X && p.Y > b.Min.Y && p.Y < b.Max.Y {
			return b.Strength, true
		}
	}

	if p.Y > t.GroundY {
		return t.GroundStrength, true
	}

	return 0, false
}

func (t *FakeTerrain) IsSolid(p math2d.Vector) bool {
	_, ok := t.strengthAt(p)
	return ok
}

// hit returns the fraction along the ray at which it first enters something
// solid, and the strength of that thing. Negative means no hit.
func (t *FakeTerrain) hits(start, ray math2d.Vector) []hit {
	hh := []hit{}

	if ray.Y > 0 && start.Y <= t.GroundY {
		a := (t.GroundY - start.Y) / ray.Y
		if a <= 1 {
			hh = append(hh, hit{a, t.GroundStrength})
		}
	}

	for _, b := range t.Blocks {
		if a, ok := slab(start, ray, b); ok {
			hh = append(hh, hit{a, b.Strength})
		}
	}

	return hh
}

type hit struct {
	alpha    float64
	strength float64
}

// slab intersects the ray with the block, returning the entry fraction.
func slab(start, ray math2d.Vector, b Block) (float64, bool) {
	lo, hi := 0.0, 1.0

	axes := [][4]float64{
		{start.X, ray.X, b.Min.X, b.Max.X},
		{start.Y, ray.Y, b.Min.Y, b.Max.Y},
	}

	for _, ax := range axes {
		s, d, mn, mx := ax[0], ax[1], ax[2], ax[3]
		if d == 0 {
			if s <= mn || s >= mx {
				return 0, false
			}
			continue
		}

		t1 := (mn - s) / d
		t2 := (mx - s) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		lo = math.Max(lo, t1)
		hi = math.Min(hi, t2)
		if lo >= hi {
			return 0, false
		}
	}

	return lo, true
}

func (t *FakeTerrain) CastObstacleRay(start, ray math2d.Vector) (math2d.Vector, float64) {
	t.Casts += 1

	if t.IsSolid(start) {
		return start, 0
	}

	first := math.Inf(1)
	for _, h := range t.hits(start, ray) {
		first = math.Min(first, h.alpha)
	}

	if math.IsInf(first, 1) {
		return start.Add(ray), -1
	}

	d := first * ray.Magnitude()
	return start.Add(ray.MultiplyByScalar(first)), d
}

func (t *FakeTerrain) CastStrengthRay(start, ray math2d.Vector, strength float64) (math2d.Vector, bool) {
	t.Casts += 1

	if s, ok := t.strengthAt(start); ok && s > strength {
		return start, true
	}

	first := math.Inf(1)
	for _, h := range t.hits(start, ray) {
		if h.strength > strength {
			first = math.Min(first, h.alpha)
		}
	}

	if math.IsInf(first, 1) {
		return start.Add(ray), false
	}

	return start.Add(ray.MultiplyByScalar(first)), true
}

func (t *FakeTerrain) GetAltitude(p math2d.Vector, max float64) float64 {
	_, d := t.CastObstacleRay(p, math2d.Vector{X: 0, Y: max})
	if d < 0 {
		return max
	}
	return d
}
