package crab

import (
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
)

// Gravity (in m/s^2), pointing down the screen.
var DefaultGravity = math2d.Vector{X: 0, Y: 9.8}

// ObjectLookup finds other actors.
type ObjectLookup interface {
	CastMORay(start, ray math2d.Vector, skip *Body) (*Body, float64, bool)
}

// SimulationContext is everything an actor needs from the outside world during
// a tick.
type SimulationContext struct {
	Terrain terrain.Terrain

	// Length of this tick, and the time at its start, in seconds.
	DeltaTime float64
	SimTime   float64

	Gravity math2d.Vector

	// May be nil, in which case there is nobody else to see.
	Objects ObjectLookup

	Ticks int
}

func NewContext(t terrain.Terrain, dt float64) *SimulationContext {
	return &SimulationContext{
		Terrain:   t,
		DeltaTime: dt,
		Gravity:   DefaultGravity,
	}
}

// Advance moves the clock forward by one tick.
func (ctx *SimulationContext) Advance() {
	ctx.SimTime += ctx.DeltaTime
	ctx.Ticks += 1
}

// CastMORay is ObjectLookup.CastMORay, or no hit when there is no lookup.
func (ctx *SimulationContext) CastMORay(start, ray math2d.Vector, skip *Body) (*Body, float64, bool) {
	if ctx.Objects == nil {
		return nil, 0, false
	}
	return ctx.Objects.CastMORay(start, ray, skip)
}

// Timer counts simulated seconds. The zero value is a timer which was just
// reset.
type Timer struct {
	elapsed float64
}

func (t *Timer) Tick(dt float64) {
	t.elapsed += dt
}

func (t *Timer) Reset() {
	t.elapsed = 0
}

func (t *Timer) SetElapsed(s float64) {
	t.elapsed = s
}

func (t *Timer) Elapsed() float64 {
	return t.elapsed
}

// IsPast returns true if more than s seconds have passed since the reset.
func (t *Timer) IsPast(s float64) bool {
	return t.elapsed > s
}
