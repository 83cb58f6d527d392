package crab

import (
	"fmt"
	"math"

	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "crab",
})

// Component is anything which is updated once per tick.
type Component interface {
	Boot() error
	Tick(ctx *SimulationContext) error
}

// Actor is a component with a body, which other actors can see.
type Actor interface {
	Component
	Body() *Body
}

// World is the set of actors sharing some terrain. It runs them one after
// another, in the order they were added.
type World struct {
	Context *SimulationContext
	Actors  []Actor

	// Actors can set this to true to stop the world.
	Shutdown bool
}

// NewWorld returns an empty world on the given terrain, which ticks dt seconds
// at a time.
func NewWorld(t terrain.Terrain, dt float64) *World {
	w := &World{
		Actors: []Actor{},
	}

	w.Context = NewContext(t, dt)
	w.Context.Objects = w
	return w
}

// Add registers an actor to receive ticks.
func (w *World) Add(a Actor) {
	w.Actors = append(w.Actors, a)
}

// Boot calls Boot on each actor.
func (w *World) Boot() error {
	for _, a := range w.Actors {
		err := a.Boot()
		if err != nil {
			return fmt.Errorf("error while booting %s: %w", a.Body().Name, err)
		}
	}

	return nil
}

// Tick advances the clock and calls Tick on each actor. An actor which returns
// an error doesn't stop the others.
func (w *World) Tick() error {
	var first error

	for _, a := range w.Actors {
		err := a.Tick(w.Context)
		if err != nil {
			log.Warnf("error while ticking %s: %s", a.Body().Name, err)
			if first == nil {
				first = err
			}
		}
	}

	w.Context.Advance()
	return first
}

// Run ticks until the given number of simulated seconds have passed, or
// something asks to shut down.
func (w *World) Run(seconds float64) error {
	end := w.Context.SimTime + seconds
	for w.Context.SimTime < end && !w.Shutdown {
		err := w.Tick()
		if err != nil {
			return err
		}
	}

	return nil
}

// CastMORay returns the closest body (other than skip) which the ray passes
// through before it hits terrain, and the distance (in pixels) to it.
func (w *World) CastMORay(start, ray math2d.Vector, skip *Body) (*Body, float64, bool) {
	length := ray.Magnitude()
	if length == 0 {
		return nil, 0, false
	}

	if t := w.Context.Terrain; t != nil {
		if _, d := t.CastObstacleRay(start, ray); d >= 0 {
			length = d
		}
	}

	dir := ray.Unit()
	var hit *Body
	best := math.Inf(1)

	for _, a := range w.Actors {
		b := a.Body()
		if b == nil || b == skip || b.Status == DEAD {
			continue
		}

		d, ok := circleHit(start, dir, b.Position(), b.Radius)
		if ok && d <= length && d < best {
			hit = b
			best = d
		}
	}

	if hit == nil {
		return nil, 0, false
	}

	return hit, best, true
}

// circleHit returns the distance along the unit ray dir from start to where it
// enters the circle, or zero if it starts inside.
func circleHit(start, dir, center math2d.Vector, radius float64) (float64, bool) {
	oc := center.Subtract(start)
	along := oc.Dot(dir)
	perp2 := oc.Dot(oc) - along*along
	r2 := radius * radius

	if perp2 > r2 {
		return 0, false
	}

	if oc.Dot(oc) <= r2 {
		return 0, true
	}

	d := along - math.Sqrt(r2-perp2)
	if d < 0 {
		return 0, false
	}

	return d, true
}
