package crab

import (
	core "github.com/adammck/crab"
	"github.com/adammck/crab/math2d"
)

// partner returns the limb whose stride the given one is timed against. That's
// the other leg on the same side, or, for a crab with one leg per side, the
// leg on the other side.
func (c *Crab) partner(s Side, l Layer) (Side, Layer, bool) {
	if c.limbs[s][l.Other()] != nil {
		return s, l.Other(), true
	}

	o := s.Other()
	fg, bg := c.limbs[o][FGROUND] != nil, c.limbs[o][BGROUND] != nil
	if fg && !bg {
		return o, FGROUND, true
	}
	if bg && !fg {
		return o, BGROUND, true
	}

	return s, l, false
}

// leads returns true if the limb starts the strides of its pair. The left side
// leads with its front leg and the right with its back one, so the sides are
// out of step. Between sides, the left leads.
func (c *Crab) leads(s Side, l Layer) bool {
	ps, _, ok := c.partner(s, l)
	if !ok {
		return true
	}

	if ps != s {
		return s == LEFTSIDE
	}

	if s == LEFTSIDE {
		return l == FGROUND
	}
	return l == BGROUND
}

// shouldPush returns true if the limb should step this tick. A limb which has
// finished its stride waits (flailing) until its partner is halfway through
// its own, unless it leads and its side is due a new stride.
func (c *Crab) shouldPush(s Side, l Layer) bool {
	ps, pl, ok := c.partner(s, l)
	if !ok {
		return true
	}

	path := c.Paths[s][l][WALK]
	partner := c.Paths[ps][pl][WALK]
	if path == nil || partner == nil {
		return true
	}

	waiting := path.PathEnded() && partner.GetRegularProgress() < 0.5
	if c.leads(s, l) {
		return !waiting || c.strideStart[s]
	}

	return !waiting
}

// stepping returns true if a restart of the limb's path is a new stride for
// its side. That's the front leg, or the back one if there's no front leg.
func (c *Crab) stepping(s Side, l Layer) bool {
	return l == FGROUND || c.limbs[s][FGROUND] == nil
}

// walkOrder is the order in which the limbs are pushed, so that leaders go
// before the limbs which watch their progress.
var walkOrder = []struct {
	s Side
	l Layer
}{
	{LEFTSIDE, FGROUND},
	{LEFTSIDE, BGROUND},
	{RIGHTSIDE, BGROUND},
	{RIGHTSIDE, FGROUND},
}

func (c *Crab) walk(ctx *core.SimulationContext) {
	dt := ctx.DeltaTime
	c.terminatePaths(STAND)

	if c.isStill() {
		c.strideStart[LEFTSIDE] = true
	}

	rot := math2d.Matrix{Radians: c.Body().RotAngle() * walkRotation}
	stride := false

	for _, o := range walkOrder {
		limb := c.limbs[o.s][o.l]
		if limb == nil {
			continue
		}

		if !c.shouldPush(o.s, o.l) {
			c.flail(ctx, limb)
			continue
		}

		if c.push(ctx, limb, c.Paths[o.s][o.l][WALK], rot, false) && c.stepping(o.s, o.l) {
			c.strides[o.s] += 1
			stride = true
		}

		c.strideStart[o.s] = false
		c.strideTimer[o.s].Reset()
	}

	for s := Side(0); s < SideCount; s++ {
		c.strideTimer[s].Tick(dt)
		if c.strideTimer[s].IsPast(c.strideTimeout(s)) {
			c.strideStart[s] = true
		}
	}

	if stride && c.OnStride != nil {
		c.OnStride()
	}
}

// strideTimeout returns the seconds a side can go without pushing before it's
// given a new stride.
func (c *Crab) strideTimeout(s Side) float64 {
	t := 0.0
	for l := Layer(0); l < LayerCount; l++ {
		if p := c.Paths[s][l][WALK]; p != nil && c.limbs[s][l] != nil {
			t = max(t, p.GetTotalPathTime())
		}
	}
	return t * strideTimeoutFactor
}

// updateLegs points each leg at its foot group, and poses it.
func (c *Crab) updateLegs() {
	for s := Side(0); s < SideCount; s++ {
		for l := Layer(0); l < LayerCount; l++ {
			limb := c.limbs[s][l]
			if limb == nil {
				continue
			}

			limb.Leg.WillIdle = c.Body().Status != core.UNSTABLE
			limb.Leg.SetTargetPosition(limb.Feet.LimbPos())
			limb.Leg.Update()
		}
	}
}
