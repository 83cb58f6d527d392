package crab

import (
	"math"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
)

type aimState int

const (
	aimStill aimState = iota
	aimUp
	aimDown
)

const (

	// Analog aim shorter than this is ignored.
	analogAimDeadzone = 0.1

	// Sharp aiming past this counts as maxed out.
	sharpAimMaxedOut = 0.9
)

// AimVector returns a vector of the given length, pointing where the crab is
// aiming (or would be, at the given aim angle).
func (c *Crab) AimVector(angle, length float64) math2d.Vector {
	m := math2d.Matrix{Radians: -angle}
	if c.Body().HFlipped() {
		m = math2d.Matrix{Radians: angle, FlipX: true}
	}
	return math2d.Vector{X: length, Y: 0}.MultiplyByMatrix(m)
}

// FacingAngle converts an absolute angle (counter-clockwise from the positive X
// axis, as seen on screen) to one relative to the facing direction.
func (c *Crab) FacingAngle(abs float64) float64 {
	if c.Body().HFlipped() {
		return utils.NormalizeAngle(math.Pi - abs)
	}
	return abs
}

func (c *Crab) SharpAimProgress() float64 {
	return c.sharpAimProgress
}

// IsWithinRange returns true if the point is close enough to hit with the
// first mounted device, given how sharply the crab is aiming.
func (c *Crab) IsWithinRange(p math2d.Vector) bool {
	if c.sharpAimMaxed {
		return true
	}

	d := p.Distance(c.Body().Position())
	if d <= c.Body().Diameter() {
		return true
	}

	r := c.AimDistance
	if c.Turret != nil && c.Turret.IsAttached() {
		if dev := c.Turret.FirstDevice(); dev != nil {
			r += dev.SharpLength * c.sharpAimProgress
		}
	}

	return d <= r
}

func (c *Crab) isHostile(b *core.Body) bool {
	return b != nil && b.Team != c.Body().Team && b.Status != core.DEAD
}

// Look casts rays along the aim and to either side of it, and returns the
// first hostile body that any of them hit.
func (c *Crab) Look(ctx *core.SimulationContext, spread, distance float64) *core.Body {
	eye := c.Body().Position()
	for _, a := range []float64{0, -spread, spread} {
		b, _, ok := ctx.CastMORay(eye, c.AimVector(c.AimAngle+a, distance), c.Body())
		if ok && c.isHostile(b) {
			return b
		}
	}
	return nil
}

// CanSee returns true if nothing is in the way between the crab and the body.
func (c *Crab) CanSee(ctx *core.SimulationContext, b *core.Body, distance float64) bool {
	ray := b.Position().Subtract(c.Body().Position())
	if ray.Magnitude() > distance+b.Radius {
		return false
	}

	hit, _, ok := ctx.CastMORay(c.Body().Position(), ray.SetMagnitude(ray.Magnitude()+b.Radius), c.Body())
	return ok && hit == b
}

func (c *Crab) aimStep() float64 {
	ms := c.aimTimer.Elapsed() * 1000
	if c.Controller.Is(controller.AimSharp) {
		return math.Min(ms*0.00005, 0.05)
	}
	return math.Min(ms*0.00015, 0.15)
}

// flip turns the crab around, and starts the strides over.
func (c *Crab) flip() {
	f := !c.Body().HFlipped()
	c.Body().SetHFlipped(f)
	c.terminatePaths(WALK)
	c.terminatePaths(STAND)
	c.eachPath(WALK, func(p *limbpath.LimbPath) { p.SetHFlip(f) })
	c.eachPath(STAND, func(p *limbpath.LimbPath) { p.SetHFlip(f) })
	c.newStride()
}

func (c *Crab) updateAim(dt float64) {
	ctl := c.Controller
	c.aimTimer.Tick(dt)
	c.sharpAimTimer.Tick(dt)

	if ctl.Is(controller.WeaponReload) {
		c.sharpAimTimer.Reset()
		c.sharpAimProgress = 0
	}

	off := -c.Body().RotAngle() * c.Body().FlipFactor()
	upper := c.AimRangeUpperLimit + off
	lower := -c.AimRangeLowerLimit + off
	analog := ctl.AnalogAim

	switch {
	case ctl.Is(controller.AimUp):
		if c.aimState != aimUp {
			c.aimTimer.SetElapsed(c.aimRestart())
		}
		c.aimState = aimUp
		c.AimAngle += c.aimStep()

	case ctl.Is(controller.AimDown):
		if c.aimState != aimDown {
			c.aimTimer.SetElapsed(c.aimRestart())
		}
		c.aimState = aimDown
		c.AimAngle -= c.aimStep()

	case analog.Magnitude() > analogAimDeadzone:
		if analog.X == 0 {
			analog.X += 0.01 * c.Body().FlipFactor()
		}

		if (analog.X > 0) == c.Body().HFlipped() {
			c.flip()
		}

		c.AimAngle = c.FacingAngle(math.Atan2(-analog.Y, analog.X))

	default:
		c.aimState = aimStill
	}

	c.AimAngle = utils.Clamp(c.AimAngle, lower, upper)

	if ctl.Is(controller.AimSharp) && c.Body().Status == core.STABLE && c.Body().Vel().Magnitude() < 5 {
		mag := analog.Magnitude()
		if mag < analogAimDeadzone {
			mag = 1
		}
		if c.MoveState == WALK {
			mag *= 0.3
		}

		if c.sharpAimTimer.IsPast(c.SharpAimDelay) {
			if c.sharpAimProgress < mag {
				c.sharpAimProgress += (mag - c.sharpAimProgress) * 0.035
			} else {
				c.sharpAimProgress = mag
			}
		} else {
			c.sharpAimProgress *= 0.95
		}
	} else {
		c.sharpAimProgress = math.Max(c.sharpAimProgress*0.95-0.1, 0)
		c.sharpAimTimer.Reset()
	}

	c.sharpAimMaxed = c.sharpAimProgress > sharpAimMaxedOut
}

// aimRestart is where the aim timer starts when the aim starts moving, so it
// doesn't feel sluggish.
func (c *Crab) aimRestart() float64 {
	if c.aimState == aimStill {
		return 0.150
	}
	return 0.300
}
