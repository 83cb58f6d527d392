package crab

import (
	"fmt"
	"math"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
	"github.com/sirupsen/logrus"
)

type MoveState int

const (
	STAND MoveState = iota
	WALK
	JUMP
	DISLODGE
	MoveStateCount
)

func (s MoveState) String() string {
	switch s {
	case STAND:
		return "STAND"
	case WALK:
		return "WALK"
	case JUMP:
		return "JUMP"
	case DISLODGE:
		return "DISLODGE"
	}
	return fmt.Sprintf("MoveState(%d)", int(s))
}

type Side int

const (
	LEFTSIDE Side = iota
	RIGHTSIDE
	SideCount
)

func (s Side) String() string {
	if s == LEFTSIDE {
		return "L"
	}
	return "R"
}

func (s Side) Other() Side {
	return 1 - s
}

type Layer int

const (
	FGROUND Layer = iota
	BGROUND
	LayerCount
)

func (l Layer) String() string {
	if l == FGROUND {
		return "FG"
	}
	return "BG"
}

func (l Layer) Other() Layer {
	return 1 - l
}

const (

	// Velocity (in m/s, summed over two ticks) below which the body counts as
	// standing still.
	stillThreshold = 1.0

	// A side which hasn't pushed for this many walk path lengths gets a new
	// stride.
	strideTimeoutFactor = 1.1

	// Fraction of the body rotation which the walk paths follow.
	walkRotation = 0.5
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "crab",
})

// Crab walks on up to four legs (a front and back one on each side), carries a
// turret and a jetpack, and is driven either by a controller source or by its
// AI.
type Crab struct {
	Name       string
	Controller *controller.Controller

	// Nil for crabs which are only ever controlled by a source.
	AI *AI

	// Indexed by side, layer and move state. Missing paths are allowed.
	Paths [SideCount][LayerCount][MoveStateCount]*limbpath.LimbPath

	Turret  *Turret
	Jetpack *Jetpack

	MoveState MoveState

	// Aim angle in radians, relative to the facing direction. Positive is up.
	AimAngle           float64
	AimRangeUpperLimit float64
	AimRangeLowerLimit float64

	// How far (in pixels) the crab can see along its aim, before sharp aiming.
	AimDistance float64

	// Seconds of sharp aiming before it starts to help.
	SharpAimDelay float64

	// Seconds of walking without moving before DISLODGE, or zero to never.
	StuckTime float64

	// Seconds spent in DISLODGE, and the impulse (in kg*m/s) applied on entry.
	DislodgeTime    float64
	DislodgeImpulse float64

	// Called once per stride.
	OnStride func()

	body  *core.Body
	limbs [SideCount][LayerCount]*Limb

	aimState         aimState
	aimTimer         core.Timer
	sharpAimTimer    core.Timer
	sharpAimProgress float64
	sharpAimMaxed    bool

	strideStart [SideCount]bool
	strideTimer [SideCount]core.Timer
	strides     [SideCount]int

	stuckTimer    core.Timer
	dislodgeTimer core.Timer
	prevState     MoveState
}

// New returns a crab with no limbs or paths. Parts are added with
// SetAttachmentSlot.
func New(name string, body *core.Body) *Crab {
	return &Crab{
		Name:               name,
		body:               body,
		Controller:         controller.New(nil),
		AimRangeUpperLimit: math.Pi / 4,
		AimRangeLowerLimit: math.Pi / 4,
		AimDistance:        100,
		SharpAimDelay:      0.25,
		StuckTime:          3,
		DislodgeTime:       0.5,
		DislodgeImpulse:    200,
	}
}

func (c *Crab) String() string {
	return fmt.Sprintf("Crab{%s %v %v}", c.Name, c.MoveState, c.Body().Status)
}

func (c *Crab) Body() *core.Body {
	return c.body
}

func (c *Crab) Boot() error {
	for s := Side(0); s < SideCount; s++ {
		for l := Layer(0); l < LayerCount; l++ {
			if c.limbs[s][l] != nil && c.Paths[s][l][WALK] == nil {
				return fmt.Errorf("%s: %v%v leg has no walk path", c.Name, s, l)
			}
		}
	}

	return nil
}

func (c *Crab) Limb(s Side, l Layer) *Limb {
	return c.limbs[s][l]
}

// Strides returns the number of strides started by the given side.
func (c *Crab) Strides(s Side) int {
	return c.strides[s]
}

func (c *Crab) SetMoveState(s MoveState) {
	if s != c.MoveState {
		log.Infof("%s: state=%v", c.Name, s)
	}
	c.MoveState = s
}

// Tick runs one step of the crab: intents, move state, limbs, then the body.
func (c *Crab) Tick(ctx *core.SimulationContext) error {
	dt := ctx.DeltaTime
	b := c.Body()

	if b.Status == core.DYING || b.Status == core.DEAD {
		c.Controller.Disabled = true
	}

	c.Controller.Update(ctx.SimTime)
	if c.AI != nil && !c.Controller.IsPlayerControlled() && !c.Controller.Disabled {
		c.AI.Update(ctx, c)
	}

	err := c.updateMoveState(ctx)
	if err != nil {
		return err
	}

	c.updateAim(dt)
	c.updateDevices(dt)
	c.pushLimbs(ctx)
	c.updateLegs()

	c.checkParts(b.ApplyAttachableForces(dt))
	b.Update(ctx)

	return nil
}

func (c *Crab) isStill() bool {
	return c.Body().Vel().Add(c.Body().PrevVel()).Magnitude() < stillThreshold
}

func (c *Crab) walking() bool {
	return c.Controller.Is(controller.MoveRight) || c.Controller.Is(controller.MoveLeft)
}

func (c *Crab) canJump() bool {
	return c.Jetpack != nil && !c.Jetpack.IsOutOfFuel()
}

// aimLocked is true when the crab should keep facing the same way, and walk
// backwards if need be.
func (c *Crab) aimLocked() bool {
	return c.Controller.AnalogAim.X != 0 || c.Controller.Is(controller.AimSharp)
}

func (c *Crab) eachPath(st MoveState, fn func(*limbpath.LimbPath)) {
	for s := Side(0); s < SideCount; s++ {
		for l := Layer(0); l < LayerCount; l++ {
			if p := c.Paths[s][l][st]; p != nil {
				fn(p)
			}
		}
	}
}

func (c *Crab) terminatePaths(st MoveState) {
	c.eachPath(st, func(p *limbpath.LimbPath) {
		p.Terminate()
	})
}

func (c *Crab) newStride() {
	c.strideStart[LEFTSIDE] = true
	c.strideStart[RIGHTSIDE] = true
}

func (c *Crab) updateMoveState(ctx *core.SimulationContext) error {
	dt := ctx.DeltaTime
	ctl := c.Controller
	flipped := c.Body().HFlipped()

	c.eachPath(WALK, func(p *limbpath.LimbPath) { p.SetHFlip(flipped) })
	c.eachPath(STAND, func(p *limbpath.LimbPath) { p.SetHFlip(flipped) })

	entered := c.MoveState != c.prevState
	c.prevState = c.MoveState

	if ctl.Is(controller.BodyJump) && c.canJump() && c.MoveState != JUMP && c.MoveState != DISLODGE {
		c.SetMoveState(JUMP)
		for st := MoveState(0); st < MoveStateCount; st++ {
			c.terminatePaths(st)
		}
		return nil
	}

	switch c.MoveState {
	case STAND, WALK:
		if !c.walking() {
			c.SetMoveState(STAND)
			c.stuckTimer.Reset()
			return nil
		}

		if c.MoveState != WALK {
			c.terminatePaths(WALK)
			c.newStride()
		}
		c.SetMoveState(WALK)

		speed := limbpath.NORMAL
		if ctl.Is(controller.MoveFast) {
			speed = limbpath.FAST
		}
		c.eachPath(WALK, func(p *limbpath.LimbPath) { p.SetSpeed(speed) })

		right := ctl.Is(controller.MoveRight)
		if c.aimLocked() {
			c.eachPath(WALK, func(p *limbpath.LimbPath) { p.SetHFlip(!right) })
		} else if right == flipped {
			c.Body().SetHFlipped(!flipped)
			c.terminatePaths(WALK)
			c.terminatePaths(STAND)
			c.newStride()
			c.eachPath(WALK, func(p *limbpath.LimbPath) { p.SetHFlip(!flipped) })
			c.eachPath(STAND, func(p *limbpath.LimbPath) { p.SetHFlip(!flipped) })
		}

		if c.isStill() {
			c.stuckTimer.Tick(dt)
		} else {
			c.stuckTimer.Reset()
		}

		if c.StuckTime > 0 && c.stuckTimer.IsPast(c.StuckTime) {
			log.Infof("%s: stuck for %.2fs", c.Name, c.stuckTimer.Elapsed())
			c.stuckTimer.Reset()
			c.SetMoveState(DISLODGE)
		}

	case JUMP:
		if !c.canJump() || (!ctl.Is(controller.BodyJump) && c.Body().Grounded() && !entered) {
			c.SetMoveState(STAND)
			for st := MoveState(0); st < MoveStateCount; st++ {
				c.terminatePaths(st)
			}
		}

	case DISLODGE:
		if entered {
			c.dislodgeTimer.Reset()
			hop := math2d.Vector{X: -0.5 * c.Body().FlipFactor(), Y: -1}.Unit()
			c.Body().ApplyImpulse(hop.MultiplyByScalar(c.DislodgeImpulse))
			c.terminatePaths(DISLODGE)
		}

		c.dislodgeTimer.Tick(dt)
		if c.dislodgeTimer.IsPast(c.DislodgeTime) {
			c.SetMoveState(STAND)
			c.terminatePaths(WALK)
			c.newStride()
		}

	default:
		return fmt.Errorf("unknown move state: %#v", c.MoveState)
	}

	return nil
}

func (c *Crab) updateDevices(dt float64) {
	ctl := c.Controller

	if c.Turret != nil && c.Turret.IsAttached() {
		abs := -c.AimAngle
		if c.Body().HFlipped() {
			abs = c.AimAngle
		}
		c.Turret.RotTarget = abs - c.Body().RotAngle()

		for _, d := range c.Turret.Devices {
			d.SetSharpAim(c.sharpAimProgress)
			if ctl.Is(controller.WeaponFire) {
				d.Activate()
				if d.IsEmpty() {
					d.Reload()
				}
			} else {
				d.Deactivate()
			}

			if ctl.Is(controller.WeaponReload) {
				d.Reload()
			}

			d.Update(dt)
		}
	}

	if c.Jetpack != nil && c.Jetpack.IsAttached() {
		fire := c.MoveState == JUMP && ctl.Is(controller.BodyJump)
		c.Jetpack.Update(dt, fire, c.Body().Rotation())
	}
}

func (c *Crab) jointPos(l *Limb) math2d.Vector {
	return c.Body().Position().Add(c.Body().RotateOffset(l.Leg.ParentOffset))
}

// push moves the limb along the path, and applies the reaction to the leg (and
// so, via the joint, to the body). Returns true if a new stride began.
func (c *Crab) push(ctx *core.SimulationContext, l *Limb, path *limbpath.LimbPath, rot math2d.Matrix, affectRotation bool) bool {
	restarted := false

	r := l.Feet.PushAsLimb(ctx.Terrain, atoms.Push{
		Owner:          c.Body(),
		Joint:          c.jointPos(l),
		ParentVel:      c.Body().Vel(),
		Rotation:       rot,
		Path:           path,
		DeltaTime:      ctx.DeltaTime,
		LimbMass:       l.Leg.Mass,
		Restarted:      &restarted,
		AffectRotation: affectRotation,
	})

	l.Leg.AddImpulse(r.Impulse)
	if r.Torque != 0 {
		c.Body().ApplyTorque(r.Torque)
	}

	return restarted
}

func (c *Crab) flail(ctx *core.SimulationContext, l *Limb) {
	b := c.Body()
	l.Feet.FlailAsLimb(ctx.Terrain, atoms.Flail{
		BodyPos:    b.Position(),
		RootOffset: b.RotateOffset(l.Leg.ParentOffset),
		MaxLength:  l.Leg.MaxExtension(),
		Gravity:    ctx.Gravity,
		AngularVel: b.AngularVel(),
		ParentVel:  b.PrevVel().MultiplyByScalar(l.Leg.JointStiffness),
		LimbMass:   l.Leg.Mass,
		DeltaTime:  ctx.DeltaTime,
	})
}

func (c *Crab) flailAll(ctx *core.SimulationContext) {
	for s := Side(0); s < SideCount; s++ {
		for l := Layer(0); l < LayerCount; l++ {
			if limb := c.limbs[s][l]; limb != nil {
				c.flail(ctx, limb)
			}
		}
	}
}

func (c *Crab) pushLimbs(ctx *core.SimulationContext) {
	if c.Body().Status != core.STABLE {
		c.flailAll(ctx)
		return
	}

	switch c.MoveState {
	case WALK:
		c.walk(ctx)

	case STAND:
		c.terminatePaths(WALK)
		rot := c.Body().Rotation()
		for s := Side(0); s < SideCount; s++ {
			for l := Layer(0); l < LayerCount; l++ {
				limb := c.limbs[s][l]
				if limb == nil {
					continue
				}

				// A lone front leg has to hold the body level by itself.
				lever := l == FGROUND && c.limbs[s.Other()][FGROUND] == nil
				c.push(ctx, limb, c.Paths[s][l][STAND], rot, lever)
			}
		}

	case DISLODGE:
		for s := Side(0); s < SideCount; s++ {
			for l := Layer(0); l < LayerCount; l++ {
				limb := c.limbs[s][l]
				if limb == nil {
					continue
				}

				if p := c.Paths[s][l][DISLODGE]; p != nil {
					c.push(ctx, limb, p, c.Body().Rotation(), false)
				} else {
					c.flail(ctx, limb)
				}
			}
		}

	default:
		c.flailAll(ctx)
	}
}
