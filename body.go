package crab

import (
	"fmt"
	"math"

	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
	"github.com/adammck/crab/utils"
)

type Status int

const (
	STABLE Status = iota
	UNSTABLE
	INACTIVE
	DYING
	DEAD
)

func (s Status) String() string {
	switch s {
	case STABLE:
		return "STABLE"
	case UNSTABLE:
		return "UNSTABLE"
	case INACTIVE:
		return "INACTIVE"
	case DYING:
		return "DYING"
	case DEAD:
		return "DEAD"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const (

	// How far (in pixels) below the body the terrain counts as ground.
	groundCheckDistance = 1.0

	// Seconds to spend UNSTABLE after being knocked upside down.
	stableRecoverTime = 1.0
)

// Body is the rigid root of an actor. Everything attached to it lives in its
// arena.
type Body struct {
	Name string
	Team int

	// The body collides with terrain as a circle of this radius, in pixels.
	Radius float64

	// Fraction of horizontal velocity lost per second while on the ground.
	Friction float64

	// Keeps the body upright while STABLE. Zero disables balancing.
	BalanceSpring float64

	Status Status
	Health float64

	Parts *attachable.Arena

	prevVel      math2d.Vector
	grounded     bool
	recoverTimer Timer
}

// NewBody returns a body whose root part has the given mass (in kg).
func NewBody(name string, mass, radius float64) *Body {
	root := &attachable.Attachable{
		Name: name,
		Mass: mass,
	}

	return &Body{
		Name:          name,
		Radius:        radius,
		Friction:      0.5,
		BalanceSpring: 0.3,
		Health:        100,
		Parts:         attachable.NewArena(root),
	}
}

func (b *Body) String() string {
	return fmt.Sprintf("Body{%s %v %v}", b.Name, b.Position(), b.Status)
}

func (b *Body) Root() *attachable.Attachable {
	return b.Parts.Root()
}

func (b *Body) Position() math2d.Vector {
	return b.Root().Position()
}

func (b *Body) SetPosition(p math2d.Vector) {
	b.Root().SetPosition(p)
	b.Parts.Update(0, math2d.ZeroVector)
}

// Vel returns the velocity in m/s.
func (b *Body) Vel() math2d.Vector {
	return b.Root().Vel()
}

func (b *Body) SetVel(v math2d.Vector) {
	b.Root().SetVel(v)
}

// PrevVel returns the velocity at the start of the last update.
func (b *Body) PrevVel() math2d.Vector {
	return b.prevVel
}

func (b *Body) Rotation() math2d.Matrix {
	return b.Root().Rotation()
}

// RotAngle returns the rotation in radians.
func (b *Body) RotAngle() float64 {
	return b.Root().Rotation().Radians
}

func (b *Body) SetRotAngle(r float64) {
	m := b.Root().Rotation()
	m.Radians = r
	b.Root().SetRotation(m)
}

func (b *Body) AngularVel() float64 {
	return b.Root().AngularVel()
}

func (b *Body) HFlipped() bool {
	return b.Root().Rotation().FlipX
}

func (b *Body) SetHFlipped(f bool) {
	m := b.Root().Rotation()
	m.FlipX = f
	b.Root().SetRotation(m)
}

// FlipFactor is -1 when flipped, 1 otherwise.
func (b *Body) FlipFactor() float64 {
	if b.HFlipped() {
		return -1
	}
	return 1
}

func (b *Body) Diameter() float64 {
	return b.Radius * 2
}

// Mass returns the mass of the body plus everything attached to it.
func (b *Body) Mass() float64 {
	return b.Parts.Mass(attachable.Root)
}

// Grounded returns true if the body was resting on terrain after the last
// update.
func (b *Body) Grounded() bool {
	return b.grounded
}

// RotateOffset turns an offset relative to the body into one relative to the
// scene, minus the position.
func (b *Body) RotateOffset(v math2d.Vector) math2d.Vector {
	return v.MultiplyByMatrix(b.Rotation())
}

// ApplyImpulse changes the velocity by an impulse in kg*m/s.
func (b *Body) ApplyImpulse(v math2d.Vector) {
	m := b.Mass()
	if m <= 0 {
		return
	}
	b.SetVel(b.Vel().Add(v.MultiplyByScalar(1 / m)))
}

// ApplyTorque changes the angular velocity. The body is treated as a disc.
func (b *Body) ApplyTorque(t float64) {
	r := b.Radius * math2d.MetersPerPixel
	inertia := 0.5 * b.Mass() * r * r
	if inertia <= 0 {
		return
	}
	b.Root().SetAngularVel(b.AngularVel() + t/inertia)
}

// ApplyAttachableForces rolls up the impulses and forces of the attached parts
// into the body, and collects their damage. Returns the parts which broke off.
func (b *Body) ApplyAttachableForces(dt float64) []*attachable.Attachable {
	impulse := math2d.ZeroVector
	broken := b.Parts.TransferImpulses(&impulse)
	b.ApplyImpulse(impulse)

	force := math2d.ZeroVector
	b.Parts.TransferForces(&force)
	b.ApplyImpulse(force.MultiplyByScalar(dt))

	b.Health -= b.Root().CollectDamage()

	for _, p := range broken {
		log.Infof("%s lost %s", b.Name, p.Name)
	}

	return broken
}

// Update moves the body for one tick, and then every part attached to it.
func (b *Body) Update(ctx *SimulationContext) {
	dt := ctx.DeltaTime
	if dt <= 0 {
		return
	}

	root := b.Root()
	b.prevVel = root.Vel()

	vel := root.Vel().Add(ctx.Gravity.MultiplyByScalar(dt))
	pos := root.Position()

	if ctx.Terrain != nil {
		pos, vel = b.move(ctx.Terrain, pos, vel, dt)
		b.grounded = ctx.Terrain.IsSolid(pos.Add(math2d.Vector{X: 0, Y: b.Radius + groundCheckDistance}))
	} else {
		pos = pos.Add(vel.MultiplyByScalar(dt * math2d.PixelsPerMeter))
		b.grounded = false
	}

	if b.grounded {
		vel.X *= math.Max(0, 1-b.Friction*dt)
	}

	root.SetPosition(pos)
	root.SetVel(vel)
	b.balance(dt)

	if b.Health <= 0 && b.Status != DYING && b.Status != DEAD {
		log.Infof("%s is dying", b.Name)
		b.Status = DYING
	}

	b.Parts.Update(dt, ctx.Gravity)
}

// move slides the body along each axis in turn, stopping it where it would
// enter terrain.
func (b *Body) move(t terrain.Terrain, pos, vel math2d.Vector, dt float64) (math2d.Vector, math2d.Vector) {
	r := b.Radius
	probes := []math2d.Vector{
		{X: 0, Y: r},
		{X: 0, Y: -r},
		{X: r, Y: 0},
		{X: -r, Y: 0},
	}

	steps := []math2d.Vector{
		{X: vel.X * dt * math2d.PixelsPerMeter},
		{Y: vel.Y * dt * math2d.PixelsPerMeter},
	}

	for i, step := range steps {
		if step.Zero() {
			continue
		}

		alpha := 1.0
		for _, p := range probes {
			_, d := t.CastObstacleRay(pos.Add(p), step)
			if d >= 0 {
				alpha = math.Min(alpha, d/step.Magnitude())
			}
		}

		pos = pos.Add(step.MultiplyByScalar(alpha))
		if alpha < 1 {
			if i == 0 {
				vel.X = 0
			} else {
				vel.Y = 0
			}
		}
	}

	return pos, vel
}

// balance pulls the body upright, and knocks it off balance if it's upside
// down.
func (b *Body) balance(dt float64) {
	rot := utils.NormalizeAngle(b.RotAngle())

	if math.Abs(rot) > math.Pi/2 {
		if b.Status == STABLE {
			log.Infof("%s is upside down", b.Name)
			b.Status = UNSTABLE
		}
		b.recoverTimer.Reset()
	} else if b.Status == UNSTABLE {
		b.recoverTimer.Tick(dt)
		if b.recoverTimer.IsPast(stableRecoverTime) {
			b.Status = STABLE
		}
	}

	av := b.AngularVel()
	if b.Status == STABLE && b.BalanceSpring > 0 {
		av = av*0.9 - rot*b.BalanceSpring
	}

	b.Root().SetAngularVel(av)
	b.SetRotAngle(rot + av*dt)
}
