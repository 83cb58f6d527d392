package rocket

import (
	"fmt"
	"math"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/legs"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
	"github.com/sirupsen/logrus"
)

type GearState int

const (
	RAISED GearState = iota
	LOWERED
	LOWERING
	RAISING
	GearStateCount
)

func (s GearState) String() string {
	switch s {
	case RAISED:
		return "RAISED"
	case LOWERED:
		return "LOWERED"
	case LOWERING:
		return "LOWERING"
	case RAISING:
		return "RAISING"
	}
	return fmt.Sprintf("GearState(%d)", int(s))
}

type Side int

const (
	RIGHTSIDE Side = iota
	LEFTSIDE
	SideCount
)

func (s Side) String() string {
	if s == LEFTSIDE {
		return "L"
	}
	return "R"
}

const (

	// Seconds between starting to die and blowing up.
	deathTime = 1.0

	// Blast of the explosion when a rocket dies.
	deathBlast = 50.0
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "rocket",
})

// Gear is one landing leg, and the foot group which it reaches for.
type Gear struct {
	Leg  *legs.Leg
	Feet *atoms.FootPair
}

func NewGear(leg *legs.Leg, fg *atoms.FootGroup) *Gear {
	return &Gear{
		Leg:  leg,
		Feet: atoms.NewFootPair(fg),
	}
}

// Rocket is a craft with a main thruster, four steering thrusters, and two
// landing legs which fold up while the main thruster is firing. It carries
// cargo, which is dropped when it lands.
type Rocket struct {
	Name       string
	Controller *controller.Controller

	// Nil for rockets which are only ever controlled by a source.
	AI *DeliveryAI

	// Indexed by side and gear state. The left paths are mirror images of the
	// right ones.
	Paths [SideCount][GearStateCount]*limbpath.LimbPath

	Thrusters [ThrusterCount]*Thruster
	GearState GearState

	// Points straight down while falling, and up while rising.
	AimAngle float64

	// Seconds spent upside down before the rocket scuttles itself. Negative
	// means never.
	ScuttleIfFlippedTime float64

	Cargo []core.Actor

	// Called with each piece of cargo as it's dropped.
	OnUnload func(a core.Actor)

	body         *core.Body
	gear         [SideCount]*Gear
	hasDelivered bool

	flippedTimer core.Timer
	deathTimer   core.Timer
}

func New(name string, body *core.Body) *Rocket {
	return &Rocket{
		Name:                 name,
		body:                 body,
		Controller:           controller.New(nil),
		ScuttleIfFlippedTime: 4,
	}
}

func (r *Rocket) String() string {
	return fmt.Sprintf("Rocket{%s %v %v}", r.Name, r.GearState, r.Body().Status)
}

func (r *Rocket) Body() *core.Body {
	return r.body
}

func (r *Rocket) Boot() error {
	for s := Side(0); s < SideCount; s++ {
		if r.gear[s] == nil {
			continue
		}

		if r.Paths[s][RAISED] == nil || r.Paths[s][LOWERED] == nil {
			return fmt.Errorf("%s: %v gear needs raised and lowered paths", r.Name, s)
		}
	}

	return nil
}

// SetGearPath sets the path for the gear state on both sides. The left one is
// a mirrored copy.
func (r *Rocket) SetGearPath(g GearState, p *limbpath.LimbPath) error {
	if g < 0 || g >= GearStateCount {
		return fmt.Errorf("%s: unknown gear state: %#v", r.Name, g)
	}

	if p == nil {
		r.Paths[RIGHTSIDE][g] = nil
		r.Paths[LEFTSIDE][g] = nil
		return nil
	}

	r.Paths[RIGHTSIDE][g] = p
	r.Paths[LEFTSIDE][g] = limbpath.Create(p)
	return nil
}

// SetGear attaches a landing leg on the given side, replacing any which was
// there. Nil removes it.
func (r *Rocket) SetGear(s Side, g *Gear) {
	if old := r.gear[s]; old != nil && old.Leg.IsAttached() {
		old.Leg.Detach()
	}

	r.gear[s] = g
	if g == nil {
		return
	}

	r.attach(g.Leg.Attachable)
	g.Feet.SetLimbPos(r.jointPos(g.Leg.Attachable).Add(g.Leg.AnkleOffset()))
}

func (r *Rocket) Gear(s Side) *Gear {
	return r.gear[s]
}

// SetThruster mounts a thruster, replacing any which was there. Nil removes
// it.
func (r *Rocket) SetThruster(p ThrusterPos, t *Thruster) error {
	if p < 0 || p >= ThrusterCount {
		return fmt.Errorf("%s: unknown thruster position: %#v", r.Name, p)
	}

	if old := r.Thrusters[p]; old != nil && old.IsAttached() {
		old.Detach()
	}

	r.Thrusters[p] = t
	if t != nil {
		t.angle = pushAngles[p]
		r.attach(t.Attachable)
	}

	return nil
}

func (r *Rocket) attach(a *attachable.Attachable) {
	if a.Arena() != r.Body().Parts {
		r.Body().Parts.Add(a)
	}
	a.Attach(attachable.Root)
}

// HasAllThrusters returns true if every thruster is mounted. A rocket missing
// any of them can't fly.
func (r *Rocket) HasAllThrusters() bool {
	for _, t := range r.Thrusters {
		if t == nil || !t.IsAttached() {
			return false
		}
	}
	return true
}

func (r *Rocket) IsInventoryEmpty() bool {
	return len(r.Cargo) == 0
}

func (r *Rocket) HasDelivered() bool {
	return r.hasDelivered
}

// DropAllInventory unloads the cargo.
func (r *Rocket) DropAllInventory() {
	if len(r.Cargo) == 0 {
		return
	}

	log.Infof("%s: unloading %d", r.Name, len(r.Cargo))
	for _, a := range r.Cargo {
		a.Body().SetPosition(r.Body().Position())
		a.Body().SetVel(r.Body().Vel())
		if r.OnUnload != nil {
			r.OnUnload(a)
		}
	}

	r.Cargo = nil
	r.hasDelivered = true
}

func (r *Rocket) SetGearState(g GearState) {
	if g != r.GearState {
		log.Debugf("%s: state=%v", r.Name, g)
	}
	r.GearState = g
}

func (r *Rocket) Tick(ctx *core.SimulationContext) error {
	dt := ctx.DeltaTime
	b := r.Body()

	if b.Status == core.DYING || b.Status == core.DEAD {
		r.Controller.Disabled = true
	}

	r.Controller.Update(ctx.SimTime)
	if r.AI != nil && !r.Controller.IsPlayerControlled() && !r.Controller.Disabled {
		r.AI.Update(ctx, r)
	}

	if b.Vel().Y < 0 {
		r.AimAngle = math.Pi / 2
	} else {
		r.AimAngle = -math.Pi / 2
	}

	r.updateThrusters(dt)

	err := r.updateGear(ctx)
	if err != nil {
		return err
	}

	r.updateLegs()
	r.checkParts(b.ApplyAttachableForces(dt))
	b.Update(ctx)
	r.checkFlipped(dt)

	return nil
}

func (r *Rocket) updateThrusters(dt float64) {
	ctl := r.Controller
	b := r.Body()

	if !r.HasAllThrusters() || ctl.Disabled || b.Status == core.DYING || b.Status == core.DEAD {
		for _, t := range r.Thrusters {
			if t != nil {
				t.EnableEmission(false)
			}
		}
	} else {
		up := ctl.Is(controller.MoveUp) || ctl.Is(controller.AimUp)
		down := !up && (ctl.Is(controller.MoveDown) || ctl.Is(controller.AimDown))

		r.Thrusters[MTHRUSTER].EnableEmission(up)
		r.Thrusters[URTHRUSTER].EnableEmission(down)
		r.Thrusters[ULTHRUSTER].EnableEmission(down)
		r.Thrusters[LTHRUSTER].EnableEmission(ctl.Is(controller.MoveRight))
		r.Thrusters[RTHRUSTER].EnableEmission(ctl.Is(controller.MoveLeft))

		if ctl.Is(controller.PressFacebutton) {
			r.DropAllInventory()
		}
	}

	rot := b.Rotation()
	for _, t := range r.Thrusters {
		if t == nil {
			continue
		}

		t.Update(rot)

		// Off-center thrust turns the rocket.
		if t.IsEmitting() {
			lever := b.RotateOffset(t.ParentOffset).MultiplyByScalar(math2d.MetersPerPixel)
			f := t.Push(rot)
			b.ApplyTorque(((lever.X * f.Y) - (lever.Y * f.X)) * dt)
		}
	}
}

// nextGear returns the gear state after one tick, given whether the main
// thruster is firing and whether the path of the current state has ended.
func nextGear(g GearState, thrusting, ended bool) GearState {
	if thrusting {
		switch g {
		case RAISED:
			return RAISED
		case RAISING:
			if ended {
				return RAISED
			}
			return RAISING
		}
		return RAISING
	}

	switch g {
	case LOWERED:
		return LOWERED
	case LOWERING:
		if ended {
			return LOWERED
		}
		return LOWERING
	}
	return LOWERING
}

// path returns the path to push the gear along in the given state. The
// transitions fall back to where they're heading.
func (r *Rocket) path(s Side, g GearState) *limbpath.LimbPath {
	if p := r.Paths[s][g]; p != nil {
		return p
	}

	switch g {
	case LOWERING:
		return r.Paths[s][LOWERED]
	case RAISING:
		return r.Paths[s][RAISED]
	}
	return nil
}

// transitionEnded returns true if every gear has finished the path of the
// current transition. Missing transition paths end immediately.
func (r *Rocket) transitionEnded() bool {
	for s := Side(0); s < SideCount; s++ {
		if r.gear[s] == nil {
			continue
		}
		if p := r.Paths[s][r.GearState]; p != nil && !p.PathEnded() {
			return false
		}
	}
	return true
}

func (r *Rocket) updateGear(ctx *core.SimulationContext) error {
	if r.GearState < 0 || r.GearState >= GearStateCount {
		return fmt.Errorf("unknown gear state: %#v", r.GearState)
	}

	m := r.Thrusters[MTHRUSTER]
	thrusting := m != nil && m.IsEmitting()

	g := nextGear(r.GearState, thrusting, r.transitionEnded())
	if g != r.GearState {
		for s := Side(0); s < SideCount; s++ {
			if p := r.Paths[s][g]; p != nil {
				p.Reset()
			}
		}
		r.SetGearState(g)
	}

	b := r.Body()
	for s := Side(0); s < SideCount; s++ {
		gr := r.gear[s]
		if gr == nil {
			continue
		}

		if b.Status != core.STABLE && b.Status != core.UNSTABLE {
			r.flail(ctx, s, gr)
			continue
		}

		p := r.path(s, g)
		if p == nil {
			continue
		}

		p.SetHFlip(b.HFlipped() != (s == LEFTSIDE))
		r.push(ctx, s, gr, p)
	}

	return nil
}

func (r *Rocket) jointPos(a *attachable.Attachable) math2d.Vector {
	return r.Body().Position().Add(r.Body().RotateOffset(a.ParentOffset))
}

// The gear never collides while being pushed, so it only moves the feet.
func (r *Rocket) push(ctx *core.SimulationContext, s Side, gr *Gear, p *limbpath.LimbPath) {
	b := r.Body()
	res := gr.Feet.PushAsLimb(ctx.Terrain, atoms.Push{
		Owner:             b,
		Joint:             r.jointPos(gr.Leg.Attachable),
		ParentVel:         b.Vel(),
		Rotation:          b.Rotation(),
		Path:              p,
		DeltaTime:         ctx.DeltaTime,
		LimbMass:          gr.Leg.Mass,
		DisableCollisions: true,
	})

	gr.Leg.AddImpulse(res.Impulse)
}

func (r *Rocket) flail(ctx *core.SimulationContext, s Side, gr *Gear) {
	b := r.Body()
	gr.Feet.FlailAsLimb(ctx.Terrain, atoms.Flail{
		BodyPos:    b.Position(),
		RootOffset: b.RotateOffset(gr.Leg.ParentOffset),
		MaxLength:  gr.Leg.MaxExtension(),
		Gravity:    ctx.Gravity,
		AngularVel: b.AngularVel(),
		ParentVel:  b.PrevVel(),
		LimbMass:   gr.Leg.Mass,
		DeltaTime:  ctx.DeltaTime,
	})
}

func (r *Rocket) updateLegs() {
	for s := Side(0); s < SideCount; s++ {
		gr := r.gear[s]
		if gr == nil {
			continue
		}

		gr.Leg.SetTargetPosition(gr.Feet.LimbPos())
		gr.Leg.Update()
	}
}

// checkParts forgets the parts which have come off.
func (r *Rocket) checkParts(broken []*attachable.Attachable) {
	for s := Side(0); s < SideCount; s++ {
		if gr := r.gear[s]; gr != nil && !gr.Leg.IsAttached() {
			log.Infof("%s: lost %v gear", r.Name, s)
			r.gear[s] = nil
		}
	}

	for i, t := range r.Thrusters {
		if t != nil && !t.IsAttached() {
			log.Infof("%s: lost %v", r.Name, ThrusterPos(i))
			r.Thrusters[i] = nil
		}
	}

	if len(broken) > 0 {
		log.Debugf("%s: %d parts broke off", r.Name, len(broken))
	}
}

// checkFlipped starts the rocket dying if it's been upside down for too long,
// and blows it up once it's dead.
func (r *Rocket) checkFlipped(dt float64) {
	b := r.Body()
	rot := utils.NormalizeAngle(b.RotAngle())

	if math.Abs(rot) < math.Pi/2 {
		r.flippedTimer.Reset()
	} else {
		r.flippedTimer.Tick(dt)
		if r.ScuttleIfFlippedTime >= 0 && r.flippedTimer.IsPast(r.ScuttleIfFlippedTime) && b.Status != core.DYING && b.Status != core.DEAD {
			log.Infof("%s: scuttling", r.Name)
			b.Status = core.DYING
			r.deathTimer.Reset()
		}
	}

	switch b.Status {
	case core.DYING:
		r.deathTimer.Tick(dt)
		if r.deathTimer.IsPast(deathTime) {
			b.Status = core.DEAD
		}

	case core.DEAD:
		r.gibAll()
	}
}

func (r *Rocket) gibAll() {
	for _, a := range r.Body().Parts.Children(attachable.Root) {
		a.GibThis(math2d.ZeroVector, deathBlast, attachable.None)
	}
	r.checkParts(nil)
}
