package attachable

import (
	"fmt"
	"math"

	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
	"github.com/sirupsen/logrus"
)

// ID identifies a part within an Arena. IDs are never reused.
type ID int

const (
	None ID = 0
	Root ID = 1
)

type Kind int

const (
	KindNone Kind = iota
	KindBody
	KindLeg
	KindArm
	KindFoot
	KindTurret
	KindJetpack
	KindThruster
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBody:
		return "body"
	case KindLeg:
		return "leg"
	case KindArm:
		return "arm"
	case KindFoot:
		return "foot"
	case KindTurret:
		return "turret"
	case KindJetpack:
		return "jetpack"
	case KindThruster:
		return "thruster"
	case KindDevice:
		return "device"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (

	// How quickly (per second) a part which doesn't inherit its parent's angle
	// springs towards its rotation target.
	rotationSpring = 10.0
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "attachable",
})

// Wound is damage left on a part, e.g. where something was torn off.
type Wound struct {
	Preset string
	Offset math2d.Vector
	Damage float64
}

// Attachable is a part which can be joined to a parent part, and torn off it
// when the joint is overloaded.
type Attachable struct {
	Name string
	Kind Kind
	Mass float64

	// Vector from the parent's origin to the joint, and from this part's origin
	// to the joint. Both are in unrotated local space.
	ParentOffset math2d.Vector
	JointOffset  math2d.Vector

	// Impulse (in kg*m/s) which breaks the joint. Zero means unbreakable.
	JointStrength float64

	// Fraction (0..1) of the impulse and force which is passed to the parent.
	JointStiffness float64

	// Impulse which destroys the part outright. Zero means never.
	GibImpulseLimit float64

	// Left on this part and the parent when the joint breaks.
	BreakWound       *Wound
	ParentBreakWound *Wound

	GibWhenRemovedFromParent bool

	// Scales damage collected from this part.
	DamageMultiplier float64

	InheritsRotAngle bool
	RotTarget        float64

	id     ID
	arena  *Arena
	parent ID

	pos      math2d.Vector
	vel      math2d.Vector
	rotation math2d.Matrix
	angVel   float64

	impulse math2d.Vector
	force   math2d.Vector

	damage float64
	wounds []Wound

	gibbed bool
}

func (a *Attachable) String() string {
	return fmt.Sprintf("%s#%d(%s)", a.Name, a.id, a.Kind)
}

func (a *Attachable) ID() ID {
	return a.id
}

func (a *Attachable) Arena() *Arena {
	return a.arena
}

func (a *Attachable) IsAttached() bool {
	return a.parent != None
}

// Parent returns the ID of the part this one is attached to, or None.
func (a *Attachable) Parent() ID {
	return a.parent
}

// ParentPart returns the part this one is attached to, or nil.
func (a *Attachable) ParentPart() *Attachable {
	if a.arena == nil || a.parent == None {
		return nil
	}
	return a.arena.Get(a.parent)
}

// Attach joins this part to the parent, at the current ParentOffset. The part
// isn't moved until the next Update.
func (a *Attachable) Attach(parent ID) {
	if a.arena == nil || parent == a.id || a.gibbed {
		return
	}

	p := a.arena.Get(parent)
	if p == nil || p.gibbed {
		return
	}

	// Don't make loops.
	for q := p; q != nil; q = q.ParentPart() {
		if q.id == a.id {
			return
		}
	}

	a.parent = parent
	a.vel = p.vel
	log.Debugf("%s attached to %s", a, p)
}

// AttachAt is Attach, with a new ParentOffset.
func (a *Attachable) AttachAt(parent ID, offset math2d.Vector) {
	a.ParentOffset = offset
	a.Attach(parent)
}

// Detach removes this part from its parent. Nothing happens to the parent.
func (a *Attachable) Detach() {
	if a.parent == None {
		return
	}

	log.Debugf("%s detached from #%d", a, a.parent)
	a.parent = None
	a.impulse = math2d.ZeroVector
	a.force = math2d.ZeroVector
}

// Position returns the scene position of the part's origin.
func (a *Attachable) Position() math2d.Vector {
	return a.pos
}

func (a *Attachable) SetPosition(p math2d.Vector) {
	a.pos = p
}

// Vel returns the velocity in m/s.
func (a *Attachable) Vel() math2d.Vector {
	return a.vel
}

func (a *Attachable) SetVel(v math2d.Vector) {
	a.vel = v
}

func (a *Attachable) Rotation() math2d.Matrix {
	return a.rotation
}

func (a *Attachable) SetRotation(m math2d.Matrix) {
	a.rotation = m
}

func (a *Attachable) AngularVel() float64 {
	return a.angVel
}

func (a *Attachable) SetAngularVel(v float64) {
	a.angVel = v
}

// JointPos returns the scene position of the joint with the parent.
func (a *Attachable) JointPos() math2d.Vector {
	return a.pos.Add(a.JointOffset.MultiplyByMatrix(a.rotation))
}

// AddImpulse adds an impulse (in kg*m/s) to be passed to the parent.
func (a *Attachable) AddImpulse(v math2d.Vector) {
	a.impulse = a.impulse.Add(v)
}

// AddForce adds a force (in N) to be passed to the parent.
func (a *Attachable) AddForce(v math2d.Vector) {
	a.force = a.force.Add(v)
}

// PendingImpulse returns the impulse accumulated since the last transfer.
func (a *Attachable) PendingImpulse() math2d.Vector {
	return a.impulse
}

// TransferJointForces adds the accumulated force (scaled by the stiffness) to
// the accumulator, and clears it. Forces never break the joint. Returns false if
// the part isn't attached.
func (a *Attachable) TransferJointForces(acc *math2d.Vector) bool {
	if !a.IsAttached() {
		return false
	}

	*acc = acc.Add(a.force.MultiplyByScalar(a.JointStiffness))
	a.force = math2d.ZeroVector
	return true
}

// TransferJointImpulses adds the accumulated impulse (scaled by the stiffness)
// to the accumulator, and clears it. If the impulse is more than the joint can
// take, only the part which it can take is added, and the part is removed from
// its parent (or destroyed, past the gib limit). Returns false if the joint
// broke, or the part wasn't attached.
func (a *Attachable) TransferJointImpulses(acc *math2d.Vector) bool {
	if !a.IsAttached() {
		return false
	}

	total := a.impulse
	mag := total.Magnitude()

	if a.JointStrength > 0 && mag > a.JointStrength {
		*acc = acc.Add(total.SetMagnitude(a.JointStrength).MultiplyByScalar(a.JointStiffness))

		if lim := a.gibLimit(); lim > 0 && mag > lim {
			log.Infof("%s gibbed by impulse %.1f", a, mag)
			a.GibThis(total, 0, None)
			return false
		}

		log.Infof("%s joint broke: impulse %.1f > strength %.1f", a, mag, a.JointStrength)

		// Whatever the joint couldn't take stays with the part, which flies off.
		a.impulse = total.Subtract(total.SetMagnitude(a.JointStrength))
		a.RemoveFromParent(true)
		return false
	}

	*acc = acc.Add(total.MultiplyByScalar(a.JointStiffness))
	a.impulse = math2d.ZeroVector
	return true
}

// gibLimit returns the impulse past which the part is destroyed rather than
// just knocked off, or zero if it never is. It's never less than the joint
// strength, and unbreakable joints never gib.
func (a *Attachable) gibLimit() float64 {
	if a.JointStrength <= 0 || a.GibImpulseLimit <= 0 {
		return 0
	}
	return math.Max(a.GibImpulseLimit, a.JointStrength)
}

// RemoveFromParent detaches the part, as the parent does when the joint breaks.
// Wounds are added if requested, and the part is gibbed if it's configured to
// be.
func (a *Attachable) RemoveFromParent(addWounds bool) {
	p := a.ParentPart()
	if p == nil {
		return
	}

	if addWounds {
		if a.ParentBreakWound != nil {
			w := *a.ParentBreakWound
			w.Offset = a.ParentOffset
			p.AddWound(w)
		}

		if a.BreakWound != nil {
			w := *a.BreakWound
			w.Offset = a.JointOffset
			a.AddWound(w)
		}
	}

	// Fly off with whatever was pushing it.
	if a.Mass > 0 {
		a.vel = a.vel.Add(a.impulse.MultiplyByScalar(1 / a.Mass))
	}
	a.impulse = math2d.ZeroVector
	a.force = math2d.ZeroVector
	a.parent = None

	if a.GibWhenRemovedFromParent {
		a.GibThis(math2d.ZeroVector, 0, None)
	}
}

// AddWound adds a wound to this part. Its damage is counted once, by the next
// CollectDamage.
func (a *Attachable) AddWound(w Wound) {
	a.wounds = append(a.wounds, w)
	a.damage += w.Damage
}

func (a *Attachable) Wounds() []Wound {
	return a.wounds
}

// AddDamage adds damage points, e.g. from a hit.
func (a *Attachable) AddDamage(d float64) {
	a.damage += d
}

// CollectDamage returns the damage accumulated by this part and everything
// attached to it (scaled by the multiplier), and resets it.
func (a *Attachable) CollectDamage() float64 {
	total := a.damage
	a.damage = 0

	if a.arena != nil {
		for _, c := range a.arena.Children(a.id) {
			total += c.CollectDamage()
		}
	}

	m := a.DamageMultiplier
	if m == 0 {
		m = 1
	}

	return total * m
}

// Gibbed returns true if the part has been destroyed.
func (a *Attachable) Gibbed() bool {
	return a.gibbed
}

// GibThis destroys the part, leaving debris behind. Anything attached to it
// falls off. Calling it again does nothing. Returns true if the part was
// destroyed by this call.
func (a *Attachable) GibThis(impulse math2d.Vector, blast float64, ignore ID) bool {
	if a.gibbed {
		return false
	}

	a.gibbed = true
	a.Detach()

	if a.arena != nil {
		for _, c := range a.arena.Children(a.id) {
			c.Detach()
		}
		a.arena.gib(a, impulse, blast, ignore)
	}

	return true
}

// update moves an attached part to its joint, or lets a loose one fly.
func (a *Attachable) update(dt float64, gravity math2d.Vector) {
	p := a.ParentPart()

	if p == nil {
		if a.id == Root {
			return
		}

		a.vel = a.vel.Add(gravity.MultiplyByScalar(dt))
		a.pos = a.pos.Add(a.vel.MultiplyByScalar(dt * math2d.PixelsPerMeter))
		a.rotation.Radians += a.angVel * dt
		return
	}

	// Mirrored parts are mirrored the same way as their parent.
	target := p.rotation.Radians + a.RotTarget
	if a.InheritsRotAngle {
		a.rotation.Radians = target
	} else {
		d := utils.NormalizeAngle(target - a.rotation.Radians)
		a.rotation.Radians += d * math.Min(1, dt*rotationSpring)
	}
	a.rotation.FlipX = p.rotation.FlipX

	joint := p.pos.Add(a.ParentOffset.MultiplyByMatrix(p.rotation))
	a.pos = joint.Subtract(a.JointOffset.MultiplyByMatrix(a.rotation))
	a.vel = p.vel
	a.angVel = p.angVel
}
