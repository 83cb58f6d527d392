package atoms

import (
	"math"

	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
	"github.com/sirupsen/logrus"
)

const (

	// Impulses (in kg*m/s) larger than this are assumed to be a glitch, and
	// aren't applied to the owner.
	maxImpulse = 10000.0

	// How far (in pixels) below an atom the terrain is checked to decide whether
	// the atom is standing on something.
	contactDistance = 1.0

	// Limit of push/progress iterations per frame. Each one consumes part of the
	// frame time, so this is only reached by degenerate paths.
	maxPushIterations = 32

	// Fraction of velocity which a flailing limb keeps per second.
	flailDamping = 0.5
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "atoms",
})

// Atom is a single collision probe, offset from the limb position.
type Atom struct {
	Offset math2d.Vector
}

// Owner is the body that a FootGroup moves on behalf of. The group doesn't
// own it.
type Owner interface {
	Position() math2d.Vector
	Diameter() float64
}

// FootGroup is a cluster of atoms standing in for the end of a limb. A group
// with no atoms passes through terrain.
type FootGroup struct {
	Name  string
	Atoms []Atom

	limbPos math2d.Vector
	vel     math2d.Vector
}

func New(name string, atoms []Atom) *FootGroup {
	return &FootGroup{
		Name:  name,
		Atoms: atoms,
	}
}

// NewFoot returns a group with a square of atoms around the limb position.
func NewFoot(name string, radius float64) *FootGroup {
	return New(name, []Atom{
		{math2d.Vector{X: -radius, Y: 0}},
		{math2d.Vector{X: radius, Y: 0}},
		{math2d.Vector{X: 0, Y: -radius}},
		{math2d.Vector{X: 0, Y: 0}},
	})
}

func (fg *FootGroup) AtomCount() int {
	return len(fg.Atoms)
}

// LimbPos returns the scene position of the limb end.
func (fg *FootGroup) LimbPos() math2d.Vector {
	return fg.limbPos
}

func (fg *FootGroup) SetLimbPos(p math2d.Vector) {
	fg.limbPos = p
}

// Vel returns the velocity (in m/s) of a flailing limb.
func (fg *FootGroup) Vel() math2d.Vector {
	return fg.vel
}

// InContact returns true if any atom is resting on terrain.
func (fg *FootGroup) InContact(t terrain.Terrain) bool {
	below := math2d.Vector{X: 0, Y: contactDistance}
	for _, a := range fg.Atoms {
		if t.IsSolid(fg.limbPos.Add(a.Offset).Add(below)) {
			return true
		}
	}
	return false
}

// PushTravel tries to move the limb at vel (in m/s) for the given time (in
// seconds), and returns the impulse (in kg*m/s) which should be applied to
// whatever is pushing the limb. A limb standing on terrain grips it, so it can
// only move away from the surface. Any motion which was blocked is pushed back
// onto the owner, limited by the push force.
func (fg *FootGroup) PushTravel(t terrain.Terrain, vel math2d.Vector, limbMass, pushForce, time float64, collide bool) math2d.Vector {
	if time <= 0 {
		return math2d.ZeroVector
	}

	want := vel.MultiplyByScalar(time * math2d.PixelsPerMeter)

	if !collide || len(fg.Atoms) == 0 || want.Zero() {
		fg.limbPos = fg.limbPos.Add(want)
		return math2d.ZeroVector
	}

	got := fg.travel(t, want, true)

	blocked := want.Subtract(got).MultiplyByScalar(math2d.MetersPerPixel / time)
	impulse := blocked.MultiplyByScalar(-limbMass)
	return impulse.CapMagnitude(pushForce * time)
}

// travel moves the limb by up to want (in pixels), stopping at the first
// terrain any atom would hit, and returns how far it went. A gripping limb
// which is standing on something only moves away from it.
func (fg *FootGroup) travel(t terrain.Terrain, want math2d.Vector, grip bool) math2d.Vector {
	if len(fg.Atoms) == 0 || want.Zero() {
		fg.limbPos = fg.limbPos.Add(want)
		return want
	}

	if grip && want.Y >= 0 && fg.InContact(t) {
		return math2d.ZeroVector
	}

	alpha := 1.0
	for _, a := range fg.Atoms {
		_, d := t.CastObstacleRay(fg.limbPos.Add(a.Offset), want)
		if d >= 0 {
			alpha = math.Min(alpha, d/want.Magnitude())
		}
	}

	got := want.MultiplyByScalar(alpha)
	fg.limbPos = fg.limbPos.Add(got)
	return got
}

// Push is the input to PushAsLimb.
type Push struct {
	Owner Owner

	// Scene position of the joint, and velocity of the body it's part of.
	Joint     math2d.Vector
	ParentVel math2d.Vector
	Rotation  math2d.Matrix

	Path      *limbpath.LimbPath
	DeltaTime float64
	LimbMass  float64

	// Set to true if the path was restarted during the push, i.e. a new stride
	// began. Never set back to false.
	Restarted *bool

	DisableCollisions bool

	// Whether the reaction should turn the owner, as well as push it.
	AffectRotation bool
}

// Reaction is what the owner should apply to itself after a push.
type Reaction struct {
	Impulse math2d.Vector
	Torque  float64
}

// PushAsLimb moves the limb along the path for one frame, and returns the
// reaction which the owner should apply to itself.
func (fg *FootGroup) PushAsLimb(t terrain.Terrain, p Push) Reaction {
	r := Reaction{}
	if p.DeltaTime <= 0 || p.Path == nil {
		return r
	}

	path := p.Path
	path.SetJointPos(p.Joint)
	path.SetJointVel(p.ParentVel)
	path.SetRotation(p.Rotation.Radians)
	path.SetFrameTime(p.DeltaTime)

	// A limb which has been knocked far away from the body should start over.
	if p.Owner != nil && fg.limbPos.Distance(p.Joint) > p.Owner.Diameter() {
		path.Terminate()
	}

	impulse := math2d.ZeroVector

	for i := 0; i < maxPushIterations; i++ {
		if path.PathEnded() {
			if path.OneShot {
				break
			}

			if p.Restarted != nil {
				*p.Restarted = true
			}

			if pos, ok := path.ResetFree(t, fg.limbPos); ok {
				fg.limbPos = pos
			} else {
				path.Reset()
			}
		}

		vel := path.GetCurrentVel(fg.limbPos)
		chunk := path.GetNextTimeChunk(fg.limbPos)
		impulse = impulse.Add(fg.PushTravel(t, vel, p.LimbMass, path.GetPushForce(), chunk, !p.DisableCollisions))
		path.ReportProgress(fg.limbPos)

		if path.FrameDone() || path.PathEnded() {
			break
		}
	}

	if impulse.Largest() > maxImpulse {
		log.Debugf("%s: discarding push impulse %v", fg.Name, impulse)
		impulse = math2d.ZeroVector
	}

	fg.vel = p.ParentVel
	r.Impulse = impulse

	if p.AffectRotation && p.Owner != nil {
		lever := p.Joint.Subtract(p.Owner.Position()).MultiplyByScalar(math2d.MetersPerPixel)
		r.Torque = (lever.X * impulse.Y) - (lever.Y * impulse.X)
	}

	return r
}

// Flail is the input to FlailAsLimb.
type Flail struct {
	BodyPos    math2d.Vector
	RootOffset math2d.Vector
	MaxLength  float64
	Gravity    math2d.Vector
	AngularVel float64
	ParentVel  math2d.Vector
	LimbMass   float64
	DeltaTime  float64
}

// FlailAsLimb lets the limb swing loosely around its joint, like a damped
// pendulum which can't stretch further than MaxLength.
func (fg *FootGroup) FlailAsLimb(t terrain.Terrain, f Flail) {
	if f.DeltaTime <= 0 {
		return
	}

	joint := f.BodyPos.Add(f.RootOffset)

	// Fling outwards when spinning.
	spin := f.RootOffset.SetMagnitude(math.Abs(f.AngularVel))

	fg.vel = fg.vel.Add(f.Gravity.MultiplyByScalar(f.DeltaTime))
	fg.vel = fg.vel.MultiplyByScalar(math.Pow(flailDamping, f.DeltaTime))

	// The limb follows the body, even when flailing.
	fg.vel = fg.vel.Add(f.ParentVel.Subtract(fg.vel).MultiplyByScalar(math.Min(1, f.DeltaTime*10)))

	before := fg.limbPos
	want := fg.vel.Add(spin).MultiplyByScalar(f.DeltaTime * math2d.PixelsPerMeter)
	got := fg.travel(t, want, true)

	// A gripping limb stays put, but still settles onto the surface.
	if got.Zero() && want.Y > 0 {
		fg.travel(t, math2d.Vector{X: 0, Y: want.Y}, false)
	}

	// Lose whatever velocity ran into terrain.
	moved := fg.limbPos.Subtract(before).MultiplyByScalar(math2d.MetersPerPixel / f.DeltaTime)
	if moved.Magnitude() < fg.vel.Magnitude() {
		fg.vel = moved
	}

	rng := fg.limbPos.Subtract(joint)
	if rng.Magnitude() > f.MaxLength {
		fg.limbPos = joint.Add(rng.SetMagnitude(f.MaxLength))
	}
}

// FootPair is the live group of a limb, plus an atom-free backup. They are
// swapped, rather than rebuilt, to turn collisions on and off.
type FootPair struct {
	Live   *FootGroup
	Backup *FootGroup
}

func NewFootPair(fg *FootGroup) *FootPair {
	return &FootPair{
		Live:   fg,
		Backup: New(fg.Name+" (backup)", nil),
	}
}

// Swap exchanges the live and backup groups. The limb doesn't move.
func (fp *FootPair) Swap() {
	fp.Backup.limbPos = fp.Live.limbPos
	fp.Backup.vel = fp.Live.vel
	fp.Live, fp.Backup = fp.Backup, fp.Live
}

// Update swaps the groups if the live one collides when the path says it
// shouldn't, or vice versa. Returns true if they were swapped.
func (fp *FootPair) Update(path *limbpath.LimbPath) bool {
	if path == nil {
		return false
	}

	// Nothing to swap to.
	if (fp.Live.AtomCount() == 0) == (fp.Backup.AtomCount() == 0) {
		return false
	}

	if (fp.Live.AtomCount() == 0) != path.FootCollisionsShouldBeDisabled() {
		fp.Swap()
		return true
	}

	return false
}

func (fp *FootPair) LimbPos() math2d.Vector {
	return fp.Live.LimbPos()
}

func (fp *FootPair) SetLimbPos(p math2d.Vector) {
	fp.Live.SetLimbPos(p)
	fp.Backup.SetLimbPos(p)
}

// PushAsLimb swaps the groups if needed, and then pushes the live one.
func (fp *FootPair) PushAsLimb(t terrain.Terrain, p Push) Reaction {
	fp.Update(p.Path)
	return fp.Live.PushAsLimb(t, p)
}

func (fp *FootPair) FlailAsLimb(t terrain.Terrain, f Flail) {
	fp.Live.FlailAsLimb(t, f)
}
