package legs

import (
	"math"

	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
	"github.com/sirupsen/logrus"
)

const (

	// A target this far (in pixels) above the joint is out of reach, so a leg
	// which can idle goes to its idle offset instead.
	idleHeight = -3.0

	// How far (as a fraction of the max extension) a loose leg dangles.
	detachedExtension = 0.6

	// Horizontal distances (in pixels) from the joint to the target at which the
	// foot changes frame.
	footFrameFar  = 10.0
	footFrameNear = 6.0
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "legs",
})

// Leg is a part which reaches its foot towards a target, within the limits of
// its contracted and extended offsets.
type Leg struct {
	*attachable.Attachable

	// The ankle positions (relative to the joint) at the shortest and longest
	// extension of the leg.
	ContractedOffset math2d.Vector
	ExtendedOffset   math2d.Vector

	// Where the foot rests when the target is above the joint.
	IdleOffset math2d.Vector
	WillIdle   bool

	// Fraction (0..1) of the remaining distance to the target which the ankle
	// covers per update.
	MoveSpeed float64

	// Number of animation frames between contracted and extended.
	FrameCount int

	Foot attachable.ID

	minExtension float64
	maxExtension float64

	target      math2d.Vector
	reachActive bool
	didReach    bool

	ankleOffset         math2d.Vector
	normalizedExtension float64
	frame               int
	footFrame           int

	// Results of BendLeg.
	knee      math2d.Vector
	kneeAngle float64
}

// New returns a leg which isn't yet in an arena.
func New(name string, contracted, extended math2d.Vector) *Leg {
	l := &Leg{
		Attachable: &attachable.Attachable{
			Name:           name,
			Kind:           attachable.KindLeg,
			JointStiffness: 1,
		},
		ContractedOffset: contracted,
		ExtendedOffset:   extended,
		MoveSpeed:        1,
		FrameCount:       1,
	}

	l.Init()
	return l
}

// Init derives the extension limits from the offsets. It must be called after
// the offsets are changed.
func (l *Leg) Init() {
	if l.ContractedOffset.Magnitude() > l.ExtendedOffset.Magnitude() {
		l.ContractedOffset, l.ExtendedOffset = l.ExtendedOffset, l.ContractedOffset
	}

	l.minExtension = l.ContractedOffset.Magnitude()
	l.maxExtension = l.ExtendedOffset.Magnitude()
	l.ankleOffset = l.ContractedOffset.Add(l.ExtendedOffset).MultiplyByScalar(0.5)
	l.constrain()
}

// SetMaxLength sets the limits directly. The leg contracts to half of its
// length.
func (l *Leg) SetMaxLength(length float64) {
	l.minExtension = length / 2
	l.maxExtension = length
	l.constrain()
}

func (l *Leg) MinExtension() float64 {
	return l.minExtension
}

func (l *Leg) MaxExtension() float64 {
	return l.maxExtension
}

// AnkleOffset returns the position of the ankle relative to the joint.
func (l *Leg) AnkleOffset() math2d.Vector {
	return l.ankleOffset
}

// SetAnkleOffset overwrites the ankle offset, without constraining it.
func (l *Leg) SetAnkleOffset(v math2d.Vector) {
	l.ankleOffset = v
}

// AnklePos returns the scene position of the ankle.
func (l *Leg) AnklePos() math2d.Vector {
	return l.JointPos().Add(l.ankleOffset)
}

// SetTargetPosition sets the scene position which the foot should reach for
// on the next update. The zero vector means no target.
func (l *Leg) SetTargetPosition(p math2d.Vector) {
	l.target = p
}

func (l *Leg) TargetPosition() math2d.Vector {
	return l.target
}

func (l *Leg) ReachActive() bool {
	return l.reachActive
}

// DidReach returns true if the last target was within reach, without being
// clamped.
func (l *Leg) DidReach() bool {
	return l.didReach
}

// NormalizedExtension returns how extended the leg is, from 0 (contracted) to
// 1 (extended).
func (l *Leg) NormalizedExtension() float64 {
	return l.normalizedExtension
}

func (l *Leg) Frame() int {
	return l.frame
}

func (l *Leg) FootFrame() int {
	return l.footFrame
}

// Knee returns the position of the knee relative to the joint, and the angle
// (in degrees) of the knee.
func (l *Leg) Knee() (math2d.Vector, float64) {
	return l.knee, l.kneeAngle
}

func (l *Leg) flipped() bool {
	return l.Rotation().FlipX
}

// ReachToward moves the ankle towards the given scene position. It must be
// called after the parent has been positioned for this tick. The zero vector
// turns reaching off, and leaves the ankle alone.
func (l *Leg) ReachToward(p math2d.Vector) {
	if p.Zero() {
		l.reachActive = false
		return
	}

	l.reachActive = true

	offset := p.Subtract(l.JointPos())
	if l.WillIdle && offset.Y < idleHeight {
		offset = l.IdleOffset.FlipX(l.flipped())
	}

	d := offset.Subtract(l.ankleOffset).CapMagnitude(l.maxExtension)
	l.ankleOffset = l.ankleOffset.Add(d.MultiplyByScalar(l.MoveSpeed))
}

// ConstrainFoot clamps the ankle offset between the min and max extensions, and
// returns true if it was already between them.
func (l *Leg) ConstrainFoot() bool {
	l.didReach = l.constrain()
	return l.didReach
}

func (l *Leg) constrain() bool {
	m := l.ankleOffset.Magnitude()

	if m < l.minExtension {
		dir := l.ankleOffset
		if dir.Zero() {
			dir = l.ExtendedOffset.FlipX(l.flipped())
		}
		if dir.Zero() {
			dir = math2d.Vector{X: 0, Y: 1}
		}
		l.ankleOffset = clampExact(dir.SetMagnitude(l.minExtension), l.minExtension, l.maxExtension)
		return false
	}

	if m > l.maxExtension {
		l.ankleOffset = clampExact(l.ankleOffset.SetMagnitude(l.maxExtension), l.minExtension, l.maxExtension)
		return false
	}

	return true
}

// clampExact nudges a vector which was scaled to a limit, in case rounding left
// it just outside.
func clampExact(v math2d.Vector, min, max float64) math2d.Vector {
	for i := 0; i < 8 && v.Magnitude() > max; i++ {
		v = v.MultiplyByScalar(math.Nextafter(1, 0))
	}
	for i := 0; i < 8 && v.Magnitude() < min; i++ {
		v = v.MultiplyByScalar(math.Nextafter(1, 2))
	}
	return v
}

// BendLeg works out where the knee goes, given the ankle offset. The thigh and
// shin are each half of the max extension. It only affects how the leg looks.
func (l *Leg) BendLeg() {
	upper := l.maxExtension / 2
	lower := l.maxExtension / 2
	d := l.ankleOffset.Magnitude()

	if d == 0 || upper == 0 {
		l.knee = math2d.ZeroVector
		l.kneeAngle = 0
		return
	}

	// The angle at the hip, between the ankle and the knee.
	a := sss(lower, upper, d)
	if math.IsNaN(a) {
		a = 0
	}

	// Knees point forwards.
	sign := -1.0
	if l.flipped() {
		sign = 1.0
	}

	l.knee = l.ankleOffset.Unit().Rotate(sign * utils.Rad(a)).MultiplyByScalar(upper)
	l.kneeAngle = sss(d, upper, lower)
	if math.IsNaN(l.kneeAngle) {
		l.kneeAngle = 180
	}
}

func (l *Leg) updateExtension() {
	r := l.maxExtension - l.minExtension
	if r <= 0 {
		l.normalizedExtension = 1
	} else {
		l.normalizedExtension = utils.Clamp((l.ankleOffset.Magnitude()-l.minExtension)/r, 0, 1)
	}

	if l.FrameCount <= 1 {
		l.frame = 0
		return
	}

	l.frame = int(math.Floor(l.normalizedExtension * float64(l.FrameCount)))
	if l.frame > l.FrameCount-1 {
		l.frame = l.FrameCount - 1
	}
}

func (l *Leg) updateFoot() {
	if !l.IsAttached() || !l.reachActive {
		l.footFrame = 0
		return
	}

	d := l.target.Subtract(l.JointPos()).X
	if l.flipped() {
		d = -d
	}

	switch {
	case d < -footFrameFar:
		l.footFrame = 3
	case d < -footFrameNear:
		l.footFrame = 2
	case d > footFrameNear:
		l.footFrame = 1
	default:
		l.footFrame = 0
	}
}

// placeFoot moves the foot part (if there is one) to the ankle.
func (l *Leg) placeFoot() {
	ar := l.Arena()
	if ar == nil || l.Foot == attachable.None {
		return
	}

	f := ar.Get(l.Foot)
	if f == nil || f.Parent() != l.ID() {
		return
	}

	pose := math2d.Pose{Position: l.Position(), Rotation: l.Rotation()}
	f.ParentOffset = pose.Local(l.AnklePos())
}

// Update reaches for the target, and poses the leg. A detached leg just
// dangles.
func (l *Leg) Update() {
	if l.IsAttached() {
		l.ReachToward(l.target)
		l.ConstrainFoot()
	} else {
		l.reachActive = false
		r := l.Rotation().Radians
		if l.flipped() {
			r += math.Pi
		}
		l.ankleOffset = math2d.Vector{X: l.maxExtension * detachedExtension, Y: 0}.Rotate(r)
	}

	l.updateExtension()
	l.BendLeg()
	l.updateFoot()
	l.placeFoot()
}

// sss returns the angle α, given the length of sides a, b, and c.
// See: http://en.wikipedia.org/wiki/Solution_of_triangles
func sss(a float64, b float64, c float64) float64 {
	return utils.Deg(math.Acos(((b * b) + (c * c) - (a * a)) / (2 * b * c)))
}
