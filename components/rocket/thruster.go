package rocket

import (
	"fmt"
	"math"

	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/math2d"
)

// ThrusterPos is where on the rocket a thruster is mounted.
type ThrusterPos int

const (
	MTHRUSTER ThrusterPos = iota
	RTHRUSTER
	LTHRUSTER
	URTHRUSTER
	ULTHRUSTER
	ThrusterCount
)

var thrusterNames = [ThrusterCount]string{
	"MThruster",
	"RThruster",
	"LThruster",
	"URThruster",
	"ULThruster",
}

func (p ThrusterPos) String() string {
	if p < 0 || p >= ThrusterCount {
		return fmt.Sprintf("ThrusterPos(%d)", int(p))
	}
	return thrusterNames[p]
}

// ParseThrusterPos is the inverse of ThrusterPos.String.
func ParseThrusterPos(s string) (ThrusterPos, error) {
	for i, n := range thrusterNames {
		if n == s {
			return ThrusterPos(i), nil
		}
	}
	return 0, fmt.Errorf("unknown thruster: %#v", s)
}

// Which way (in radians clockwise from straight up, relative to the body) each
// thruster pushes. The side thrusters angle up a little, and the reverse ones
// outwards.
var pushAngles = [ThrusterCount]float64{
	MTHRUSTER:  0,
	RTHRUSTER:  -(math.Pi/2 - math.Pi/8),
	LTHRUSTER:  math.Pi/2 - math.Pi/8,
	URTHRUSTER: math.Pi + math.Pi/8,
	ULTHRUSTER: math.Pi - math.Pi/8,
}

// Thruster is an emitter which pushes the rocket while it's enabled.
type Thruster struct {
	*attachable.Attachable

	// Force in N while emitting, and the impulse in kg*m/s of the burst when
	// it starts.
	Thrust       float64
	BurstImpulse float64

	// Push direction, clockwise from up, relative to the rocket. Set by where
	// the thruster is mounted.
	angle float64

	emitting bool
	burst    bool
}

func NewThruster(name string, mass, thrust float64) *Thruster {
	return &Thruster{
		Attachable: &attachable.Attachable{
			Name:           name,
			Kind:           attachable.KindThruster,
			Mass:           mass,
			JointStiffness: 1,
		},
		Thrust: thrust,
	}
}

// EnableEmission turns the thruster on or off. Turning it on triggers a burst.
func (t *Thruster) EnableEmission(on bool) {
	if on && !t.emitting {
		t.burst = true
	}
	t.emitting = on
}

func (t *Thruster) IsEmitting() bool {
	return t.emitting
}

// Push returns the force which the thruster applies while emitting, in scene
// space.
func (t *Thruster) Push(rot math2d.Matrix) math2d.Vector {
	return math2d.Vector{X: 0, Y: -t.Thrust}.Rotate(rot.Radians + t.angle)
}

// Update applies the thrust (and any pending burst) through the joint.
func (t *Thruster) Update(rot math2d.Matrix) {
	if !t.emitting {
		t.burst = false
		return
	}

	push := t.Push(rot)
	t.AddForce(push)

	if t.burst && t.BurstImpulse > 0 {
		t.AddImpulse(push.SetMagnitude(t.BurstImpulse))
	}
	t.burst = false
}
