package legs

import (
	"math"
	"testing"

	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attachedLeg() (*attachable.Arena, *Leg) {
	root := &attachable.Attachable{Name: "body", Mass: 50}
	ar := attachable.NewArena(root)
	root.SetPosition(math2d.Vector{X: 100, Y: 100})

	l := New("leg", math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
	ar.Add(l.Attachable)
	l.AttachAt(attachable.Root, math2d.Vector{X: 0, Y: 4})
	ar.Update(1.0/60, math2d.ZeroVector)
	return ar, l
}

func TestExtensionLimits(t *testing.T) {
	l := New("leg", math2d.Vector{X: 0, Y: 12}, math2d.Vector{X: 0, Y: 4})

	// Swapped, since contracted was longer.
	assert.Equal(t, 4.0, l.MinExtension())
	assert.Equal(t, 12.0, l.MaxExtension())

	l.SetMaxLength(20)
	assert.Equal(t, 10.0, l.MinExtension())
	assert.Equal(t, 20.0, l.MaxExtension())
}

func TestConstrainFootKeepsAnkleInRange(t *testing.T) {
	_, l := attachedLeg()

	mags := []float64{0, 1e-12, 0.5, 3.999, 4, 7, 12, 12.0001, 1e3, 1e9}
	angles := []float64{0, 0.3, 1, math.Pi / 2, 2, math.Pi, -0.7, -2.9}

	for _, m := range mags {
		for _, a := range angles {
			l.SetAnkleOffset(math2d.Vector{X: m, Y: 0}.Rotate(a))
			ok := l.ConstrainFoot()
			got := l.AnkleOffset().Magnitude()

			assert.True(t, got >= l.MinExtension(), "mag=%v angle=%v got=%v", m, a, got)
			assert.True(t, got <= l.MaxExtension(), "mag=%v angle=%v got=%v", m, a, got)
			assert.Equal(t, ok, l.DidReach())

			// Rotating a vector which is exactly on a limit might nudge it across.
			if m != 4 && m != 12 {
				assert.Equal(t, m > 4 && m < 12, ok, "mag=%v", m)
			}
		}
	}
}

func TestConstrainFootKeepsDirection(t *testing.T) {
	_, l := attachedLeg()
	l.SetAnkleOffset(math2d.Vector{X: 30, Y: 40})
	require.False(t, l.ConstrainFoot())
	assert.InDelta(t, 0.6*12, l.AnkleOffset().X, 1e-9)
	assert.InDelta(t, 0.8*12, l.AnkleOffset().Y, 1e-9)

	// No direction at all, so it goes straight out.
	l.SetAnkleOffset(math2d.ZeroVector)
	require.False(t, l.ConstrainFoot())
	assert.InDelta(t, 0, l.AnkleOffset().X, 1e-9)
	assert.InDelta(t, 4, l.AnkleOffset().Y, 1e-9)
}

func TestReachToward(t *testing.T) {
	_, l := attachedLeg()
	joint := l.JointPos()
	require.Equal(t, math2d.Vector{X: 100, Y: 104}, joint)

	l.ReachToward(joint.Add(math2d.Vector{X: 3, Y: 6}))
	assert.True(t, l.ReachActive())
	assert.True(t, l.ConstrainFoot())
	assert.Equal(t, math2d.Vector{X: 3, Y: 6}, l.AnkleOffset())

	// Out of reach.
	l.ReachToward(joint.Add(math2d.Vector{X: 0, Y: 50}))
	assert.False(t, l.ConstrainFoot())
	assert.InDelta(t, 12, l.AnkleOffset().Magnitude(), 1e-9)

	// The zero vector means no target, so nothing moves.
	before := l.AnkleOffset()
	l.ReachToward(math2d.ZeroVector)
	assert.False(t, l.ReachActive())
	assert.Equal(t, before, l.AnkleOffset())
}

func TestReachTowardMoveSpeed(t *testing.T) {
	_, l := attachedLeg()
	l.MoveSpeed = 0.5
	l.SetAnkleOffset(math2d.Vector{X: 0, Y: 6})

	l.ReachToward(l.JointPos().Add(math2d.Vector{X: 0, Y: 10}))
	assert.InDelta(t, 8, l.AnkleOffset().Y, 1e-9)
}

func TestIdleOffset(t *testing.T) {
	_, l := attachedLeg()
	l.WillIdle = true
	l.IdleOffset = math2d.Vector{X: 2, Y: 8}

	l.ReachToward(l.JointPos().Add(math2d.Vector{X: 0, Y: -10}))
	assert.Equal(t, math2d.Vector{X: 2, Y: 8}, l.AnkleOffset())

	// Mirrored along with the leg.
	l.SetRotation(math2d.Matrix{FlipX: true})
	l.ReachToward(l.JointPos().Add(math2d.Vector{X: 0, Y: -10}))
	assert.Equal(t, math2d.Vector{X: -2, Y: 8}, l.AnkleOffset())
}

func TestUpdate(t *testing.T) {
	ar, l := attachedLeg()
	foot := &attachable.Attachable{Name: "foot", Kind: attachable.KindFoot}
	ar.Add(foot)
	foot.Attach(l.ID())
	l.Foot = foot.ID()
	l.FrameCount = 5

	l.SetTargetPosition(l.JointPos().Add(math2d.Vector{X: 0, Y: 12}))
	l.Update()
	ar.Update(1.0/60, math2d.ZeroVector)

	assert.True(t, l.DidReach())
	assert.Equal(t, 1.0, l.NormalizedExtension())
	assert.Equal(t, 4, l.Frame())
	assert.InDelta(t, l.AnklePos().X, foot.Position().X, 1e-9)
	assert.InDelta(t, l.AnklePos().Y, foot.Position().Y, 1e-9)

	l.SetTargetPosition(l.JointPos().Add(math2d.Vector{X: -20, Y: 4}))
	l.Update()
	assert.Equal(t, 3, l.FootFrame())
	assert.False(t, l.DidReach())
}

func TestUpdateDetached(t *testing.T) {
	_, l := attachedLeg()
	l.Detach()
	l.SetTargetPosition(math2d.Vector{X: 1, Y: 1})
	l.Update()

	assert.False(t, l.ReachActive())
	assert.InDelta(t, 7.2, l.AnkleOffset().X, 1e-9)
	assert.InDelta(t, 0, l.AnkleOffset().Y, 1e-9)
}

func TestBendLeg(t *testing.T) {
	_, l := attachedLeg()

	type eg struct {
		ankle math2d.Vector
		angle float64
	}

	examples := []eg{
		{math2d.Vector{X: 0, Y: 12}, 180},
		{math2d.Vector{X: 0, Y: 6}, 60},
		{math2d.Vector{X: 6, Y: 0}, 60},
	}

	for _, x := range examples {
		l.SetAnkleOffset(x.ankle)
		l.BendLeg()

		knee, angle := l.Knee()
		assert.InDelta(t, x.angle, angle, 1e-6)

		// Both bones are half of the max extension.
		assert.InDelta(t, 6, knee.Magnitude(), 1e-6)
		assert.InDelta(t, 6, knee.Distance(x.ankle), 1e-6)
	}
}
