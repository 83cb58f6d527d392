package crab

import (
	"testing"

	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/components/legs"
	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leg(name string) *legs.Leg {
	l := legs.New(name, math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
	l.Mass = 5
	return l
}

func TestLegSlot(t *testing.T) {
	examples := []struct {
		s    Side
		l    Layer
		slot Slot
	}{
		{LEFTSIDE, FGROUND, LeftFGLeg},
		{LEFTSIDE, BGROUND, LeftBGLeg},
		{RIGHTSIDE, FGROUND, RightFGLeg},
		{RIGHTSIDE, BGROUND, RightBGLeg},
	}

	for _, eg := range examples {
		assert.Equal(t, eg.slot, LegSlot(eg.s, eg.l))

		s, l, ok := eg.slot.leg()
		assert.True(t, ok)
		assert.Equal(t, eg.s, s)
		assert.Equal(t, eg.l, l)
	}

	_, _, ok := TurretSlot.leg()
	assert.False(t, ok)
}

func TestWrongPartForSlot(t *testing.T) {
	_, c := world(t)

	examples := []struct {
		slot Slot
		p    Part
	}{
		{LeftFGLeg, NewTurret("turret", 5)},
		{TurretSlot, NewJetpack("jetpack", 5, 100, 1)},
		{JetpackSlot, NewLimb(leg("leg"), atoms.NewFoot("foot", 1))},
		{Slot(99), NewTurret("turret", 5)},
	}

	for _, eg := range examples {
		assert.Error(t, c.SetAttachmentSlot(eg.slot, eg.p), "%v", eg.slot)
	}

	assert.Nil(t, c.Turret)
	assert.Nil(t, c.Jetpack)
	assert.Nil(t, c.Limb(LEFTSIDE, FGROUND))
}

func TestSetAndClearSlots(t *testing.T) {
	_, c := world(t)
	base := c.Body().Mass()

	limb := NewLimb(leg("leg"), atoms.NewFoot("foot", 1))
	limb.Foot = &attachable.Attachable{Name: "claw", Mass: 1}
	tur := NewTurret("turret", 3)
	jet := NewJetpack("jetpack", 2, 100, 1)

	require.NoError(t, c.SetAttachmentSlot(RightBGLeg, limb))
	require.NoError(t, c.SetAttachmentSlot(TurretSlot, tur))
	require.NoError(t, c.SetAttachmentSlot(JetpackSlot, jet))

	assert.Same(t, limb, c.Limb(RIGHTSIDE, BGROUND))
	assert.True(t, limb.Leg.IsAttached())
	assert.True(t, limb.Foot.IsAttached())
	assert.Equal(t, limb.Leg.ID(), limb.Foot.Parent())
	assert.InDelta(t, base+5+1+3+2, c.Body().Mass(), 1e-9)

	// The foot starts where the leg would put it.
	joint := c.Body().Position().Add(limb.Leg.ParentOffset)
	assert.InDelta(t, 0, joint.Add(limb.Leg.AnkleOffset()).Distance(limb.Feet.LimbPos()), 1e-9)

	// Replacing a part detaches the old one.
	tur2 := NewTurret("turret 2", 4)
	require.NoError(t, c.SetAttachmentSlot(TurretSlot, tur2))
	assert.False(t, tur.IsAttached())
	assert.Same(t, tur2, c.Turret)

	require.NoError(t, c.SetAttachmentSlot(RightBGLeg, nil))
	require.NoError(t, c.SetAttachmentSlot(TurretSlot, nil))
	require.NoError(t, c.SetAttachmentSlot(JetpackSlot, nil))

	assert.Nil(t, c.Limb(RIGHTSIDE, BGROUND))
	assert.Nil(t, c.Turret)
	assert.Nil(t, c.Jetpack)
	assert.False(t, limb.Leg.IsAttached())
	assert.InDelta(t, base, c.Body().Mass(), 1e-9)
}

func TestLostPartsLeaveSlots(t *testing.T) {
	_, c := world(t)
	limb := NewLimb(leg("leg"), atoms.NewFoot("foot", 1))
	require.NoError(t, c.SetAttachmentSlot(LeftFGLeg, limb))
	require.NoError(t, c.SetAttachmentSlot(TurretSlot, NewTurret("turret", 3)))

	limb.Leg.Detach()
	c.Turret.Detach()
	c.checkParts(nil)

	assert.Nil(t, c.Limb(LEFTSIDE, FGROUND))
	assert.Nil(t, c.Turret)
}
