package crab

import (
	"testing"

	"github.com/adammck/crab/attachable"
	faketerrain "github.com/adammck/crab/fake/terrain"
	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyRestsOnGround(t *testing.T) {
	ctx := NewContext(faketerrain.NewFlat(100), 1.0/60)
	b := NewBody("box", 50, 10)
	b.SetPosition(math2d.Vector{X: 0, Y: 50})

	for i := 0; i < 240; i++ {
		b.Update(ctx)
		ctx.Advance()
	}

	assert.InDelta(t, 90, b.Position().Y, 1e-6)
	assert.Equal(t, 0.0, b.Vel().Y)
	assert.True(t, b.Grounded())
}

func TestBodyFriction(t *testing.T) {
	ctx := NewContext(faketerrain.NewFlat(100), 1.0/60)
	b := NewBody("box", 50, 10)
	b.SetPosition(math2d.Vector{X: 0, Y: 90})
	b.SetVel(math2d.Vector{X: 2, Y: 0})

	b.Update(ctx)
	require.True(t, b.Grounded())
	assert.True(t, b.Vel().X < 2)
	assert.True(t, b.Position().X > 0)
}

func TestBodyStopsAtWall(t *testing.T) {
	ter := faketerrain.NewFlat(100)
	ter.Blocks = []faketerrain.Block{
		{Min: math2d.Vector{X: 20, Y: 0}, Max: math2d.Vector{X: 40, Y: 100}, Strength: 100},
	}

	ctx := NewContext(ter, 1.0/60)
	b := NewBody("box", 50, 10)
	b.SetPosition(math2d.Vector{X: 0, Y: 90})
	b.Friction = 0

	for i := 0; i < 60; i++ {
		b.SetVel(math2d.Vector{X: 5, Y: b.Vel().Y})
		b.Update(ctx)
	}

	assert.InDelta(t, 10, b.Position().X, 1e-6)
}

func TestBodyMassAndImpulse(t *testing.T) {
	b := NewBody("box", 50, 10)
	leg := &attachable.Attachable{Name: "leg", Mass: 5, JointStrength: 500, JointStiffness: 1}
	b.Parts.Add(leg)
	leg.Attach(attachable.Root)

	require.Equal(t, 55.0, b.Mass())

	b.ApplyImpulse(math2d.Vector{X: 55, Y: 0})
	assert.InDelta(t, 1, b.Vel().X, 1e-9)

	// More than the joint can take.
	leg.AddImpulse(math2d.Vector{X: 1000, Y: 0})
	broken := b.ApplyAttachableForces(1.0 / 60)
	require.Len(t, broken, 1)
	assert.False(t, leg.IsAttached())
	assert.Equal(t, 50.0, b.Mass())

	// Only the joint strength reached the body.
	assert.InDelta(t, 1+500.0/50, b.Vel().X, 1e-9)
}

func TestBodyRotateOffset(t *testing.T) {
	b := NewBody("box", 50, 10)
	assert.Equal(t, math2d.Vector{X: 4, Y: 2}, b.RotateOffset(math2d.Vector{X: 4, Y: 2}))
	assert.Equal(t, 1.0, b.FlipFactor())

	b.SetHFlipped(true)
	assert.Equal(t, math2d.Vector{X: -4, Y: 2}, b.RotateOffset(math2d.Vector{X: 4, Y: 2}))
	assert.Equal(t, -1.0, b.FlipFactor())
}

func TestBodyBalance(t *testing.T) {
	ctx := NewContext(nil, 1.0/60)
	ctx.Gravity = math2d.ZeroVector
	b := NewBody("box", 50, 10)
	b.SetRotAngle(0.5)

	for i := 0; i < 600; i++ {
		b.Update(ctx)
	}

	assert.InDelta(t, 0, b.RotAngle(), 0.01)
	assert.Equal(t, STABLE, b.Status)

	b.SetRotAngle(3)
	b.Update(ctx)
	assert.Equal(t, UNSTABLE, b.Status)
}

func TestBodyDies(t *testing.T) {
	ctx := NewContext(nil, 1.0/60)
	b := NewBody("box", 50, 10)
	b.Root().AddDamage(150)
	b.ApplyAttachableForces(ctx.DeltaTime)
	b.Update(ctx)

	assert.Equal(t, DYING, b.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "DYING", DYING.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
