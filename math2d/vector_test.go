package math2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagnitude(t *testing.T) {
	type eg struct {
		input Vector
		exp   float64
	}

	examples := []eg{
		{Vector{X: 0, Y: 0}, 0},
		{Vector{X: 1, Y: 1}, 1.414213562},
		{Vector{X: 3, Y: 4}, 5},
	}

	for _, x := range examples {
		assert.InDelta(t, x.exp, x.input.Magnitude(), 0.01)
	}
}

func TestDistance(t *testing.T) {
	type eg struct {
		recv Vector
		arg  Vector
		out  float64
	}

	examples := []eg{
		{Vector{X: 1, Y: 1}, Vector{X: 1, Y: 1}, 0},
		{Vector{X: 1, Y: 1}, Vector{X: 4, Y: 5}, 5},
	}

	for _, x := range examples {
		assert.InDelta(t, x.out, x.recv.Distance(x.arg), 0.01)
	}
}

func TestRotate(t *testing.T) {
	type eg struct {
		input Vector
		rad   float64
		exp   Vector
	}

	examples := []eg{
		{Vector{1, 0}, 0, Vector{1, 0}},
		{Vector{1, 0}, math.Pi / 2, Vector{0, 1}},
		{Vector{0, 1}, math.Pi / 2, Vector{-1, 0}},
		{Vector{1, 0}, math.Pi, Vector{-1, 0}},
	}

	for _, x := range examples {
		act := x.input.Rotate(x.rad)
		assert.InDelta(t, x.exp.X, act.X, 1e-9)
		assert.InDelta(t, x.exp.Y, act.Y, 1e-9)
	}
}

func TestUnitOfZero(t *testing.T) {
	assert.Equal(t, ZeroVector, ZeroVector.Unit())
	assert.Equal(t, ZeroVector, ZeroVector.SetMagnitude(10))
}

func TestCapMagnitude(t *testing.T) {
	v := Vector{30, 40}
	assert.InDelta(t, 10, v.CapMagnitude(10).Magnitude(), 1e-9)
	assert.Equal(t, v, v.CapMagnitude(100))
	assert.Equal(t, 40.0, Vector{-30, 40}.Largest())
	assert.Equal(t, 30.0, Vector{-30, 4}.Largest())
}

func TestMultiplyByMatrix(t *testing.T) {
	v := Vector{2, 1}

	// Flip happens before rotation.
	act := v.MultiplyByMatrix(Matrix{math.Pi / 2, true})
	assert.InDelta(t, -1, act.X, 1e-9)
	assert.InDelta(t, -2, act.Y, 1e-9)

	for _, m := range []Matrix{{0.3, false}, {0.3, true}, {-2, true}} {
		back := v.MultiplyByMatrix(m).MultiplyByMatrix(m.Inverse())
		assert.InDelta(t, v.X, back.X, 1e-9)
		assert.InDelta(t, v.Y, back.Y, 1e-9)
	}
}
