package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegRad(t *testing.T) {
	assert.InDelta(t, 180, Deg(math.Pi), 1e-9)
	assert.InDelta(t, math.Pi/2, Rad(90), 1e-9)
}

func TestClamp(t *testing.T) {
	type eg struct {
		v, lo, hi, exp float64
	}

	examples := []eg{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}

	for _, x := range examples {
		assert.Equal(t, x.exp, Clamp(x.v, x.lo, x.hi))
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-9)
}

func TestEaseOut(t *testing.T) {
	assert.InDelta(t, 0, EaseOut(0, 10, 0), 1e-9)
	assert.InDelta(t, 10, EaseOut(0, 10, 1), 1e-9)
	assert.InDelta(t, 10, EaseOut(0, 10, 2), 1e-9)
	assert.True(t, EaseOut(0, 10, 0.5) > 5)
}
