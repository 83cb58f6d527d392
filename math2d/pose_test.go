package math2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoseWorldLocal(t *testing.T) {
	type eg struct {
		pose Pose
		vec  Vector
		exp  Vector
	}

	data := []eg{
		{Pose{Vector{0, 0}, Matrix{0, false}}, Vector{10, 20}, Vector{10, 20}},
		{Pose{Vector{5, 5}, Matrix{0, false}}, Vector{10, 20}, Vector{15, 25}},
		{Pose{Vector{5, 5}, Matrix{0, true}}, Vector{10, 20}, Vector{-5, 25}},
		{Pose{Vector{0, 0}, Matrix{math.Pi / 2, false}}, Vector{10, 0}, Vector{0, 10}},
	}

	for i, eg := range data {
		actual := eg.pose.World(eg.vec)
		if actual.Distance(eg.exp) > 0.000001 {
			t.Errorf("Example #%d: got %s, expected: %s", i+1, actual, eg.exp)
		}

		back := eg.pose.Local(actual)
		if back.Distance(eg.vec) > 0.000001 {
			t.Errorf("Example #%d: got %s back, expected: %s", i+1, back, eg.vec)
		}
	}
}

func TestPoseAdd(t *testing.T) {
	parents := []Pose{
		{Vector{1, 2}, Matrix{0.4, false}},
		{Vector{-3, 2}, Matrix{0.4, true}},
	}
	child := Pose{Vector{5, -1}, Matrix{0.7, false}}
	v := Vector{3, 4}

	for _, p := range parents {
		exp := p.World(child.World(v))
		act := p.Add(child).World(v)
		assert.InDelta(t, exp.X, act.X, 1e-9)
		assert.InDelta(t, exp.Y, act.Y, 1e-9)
	}
}
