package controller

import (
	"testing"

	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentNames(t *testing.T) {
	for i := Intent(0); i < IntentCount; i++ {
		p, err := ParseIntent(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, p)
	}

	_, err := ParseIntent("MOVE_SIDEWAYS")
	assert.Error(t, err)
	assert.Equal(t, "Intent(99)", Intent(99).String())
}

func TestState(t *testing.T) {
	s := State{}
	s.Set(MoveRight, true)
	s.Set(WeaponFire, true)
	s.Set(IntentCount, true)
	s.AnalogAim = math2d.Vector{X: 1, Y: 0}

	assert.True(t, s.Is(MoveRight))
	assert.False(t, s.Is(MoveLeft))
	assert.False(t, s.Is(IntentCount))
	assert.Equal(t, []Intent{MoveRight, WeaponFire}, s.Active())

	s.Clear()
	assert.Empty(t, s.Active())
	assert.True(t, s.AnalogAim.Zero())
}

func TestControllerUpdate(t *testing.T) {
	c := New(&Script{Steps: []Step{
		{At: 0, Intents: []Intent{MoveRight}},
		{At: 1, Intents: []Intent{MoveLeft, BodyJump}},
		{At: 2},
	}})

	type eg struct {
		now float64
		exp []Intent
	}

	examples := []eg{
		{0, []Intent{MoveRight}},
		{0.99, []Intent{MoveRight}},
		{1, []Intent{MoveLeft, BodyJump}},
		{5, []Intent{}},
	}

	for _, x := range examples {
		c.Update(x.now)
		assert.Equal(t, x.exp, c.Active(), "now=%v", x.now)
	}

	assert.True(t, c.IsPlayerControlled())

	c.Update(0)
	c.Disabled = true
	assert.False(t, c.Is(MoveRight))
	c.Update(0)
	assert.Empty(t, c.Active())
}

func TestScriptLoop(t *testing.T) {
	s := &Script{
		Loop: 2,
		Steps: []Step{
			{At: 0, Intents: []Intent{MoveRight}},
			{At: 1, Intents: []Intent{MoveLeft}},
		},
	}

	st := State{}
	s.Read(2.5, &st)
	assert.True(t, st.Is(MoveRight))

	st.Clear()
	s.Read(3.5, &st)
	assert.True(t, st.Is(MoveLeft))
}

func TestLatch(t *testing.T) {
	l := Latch{}
	assert.False(t, l.Run(false))
	assert.True(t, l.Run(true))
	assert.False(t, l.Run(true))
	assert.True(t, l.Held())
	assert.False(t, l.Run(false))
	assert.True(t, l.Run(true))
}
