package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type light string
type press string

const (
	off light = "off"
	dim light = "dim"
	on  light = "on"

	tap  press = "tap"
	hold press = "hold"
)

func table() *Table[light, press] {
	return NewTable[light, press]("light").
		Add(off, tap, on).
		Add(on, tap, off).
		AddAll([]light{off, on}, hold, dim).
		Add(dim, tap, off)
}

func TestTransition(t *testing.T) {
	tt := table()

	type eg struct {
		from light
		e    press
		to   light
	}

	examples := []eg{
		{off, tap, on},
		{on, tap, off},
		{off, hold, dim},
		{on, hold, dim},
		{dim, tap, off},

		// No edge, so no change.
		{dim, hold, dim},
	}

	for _, x := range examples {
		assert.Equal(t, x.to, tt.Transition(x.from, x.e), "%v + %v", x.from, x.e)
	}

	assert.True(t, tt.Has(off, hold))
	assert.False(t, tt.Has(dim, hold))
}

func TestMachine(t *testing.T) {
	m := NewMachine(table(), off)
	require.Equal(t, off, m.State())
	assert.True(t, m.Entered())

	m.Tick(0.5)
	m.Tick(0.25)
	assert.Equal(t, 0.75, m.Elapsed())
	assert.Equal(t, 2, m.Ticks())
	assert.False(t, m.Entered())

	assert.False(t, m.Fire(press("nope")))
	assert.Equal(t, 0.75, m.Elapsed())

	assert.True(t, m.Fire(tap))
	assert.Equal(t, on, m.State())
	assert.Equal(t, 0.0, m.Elapsed())
	assert.True(t, m.Entered())

	// Re-entering the same state restarts its timer.
	m.Tick(1)
	m.SetState(on)
	assert.Equal(t, 0.0, m.Elapsed())
}
