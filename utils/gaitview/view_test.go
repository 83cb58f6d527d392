package main

import (
	"testing"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/config"
	fake "github.com/adammck/crab/fake/terrain"
	"github.com/adammck/crab/math2d"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	v := &view{scale: 2, center: math2d.Vector{X: 100, Y: 50}, w: 80, h: 24}

	examples := []struct {
		p    math2d.Vector
		x, y int
	}{
		{math2d.Vector{X: 100, Y: 50}, 40, 12},
		{math2d.Vector{X: 102, Y: 54}, 41, 13},
		{math2d.Vector{X: 99, Y: 49}, 39, 11},
		{math2d.Vector{X: 20, Y: 2}, 0, 0},
	}

	for _, eg := range examples {
		x, y := v.cell(eg.p)
		assert.Equal(t, eg.x, x, "%v", eg.p)
		assert.Equal(t, eg.y, y, "%v", eg.p)

		// And back, to the middle of the cell.
		x, y = v.cell(v.pos(eg.x, eg.y))
		assert.Equal(t, eg.x, x)
		assert.Equal(t, eg.y, y)
	}
}

func TestDraw(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(80, 24)

	d, err := config.LoadCrab("../../config/testdata/crab.yaml")
	require.NoError(t, err)
	c, err := d.Build()
	require.NoError(t, err)

	const groundY = 100.0
	c.Body().SetPosition(math2d.Vector{X: 0, Y: groundY - c.Body().Radius})
	w := core.NewWorld(fake.NewFlat(groundY), 1.0/60)
	w.Add(c)
	require.NoError(t, w.Boot())
	require.NoError(t, w.Tick())

	v := &view{scale: 1}
	v.draw(s, w.Context, c)

	at := func(x, y int) rune {
		r, _, _, _ := s.GetContent(x, y)
		return r
	}

	assert.Equal(t, '@', at(40, 12))
	assert.Equal(t, '#', at(0, 21))
	assert.Equal(t, 't', at(1, 23))

	feet := 0
	for y := 0; y < 23; y++ {
		for x := 0; x < 80; x++ {
			if at(x, y) == '*' {
				feet += 1
			}
		}
	}
	assert.GreaterOrEqual(t, feet, 1)
}
