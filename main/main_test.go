package main

import (
	"testing"

	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/crab"
	"github.com/adammck/crab/components/rocket"
	"github.com/adammck/crab/fake/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCrab(t *testing.T) {
	src := input.New(controller.MoveRight)
	w, err := setup(options{
		crab:   "../config/testdata/crab.yaml",
		rate:   60,
		ground: 400,
		source: src,
	})
	require.NoError(t, err)
	require.Len(t, w.Actors, 1)

	c, ok := w.Actors[0].(*crab.Crab)
	require.True(t, ok)
	assert.Same(t, src, c.Controller.Source)
	assert.Equal(t, 400-c.Body().Radius, c.Body().Position().Y)

	require.NoError(t, w.Boot())
	require.NoError(t, w.Run(1))
	assert.Greater(t, src.Reads, 0)
}

func TestSetupRocket(t *testing.T) {
	w, err := setup(options{
		crab:   "../config/testdata/crab.yaml",
		rocket: "../config/testdata/rocket.yaml",
		rate:   60,
		ground: 400,
		drop:   300,
	})
	require.NoError(t, err)

	// Only the rocket, until the crab is dropped.
	require.Len(t, w.Actors, 1)
	r, ok := w.Actors[0].(*rocket.Rocket)
	require.True(t, ok)
	require.Len(t, r.Cargo, 1)
	assert.False(t, r.IsInventoryEmpty())

	r.DropAllInventory()
	assert.Len(t, w.Actors, 2)
}

func TestSetupMissing(t *testing.T) {
	_, err := setup(options{crab: "nope.yaml", rate: 60})
	assert.Error(t, err)
}
