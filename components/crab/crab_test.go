package crab

import (
	"fmt"
	"math"
	"testing"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/legs"
	fake "github.com/adammck/crab/fake/terrain"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	groundY = 100.0
	radius  = 12.0
	dt      = 1.0 / 60
)

func hold(intents ...controller.Intent) *controller.Script {
	return &controller.Script{
		Steps: []controller.Step{
			{At: 0, Intents: intents},
		},
	}
}

func walkPath(name string) *limbpath.LimbPath {
	return limbpath.New(name, math2d.Vector{X: 6, Y: 8}, 0, []math2d.Vector{
		{X: -12, Y: 0},
		{X: 0, Y: -4},
		{X: 12, Y: 0},
		{X: 0, Y: 4},
	}, [limbpath.SpeedCount]float64{2, 4, 6}, 6000)
}

// world returns a world with flat ground, and a legless crab standing on it.
func world(t *testing.T) (*core.World, *Crab) {
	w := core.NewWorld(fake.NewFlat(groundY), dt)

	b := core.NewBody("crab", 20, radius)
	b.SetPosition(math2d.Vector{X: 0, Y: groundY - radius})
	c := New("crab", b)
	w.Add(c)

	return w, c
}

// walker adds a leg to each side of the crab, with mirrored joints and the same
// walk path.
func walker(t *testing.T, c *Crab) {
	for _, s := range []Side{LEFTSIDE, RIGHTSIDE} {
		x := 4.0
		if s == LEFTSIDE {
			x = -4
		}

		leg := legs.New(fmt.Sprintf("%v leg", s), math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
		leg.Mass = 5
		leg.ParentOffset = math2d.Vector{X: x, Y: 4}

		c.Paths[s][FGROUND][WALK] = walkPath(fmt.Sprintf("%v walk", s))
		require.NoError(t, c.SetAttachmentSlot(LegSlot(s, FGROUND), NewLimb(leg, atoms.NewFoot("foot", 1))))
	}
}

func run(t *testing.T, w *core.World, seconds float64, each func()) {
	n := int(math.Round(seconds / w.Context.DeltaTime))
	for i := 0; i < n; i++ {
		require.NoError(t, w.Tick())
		if each != nil {
			each()
		}
	}
}

func TestWalk(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	c.StuckTime = 0
	c.Controller.Source = hold(controller.MoveRight)
	require.NoError(t, w.Boot())

	strides := 0
	c.OnStride = func() { strides += 1 }

	before := [SideCount]math2d.Vector{}
	for s := Side(0); s < SideCount; s++ {
		before[s] = c.Limb(s, FGROUND).Feet.LimbPos()
	}

	run(t, w, 2, nil)

	assert.Equal(t, WALK, c.MoveState)
	assert.Greater(t, c.Body().Position().X, 0.0)

	for s := Side(0); s < SideCount; s++ {
		// The first restart begins the first stride.
		assert.GreaterOrEqual(t, c.Strides(s), 3, "strides on side %v", s)

		after := c.Limb(s, FGROUND).Feet.LimbPos()
		assert.Greater(t, after.X-before[s].X, 0.0, "foot on side %v", s)
	}

	assert.GreaterOrEqual(t, strides, 3)
}

func TestStridesCountFrontLegs(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	for _, s := range []Side{LEFTSIDE, RIGHTSIDE} {
		leg := legs.New(fmt.Sprintf("%v back leg", s), math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
		leg.Mass = 5
		leg.ParentOffset = c.Limb(s, FGROUND).Leg.ParentOffset

		c.Paths[s][BGROUND][WALK] = walkPath(fmt.Sprintf("%v back walk", s))
		require.NoError(t, c.SetAttachmentSlot(LegSlot(s, BGROUND), NewLimb(leg, atoms.NewFoot("foot", 1))))
	}

	c.StuckTime = 0
	c.Controller.Source = hold(controller.MoveRight)
	require.NoError(t, w.Boot())

	// Count the times each front path goes back to its start.
	wraps := [SideCount]int{}
	prev := [SideCount]float64{}
	run(t, w, 3, func() {
		for s := Side(0); s < SideCount; s++ {
			p := c.Paths[s][FGROUND][WALK].GetRegularProgress()
			if p < prev[s] {
				wraps[s] += 1
			}
			prev[s] = p
		}
	})

	for s := Side(0); s < SideCount; s++ {
		require.Greater(t, wraps[s], 1, "side %v", s)

		// The back legs restart as often, but aren't counted.
		assert.GreaterOrEqual(t, c.Strides(s), wraps[s], "side %v", s)
		assert.LessOrEqual(t, c.Strides(s), wraps[s]+2, "side %v", s)
	}
}

func TestStrideAlternation(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	c.StuckTime = 0
	c.Controller.Source = hold(controller.MoveRight)
	require.NoError(t, w.Boot())

	both := 0
	run(t, w, 3, func() {
		if c.strideStart[LEFTSIDE] && c.strideStart[RIGHTSIDE] {
			both += 1
		} else {
			both = 0
		}
		require.LessOrEqual(t, both, 1, "both sides pending at %.2fs", w.Context.SimTime)
	})
}

func TestPartners(t *testing.T) {
	_, c := world(t)

	add := func(s Side, l Layer) {
		leg := legs.New("leg", math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
		require.NoError(t, c.SetAttachmentSlot(LegSlot(s, l), NewLimb(leg, atoms.NewFoot("foot", 1))))
	}

	add(LEFTSIDE, FGROUND)
	_, _, ok := c.partner(LEFTSIDE, FGROUND)
	assert.False(t, ok)
	assert.True(t, c.leads(LEFTSIDE, FGROUND))

	add(RIGHTSIDE, FGROUND)
	s, l, ok := c.partner(RIGHTSIDE, FGROUND)
	assert.True(t, ok)
	assert.Equal(t, LEFTSIDE, s)
	assert.Equal(t, FGROUND, l)
	assert.True(t, c.leads(LEFTSIDE, FGROUND))
	assert.False(t, c.leads(RIGHTSIDE, FGROUND))

	add(LEFTSIDE, BGROUND)
	add(RIGHTSIDE, BGROUND)
	s, l, ok = c.partner(RIGHTSIDE, FGROUND)
	assert.True(t, ok)
	assert.Equal(t, RIGHTSIDE, s)
	assert.Equal(t, BGROUND, l)
	assert.True(t, c.leads(LEFTSIDE, FGROUND))
	assert.False(t, c.leads(LEFTSIDE, BGROUND))
	assert.True(t, c.leads(RIGHTSIDE, BGROUND))
	assert.False(t, c.leads(RIGHTSIDE, FGROUND))
}

func TestStand(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	require.NoError(t, w.Boot())

	run(t, w, 0.5, nil)
	assert.Equal(t, STAND, c.MoveState)

	// Standing terminates the walk paths, so walking starts a new stride.
	for s := Side(0); s < SideCount; s++ {
		assert.True(t, c.Paths[s][FGROUND][WALK].PathEnded())
	}
}

func TestFlipOnOppositeMove(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	c.Controller.Source = hold(controller.MoveLeft)
	require.NoError(t, w.Boot())

	run(t, w, 0.1, nil)
	assert.True(t, c.Body().HFlipped())
	assert.True(t, c.Paths[LEFTSIDE][FGROUND][WALK].HFlipped())
}

func TestWalkBackwardsWhileAiming(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	c.Controller.Source = hold(controller.MoveLeft, controller.AimSharp)
	require.NoError(t, w.Boot())

	run(t, w, 0.1, nil)
	assert.False(t, c.Body().HFlipped())
	assert.True(t, c.Paths[LEFTSIDE][FGROUND][WALK].HFlipped())
}

func TestDislodge(t *testing.T) {
	w, c := world(t)
	c.StuckTime = 0.5
	c.Controller.Source = hold(controller.MoveRight)
	require.NoError(t, w.Boot())

	// No legs, so walking goes nowhere.
	for i := 0; i < 60 && c.MoveState != DISLODGE; i++ {
		require.NoError(t, w.Tick())
	}
	require.Equal(t, DISLODGE, c.MoveState)

	require.NoError(t, w.Tick())
	assert.Less(t, c.Body().Vel().Y, 0.0)

	run(t, w, c.DislodgeTime+0.1, nil)
	assert.NotEqual(t, DISLODGE, c.MoveState)
}

func TestJump(t *testing.T) {
	w, c := world(t)
	jet := NewJetpack("jetpack", 5, 500, 2)
	require.NoError(t, c.SetAttachmentSlot(JetpackSlot, jet))
	c.Controller.Source = &controller.Script{
		Steps: []controller.Step{
			{At: 0, Intents: []controller.Intent{controller.BodyJump}},
			{At: 0.5},
		},
	}
	require.NoError(t, w.Boot())

	run(t, w, 0.5, nil)
	assert.Equal(t, JUMP, c.MoveState)
	assert.Less(t, c.Body().Position().Y, groundY-radius-1)
	assert.Less(t, jet.JetTimeLeft(), 2.0)

	run(t, w, 3, nil)
	assert.Equal(t, STAND, c.MoveState)
	assert.True(t, c.Body().Grounded())
}

func TestJumpNeedsFuel(t *testing.T) {
	w, c := world(t)
	jet := NewJetpack("jetpack", 5, 1000, 0)
	require.NoError(t, c.SetAttachmentSlot(JetpackSlot, jet))
	c.Controller.Source = hold(controller.BodyJump)
	require.NoError(t, w.Boot())

	run(t, w, 0.2, nil)
	assert.Equal(t, STAND, c.MoveState)
}

func TestAimLimits(t *testing.T) {
	w, c := world(t)
	c.Controller.Source = hold(controller.AimUp)
	require.NoError(t, w.Boot())

	run(t, w, 2, nil)
	assert.InDelta(t, c.AimRangeUpperLimit, c.AimAngle, 1e-9)

	c.Controller.Source = hold(controller.AimDown)
	run(t, w, 2, nil)
	assert.InDelta(t, -c.AimRangeLowerLimit, c.AimAngle, 1e-9)
}

func TestAnalogAim(t *testing.T) {
	w, c := world(t)
	c.Controller.Source = &controller.Script{
		Steps: []controller.Step{
			{At: 0, Aim: math2d.Vector{X: -1, Y: -1}},
		},
	}
	require.NoError(t, w.Boot())

	run(t, w, 0.1, nil)
	assert.True(t, c.Body().HFlipped())
	assert.InDelta(t, math.Pi/4, c.AimAngle, 1e-6)

	// Up and to the left, when facing left.
	v := c.AimVector(c.AimAngle, 10)
	assert.InDelta(t, -7.071, v.X, 1e-3)
	assert.InDelta(t, -7.071, v.Y, 1e-3)
}

func TestFire(t *testing.T) {
	w, c := world(t)
	gun := NewDevice("gun", 5, 10)
	require.NoError(t, c.SetAttachmentSlot(TurretSlot, NewTurret("turret", 5, gun)))
	c.Controller.Source = hold(controller.WeaponFire)
	require.NoError(t, w.Boot())

	run(t, w, 0.6, nil)
	assert.Equal(t, 5, gun.ShotsFired)
	assert.True(t, gun.IsReloading())

	run(t, w, 1.2, nil)
	assert.Greater(t, gun.ShotsFired, 5)
}

func TestDyingCrabStops(t *testing.T) {
	w, c := world(t)
	walker(t, c)
	c.Controller.Source = hold(controller.MoveRight)
	require.NoError(t, w.Boot())

	c.Body().Root().AddDamage(1000)
	run(t, w, 0.5, nil)

	assert.Equal(t, core.DYING, c.Body().Status)
	assert.True(t, c.Controller.Disabled)
	assert.Equal(t, STAND, c.MoveState)
}

func TestUnknownMoveState(t *testing.T) {
	w, c := world(t)
	c.MoveState = MoveState(99)
	c.prevState = c.MoveState
	assert.Error(t, c.Tick(w.Context))
}

func TestBootNeedsWalkPaths(t *testing.T) {
	_, c := world(t)
	leg := legs.New("leg", math2d.Vector{X: 0, Y: 4}, math2d.Vector{X: 0, Y: 12})
	require.NoError(t, c.SetAttachmentSlot(LeftFGLeg, NewLimb(leg, atoms.NewFoot("foot", 1))))
	assert.Error(t, c.Boot())
}
