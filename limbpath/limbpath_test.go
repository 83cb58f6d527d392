package limbpath

import (
	"testing"

	faketerrain "github.com/adammck/crab/fake/terrain"
	"github.com/adammck/crab/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

func walkPath() *LimbPath {
	return New(
		"walk",
		math2d.Vector{X: 6, Y: 8},
		0,
		[]math2d.Vector{{X: -12, Y: 0}, {X: 0, Y: -4}, {X: 12, Y: 0}, {X: 0, Y: 4}},
		[SpeedCount]float64{0.5, 1, 2},
		100,
	)
}

// follow moves a limb along the path for one frame, as if nothing was in the
// way.
func follow(lp *LimbPath, pos math2d.Vector) math2d.Vector {
	lp.SetFrameTime(dt)
	for i := 0; i < 100 && !lp.FrameDone() && !lp.PathEnded(); i++ {
		v := lp.GetCurrentVel(pos)
		t := lp.GetNextTimeChunk(pos)
		pos = pos.Add(v.MultiplyByScalar(t * math2d.PixelsPerMeter))
		lp.ReportProgress(pos)
	}
	return pos
}

func TestRegularProgressMonotonic(t *testing.T) {
	lp := walkPath()
	lp.SetJointPos(math2d.Vector{X: 100, Y: 100})
	pos := lp.GetStartPos()

	prev := lp.GetRegularProgress()
	max := 0.0
	ticks := 0

	for ; ticks < 180 && !lp.PathEnded(); ticks++ {
		pos = follow(lp, pos)
		if lp.PathEnded() {
			break
		}

		p := lp.GetRegularProgress()
		assert.True(t, p >= prev, "tick %d: progress went from %.3f to %.3f", ticks, prev, p)
		assert.True(t, p <= 1)
		prev = p
		if p > max {
			max = p
		}
	}

	require.True(t, lp.PathEnded())
	assert.True(t, max > 0.9, "max progress was %.3f", max)

	// It took about as long as it should have.
	assert.InDelta(t, lp.GetTotalPathTime(), float64(ticks)*dt, 0.4)

	lp.Reset()
	assert.Equal(t, 0.0, lp.GetRegularProgress())
	assert.True(t, lp.PathIsAtStart())
	assert.False(t, lp.PathEnded())
}

func TestRegularProgressExcludesStartSegments(t *testing.T) {
	lp := New("start", math2d.ZeroVector, 1, []math2d.Vector{{X: 0, Y: 10}, {X: 10, Y: 0}}, [SpeedCount]float64{1, 1, 1}, 0)
	pos := lp.GetStartPos()

	for i := 0; i < 10; i++ {
		pos = follow(lp, pos)
	}

	require.Equal(t, 0, lp.GetCurrentSegNumber())
	assert.Equal(t, 0.0, lp.GetRegularProgress())
	assert.True(t, lp.GetTotalProgress() > 0)

	for i := 0; i < 20; i++ {
		pos = follow(lp, pos)
	}

	require.Equal(t, 1, lp.GetCurrentSegNumber())
	assert.True(t, lp.GetRegularProgress() > 0)
	assert.True(t, lp.GetRegularProgress() < lp.GetTotalProgress())
}

func TestFlipKeepsProgress(t *testing.T) {
	lp := walkPath()
	joint := math2d.Vector{X: 50, Y: 50}
	lp.SetJointPos(joint)
	pos := lp.GetStartPos()

	for i := 0; i < 10; i++ {
		pos = follow(lp, pos)
	}

	seg := lp.GetCurrentSegNumber()
	prog := lp.GetRegularProgress()
	a := lp.GetLimbPos(false)

	lp.SetHFlip(true)
	assert.Equal(t, seg, lp.GetCurrentSegNumber())
	assert.Equal(t, prog, lp.GetRegularProgress())

	b := lp.GetLimbPos(true)
	assert.InDelta(t, joint.X-(a.X-joint.X), b.X, 1e-9)
	assert.InDelta(t, a.Y, b.Y, 1e-9)
	assert.Equal(t, b, lp.GetProgressPos())
}

func TestGetLimbPosIsPure(t *testing.T) {
	lp := walkPath()
	lp.SetFrameTime(dt)
	a := lp.GetLimbPos(false)
	b := lp.GetLimbPos(false)
	assert.Equal(t, a, b)
	assert.True(t, lp.PathIsAtStart())
}

func TestStaticPoint(t *testing.T) {
	for _, segs := range [][]math2d.Vector{nil, {{X: 0, Y: 0}}} {
		lp := New("static", math2d.Vector{X: 3, Y: 4}, 0, segs, [SpeedCount]float64{1, 1, 1}, 0)
		lp.SetJointPos(math2d.Vector{X: 10, Y: 10})

		require.True(t, lp.IsStaticPoint())
		assert.Equal(t, math2d.Vector{X: 13, Y: 14}, lp.GetLimbPos(false))
		assert.Equal(t, math2d.Vector{X: 7, Y: 14}, lp.GetLimbPos(true))
		assert.Equal(t, 0.0, lp.GetRegularProgress())

		// Far away, so it hasn't ended. Then settle.
		lp.ReportProgress(math2d.Vector{X: 0, Y: 0})
		assert.False(t, lp.PathEnded())

		lp.ReportProgress(math2d.Vector{X: 13, Y: 14})
		assert.True(t, lp.PathEnded())

		lp.SetFrameTime(dt)
		assert.Equal(t, dt, lp.GetNextTimeChunk(math2d.ZeroVector))
		assert.True(t, lp.FrameDone())
	}
}

func TestCreateDeepCopies(t *testing.T) {
	ref := walkPath()
	ref.Terminate()

	lp := Create(ref)
	assert.False(t, lp.PathEnded())
	assert.True(t, lp.PathIsAtStart())

	lp.Segments[0].X = 99
	assert.Equal(t, -12.0, ref.Segments[0].X)
	assert.InDelta(t, ref.GetTotalPathTime(), lp.GetTotalPathTime(), 1e-9)
}

func TestCreateKeepsNilSegments(t *testing.T) {
	ref := New("stand", math2d.Vector{X: 0, Y: 10}, 0, nil, [SpeedCount]float64{}, 0)
	lp := Create(ref)
	assert.Nil(t, lp.Segments)
	assert.True(t, lp.IsStaticPoint())
}

func TestTerminate(t *testing.T) {
	lp := walkPath()
	lp.SetJointPos(math2d.Vector{X: 100, Y: 100})
	lp.Terminate()

	assert.True(t, lp.PathEnded())
	assert.Equal(t, 0.0, lp.GetRegularProgress())
	assert.Equal(t, 0, lp.GetCurrentSegNumber())

	// All of the segments sum to zero, so the end is the start.
	assert.Equal(t, lp.GetStartPos(), lp.GetLimbPos(false))
}

func TestSpeeds(t *testing.T) {
	lp := walkPath()
	assert.Equal(t, NORMAL, lp.WhichSpeed())
	assert.Equal(t, 1.0, lp.Speed())

	// Copies keep the preset of their reference.
	lp.SetSpeed(SLOW)
	assert.Equal(t, SLOW, Create(lp).WhichSpeed())
	lp.SetSpeed(NORMAL)

	// 32 pixels is 1.6 meters.
	assert.InDelta(t, 1.6, lp.GetTotalPathTime(), 1e-9)
	assert.InDelta(t, 1.6, lp.GetRegularPathTime(), 1e-9)

	lp.SetSpeed(FAST)
	assert.Equal(t, FAST, lp.WhichSpeed())
	assert.InDelta(t, 0.8, lp.GetTotalPathTime(), 1e-9)

	lp.OverrideSpeed(FAST, 4)
	assert.InDelta(t, 0.4, lp.GetTotalPathTime(), 1e-9)
	assert.Equal(t, 1.0, lp.TravelSpeed[NORMAL])

	// Out of range is ignored.
	lp.SetSpeed(Speed(7))
	assert.Equal(t, FAST, lp.WhichSpeed())
}

func TestFootCollisionsShouldBeDisabled(t *testing.T) {
	lp := walkPath()
	lp.EndSegCount = 2
	lp.SetJointPos(math2d.Vector{X: 100, Y: 100})
	pos := lp.GetStartPos()

	assert.False(t, lp.FootCollisionsShouldBeDisabled())

	for i := 0; i < 200 && lp.GetCurrentSegNumber() < 2 && !lp.PathEnded(); i++ {
		pos = follow(lp, pos)
	}

	assert.Equal(t, 2, lp.GetCurrentSegNumber())
	assert.True(t, lp.FootCollisionsShouldBeDisabled())

	lp.Reset()
	lp.CollisionsDisabled = true
	assert.True(t, lp.FootCollisionsShouldBeDisabled())
}

func TestStuckSegmentTerminates(t *testing.T) {
	lp := walkPath()
	pos := lp.GetStartPos()

	// The first segment should take 0.6s, so 1.2s means stuck.
	for i := 0; i < 70; i++ {
		lp.SetFrameTime(dt)
		lp.ReportProgress(pos)
		assert.False(t, lp.PathEnded(), "tick %d", i)
	}

	for i := 0; i < 10; i++ {
		lp.SetFrameTime(dt)
		lp.ReportProgress(pos)
	}

	assert.True(t, lp.PathEnded())
}

func TestPushForceGrows(t *testing.T) {
	lp := walkPath()
	assert.Equal(t, 100.0, lp.GetPushForce())

	lp.SetFrameTime(0.25)
	assert.InDelta(t, 150, lp.GetPushForce(), 1e-9)
	assert.Equal(t, 100.0, lp.GetDefaultPushForce())

	lp.Reset()
	assert.Equal(t, 100.0, lp.GetPushForce())
}

func TestResetFree(t *testing.T) {
	ft := faketerrain.NewFlat(100)

	lp := New("free", math2d.ZeroVector, 1, []math2d.Vector{{X: 0, Y: 20}, {X: 10, Y: 0}}, [SpeedCount]float64{1, 1, 1}, 0)
	lp.SetJointPos(math2d.Vector{X: 0, Y: 90})
	lp.Terminate()

	pos, ok := lp.ResetFree(ft, math2d.ZeroVector)
	require.True(t, ok)
	assert.False(t, lp.PathEnded())
	assert.Equal(t, 0, lp.GetCurrentSegNumber())
	assert.InDelta(t, 0.5, lp.SegProgress(), 1e-9)
	assert.InDelta(t, 100, pos.Y, 1e-9)

	// Nothing in the way, so skip the start segments.
	lp.SetJointPos(math2d.Vector{X: 0, Y: 0})
	pos, ok = lp.ResetFree(ft, math2d.ZeroVector)
	require.True(t, ok)
	assert.Equal(t, 1, lp.GetCurrentSegNumber())
	assert.InDelta(t, 20, pos.Y, 1e-9)

	// Buried.
	lp.SetJointPos(math2d.Vector{X: 0, Y: 150})
	lp.Terminate()
	_, ok = lp.ResetFree(ft, math2d.ZeroVector)
	assert.False(t, ok)
	assert.True(t, lp.PathEnded())
}

func TestPoints(t *testing.T) {
	lp := walkPath()
	lp.SetJointPos(math2d.Vector{X: 100, Y: 100})

	examples := []struct {
		flip bool
		exp  []math2d.Vector
	}{
		{false, []math2d.Vector{{X: 106, Y: 108}, {X: 94, Y: 108}, {X: 94, Y: 104}, {X: 106, Y: 104}, {X: 106, Y: 108}}},
		{true, []math2d.Vector{{X: 94, Y: 108}, {X: 106, Y: 108}, {X: 106, Y: 104}, {X: 94, Y: 104}, {X: 94, Y: 108}}},
	}

	for _, eg := range examples {
		lp.SetHFlip(eg.flip)
		pp := lp.Points()
		require.Len(t, pp, len(eg.exp))
		for i, p := range pp {
			assert.InDelta(t, eg.exp[i].X, p.X, 1e-9, "flip=%v point %d", eg.flip, i)
			assert.InDelta(t, eg.exp[i].Y, p.Y, 1e-9, "flip=%v point %d", eg.flip, i)
		}
	}
}
