package limbpath

import (
	"fmt"
	"math"

	"github.com/adammck/crab/math2d"
	"github.com/sirupsen/logrus"
)

type Speed int

const (
	SLOW Speed = iota
	NORMAL
	FAST
	SpeedCount
)

func (s Speed) String() string {
	switch s {
	case SLOW:
		return "SLOW"
	case NORMAL:
		return "NORMAL"
	case FAST:
		return "FAST"
	}
	return fmt.Sprintf("Speed(%d)", int(s))
}

const (

	// How close (in pixels) the limb must get to the end of a segment before the
	// next one is targeted.
	segmentReachedDistance = 1.5

	// How close the limb must be to a static point to consider the path ended.
	staticReachedDistance = 1.0

	// A segment which takes this many times longer than expected to traverse is
	// considered stuck, and the path is terminated.
	stuckSegmentFactor = 2.0

	// The push force grows by its own value over this many seconds spent on the
	// same segment.
	pushForceGrowthTime = 0.5

	// How long (in seconds) the limb takes to settle onto a static point.
	staticSettleTime = 0.020
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "limbpath",
})

// Terrain is the subset of the scene which a path needs to find a free place
// to restart.
type Terrain interface {
	CastObstacleRay(start, ray math2d.Vector) (math2d.Vector, float64)
}

// LimbPath is a piecewise path which the end of a limb (a foot or hand) should
// follow, relative to the joint which the limb is attached to.
type LimbPath struct {
	Name string

	// Where the path starts, relative to the joint.
	StartOffset math2d.Vector

	// The number of segments at the start of the path which are only used to
	// get the limb into position. Progress along them isn't regular progress.
	StartSegCount int

	// Each segment is an offset from the end of the previous one.
	Segments []math2d.Vector

	// The number of segments (counted from the end) during which the foot should
	// not collide with terrain, or -1 if it always should.
	EndSegCount int

	// Forces foot collisions off for the entire path.
	CollisionsDisabled bool

	// Travel speed (in m/s) for each of the presets.
	TravelSpeed [SpeedCount]float64

	// The force (in kg*m/s^2) which the limb can push with.
	PushForce float64

	// One-shot paths hold at their end rather than starting over.
	OneShot bool

	whichSpeed Speed

	jointPos math2d.Vector
	jointVel math2d.Vector
	rotation float64
	hflipped bool

	// Simulated seconds left to spend on this frame.
	timeLeft float64

	// Seconds spent on the whole path, and the current segment.
	pathTime float64
	segTime  float64

	currentSeg  int
	segProgress float64

	totalLength   float64
	regularLength float64

	ended bool
}

// New returns a path with the given segments, which has been reset to its
// start.
func New(name string, start math2d.Vector, startSegs int, segs []math2d.Vector, speeds [SpeedCount]float64, push float64) *LimbPath {
	lp := &LimbPath{
		Name:          name,
		StartOffset:   start,
		StartSegCount: startSegs,
		Segments:      segs,
		EndSegCount:   -1,
		TravelSpeed:   speeds,
		PushForce:     push,
		whichSpeed:    NORMAL,
	}

	lp.Init()
	return lp
}

// Create returns a deep copy of the reference path, reset to its start.
func Create(ref *LimbPath) *LimbPath {
	lp := *ref
	if ref.Segments != nil {
		lp.Segments = make([]math2d.Vector, len(ref.Segments))
		copy(lp.Segments, ref.Segments)
	}
	lp.Init()
	return &lp
}

// Init derives the cached lengths from the segments, and resets progress. It
// must be called after the exported fields are changed.
func (lp *LimbPath) Init() {
	if lp.StartSegCount > len(lp.Segments) {
		lp.StartSegCount = len(lp.Segments)
	}

	if lp.StartSegCount < 0 {
		lp.StartSegCount = 0
	}

	lp.totalLength = 0
	lp.regularLength = 0
	for i, s := range lp.Segments {
		m := s.Magnitude()
		lp.totalLength += m
		if i >= lp.StartSegCount {
			lp.regularLength += m
		}
	}

	if lp.whichSpeed < 0 || lp.whichSpeed >= SpeedCount {
		lp.whichSpeed = NORMAL
	}

	lp.Reset()
}

func (lp *LimbPath) String() string {
	return fmt.Sprintf("LimbPath{%s seg=%d/%d prog=%.2f ended=%v}", lp.Name, lp.currentSeg, len(lp.Segments), lp.segProgress, lp.ended)
}

// IsStaticPoint returns true if the path has no length, so the limb should
// simply hold at the start offset.
func (lp *LimbPath) IsStaticPoint() bool {
	return lp.totalLength == 0
}

func (lp *LimbPath) SetJointPos(p math2d.Vector) {
	lp.jointPos = p
}

func (lp *LimbPath) SetJointVel(v math2d.Vector) {
	lp.jointVel = v
}

// SetRotation sets the rotation (in radians) of the body the path is attached
// to.
func (lp *LimbPath) SetRotation(rad float64) {
	lp.rotation = rad
}

// SetHFlip mirrors the path horizontally. Progress is unaffected.
func (lp *LimbPath) SetHFlip(flip bool) {
	lp.hflipped = flip
}

func (lp *LimbPath) HFlipped() bool {
	return lp.hflipped
}

// SetFrameTime sets the amount of simulated time (in seconds) which the limb
// has to travel along the path this frame.
func (lp *LimbPath) SetFrameTime(dt float64) {
	if dt < 0 {
		dt = 0
	}

	lp.timeLeft = dt
	lp.pathTime += dt
	lp.segTime += dt
}

// FrameDone returns true when all of the time set by SetFrameTime has been
// consumed.
func (lp *LimbPath) FrameDone() bool {
	return lp.timeLeft <= 0
}

func (lp *LimbPath) SetSpeed(s Speed) {
	if s < 0 || s >= SpeedCount {
		return
	}
	lp.whichSpeed = s
}

func (lp *LimbPath) WhichSpeed() Speed {
	return lp.whichSpeed
}

// OverrideSpeed replaces the travel speed (in m/s) of a preset.
func (lp *LimbPath) OverrideSpeed(s Speed, v float64) {
	if s < 0 || s >= SpeedCount {
		return
	}
	lp.TravelSpeed[s] = v
}

// Speed returns the travel speed (in m/s) of the current preset.
func (lp *LimbPath) Speed() float64 {
	return lp.TravelSpeed[lp.whichSpeed]
}

// GetPushForce returns the force which the limb may push with. It grows the
// longer the limb is stuck on a single segment.
func (lp *LimbPath) GetPushForce() float64 {
	return lp.PushForce + lp.PushForce*(lp.segTime/pushForceGrowthTime)
}

func (lp *LimbPath) GetDefaultPushForce() float64 {
	return lp.PushForce
}

// GetTotalPathTime returns the time (in seconds) it takes to traverse the whole
// path at the current speed, without obstacles.
func (lp *LimbPath) GetTotalPathTime() float64 {
	s := lp.Speed()
	if s <= 0 {
		return math.Inf(1)
	}
	return lp.totalLength * math2d.MetersPerPixel / s
}

// GetRegularPathTime is like GetTotalPathTime, minus the start segments.
func (lp *LimbPath) GetRegularPathTime() float64 {
	s := lp.Speed()
	if s <= 0 {
		return math.Inf(1)
	}
	return lp.regularLength * math2d.MetersPerPixel / s
}

// GetTotalTimeProgress returns how far through the path we should be, given
// the time spent on it.
func (lp *LimbPath) GetTotalTimeProgress() float64 {
	if lp.ended {
		return 0
	}
	return lp.pathTime / lp.GetTotalPathTime()
}

func (lp *LimbPath) matrix(flip bool) math2d.Matrix {
	return math2d.Matrix{Radians: lp.rotation, FlipX: flip}
}

func (lp *LimbPath) localPos(seg int, prog float64) math2d.Vector {
	v := lp.StartOffset
	for i := 0; i < seg && i < len(lp.Segments); i++ {
		v = v.Add(lp.Segments[i])
	}

	if seg < len(lp.Segments) {
		v = v.Add(lp.Segments[seg].MultiplyByScalar(prog))
	}

	return v
}

// GetLimbPos returns the scene position of the current progress along the
// path, mirrored if hflip is true. It doesn't advance the path.
func (lp *LimbPath) GetLimbPos(hflip bool) math2d.Vector {
	if lp.IsStaticPoint() {
		return lp.jointPos.Add(lp.StartOffset.MultiplyByMatrix(lp.matrix(hflip)))
	}
	return lp.jointPos.Add(lp.localPos(lp.currentSeg, lp.segProgress).MultiplyByMatrix(lp.matrix(hflip)))
}

// GetProgressPos is GetLimbPos using the path's own flip.
func (lp *LimbPath) GetProgressPos() math2d.Vector {
	return lp.GetLimbPos(lp.hflipped)
}

// GetCurrentSegTarget returns the scene position of the end of the current
// segment.
func (lp *LimbPath) GetCurrentSegTarget() math2d.Vector {
	if lp.IsStaticPoint() {
		return lp.GetProgressPos()
	}
	return lp.jointPos.Add(lp.localPos(lp.currentSeg, 1).MultiplyByMatrix(lp.matrix(lp.hflipped)))
}

// GetStartPos returns the scene position which the path starts at.
func (lp *LimbPath) GetStartPos() math2d.Vector {
	return lp.jointPos.Add(lp.StartOffset.MultiplyByMatrix(lp.matrix(lp.hflipped)))
}

// Points returns the scene positions of the start of the path and the end of
// each segment, as of the last joint position.
func (lp *LimbPath) Points() []math2d.Vector {
	m := lp.matrix(lp.hflipped)
	pp := make([]math2d.Vector, 0, len(lp.Segments)+1)
	pp = append(pp, lp.GetStartPos())

	for i := range lp.Segments {
		pp = append(pp, lp.jointPos.Add(lp.localPos(i, 1).MultiplyByMatrix(m)))
	}

	return pp
}

// GetCurrentVel returns the velocity (in m/s) which a limb at the given
// position should move at, to follow the path.
func (lp *LimbPath) GetCurrentVel(limbPos math2d.Vector) math2d.Vector {
	dist := lp.GetCurrentSegTarget().Subtract(limbPos)
	adjusted := lp.Speed() / (1.0 + lp.jointVel.Magnitude()*0.1)

	if lp.IsStaticPoint() {
		v := dist.MultiplyByScalar(math2d.MetersPerPixel / staticSettleTime)
		return v.CapMagnitude(adjusted).Add(lp.jointVel)
	}

	v := math2d.Vector{X: adjusted, Y: 0}
	if !dist.Zero() {
		v = dist.SetMagnitude(adjusted)
	}

	return v.Add(lp.jointVel)
}

// GetNextTimeChunk returns the time (in seconds) needed to reach the end of the
// current segment, capped to (and deducted from) what is left of the frame.
func (lp *LimbPath) GetNextTimeChunk(limbPos math2d.Vector) float64 {
	if lp.IsStaticPoint() {
		t := lp.timeLeft
		lp.timeLeft = 0
		return t
	}

	d := lp.GetCurrentSegTarget().Distance(limbPos) * math2d.MetersPerPixel
	s := lp.Speed() + lp.jointVel.Magnitude()

	t := lp.timeLeft
	if s > 0 {
		t = math.Min(d/s, lp.timeLeft)
	}

	lp.timeLeft -= t
	return t
}

// ReportProgress updates the progress along the path, given where the limb
// actually ended up after being pushed.
func (lp *LimbPath) ReportProgress(limbPos math2d.Vector) {
	if lp.IsStaticPoint() {
		lp.ended = lp.GetCurrentSegTarget().Distance(limbPos) < staticReachedDistance
		return
	}

	if lp.ended {
		return
	}

	dist := lp.GetCurrentSegTarget().Distance(limbPos)
	segMag := lp.Segments[lp.currentSeg].Magnitude()

	if dist < segmentReachedDistance {
		if lp.currentSeg+1 >= len(lp.Segments) {
			lp.segProgress = 1.0
			lp.ended = true
		} else {
			lp.currentSeg += 1
			lp.segProgress = 0
			lp.segTime = 0
		}
	} else if segMag > 0 {
		p := 0.0
		if dist < segMag {
			p = 1.0 - (dist / segMag)
		}

		// Progress within a segment never goes backwards, even if the limb is
		// knocked away from its target.
		lp.segProgress = math.Max(lp.segProgress, p)
	}

	if !lp.ended && lp.Speed() > 0 {
		expected := segMag * math2d.MetersPerPixel / lp.Speed()
		if lp.segTime > expected*stuckSegmentFactor {
			log.Debugf("%s stuck on segment %d for %.2fs, terminating", lp.Name, lp.currentSeg, lp.segTime)
			lp.Terminate()
		}
	}
}

func (lp *LimbPath) PathEnded() bool {
	return lp.ended
}

// PathIsAtStart returns true if no progress has been made since the path was
// (re)started.
func (lp *LimbPath) PathIsAtStart() bool {
	return lp.currentSeg == 0 && lp.segProgress == 0 && !lp.ended
}

// GetTotalProgress returns the progress (0..1) along the entire path, or zero
// if it has ended.
func (lp *LimbPath) GetTotalProgress() float64 {
	if lp.ended || lp.IsStaticPoint() {
		return 0
	}

	return lp.progressFrom(0) / lp.totalLength
}

// GetRegularProgress returns the progress (0..1) along the regular part of the
// path, i.e. excluding the start segments, or zero if it has ended.
func (lp *LimbPath) GetRegularProgress() float64 {
	if lp.ended || lp.IsStaticPoint() || lp.regularLength == 0 {
		return 0
	}

	p := lp.progressFrom(lp.StartSegCount) / lp.regularLength
	return math.Max(0, math.Min(1, p))
}

// progressFrom returns the distance (in pixels) travelled since the start of
// the given segment. It's negative if we're before that segment.
func (lp *LimbPath) progressFrom(first int) float64 {
	p := 0.0
	for i := first; i < lp.currentSeg; i++ {
		p += lp.Segments[i].Magnitude()
	}
	for i := lp.currentSeg; i < first; i++ {
		p -= lp.Segments[i].Magnitude()
	}

	if lp.currentSeg < len(lp.Segments) {
		p += lp.Segments[lp.currentSeg].Magnitude() * lp.segProgress
	}

	return p
}

// GetSegCount returns the number of segments in the path.
func (lp *LimbPath) GetSegCount() int {
	return len(lp.Segments)
}

// GetCurrentSegNumber returns the index of the segment being travelled, or
// zero if the path has ended.
func (lp *LimbPath) GetCurrentSegNumber() int {
	if lp.ended || lp.IsStaticPoint() {
		return 0
	}
	return lp.currentSeg
}

func (lp *LimbPath) SegProgress() float64 {
	return lp.segProgress
}

// FootCollisionsShouldBeDisabled returns true if the limb travelling along the
// path is currently on a segment where it should pass through terrain.
func (lp *LimbPath) FootCollisionsShouldBeDisabled() bool {
	if lp.CollisionsDisabled {
		return true
	}
	return lp.EndSegCount >= 0 && len(lp.Segments)-lp.currentSeg <= lp.EndSegCount
}

// Terminate jumps to the end of the path.
func (lp *LimbPath) Terminate() {
	if len(lp.Segments) > 0 {
		lp.currentSeg = len(lp.Segments) - 1
	} else {
		lp.currentSeg = 0
	}

	lp.segProgress = 1.0
	lp.ended = true
}

// Reset jumps to the start of the path.
func (lp *LimbPath) Reset() {
	lp.currentSeg = 0
	lp.segProgress = 0
	lp.pathTime = 0
	lp.segTime = 0
	lp.timeLeft = 0
	lp.ended = false
}

// ResetFree restarts the path at the first point along the start segments which
// isn't inside terrain, and returns the new limb position. If there is no such
// point, the path is left alone and false is returned.
func (lp *LimbPath) ResetFree(t Terrain, limbPos math2d.Vector) (math2d.Vector, bool) {
	prevSeg, prevProg, prevEnded := lp.currentSeg, lp.segProgress, lp.ended
	lp.segProgress = 0
	found := false

	if lp.IsStaticPoint() {
		target := lp.GetStartPos()
		begin := target.Add(math2d.Vector{X: 0, Y: -24})
		free, d := t.CastObstacleRay(begin, target.Subtract(begin))
		if d != 0 {
			found = true
			if d > 0 {
				limbPos = free
			} else {
				limbPos = target
			}
		}
	} else {
		lp.currentSeg = 0
		i := 0
		for ; i < lp.StartSegCount; i++ {
			free, d := t.CastObstacleRay(lp.GetProgressPos(), lp.Segments[lp.currentSeg].MultiplyByMatrix(lp.matrix(lp.hflipped)))

			// Obstacle after the first pixel means there is room on this one.
			if d > 0 {
				if m := lp.Segments[lp.currentSeg].Magnitude(); m > 0 {
					lp.segProgress = math.Min(1, lp.GetProgressPos().Distance(free)/m)
				}
				limbPos = lp.GetProgressPos()
				found = true
				break
			}

			// Obstacle right at the start; back up a segment, if there is one.
			if d == 0 {
				if lp.currentSeg > 0 {
					lp.currentSeg -= 1
					lp.segProgress = 0
					limbPos = lp.GetProgressPos()
					found = true
				}
				break
			}

			if lp.currentSeg+1 >= len(lp.Segments) {
				break
			}
			lp.currentSeg += 1
		}

		// Nothing in the way at all, so start on the first regular segment.
		if !found && i == lp.StartSegCount && lp.currentSeg < len(lp.Segments) {
			lp.segProgress = 0
			limbPos = lp.GetProgressPos()
			found = true
		}
	}

	if found {
		lp.ended = false
		lp.pathTime = 0
		lp.segTime = 0
		return limbPos, true
	}

	lp.currentSeg, lp.segProgress, lp.ended = prevSeg, prevProg, prevEnded
	return limbPos, false
}
