package terrain

import (
	"math"
	"sort"

	"github.com/adammck/crab/math2d"
	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"
)

const (

	// How far back from a hit (in pixels) the last free position is.
	freeEpsilon = 0.01

	// Step (in pixels) used when a ray grazes a surface and has to be walked.
	marchStep = 0.5

	// Limit of how many materials a strength ray passes through.
	maxStrengthHops = 64
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "terrain",
})

type block struct {
	min math2d.Vector
	max math2d.Vector
	mat Material
}

// Space is a Terrain backed by a chipmunk space full of static segments. The
// ground is a polyline, below which everything is solid. Blocks are solid
// rectangles on top of that.
type Space struct {
	space  *cp.Space
	ground []math2d.Vector
	blocks []block

	groundMat Material
}

func NewSpace() *Space {
	return &Space{
		space: cp.NewSpace(),
	}
}

func vec(v math2d.Vector) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func unvec(v cp.Vector) math2d.Vector {
	return math2d.Vector{X: v.X, Y: v.Y}
}

func (s *Space) addSegment(a, b math2d.Vector, m Material) {
	shape := cp.NewSegment(s.space.StaticBody, vec(a), vec(b), 0)
	shape.SetFriction(1)
	shape.UserData = m
	s.space.AddShape(shape)
}

// AddGround sets the surface of the ground. Points are sorted by X, and the
// ground extends flat beyond the first and last of them.
func (s *Space) AddGround(points []math2d.Vector, m Material) {
	pts := make([]math2d.Vector, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		return pts[i].X < pts[j].X
	})

	if len(pts) == 0 {
		return
	}

	// Extend the edges far enough that nothing walks off them.
	far := 1e6
	pts = append([]math2d.Vector{{X: pts[0].X - far, Y: pts[0].Y}}, pts...)
	pts = append(pts, math2d.Vector{X: pts[len(pts)-1].X + far, Y: pts[len(pts)-1].Y})

	for i := 1; i < len(pts); i++ {
		s.addSegment(pts[i-1], pts[i], m)
	}

	s.ground = pts
	s.groundMat = m
	log.Debugf("ground with %d points", len(points))
}

// AddFlatGround is AddGround with a horizontal surface at y.
func (s *Space) AddFlatGround(y float64, m Material) {
	s.AddGround([]math2d.Vector{{X: 0, Y: y}}, m)
}

// AddBlock adds a solid rectangle.
func (s *Space) AddBlock(min, max math2d.Vector, m Material) {
	a := min
	b := math2d.Vector{X: max.X, Y: min.Y}
	c := max
	d := math2d.Vector{X: min.X, Y: max.Y}

	s.addSegment(a, b, m)
	s.addSegment(b, c, m)
	s.addSegment(c, d, m)
	s.addSegment(d, a, m)

	s.blocks = append(s.blocks, block{min, max, m})
}

// GroundY returns the Y coordinate of the ground surface at x.
func (s *Space) GroundY(x float64) float64 {
	if len(s.ground) == 0 {
		return math.Inf(1)
	}

	i := sort.Search(len(s.ground), func(i int) bool {
		return s.ground[i].X >= x
	})

	if i == 0 {
		return s.ground[0].Y
	}
	if i >= len(s.ground) {
		return s.ground[len(s.ground)-1].Y
	}

	a := s.ground[i-1]
	b := s.ground[i]
	if b.X == a.X {
		return math.Min(a.Y, b.Y)
	}

	r := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*r
}

func (s *Space) materialAt(p math2d.Vector) (Material, bool) {
	for _, b := range s.blocks {
		if p.X > b.min.X && p.X < b.max.X && p.Y > b.min.Y && p.Y < b.max.Y {
			return b.mat, true
		}
	}

	if p.Y > s.GroundY(p.X) {
		return s.groundMat, true
	}

	return Air, false
}

// IsSolid returns true if the point is strictly inside terrain. Points exactly
// on a surface are free.
func (s *Space) IsSolid(p math2d.Vector) bool {
	_, ok := s.materialAt(p)
	return ok
}

// Material returns the material at the point, or Air.
func (s *Space) Material(p math2d.Vector) Material {
	m, _ := s.materialAt(p)
	return m
}

func (s *Space) CastObstacleRay(start, ray math2d.Vector) (math2d.Vector, float64) {
	l := ray.Magnitude()
	u := ray.Unit()

	if s.IsSolid(start) {
		return start, 0
	}

	if l == 0 {
		return start, -1
	}

	// Starting on a surface and heading into it. The segment query doesn't
	// count those, since the ray never crosses the line.
	if s.IsSolid(start.Add(u.MultiplyByScalar(math.Min(marchStep, l)))) {
		return start, 0
	}

	end := start.Add(ray)
	q := s.space.SegmentQueryFirst(vec(start), vec(end), 0, cp.SHAPE_FILTER_ALL)
	if q.Shape != nil {
		d := l * q.Alpha
		free := unvec(q.Point).Subtract(u.MultiplyByScalar(freeEpsilon))
		if d <= freeEpsilon {
			return start, 0
		}
		return free, d
	}

	// Grazing rays can slip along a surface without crossing it. Walk them.
	if s.IsSolid(end) {
		prev := start
		for d := marchStep; d < l; d += marchStep {
			p := start.Add(u.MultiplyByScalar(d))
			if s.IsSolid(p) {
				return prev, d
			}
			prev = p
		}
		return prev, l
	}

	return end, -1
}

func (s *Space) CastStrengthRay(start, ray math2d.Vector, strength float64) (math2d.Vector, bool) {
	if m, ok := s.materialAt(start); ok && m.Strength > strength {
		return start, true
	}

	u := ray.Unit()
	end := start.Add(ray)
	from := start

	for i := 0; i < maxStrengthHops; i++ {
		q := s.space.SegmentQueryFirst(vec(from), vec(end), 0, cp.SHAPE_FILTER_ALL)
		if q.Shape == nil {
			return end, false
		}

		m, _ := q.Shape.UserData.(Material)
		if m.Strength > strength {
			return unvec(q.Point), true
		}

		from = unvec(q.Point).Add(u.MultiplyByScalar(marchStep))
		if from.Subtract(start).Magnitude() >= ray.Magnitude() {
			break
		}
	}

	return end, false
}

func (s *Space) GetAltitude(p math2d.Vector, max float64) float64 {
	_, d := s.CastObstacleRay(p, math2d.Vector{X: 0, Y: max})
	if d < 0 {
		return max
	}
	return d
}

// NearestSurface returns the closest point on any terrain surface within max
// pixels of p.
func (s *Space) NearestSurface(p math2d.Vector, max float64) (math2d.Vector, bool) {
	q := s.space.PointQueryNearest(vec(p), max, cp.SHAPE_FILTER_ALL)
	if q == nil || q.Shape == nil {
		return p, false
	}
	return unvec(q.Point), true
}
