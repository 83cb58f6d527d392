package math2d

import (
	"fmt"
)

type Pose struct {
	Position Vector
	Rotation Matrix
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose{x=%+07.2f y=%+07.2f, r=%+07.2f}", p.Position.X, p.Position.Y, p.Rotation.Degrees())
}

// World transforms a vector in the pose's local space into the parent space.
func (p Pose) World(v Vector) Vector {
	return p.Position.Add(v.MultiplyByMatrix(p.Rotation))
}

// Local transforms a vector in the parent space into the pose's local space.
func (p Pose) Local(v Vector) Vector {
	return v.Subtract(p.Position).MultiplyByMatrix(p.Rotation.Inverse())
}

// Add returns the pose pp (expressed in this pose's space) in the parent
// space. A mirrored parent reverses the direction of the child's rotation.
func (p Pose) Add(pp Pose) Pose {
	r := pp.Rotation.Radians
	if p.Rotation.FlipX {
		r = -r
	}

	return Pose{
		Position: p.World(pp.Position),
		Rotation: Matrix{p.Rotation.Radians + r, p.Rotation.FlipX != pp.Rotation.FlipX},
	}
}
