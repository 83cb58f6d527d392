package math2d

import (
	"fmt"

	"github.com/adammck/crab/utils"
)

// Matrix is the rotation of a body in the scene, plus whether it is mirrored
// horizontally. Mirroring is applied before the rotation.
type Matrix struct {
	Radians float64
	FlipX   bool
}

var (
	IdentityMatrix = Matrix{}
)

func MakeMatrix(rad float64, flip bool) *Matrix {
	return &Matrix{rad, flip}
}

func (m Matrix) String() string {
	return fmt.Sprintf("&Mat{r=%+.2f° flip=%v}", utils.Deg(m.Radians), m.FlipX)
}

// Inverse returns a matrix which undoes this one.
func (m Matrix) Inverse() Matrix {
	if m.FlipX {
		return Matrix{m.Radians, true}
	}
	return Matrix{-m.Radians, false}
}

// Degrees returns the rotation in degrees.
func (m Matrix) Degrees() float64 {
	return utils.Deg(m.Radians)
}
