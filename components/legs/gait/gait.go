// Package gait generates walk paths from a few numbers, rather than listing
// every segment by hand.
package gait

import (
	"fmt"

	"github.com/adammck/crab/math2d"
)

// Frame is one sample of the swing of a foot. Both values are ratios (0..1):
// how far forward the foot has moved, and how high it has been lifted.
type Frame struct {
	Forward float64
	Lift    float64
}

type Frames []Frame

// Stride describes one walk cycle of a foot. The foot pushes straight back along
// the ground for Length pixels, then lifts (up to Lift pixels) and swings
// forward to where it started.
type Stride struct {
	Length float64 `yaml:"Length"`
	Lift   float64 `yaml:"Lift"`

	// Number of segments in the swing.
	Samples int `yaml:"Samples"`
}

func (s Stride) Validate() error {
	if s.Length <= 0 || s.Lift < 0 {
		return fmt.Errorf("bad stride: length=%v lift=%v", s.Length, s.Lift)
	}

	if s.Samples < 1 {
		return fmt.Errorf("stride needs at least one sample, got %d", s.Samples)
	}

	return nil
}

// Frames returns the swing, from the back of the stride (inclusive) to the
// front (inclusive).
func (s Stride) Frames() Frames {
	ff := make(Frames, s.Samples+1)
	for i := range ff {
		x := float64(i) / float64(s.Samples)
		ff[i] = Frame{
			Forward: ease(x),
			Lift:    bell(x),
		}
	}

	return ff
}

// Segments returns the path of the foot relative to the front of the stride,
// as segments which each start at the end of the previous one. The last one
// ends where the first started.
func (s Stride) Segments() []math2d.Vector {
	segs := []math2d.Vector{{X: -s.Length, Y: 0}}

	prev := math2d.Vector{X: -s.Length, Y: 0}
	for _, f := range s.Frames()[1:] {
		p := math2d.Vector{
			X: -s.Length + s.Length*f.Forward,
			Y: -s.Lift * f.Lift,
		}

		segs = append(segs, p.Subtract(prev))
		prev = p
	}

	return segs
}
