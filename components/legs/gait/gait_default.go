package gait

import (
	"math"
)

// Default is a short, fairly low stride.
var Default = Stride{
	Length:  12,
	Lift:    4,
	Samples: 6,
}

// bellEnd is the height of the bell curve at either end of the swing, which is
// subtracted so that the foot starts and ends on the ground.
var bellEnd = math.Pow(2, -math.Pow(math.E, 2))

// bell returns the lift ratio at x (0..1) through the swing. It peaks at 1 in
// the middle.
func bell(x float64) float64 {
	y := math.Pow(2, -math.Pow((x-0.5)*2*math.E, 2))
	return math.Max(0, (y-bellEnd)/(1-bellEnd))
}

// ease returns the forward ratio at x (0..1) through the swing. It's a sine from
// 0 to 1, so the foot is slowest at either end.
func ease(x float64) float64 {
	return 0.5 - (math.Cos(x*math.Pi) / 2)
}
