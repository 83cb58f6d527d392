package controller

import (
	"github.com/adammck/crab/math2d"
)

// Step holds some intents from its start time until the start of the next
// step.
type Step struct {
	At      float64
	Intents []Intent
	Aim     math2d.Vector
}

// Script is a Source which replays a fixed list of steps. Steps must be in
// order of their start time.
type Script struct {
	Steps []Step

	// Repeat the script every Loop seconds, if nonzero.
	Loop float64
}

func (s *Script) Read(now float64, st *State) {
	if s.Loop > 0 && now >= s.Loop {
		now -= float64(int(now/s.Loop)) * s.Loop
	}

	var cur *Step
	for i := range s.Steps {
		if s.Steps[i].At > now {
			break
		}
		cur = &s.Steps[i]
	}

	if cur == nil {
		return
	}

	for _, i := range cur.Intents {
		st.Set(i, true)
	}

	st.AnalogAim = cur.Aim
}
