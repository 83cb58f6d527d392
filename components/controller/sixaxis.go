package controller

import (
	"io"

	"github.com/adammck/sixaxis"
)

const (

	// Stick values (-127..127) smaller than this are ignored.
	stickDeadzone = 24

	// The left stick must be pushed up this far to jump.
	jumpThreshold = 64
)

// Sixaxis reads intents from a PS3 controller.
type Sixaxis struct {
	sa *sixaxis.SA

	square Latch

	// Set when START is pressed. The owner should shut down.
	Quit bool
}

func NewSixaxis(r io.Reader) *Sixaxis {
	return &Sixaxis{
		sa: sixaxis.New(r),
	}
}

// Boot starts reading events from the controller in the background.
func (s *Sixaxis) Boot() error {
	go s.sa.Run()
	return nil
}

func (s *Sixaxis) Read(now float64, st *State) {
	lx := float64(s.sa.LeftStick.X)
	ly := float64(s.sa.LeftStick.Y)

	if lx < -stickDeadzone {
		st.Set(MoveLeft, true)
	} else if lx > stickDeadzone {
		st.Set(MoveRight, true)
	}

	st.AnalogMove.X = lx / 127.0
	st.AnalogMove.Y = ly / 127.0

	// Up on the stick is negative.
	if ly < -jumpThreshold {
		st.Set(BodyJump, true)
	}

	if s.sa.Up > 0 {
		st.Set(AimUp, true)
	}

	if s.sa.Down > 0 {
		st.Set(AimDown, true)
	}

	if rx := float64(s.sa.RightStick.X); rx < -stickDeadzone || rx > stickDeadzone {
		st.AnalogAim.X = rx / 127.0
	}

	fire := s.sa.Square > 0
	st.Set(WeaponFire, fire)
	if s.square.Run(fire) {
		st.Set(PressFacebutton, true)
	}

	if s.sa.Start && !s.Quit {
		log.Infof("pressed START, shutting down")
		s.Quit = true
	}
}
