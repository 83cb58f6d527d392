package controller

import (
	"fmt"

	"github.com/adammck/crab/math2d"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "controller",
})

// Intent is something that the thing being controlled should try to do this
// tick. Where it comes from (a person, a script, the AI) doesn't matter.
type Intent int

const (
	MoveLeft Intent = iota
	MoveRight
	MoveUp
	MoveDown
	MoveFast
	BodyJumpStart
	BodyJump
	BodyCrouch
	AimUp
	AimDown
	AimSharp
	WeaponFire
	WeaponReload
	PressFacebutton
	IntentCount
)

var intentNames = [IntentCount]string{
	"MOVE_LEFT",
	"MOVE_RIGHT",
	"MOVE_UP",
	"MOVE_DOWN",
	"MOVE_FAST",
	"BODY_JUMPSTART",
	"BODY_JUMP",
	"BODY_CROUCH",
	"AIM_UP",
	"AIM_DOWN",
	"AIM_SHARP",
	"WEAPON_FIRE",
	"WEAPON_RELOAD",
	"PRESS_FACEBUTTON",
}

func (i Intent) String() string {
	if i < 0 || i >= IntentCount {
		return fmt.Sprintf("Intent(%d)", int(i))
	}
	return intentNames[i]
}

// ParseIntent is the inverse of Intent.String.
func ParseIntent(s string) (Intent, error) {
	for i, n := range intentNames {
		if n == s {
			return Intent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown intent: %#v", s)
}

// State is the set of intents for one tick, plus the analog ones.
type State struct {
	flags [IntentCount]bool

	// Where to aim, relative to the body. The magnitude (0..1) is how hard.
	AnalogAim math2d.Vector

	// Analog movement, for things which can use it. -1..1 on each axis.
	AnalogMove math2d.Vector
}

func (s *State) Set(i Intent, v bool) {
	if i < 0 || i >= IntentCount {
		return
	}
	s.flags[i] = v
}

func (s *State) Is(i Intent) bool {
	if i < 0 || i >= IntentCount {
		return false
	}
	return s.flags[i]
}

// Clear resets every intent.
func (s *State) Clear() {
	s.flags = [IntentCount]bool{}
	s.AnalogAim = math2d.ZeroVector
	s.AnalogMove = math2d.ZeroVector
}

// Active returns the intents which are set, in order.
func (s *State) Active() []Intent {
	ii := []Intent{}
	for i, v := range s.flags {
		if v {
			ii = append(ii, Intent(i))
		}
	}
	return ii
}

// Source fills in the intents for one tick. The time is in simulated seconds.
type Source interface {
	Read(now float64, s *State)
}

// Controller holds the intents of one actor. If Source is nil, whoever owns the
// controller (usually an AI) sets the intents directly.
type Controller struct {
	State
	Source Source

	// A disabled controller has no intents at all.
	Disabled bool
}

func New(src Source) *Controller {
	return &Controller{
		Source: src,
	}
}

// IsPlayerControlled returns true if the intents are coming from a source,
// rather than being set by the owner.
func (c *Controller) IsPlayerControlled() bool {
	return c.Source != nil
}

// Update clears the intents and reads new ones from the source. Controllers
// without a source are only cleared, ready for the owner to fill in.
func (c *Controller) Update(now float64) {
	c.Clear()

	if c.Disabled || c.Source == nil {
		return
	}

	c.Source.Read(now, &c.State)
}

// Is returns false for every intent while the controller is disabled.
func (c *Controller) Is(i Intent) bool {
	if c.Disabled {
		return false
	}
	return c.State.Is(i)
}
