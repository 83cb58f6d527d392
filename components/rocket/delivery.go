package rocket

import (
	"fmt"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/fsm"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
)

type DeliveryMode string

const (

	// Land, drop the cargo, and leave.
	DELIVER DeliveryMode = "DELIVER"

	// Land, and stay there with the cargo.
	STAY DeliveryMode = "STAY"
)

func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch m := DeliveryMode(s); m {
	case DELIVER, STAY:
		return m, nil
	}
	return "", fmt.Errorf("unknown delivery mode: %#v", s)
}

type Event string

const (
	Approach  Event = "Approach"
	Stuck     Event = "Stuck"
	Unload    Event = "Unload"
	Delivered Event = "Delivered"
	Done      Event = "Done"
	Timeout   Event = "Timeout"
)

type DeliveryState string

const (
	FALL    DeliveryState = "FALL"
	LAND    DeliveryState = "LAND"
	UNLOAD  DeliveryState = "UNLOAD"
	LAUNCH  DeliveryState = "LAUNCH"
	UNSTICK DeliveryState = "UNSTICK"
)

var DeliveryTable = fsm.NewTable[DeliveryState, Event]("delivery").
	Add(FALL, Approach, LAND).
	Add(FALL, Stuck, LAND).
	Add(LAND, Unload, UNLOAD).
	Add(LAND, Delivered, LAUNCH).
	Add(UNLOAD, Done, LAUNCH).
	Add(LAUNCH, Stuck, UNSTICK).
	Add(UNSTICK, Timeout, LAUNCH)

// LiftState is what the main (or reverse) thrusters should be doing.
type LiftState string

const (
	PROCEEDING   LiftState = "PROCEEDING"
	SOFTLANDING  LiftState = "SOFTLANDING"
	BACKSTEPPING LiftState = "BACKSTEPPING"
)

// LatState is which way the rocket is leaning, and so which way the side
// thrusters should push to right it.
type LatState string

const (
	LATSTILL LatState = "LATSTILL"
	LATLEFT  LatState = "LATLEFT"
	LATRIGHT LatState = "LATRIGHT"
)

// DeliveryThresholds drive the delivery AI. Times are in seconds, speeds in
// m/s and distances in pixels.
type DeliveryThresholds struct {

	// Moving slower than StuckSpeed for StuckTime means stuck.
	StuckTime  float64 `yaml:"StuckTime"`
	StuckSpeed float64 `yaml:"StuckSpeed"`

	// How long to wait after unloading before taking off.
	UnloadDelay float64 `yaml:"UnloadDelay"`

	// How long to fire the reverse thrusters when stuck on the way up.
	UnstickTime float64 `yaml:"UnstickTime"`

	// Gap between the fall speeds which start and stop the main thruster.
	AltVelSpread float64 `yaml:"AltVelSpread"`

	// Heights (in body diameters) below which to slow down for landing, and
	// below which to stop thrusting at all.
	LandHeight   float64 `yaml:"LandHeight"`
	ThrustHeight float64 `yaml:"ThrustHeight"`

	// How far down to look for the ground.
	MaxAltitude float64 `yaml:"MaxAltitude"`

	// Leaning further than this is corrected with the side thrusters.
	StabilizeDegrees float64 `yaml:"StabilizeDegrees"`

	// Don't bother stabilizing while unloading slower than this.
	UnloadStillSpeed float64 `yaml:"UnloadStillSpeed"`
}

func DefaultDeliveryThresholds() DeliveryThresholds {
	return DeliveryThresholds{
		StuckTime:        3,
		StuckSpeed:       1,
		UnloadDelay:      1,
		UnstickTime:      1.5,
		AltVelSpread:     8,
		LandHeight:       2,
		ThrustHeight:     0.25,
		MaxAltitude:      500,
		StabilizeDegrees: 5.625,
		UnloadStillSpeed: 5,
	}
}

// DeliveryAI flies a rocket down to the ground, drops its cargo, and flies it
// away again.
type DeliveryAI struct {
	Mode       DeliveryMode
	Thresholds DeliveryThresholds

	Delivery *fsm.Machine[DeliveryState, Event]
	Lift     LiftState
	Lateral  LatState

	// -1 (climb flat out) to 1 (fall freely).
	AltitudeControl float64

	altitude   float64
	stuckTimer core.Timer
}

func NewDeliveryAI(mode DeliveryMode) *DeliveryAI {
	return &DeliveryAI{
		Mode:       mode,
		Thresholds: DefaultDeliveryThresholds(),
		Delivery:   fsm.NewMachine(DeliveryTable, FALL),
		Lift:       PROCEEDING,
		Lateral:    LATSTILL,
	}
}

func (ai *DeliveryAI) String() string {
	return fmt.Sprintf("DeliveryAI{%s %v %v %v}", ai.Mode, ai.Delivery, ai.Lift, ai.Lateral)
}

// Altitude returns the height (in pixels) of the bottom of the rocket above the
// ground, as of the last update.
func (ai *DeliveryAI) Altitude() float64 {
	return ai.altitude
}

// altitudeControl returns how much the delivery state wants to fall.
func altitudeControl(s DeliveryState) float64 {
	switch s {
	case FALL:
		return 0.95
	case LAND:
		return 0.3
	case UNLOAD:
		return 0
	case LAUNCH, UNSTICK:
		return -1
	}
	return 0
}

// nextLift decides whether to fire the main thruster. It starts firing when
// falling faster than the altitude control allows, and stops once slowed down
// enough.
func nextLift(prev LiftState, s DeliveryState, altitude, thrustLimit, ac, velY, spread float64) LiftState {
	start := 1 + 10*ac + spread/2
	stop := 1 + 10*ac - spread/2

	switch {
	case s == UNSTICK:
		return BACKSTEPPING
	case (s != LAUNCH && altitude < thrustLimit) || ac >= 1:
		return PROCEEDING
	case ac <= -1:
		return SOFTLANDING
	case velY > start:
		return SOFTLANDING
	case velY < stop:
		return PROCEEDING
	case prev == BACKSTEPPING:
		return PROCEEDING
	}

	return prev
}

// lateral returns which way the rocket is leaning past the limit. rot is in
// radians, positive clockwise.
func lateral(rot, limit float64) LatState {
	switch {
	case rot > limit:
		return LATLEFT
	case rot < -limit:
		return LATRIGHT
	}
	return LATSTILL
}

func applyLift(l LiftState) []controller.Intent {
	switch l {
	case SOFTLANDING:
		return []controller.Intent{controller.BodyJump, controller.MoveUp}
	case BACKSTEPPING:
		return []controller.Intent{controller.MoveDown}
	}
	return nil
}

func applyLateral(l LatState) []controller.Intent {
	switch l {
	case LATLEFT:
		return []controller.Intent{controller.MoveRight}
	case LATRIGHT:
		return []controller.Intent{controller.MoveLeft}
	}
	return nil
}

func (ai *DeliveryAI) overdue(limit float64) bool {
	return ai.Delivery.Elapsed() >= limit-1e-9
}

// Update decides what the rocket should do this tick, and sets the intents on
// its controller.
func (ai *DeliveryAI) Update(ctx *core.SimulationContext, r *Rocket) {
	th := ai.Thresholds
	b := r.Body()
	m := ai.Delivery
	dt := ctx.DeltaTime

	m.Tick(dt)
	if b.Vel().Magnitude() > th.StuckSpeed {
		ai.stuckTimer.Reset()
	} else {
		ai.stuckTimer.Tick(dt)
	}

	height := b.Diameter()
	landLimit := height * th.LandHeight
	thrustLimit := height * th.ThrustHeight

	ai.altitude = th.MaxAltitude
	if ctx.Terrain != nil {
		bottom := b.Position().Add(math2d.Vector{X: 0, Y: b.Radius})
		ai.altitude = ctx.Terrain.GetAltitude(bottom, th.MaxAltitude)
	}

	switch m.State() {
	case FALL:
		if ai.altitude < landLimit {
			m.Fire(Approach)
		} else if ai.stuckTimer.IsPast(th.StuckTime) {
			m.Fire(Stuck)
		}

	case LAND:
		if ai.Mode == STAY {
			break
		}

		if !r.IsInventoryEmpty() && (ai.altitude < thrustLimit || ai.stuckTimer.IsPast(th.StuckTime)) {
			r.DropAllInventory()
			m.Fire(Unload)
		} else if r.IsInventoryEmpty() && r.HasDelivered() {
			ai.stuckTimer.Reset()
			m.Fire(Delivered)
		}

	case UNLOAD:
		if r.IsInventoryEmpty() && ai.overdue(th.UnloadDelay) {
			ai.stuckTimer.Reset()
			m.Fire(Done)
		}

	case LAUNCH:
		if ai.stuckTimer.IsPast(th.StuckTime) {
			ai.stuckTimer.Reset()
			m.Fire(Stuck)
		}

	case UNSTICK:
		if ai.stuckTimer.IsPast(th.UnstickTime) {
			ai.stuckTimer.Reset()
			m.Fire(Timeout)
		}

	default:
		log.Warnf("unknown delivery state: %#v", m.State())
		m.SetState(FALL)
	}

	ai.AltitudeControl = altitudeControl(m.State())
	ai.Lift = nextLift(ai.Lift, m.State(), ai.altitude, thrustLimit, ai.AltitudeControl, b.Vel().Y, th.AltVelSpread)

	if m.State() == UNLOAD && b.Vel().Magnitude() < th.UnloadStillSpeed {
		ai.Lateral = LATSTILL
	} else {
		ai.Lateral = lateral(utils.NormalizeAngle(b.RotAngle()), utils.Rad(th.StabilizeDegrees))
	}

	ctl := r.Controller
	for _, i := range applyLift(ai.Lift) {
		ctl.Set(i, true)
	}
	for _, i := range applyLateral(ai.Lateral) {
		ctl.Set(i, true)
	}
}
