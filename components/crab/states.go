package crab

import (
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/fsm"
	"github.com/adammck/crab/math2d"
)

// Event is something the AI noticed, which may move one of its machines to a
// new state.
type Event string

const (
	HostileSeen Event = "HostileSeen"
	TargetLost  Event = "TargetLost"
	InRange     Event = "InRange"
	AimTimeout  Event = "AimTimeout"
	BurstDone   Event = "BurstDone"
	OutOfAmmo   Event = "OutOfAmmo"
	AlarmHeard  Event = "AlarmHeard"
	PointDone   Event = "PointDone"
	DigOrdered  Event = "DigOrdered"
	DigDone     Event = "DigDone"

	Start   Event = "Start"
	Stop    Event = "Stop"
	Reached Event = "Reached"
	Ready   Event = "Ready"
	Done    Event = "Done"
	Timeout Event = "Timeout"
	Abort   Event = "Abort"

	Through Event = "Through"
	Blocked Event = "Blocked"

	Gap    Event = "Gap"
	Ledge  Event = "Ledge"
	Apex   Event = "Apex"
	Over   Event = "Over"
	Landed Event = "Landed"

	Stuck     Event = "Stuck"
	JumpOver  Event = "JumpOver"
	DigAround Event = "DigAround"
)

type DeviceState string

const (
	SCANNING DeviceState = "SCANNING"
	AIMING   DeviceState = "AIMING"
	FIRING   DeviceState = "FIRING"
	POINTING DeviceState = "POINTING"
	DIGGING  DeviceState = "DIGGING"
)

var DeviceTable = fsm.NewTable[DeviceState, Event]("device").
	Add(SCANNING, HostileSeen, AIMING).
	Add(SCANNING, AlarmHeard, POINTING).
	Add(SCANNING, DigOrdered, DIGGING).
	Add(AIMING, InRange, FIRING).
	Add(AIMING, AimTimeout, FIRING).
	Add(AIMING, TargetLost, SCANNING).
	Add(FIRING, BurstDone, SCANNING).
	Add(FIRING, OutOfAmmo, SCANNING).
	Add(FIRING, TargetLost, SCANNING).
	Add(POINTING, HostileSeen, AIMING).
	Add(POINTING, PointDone, SCANNING).
	Add(DIGGING, HostileSeen, AIMING).
	Add(DIGGING, DigDone, SCANNING)

type SweepState string

const (
	NOSWEEP        SweepState = "NOSWEEP"
	SWEEPINGUP     SweepState = "SWEEPINGUP"
	SWEEPUPPAUSE   SweepState = "SWEEPUPPAUSE"
	SWEEPINGDOWN   SweepState = "SWEEPINGDOWN"
	SWEEPDOWNPAUSE SweepState = "SWEEPDOWNPAUSE"
)

var sweeping = []SweepState{SWEEPINGUP, SWEEPUPPAUSE, SWEEPINGDOWN, SWEEPDOWNPAUSE}

var SweepTable = fsm.NewTable[SweepState, Event]("sweep").
	Add(NOSWEEP, Start, SWEEPINGUP).
	Add(SWEEPINGUP, Reached, SWEEPUPPAUSE).
	Add(SWEEPINGUP, Timeout, SWEEPUPPAUSE).
	Add(SWEEPUPPAUSE, Done, SWEEPINGDOWN).
	Add(SWEEPINGDOWN, Reached, SWEEPDOWNPAUSE).
	Add(SWEEPINGDOWN, Timeout, SWEEPDOWNPAUSE).
	Add(SWEEPDOWNPAUSE, Done, SWEEPINGUP).
	AddAll(sweeping, Stop, NOSWEEP)

type DigState string

const (
	NOTDIGGING   DigState = "NOTDIGGING"
	PREDIG       DigState = "PREDIG"
	STARTDIG     DigState = "STARTDIG"
	TUNNELING    DigState = "TUNNELING"
	FINISHINGDIG DigState = "FINISHINGDIG"
	PAUSEDIGGER  DigState = "PAUSEDIGGER"
)

var digging = []DigState{PREDIG, STARTDIG, TUNNELING, FINISHINGDIG, PAUSEDIGGER}

var DigTable = fsm.NewTable[DigState, Event]("dig").
	AddAll(digging, Timeout, NOTDIGGING).
	AddAll(digging, Abort, NOTDIGGING).
	Add(NOTDIGGING, Start, PREDIG).
	Add(PREDIG, Ready, STARTDIG).
	Add(STARTDIG, Ready, TUNNELING).
	Add(TUNNELING, Through, FINISHINGDIG).
	Add(TUNNELING, Timeout, FINISHINGDIG).
	Add(TUNNELING, Blocked, PAUSEDIGGER).
	Add(PAUSEDIGGER, Ready, TUNNELING).
	Add(FINISHINGDIG, Done, NOTDIGGING)

type JumpState string

const (
	NOTJUMPING  JumpState = "NOTJUMPING"
	FORWARDJUMP JumpState = "FORWARDJUMP"
	PREUPJUMP   JumpState = "PREUPJUMP"
	UPJUMP      JumpState = "UPJUMP"
	APEXJUMP    JumpState = "APEXJUMP"
	LANDJUMP    JumpState = "LANDJUMP"
)

var jumping = []JumpState{FORWARDJUMP, PREUPJUMP, UPJUMP, APEXJUMP, LANDJUMP}

var JumpTable = fsm.NewTable[JumpState, Event]("jump").
	Add(NOTJUMPING, Gap, FORWARDJUMP).
	Add(NOTJUMPING, Ledge, PREUPJUMP).
	Add(FORWARDJUMP, Landed, NOTJUMPING).
	Add(PREUPJUMP, Ready, UPJUMP).
	Add(UPJUMP, Apex, APEXJUMP).
	Add(APEXJUMP, Over, LANDJUMP).
	Add(LANDJUMP, Landed, NOTJUMPING).
	AddAll(jumping, Timeout, NOTJUMPING).
	AddAll(jumping, Abort, NOTJUMPING)

type ObstacleState string

const (
	PROCEEDING   ObstacleState = "PROCEEDING"
	BACKSTEPPING ObstacleState = "BACKSTEPPING"
	DIGPAUSING   ObstacleState = "DIGPAUSING"
	JUMPING      ObstacleState = "JUMPING"
)

var avoiding = []ObstacleState{BACKSTEPPING, DIGPAUSING, JUMPING}

var ObstacleTable = fsm.NewTable[ObstacleState, Event]("obstacle").
	Add(PROCEEDING, Stuck, BACKSTEPPING).
	Add(PROCEEDING, JumpOver, JUMPING).
	Add(PROCEEDING, DigAround, DIGPAUSING).
	AddAll(avoiding, Done, PROCEEDING).
	AddAll(avoiding, Timeout, PROCEEDING)

// Intents is what one machine wants the controller to do for a tick.
type Intents struct {
	Set []controller.Intent

	// Analog aim, or zero for none.
	Aim math2d.Vector
}

func moveIntent(right bool) controller.Intent {
	if right {
		return controller.MoveRight
	}
	return controller.MoveLeft
}

// applyDevice returns the intents for the device state. toward is the unit
// vector from the crab to whatever the state is concerned with, or zero.
func applyDevice(s DeviceState, toward math2d.Vector) Intents {
	switch s {
	case AIMING:
		return Intents{Set: []controller.Intent{controller.AimSharp}, Aim: toward}
	case FIRING:
		return Intents{Set: []controller.Intent{controller.AimSharp, controller.WeaponFire}, Aim: toward}
	case POINTING, DIGGING:
		return Intents{Aim: toward}
	}
	return Intents{}
}

// applySweep returns the intents to move the aim towards the end of the
// current sweep. diff is the angle (in radians) from the aim to there.
func applySweep(s SweepState, diff, tolerance float64) Intents {
	if s != SWEEPINGUP && s != SWEEPINGDOWN {
		return Intents{}
	}

	if diff > tolerance {
		return Intents{Set: []controller.Intent{controller.AimUp}}
	}
	if diff < -tolerance {
		return Intents{Set: []controller.Intent{controller.AimDown}}
	}
	return Intents{}
}

// sweepTarget returns the aim angle which the sweep state is heading for.
func sweepTarget(s SweepState, center, rng float64) (float64, bool) {
	switch s {
	case SWEEPINGUP:
		return center + rng, true
	case SWEEPINGDOWN:
		return center - rng, true
	}
	return center, false
}

func applyDig(s DigState, right bool) Intents {
	switch s {
	case STARTDIG:
		return Intents{Set: []controller.Intent{controller.WeaponFire}}
	case TUNNELING:
		return Intents{Set: []controller.Intent{controller.WeaponFire, moveIntent(right)}}
	case FINISHINGDIG:
		return Intents{Set: []controller.Intent{moveIntent(right)}}
	}
	return Intents{}
}

func applyJump(s JumpState, right bool) Intents {
	switch s {
	case FORWARDJUMP, APEXJUMP:
		return Intents{Set: []controller.Intent{controller.BodyJump, moveIntent(right)}}
	case PREUPJUMP:
		return Intents{Set: []controller.Intent{controller.BodyCrouch}}
	case UPJUMP:
		return Intents{Set: []controller.Intent{controller.BodyJump}}
	case LANDJUMP:
		return Intents{Set: []controller.Intent{moveIntent(right)}}
	}
	return Intents{}
}

// applyObstacle returns the intents to move, given which way the crab wants to
// go. Zero means standing still.
func applyObstacle(s ObstacleState, dir int) Intents {
	if dir == 0 {
		return Intents{}
	}

	switch s {
	case PROCEEDING:
		return Intents{Set: []controller.Intent{moveIntent(dir > 0)}}
	case BACKSTEPPING:
		return Intents{Set: []controller.Intent{moveIntent(dir < 0)}}
	}
	return Intents{}
}
