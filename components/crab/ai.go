package crab

import (
	"fmt"
	"math"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/components/fsm"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/utils"
)

type Mode string

const (
	SENTRY Mode = "SENTRY"
	PATROL Mode = "PATROL"
	GOTO   Mode = "GOTO"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case SENTRY, PATROL, GOTO:
		return m, nil
	}
	return "", fmt.Errorf("unknown AI mode: %#v", s)
}

// Slack (in seconds) when comparing timers against thresholds, so that a
// threshold which is a whole number of ticks is met on that tick.
const timeEpsilon = 1e-9

func overdue[S comparable](m *fsm.Machine[S, Event], limit float64) bool {
	return m.Elapsed() >= limit-timeEpsilon
}

// AI drives a crab by setting the intents of its controller. Each concern is a
// separate machine, and they're combined into one set of intents per tick.
type AI struct {
	Mode       Mode
	Thresholds AIThresholds

	// Where GOTO is heading.
	Target math2d.Vector

	Device   *fsm.Machine[DeviceState, Event]
	Sweep    *fsm.Machine[SweepState, Event]
	Dig      *fsm.Machine[DigState, Event]
	Jump     *fsm.Machine[JumpState, Event]
	Obstacle *fsm.Machine[ObstacleState, Event]

	target     *core.Body
	alarm      *math2d.Vector
	pointAt    math2d.Vector
	digTarget  *math2d.Vector
	digStarted bool

	dir         int
	movingRight bool
	patrolTimer core.Timer
	stuckTimer  core.Timer

	jumpTarget   math2d.Vector
	jumpingRight bool
}

func NewAI(mode Mode) *AI {
	return &AI{
		Mode:        mode,
		Thresholds:  DefaultAIThresholds(),
		Device:      fsm.NewMachine(DeviceTable, SCANNING),
		Sweep:       fsm.NewMachine(SweepTable, NOSWEEP),
		Dig:         fsm.NewMachine(DigTable, NOTDIGGING),
		Jump:        fsm.NewMachine(JumpTable, NOTJUMPING),
		Obstacle:    fsm.NewMachine(ObstacleTable, PROCEEDING),
		movingRight: true,
	}
}

func (ai *AI) String() string {
	return fmt.Sprintf("AI{%s %v %v %v %v %v}", ai.Mode, ai.Device, ai.Sweep, ai.Dig, ai.Jump, ai.Obstacle)
}

// CurrentTarget returns the body being aimed or fired at, or nil.
func (ai *AI) CurrentTarget() *core.Body {
	return ai.target
}

// Alarm makes a scanning crab point at p for a while.
func (ai *AI) Alarm(p math2d.Vector) {
	ai.alarm = &p
}

// DigTo makes a crab with a digger tunnel towards p.
func (ai *AI) DigTo(p math2d.Vector) {
	ai.digTarget = &p
}

// Update decides what the crab should do this tick, and sets the intents on
// its controller.
func (ai *AI) Update(ctx *core.SimulationContext, c *Crab) {
	dt := ctx.DeltaTime
	ai.Device.Tick(dt)
	ai.Sweep.Tick(dt)
	ai.Dig.Tick(dt)
	ai.Jump.Tick(dt)
	ai.Obstacle.Tick(dt)
	ai.patrolTimer.Tick(dt)

	ai.dir = ai.direction(c)

	ai.updateDevice(ctx, c)
	ai.updateSweep(c)
	ai.updateDig(ctx, c)
	ai.updateJump(c)
	ai.updateObstacle(ctx, c)

	ai.emit(c)
}

func (ai *AI) device(c *Crab) *Device {
	if c.Turret == nil || !c.Turret.IsAttached() {
		return nil
	}
	return c.Turret.FirstDevice()
}

func (ai *AI) hasDigger(c *Crab) bool {
	d := ai.device(c)
	return d != nil && d.Digger
}

func (ai *AI) look(ctx *core.SimulationContext, c *Crab) *core.Body {
	th := ai.Thresholds
	return c.Look(ctx, utils.Rad(th.LookConeDegrees), th.LookDistance)
}

func (ai *AI) updateDevice(ctx *core.SimulationContext, c *Crab) {
	th := ai.Thresholds
	m := ai.Device

	switch m.State() {
	case SCANNING:
		if b := ai.look(ctx, c); b != nil {
			ai.target = b
			m.Fire(HostileSeen)
		} else if ai.alarm != nil {
			ai.pointAt = *ai.alarm
			ai.alarm = nil
			m.Fire(AlarmHeard)
		} else if ai.digTarget != nil && ai.hasDigger(c) {
			ai.digStarted = false
			m.Fire(DigOrdered)
		}

	case AIMING:
		if ai.target == nil || !c.isHostile(ai.target) || !c.CanSee(ctx, ai.target, th.LookDistance) {
			ai.target = nil
			m.Fire(TargetLost)
		} else if c.IsWithinRange(ai.target.Position()) {
			m.Fire(InRange)
		} else if overdue(m, th.AimTimeout) {
			m.Fire(AimTimeout)
		}

	case FIRING:
		if d := ai.device(c); d != nil && d.IsEmpty() {
			m.Fire(OutOfAmmo)
		} else if ai.target == nil || !c.isHostile(ai.target) {
			ai.target = nil
			m.Fire(TargetLost)
		} else if overdue(m, th.FireBurst) {
			m.Fire(BurstDone)
		}

	case POINTING:
		if b := ai.look(ctx, c); b != nil {
			ai.target = b
			m.Fire(HostileSeen)
		} else if overdue(m, th.PointTimeout) {
			m.Fire(PointDone)
		}

	case DIGGING:
		if b := ai.look(ctx, c); b != nil {
			ai.target = b
			m.Fire(HostileSeen)
		} else if ai.digStarted && ai.Dig.State() == NOTDIGGING {
			ai.digTarget = nil
			m.Fire(DigDone)
		}

	default:
		log.Warnf("unknown device state: %#v", m.State())
		m.SetState(SCANNING)
	}
}

func (ai *AI) updateSweep(c *Crab) {
	th := ai.Thresholds
	m := ai.Sweep

	if ai.Device.State() != SCANNING {
		m.Fire(Stop)
		return
	}

	switch m.State() {
	case NOSWEEP:
		m.Fire(Start)

	case SWEEPINGUP, SWEEPINGDOWN:
		to, _ := sweepTarget(m.State(), 0, utils.Rad(th.SweepRangeDegrees))
		if math.Abs(to-c.AimAngle) <= utils.Rad(th.AimToleranceDegrees) {
			m.Fire(Reached)
		} else if overdue(m, th.SweepTime) {
			m.Fire(Timeout)
		}

	case SWEEPUPPAUSE, SWEEPDOWNPAUSE:
		if overdue(m, th.SweepPause) {
			m.Fire(Done)
		}
	}
}

func (ai *AI) updateDig(ctx *core.SimulationContext, c *Crab) {
	th := ai.Thresholds
	m := ai.Dig

	if ai.Device.State() != DIGGING {
		m.Fire(Abort)
		return
	}

	if ai.digTarget == nil {
		m.Fire(Abort)
		ai.digStarted = true
		return
	}

	d := ai.device(c)

	switch m.State() {
	case NOTDIGGING:
		if !ai.digStarted {
			ai.digStarted = true
			m.Fire(Start)
		}

	case PREDIG:
		if overdue(m, th.PreDigTime) {
			m.Fire(Ready)
		}

	case STARTDIG:
		if overdue(m, th.StartDigTime) {
			m.Fire(Ready)
		}

	case TUNNELING:
		if ai.dugThrough(ctx, c) {
			m.Fire(Through)
		} else if ai.tooStrong(ctx, c, d) {
			log.Debugf("%s can't dig through to %v", c, *ai.digTarget)
			m.Fire(Abort)
		} else if d == nil || d.IsEmpty() {
			m.Fire(Blocked)
		} else if overdue(m, th.DigTimeout) {
			m.Fire(Timeout)
		}

	case PAUSEDIGGER:
		if d != nil && !d.IsEmpty() && !d.IsReloading() && overdue(m, th.DigPause) {
			m.Fire(Ready)
		} else if overdue(m, th.DigTimeout) {
			m.Fire(Timeout)
		}

	case FINISHINGDIG:
		if overdue(m, th.DigPause) {
			m.Fire(Done)
		}
	}
}

// dugThrough returns true once the crab is at the dig target, or there's
// nothing left in the way.
func (ai *AI) dugThrough(ctx *core.SimulationContext, c *Crab) bool {
	p := c.Body().Position()
	to := ai.digTarget.Subtract(p)
	if to.Magnitude() <= ai.Thresholds.ArriveDistance {
		return true
	}

	if ctx.Terrain == nil {
		return true
	}

	_, d := ctx.Terrain.CastObstacleRay(p, to)
	return d < 0
}

// tooStrong returns true if there's terrain between the crab and the dig
// target which the digger can't cut.
func (ai *AI) tooStrong(ctx *core.SimulationContext, c *Crab, d *Device) bool {
	if ctx.Terrain == nil || d == nil {
		return false
	}

	p := c.Body().Position()
	_, hit := ctx.Terrain.CastStrengthRay(p, ai.digTarget.Subtract(p), d.DigStrength)
	return hit
}

func (ai *AI) updateJump(c *Crab) {
	th := ai.Thresholds
	m := ai.Jump
	b := c.Body()
	p := b.Position()

	past := func() bool {
		if ai.jumpingRight {
			return p.X >= ai.jumpTarget.X
		}
		return p.X <= ai.jumpTarget.X
	}

	// Out of fuel (or jetpack) in mid air.
	switch m.State() {
	case FORWARDJUMP, UPJUMP, APEXJUMP:
		if !c.canJump() {
			m.Fire(Abort)
			return
		}
	}

	switch m.State() {
	case FORWARDJUMP:
		if past() && b.Grounded() {
			m.Fire(Landed)
		} else if overdue(m, th.ForwardJumpTimeout) {
			m.Fire(Timeout)
		}

	case PREUPJUMP:
		if b.Grounded() && overdue(m, th.PreUpJumpTime) {
			m.Fire(Ready)
		} else if overdue(m, th.PreUpJumpTimeout) {
			m.Fire(Timeout)
		}

	case UPJUMP:
		if p.Y <= ai.jumpTarget.Y {
			m.Fire(Apex)
		} else if overdue(m, th.UpJumpTimeout) {
			m.Fire(Timeout)
		}

	case APEXJUMP:
		if past() {
			m.Fire(Over)
		} else if overdue(m, th.ApexJumpTimeout) {
			m.Fire(Timeout)
		}

	case LANDJUMP:
		if b.Grounded() {
			m.Fire(Landed)
		} else if overdue(m, th.LandJumpTimeout) {
			m.Fire(Timeout)
		}
	}
}

// direction returns which way the mode wants to go: -1, 0 or 1.
func (ai *AI) direction(c *Crab) int {
	switch ai.Mode {
	case PATROL:
		if ai.patrolTimer.IsPast(ai.Thresholds.PatrolTime) {
			ai.turnAround()
		}
		if ai.movingRight {
			return 1
		}
		return -1

	case GOTO:
		dx := ai.Target.X - c.Body().Position().X
		if math.Abs(dx) <= ai.Thresholds.ArriveDistance {
			return 0
		}
		if dx > 0 {
			return 1
		}
		return -1
	}

	return 0
}

func (ai *AI) turnAround() {
	ai.movingRight = !ai.movingRight
	ai.patrolTimer.Reset()
}

// busy returns true while the device machine wants the crab to stay put.
func (ai *AI) busy() bool {
	switch ai.Device.State() {
	case AIMING, FIRING, POINTING, DIGGING:
		return true
	}
	return false
}

func (ai *AI) updateObstacle(ctx *core.SimulationContext, c *Crab) {
	th := ai.Thresholds
	m := ai.Obstacle

	switch m.State() {
	case PROCEEDING:
		if ai.dir == 0 || ai.busy() {
			ai.stuckTimer.Reset()
			return
		}

		right := ai.dir > 0
		if c.canJump() && ai.gapAhead(ctx, c, right) {
			ai.startJump(c, Gap, right, c.Body().Position().Add(math2d.Vector{X: float64(ai.dir) * th.GapDistance * 2}))
			m.Fire(JumpOver)
			return
		}

		if math.Abs(c.Body().Vel().X) < th.StuckSpeed {
			ai.stuckTimer.Tick(ctx.DeltaTime)
		} else {
			ai.stuckTimer.Reset()
		}

		if !ai.stuckTimer.IsPast(th.StuckTime) {
			return
		}

		ai.stuckTimer.Reset()
		if top, ok := ai.ledgeAhead(ctx, c, right); ok && c.canJump() {
			ai.startJump(c, Ledge, right, top)
			m.Fire(JumpOver)
		} else if ai.hasDigger(c) {
			p := c.Body().Position().Add(math2d.Vector{X: float64(ai.dir) * th.GapDistance * 2})
			ai.DigTo(p)
			m.Fire(DigAround)
		} else {
			m.Fire(Stuck)
		}

	case BACKSTEPPING:
		if overdue(m, th.BackstepTime) {
			ai.turnAround()
			m.Fire(Done)
		} else if overdue(m, th.ObstacleTimeout) {
			m.Fire(Timeout)
		}

	case JUMPING:
		if ai.Jump.State() == NOTJUMPING {
			m.Fire(Done)
		} else if overdue(m, th.ObstacleTimeout) {
			ai.Jump.Fire(Abort)
			m.Fire(Timeout)
		}

	case DIGPAUSING:
		if ai.digStarted && ai.Device.State() != DIGGING {
			m.Fire(Done)
		} else if overdue(m, th.ObstacleTimeout) {
			ai.digTarget = nil
			m.Fire(Timeout)
		}
	}
}

func (ai *AI) startJump(c *Crab, e Event, right bool, target math2d.Vector) {
	ai.jumpingRight = right
	ai.jumpTarget = target
	ai.Jump.Fire(e)
	log.Debugf("%s: jumping (%v) to %v", c.Name, e, target)
}

// gapAhead returns true if there's no ground within the max jump height just
// in front of the crab.
func (ai *AI) gapAhead(ctx *core.SimulationContext, c *Crab, right bool) bool {
	if ctx.Terrain == nil || !c.Body().Grounded() {
		return false
	}

	th := ai.Thresholds
	dir := 1.0
	if !right {
		dir = -1
	}

	b := c.Body()
	foot := b.Position().Add(math2d.Vector{X: dir * (b.Radius + th.GapDistance), Y: b.Radius})
	return ctx.Terrain.GetAltitude(foot, th.MaxJumpHeight) >= th.MaxJumpHeight
}

// ledgeAhead looks for the top of the obstacle in front of the crab, and
// returns where the crab should jump to if it's low enough.
func (ai *AI) ledgeAhead(ctx *core.SimulationContext, c *Crab, right bool) (math2d.Vector, bool) {
	if ctx.Terrain == nil {
		return math2d.ZeroVector, false
	}

	th := ai.Thresholds
	dir := 1.0
	if !right {
		dir = -1
	}

	b := c.Body()
	bottom := b.Position().Y + b.Radius
	above := math2d.Vector{X: b.Position().X + dir*(b.Radius+th.GapDistance), Y: bottom - th.MaxJumpHeight}
	if ctx.Terrain.IsSolid(above) {
		return math2d.ZeroVector, false
	}

	hit, d := ctx.Terrain.CastObstacleRay(above, math2d.Vector{X: 0, Y: th.MaxJumpHeight})
	if d < 0 {
		return math2d.ZeroVector, false
	}

	return math2d.Vector{X: hit.X, Y: hit.Y - b.Radius}, true
}

func (ai *AI) toward(c *Crab) math2d.Vector {
	var p math2d.Vector
	switch ai.Device.State() {
	case AIMING, FIRING:
		if ai.target == nil {
			return math2d.ZeroVector
		}
		p = ai.target.Position()
	case POINTING:
		p = ai.pointAt
	case DIGGING:
		if ai.digTarget == nil {
			return math2d.ZeroVector
		}
		p = *ai.digTarget
	default:
		return math2d.ZeroVector
	}

	return p.Subtract(c.Body().Position()).Unit()
}

// emit combines the intents of every machine, and sets them on the
// controller. Jumping and digging take over movement from the obstacle
// machine.
func (ai *AI) emit(c *Crab) {
	th := ai.Thresholds
	ctl := c.Controller

	all := []Intents{applyDevice(ai.Device.State(), ai.toward(c))}

	if to, ok := sweepTarget(ai.Sweep.State(), 0, utils.Rad(th.SweepRangeDegrees)); ok {
		all = append(all, applySweep(ai.Sweep.State(), to-c.AimAngle, utils.Rad(th.AimToleranceDegrees)))
	}

	switch {
	case ai.Jump.State() != NOTJUMPING:
		all = append(all, applyJump(ai.Jump.State(), ai.jumpingRight))
	case ai.Dig.State() != NOTDIGGING:
		all = append(all, applyDig(ai.Dig.State(), ai.toward(c).X >= 0))
	case !ai.busy():
		all = append(all, applyObstacle(ai.Obstacle.State(), ai.dir))
	}

	for _, ii := range all {
		for _, i := range ii.Set {
			ctl.Set(i, true)
		}
		if !ii.Aim.Zero() {
			ctl.AnalogAim = ii.Aim
		}
	}

	if ctl.Is(controller.MoveRight) && ctl.Is(controller.MoveLeft) {
		ctl.Set(controller.MoveLeft, false)
	}
}
