package crab

import (
	"fmt"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/components/legs"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
)

// Device is a gun or digger mounted on a turret.
type Device struct {
	Name   string
	Digger bool

	// The strongest material a digger can cut through.
	DigStrength float64

	// How far (in pixels) sharp aiming lets the AI see and reach, on top of the
	// aim distance.
	SharpLength float64

	RoundsPerSecond float64

	// Rounds per magazine, or -1 for infinite.
	MagSize    int
	ReloadTime float64

	// Total rounds fired.
	ShotsFired int

	rounds      int
	active      bool
	reloading   bool
	reloadTimer core.Timer
	fireTimer   core.Timer
	sharpAim    float64
}

func NewDevice(name string, magSize int, rps float64) *Device {
	return &Device{
		Name:            name,
		MagSize:         magSize,
		RoundsPerSecond: rps,
		ReloadTime:      1,
		DigStrength:     terrain.Rock.Strength,
		rounds:          magSize,
	}
}

func (d *Device) String() string {
	return fmt.Sprintf("Device{%s rounds=%d}", d.Name, d.rounds)
}

func (d *Device) Activate() {
	d.active = true
}

func (d *Device) Deactivate() {
	d.active = false
}

func (d *Device) IsActive() bool {
	return d.active
}

func (d *Device) RoundsLeft() int {
	return d.rounds
}

func (d *Device) IsEmpty() bool {
	return d.MagSize >= 0 && d.rounds <= 0
}

func (d *Device) IsFull() bool {
	return d.MagSize < 0 || d.rounds >= d.MagSize
}

func (d *Device) IsReloading() bool {
	return d.reloading
}

// Reload starts reloading, unless already full or reloading.
func (d *Device) Reload() {
	if d.reloading || d.IsFull() {
		return
	}

	d.reloading = true
	d.reloadTimer.Reset()
}

func (d *Device) SetSharpAim(p float64) {
	d.sharpAim = p
}

func (d *Device) SharpAim() float64 {
	return d.sharpAim
}

// Update fires (or finishes reloading) for dt seconds.
func (d *Device) Update(dt float64) {
	if d.reloading {
		d.reloadTimer.Tick(dt)
		if d.reloadTimer.IsPast(d.ReloadTime) {
			d.reloading = false
			d.rounds = d.MagSize
		}
		return
	}

	if !d.active || d.IsEmpty() || d.RoundsPerSecond <= 0 {
		d.fireTimer.SetElapsed(1 / d.rounds64())
		return
	}

	d.fireTimer.Tick(dt)
	interval := 1 / d.RoundsPerSecond
	for d.fireTimer.Elapsed() >= interval && !d.IsEmpty() {
		d.fireTimer.SetElapsed(d.fireTimer.Elapsed() - interval)
		d.ShotsFired += 1
		if d.MagSize >= 0 {
			d.rounds -= 1
		}
	}
}

// rounds64 is the rate of fire, which is how long an idle device is ready to
// fire immediately.
func (d *Device) rounds64() float64 {
	if d.RoundsPerSecond <= 0 {
		return 1
	}
	return d.RoundsPerSecond
}

// Part is something which fits in one of the attachment slots of a crab.
type Part interface {
	part() *attachable.Attachable
}

// Limb is a leg, plus the foot group which stands in for its foot when pushing
// against terrain.
type Limb struct {
	Leg  *legs.Leg
	Feet *atoms.FootPair
	Foot *attachable.Attachable
}

func NewLimb(leg *legs.Leg, fg *atoms.FootGroup) *Limb {
	return &Limb{
		Leg:  leg,
		Feet: atoms.NewFootPair(fg),
	}
}

func (l *Limb) part() *attachable.Attachable {
	return l.Leg.Attachable
}

// Turret holds the mounted devices, and turns them to where the crab aims.
type Turret struct {
	*attachable.Attachable
	Devices []*Device
}

func NewTurret(name string, mass float64, devices ...*Device) *Turret {
	return &Turret{
		Attachable: &attachable.Attachable{
			Name:           name,
			Kind:           attachable.KindTurret,
			Mass:           mass,
			JointStiffness: 1,
		},
		Devices: devices,
	}
}

func (t *Turret) part() *attachable.Attachable {
	return t.Attachable
}

func (t *Turret) HasMountedDevice() bool {
	return len(t.Devices) > 0
}

// FirstDevice returns the first mounted device, or nil.
func (t *Turret) FirstDevice() *Device {
	if len(t.Devices) == 0 {
		return nil
	}
	return t.Devices[0]
}

// Jetpack pushes the crab up while it has fuel. Fuel is measured in seconds of
// thrust.
type Jetpack struct {
	*attachable.Attachable

	// Force in N.
	Thrust       float64
	JetTimeTotal float64

	// Seconds of fuel regained per second while not firing.
	RefuelRate float64

	jetTimeLeft float64
	emitting    bool
}

func NewJetpack(name string, mass, thrust, jetTime float64) *Jetpack {
	return &Jetpack{
		Attachable: &attachable.Attachable{
			Name:           name,
			Kind:           attachable.KindJetpack,
			Mass:           mass,
			JointStiffness: 1,
		},
		Thrust:       thrust,
		JetTimeTotal: jetTime,
		RefuelRate:   0.5,
		jetTimeLeft:  jetTime,
	}
}

func (j *Jetpack) part() *attachable.Attachable {
	return j.Attachable
}

func (j *Jetpack) JetTimeLeft() float64 {
	return j.jetTimeLeft
}

func (j *Jetpack) JetTimeRatio() float64 {
	if j.JetTimeTotal <= 0 {
		return 0
	}
	return j.jetTimeLeft / j.JetTimeTotal
}

func (j *Jetpack) IsOutOfFuel() bool {
	return j.jetTimeLeft <= 0
}

func (j *Jetpack) IsFullyFueled() bool {
	return j.jetTimeLeft >= j.JetTimeTotal
}

func (j *Jetpack) IsEmitting() bool {
	return j.emitting
}

// Update burns or regains fuel for dt seconds. While firing, the thrust (up,
// relative to the rotation) goes through the joint as a force.
func (j *Jetpack) Update(dt float64, fire bool, rot math2d.Matrix) {
	j.emitting = fire && !j.IsOutOfFuel()

	if !j.emitting {
		j.jetTimeLeft = min(j.JetTimeTotal, j.jetTimeLeft+j.RefuelRate*dt)
		return
	}

	j.jetTimeLeft = max(0, j.jetTimeLeft-dt)
	up := math2d.Vector{X: 0, Y: -j.Thrust}.Rotate(rot.Radians)
	j.AddForce(up)
}
