package config

import (
	"fmt"
	"io"

	"github.com/adammck/crab/atoms"
	"github.com/adammck/crab/attachable"
	"github.com/adammck/crab/components/crab"
	"github.com/adammck/crab/components/legs"
	"github.com/adammck/crab/components/rocket"
)

type WoundDef struct {
	PresetName string  `yaml:"PresetName"`
	Offset     Vec     `yaml:"Offset"`
	Damage     float64 `yaml:"Damage"`
}

func (d *WoundDef) wound() *attachable.Wound {
	if d == nil {
		return nil
	}

	return &attachable.Wound{
		Preset: d.PresetName,
		Offset: d.Offset.Vector(),
		Damage: d.Damage,
	}
}

// AttachableDef holds the properties shared by everything which can be
// attached to a body.
type AttachableDef struct {
	PresetName string  `yaml:"PresetName"`
	Mass       float64 `yaml:"Mass"`

	ParentOffset Vec `yaml:"ParentOffset"`
	JointOffset  Vec `yaml:"JointOffset"`

	// Either name can be used. The short one wins if both are.
	JointStrength  float64  `yaml:"JointStrength,omitempty"`
	Strength       float64  `yaml:"Strength,omitempty"`
	JointStiffness *float64 `yaml:"JointStiffness,omitempty"`
	Stiffness      *float64 `yaml:"Stiffness,omitempty"`

	GibImpulseLimit          float64   `yaml:"GibImpulseLimit,omitempty"`
	GibWhenRemovedFromParent bool      `yaml:"GibWhenRemovedFromParent,omitempty"`
	BreakWound               *WoundDef `yaml:"BreakWound,omitempty"`
	ParentBreakWound         *WoundDef `yaml:"ParentBreakWound,omitempty"`
	DamageMultiplier         *float64  `yaml:"DamageMultiplier,omitempty"`
	InheritsRotAngle         *bool     `yaml:"InheritsRotAngle,omitempty"`
}

func (d *AttachableDef) validate() error {
	if d.Mass < 0 {
		return fmt.Errorf("negative Mass: %v", d.Mass)
	}

	for _, s := range []*float64{d.JointStiffness, d.Stiffness} {
		if s != nil && (*s < 0 || *s > 1) {
			return fmt.Errorf("stiffness must be between 0 and 1: %v", *s)
		}
	}

	return nil
}

// apply copies the definition onto a part. The part's name is only replaced if
// the definition has one.
func (d *AttachableDef) apply(a *attachable.Attachable) error {
	err := d.validate()
	if err != nil {
		return err
	}

	if d.PresetName != "" {
		a.Name = d.PresetName
	}

	a.Mass = d.Mass
	a.ParentOffset = d.ParentOffset.Vector()
	a.JointOffset = d.JointOffset.Vector()
	a.GibImpulseLimit = d.GibImpulseLimit
	a.GibWhenRemovedFromParent = d.GibWhenRemovedFromParent
	a.BreakWound = d.BreakWound.wound()
	a.ParentBreakWound = d.ParentBreakWound.wound()

	a.JointStrength = d.JointStrength
	if d.Strength != 0 {
		a.JointStrength = d.Strength
	}

	if d.JointStiffness != nil {
		a.JointStiffness = *d.JointStiffness
	}
	if d.Stiffness != nil {
		a.JointStiffness = *d.Stiffness
	}

	if d.DamageMultiplier != nil {
		a.DamageMultiplier = *d.DamageMultiplier
	}
	if d.InheritsRotAngle != nil {
		a.InheritsRotAngle = *d.InheritsRotAngle
	}

	return nil
}

// FootGroupDef is the cluster of atoms which stands in for a foot. Either a
// radius (for a square of atoms) or a list of atom offsets.
type FootGroupDef struct {
	Radius  float64 `yaml:"Radius,omitempty"`
	AddAtom []Vec   `yaml:"AddAtom,omitempty"`
}

func (d *FootGroupDef) Build(name string) *atoms.FootGroup {
	if len(d.AddAtom) == 0 {
		return atoms.NewFoot(name, d.Radius)
	}

	aa := make([]atoms.Atom, len(d.AddAtom))
	for i, v := range d.AddAtom {
		aa[i] = atoms.Atom{Offset: v.Vector()}
	}

	return atoms.New(name, aa)
}

type LegDef struct {
	AttachableDef `yaml:",inline"`

	ContractedOffset Vec     `yaml:"ContractedOffset"`
	ExtendedOffset   Vec     `yaml:"ExtendedOffset"`
	MaxLength        float64 `yaml:"MaxLength,omitempty"`
	IdleOffset       Vec     `yaml:"IdleOffset"`
	WillIdle         bool    `yaml:"WillIdle"`
	MoveSpeed        float64 `yaml:"MoveSpeed"`
	FrameCount       int     `yaml:"FrameCount,omitempty"`

	// The foot part on the end of the leg, if it has one which can be torn off.
	Foot *AttachableDef `yaml:"Foot,omitempty"`

	FootGroup FootGroupDef `yaml:"FootGroup"`
}

func (d *LegDef) ReadProperty(name, value string) error {
	return readProperty(d, name, value)
}

func (d *LegDef) Save(w io.Writer) error {
	return save(w, d)
}

// BuildLeg returns the leg, its foot group, and its foot part (or nil).
func (d *LegDef) BuildLeg(name string) (*legs.Leg, *atoms.FootGroup, *attachable.Attachable, error) {
	if d.MoveSpeed < 0 || d.MoveSpeed > 1 {
		return nil, nil, nil, fmt.Errorf("MoveSpeed must be between 0 and 1: %v (while building leg %s)", d.MoveSpeed, name)
	}

	l := legs.New(name, d.ContractedOffset.Vector(), d.ExtendedOffset.Vector())
	err := d.apply(l.Attachable)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w (while building leg %s)", err, name)
	}

	l.IdleOffset = d.IdleOffset.Vector()
	l.WillIdle = d.WillIdle
	l.MoveSpeed = d.MoveSpeed
	if d.FrameCount > 0 {
		l.FrameCount = d.FrameCount
	}

	l.Init()
	if d.MaxLength > 0 {
		l.SetMaxLength(d.MaxLength)
	}

	var foot *attachable.Attachable
	if d.Foot != nil {
		foot = &attachable.Attachable{
			Name:           name + " foot",
			Kind:           attachable.KindFoot,
			JointStiffness: 1,
		}

		err = d.Foot.apply(foot)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w (while building foot of %s)", err, name)
		}
	}

	return l, d.FootGroup.Build(name + " feet"), foot, nil
}

// BuildLimb returns the leg as something which fits in a leg slot of a crab.
func (d *LegDef) BuildLimb(name string) (*crab.Limb, error) {
	l, fg, foot, err := d.BuildLeg(name)
	if err != nil {
		return nil, err
	}

	limb := crab.NewLimb(l, fg)
	limb.Foot = foot
	return limb, nil
}

// BuildGear returns the leg as rocket landing gear.
func (d *LegDef) BuildGear(name string) (*rocket.Gear, error) {
	l, fg, _, err := d.BuildLeg(name)
	if err != nil {
		return nil, err
	}

	return rocket.NewGear(l, fg), nil
}

type DeviceDef struct {
	PresetName string `yaml:"PresetName"`
	Digger     bool   `yaml:"Digger,omitempty"`

	// Strongest material a digger cuts, or zero for the default.
	DigStrength float64 `yaml:"DigStrength,omitempty"`

	// Rounds per minute.
	RateOfFire float64 `yaml:"RateOfFire"`

	// Rounds per magazine, or -1 for infinite.
	RoundCount int     `yaml:"RoundCount"`
	ReloadTime float64 `yaml:"ReloadTime"`

	SharpLength float64 `yaml:"SharpLength"`
}

func (d *DeviceDef) Build() (*crab.Device, error) {
	if d.RateOfFire <= 0 {
		return nil, fmt.Errorf("RateOfFire must be positive: %v (while building device %s)", d.RateOfFire, d.PresetName)
	}

	if d.RoundCount == 0 || d.RoundCount < -1 {
		return nil, fmt.Errorf("bad RoundCount: %d (while building device %s)", d.RoundCount, d.PresetName)
	}

	dev := crab.NewDevice(d.PresetName, d.RoundCount, d.RateOfFire/60)
	dev.Digger = d.Digger
	if d.DigStrength > 0 {
		dev.DigStrength = d.DigStrength
	}
	dev.ReloadTime = d.ReloadTime
	dev.SharpLength = d.SharpLength
	return dev, nil
}

type TurretDef struct {
	AttachableDef `yaml:",inline"`
	AddMountedDevice []DeviceDef `yaml:"AddMountedDevice,omitempty"`
}

func (d *TurretDef) Build() (*crab.Turret, error) {
	t := crab.NewTurret("turret", 0)
	err := d.apply(t.Attachable)
	if err != nil {
		return nil, fmt.Errorf("%w (while building turret)", err)
	}

	for i := range d.AddMountedDevice {
		dev, err := d.AddMountedDevice[i].Build()
		if err != nil {
			return nil, err
		}
		t.Devices = append(t.Devices, dev)
	}

	return t, nil
}

type JetpackDef struct {
	AttachableDef `yaml:",inline"`

	// Force in N, and seconds of fuel.
	Thrust   float64 `yaml:"Thrust"`
	JumpTime float64 `yaml:"JumpTime"`

	// Seconds of fuel regained per second.
	JumpReplenishRate *float64 `yaml:"JumpReplenishRate,omitempty"`
}

func (d *JetpackDef) Build() (*crab.Jetpack, error) {
	if d.JumpTime <= 0 {
		return nil, fmt.Errorf("JumpTime must be positive: %v (while building jetpack)", d.JumpTime)
	}

	j := crab.NewJetpack("jetpack", 0, d.Thrust, d.JumpTime)
	err := d.apply(j.Attachable)
	if err != nil {
		return nil, fmt.Errorf("%w (while building jetpack)", err)
	}

	if d.JumpReplenishRate != nil {
		j.RefuelRate = *d.JumpReplenishRate
	}

	return j, nil
}

type ThrusterDef struct {
	AttachableDef `yaml:",inline"`
	Thrust        float64 `yaml:"Thrust"`
	BurstImpulse  float64 `yaml:"BurstImpulse,omitempty"`
}

func (d *ThrusterDef) Build(p rocket.ThrusterPos) (*rocket.Thruster, error) {
	if d.Thrust < 0 {
		return nil, fmt.Errorf("negative Thrust: %v (while building %v)", d.Thrust, p)
	}

	t := rocket.NewThruster(p.String(), 0, d.Thrust)
	err := d.apply(t.Attachable)
	if err != nil {
		return nil, fmt.Errorf("%w (while building %v)", err, p)
	}

	t.BurstImpulse = d.BurstImpulse
	return t, nil
}
