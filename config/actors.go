package config

import (
	"fmt"
	"io"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/crab"
	"github.com/adammck/crab/components/rocket"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/utils"
)

// ActorDef is the body which everything else is attached to.
type ActorDef struct {
	PresetName string  `yaml:"PresetName"`
	Mass       float64 `yaml:"Mass"`
	Radius     float64 `yaml:"Radius"`
	Team       int     `yaml:"Team"`

	BalanceSpring *float64 `yaml:"BalanceSpring,omitempty"`
	Friction      *float64 `yaml:"Friction,omitempty"`
}

func (d *ActorDef) body() (*core.Body, error) {
	if d.PresetName == "" {
		return nil, fmt.Errorf("missing PresetName")
	}

	if d.Mass <= 0 || d.Radius <= 0 {
		return nil, fmt.Errorf("Mass and Radius must be positive: %v, %v", d.Mass, d.Radius)
	}

	b := core.NewBody(d.PresetName, d.Mass, d.Radius)
	b.Team = d.Team
	if d.BalanceSpring != nil {
		b.BalanceSpring = *d.BalanceSpring
	}
	if d.Friction != nil {
		b.Friction = *d.Friction
	}

	return b, nil
}

type CrabAIDef struct {
	Mode       string            `yaml:"Mode"`
	Thresholds crab.AIThresholds `yaml:"Thresholds"`
}

// UnmarshalYAML overlays the thresholds on the defaults, so a definition only
// needs the ones it changes.
func (d *CrabAIDef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain CrabAIDef
	p := plain{Thresholds: crab.DefaultAIThresholds()}

	err := unmarshal(&p)
	if err != nil {
		return err
	}

	*d = CrabAIDef(p)
	return nil
}

type CrabDef struct {
	ActorDef `yaml:",inline"`

	Turret  *TurretDef  `yaml:"Turret,omitempty"`
	Jetpack *JetpackDef `yaml:"Jetpack,omitempty"`

	LeftFGLeg  *LegDef `yaml:"LeftFGLeg,omitempty"`
	LeftBGLeg  *LegDef `yaml:"LeftBGLeg,omitempty"`
	RightFGLeg *LegDef `yaml:"RightFGLeg,omitempty"`
	RightBGLeg *LegDef `yaml:"RightBGLeg,omitempty"`

	// The background legs follow copies of the same paths.
	LeftStandLimbPath     *LimbPathDef `yaml:"LeftStandLimbPath,omitempty"`
	LeftWalkLimbPath      *LimbPathDef `yaml:"LeftWalkLimbPath,omitempty"`
	LeftDislodgeLimbPath  *LimbPathDef `yaml:"LeftDislodgeLimbPath,omitempty"`
	RightStandLimbPath    *LimbPathDef `yaml:"RightStandLimbPath,omitempty"`
	RightWalkLimbPath     *LimbPathDef `yaml:"RightWalkLimbPath,omitempty"`
	RightDislodgeLimbPath *LimbPathDef `yaml:"RightDislodgeLimbPath,omitempty"`

	// In degrees.
	AimRangeUpperLimit float64 `yaml:"AimRangeUpperLimit"`
	AimRangeLowerLimit float64 `yaml:"AimRangeLowerLimit"`

	AimDistance     float64 `yaml:"AimDistance"`
	SharpAimDelay   float64 `yaml:"SharpAimDelay"`
	StuckTime       float64 `yaml:"StuckTime"`
	DislodgeTime    float64 `yaml:"DislodgeTime"`
	DislodgeImpulse float64 `yaml:"DislodgeImpulse"`

	AI *CrabAIDef `yaml:"AI,omitempty"`
}

// NewCrabDef returns a definition holding the defaults, which a file can
// override property by property.
func NewCrabDef() *CrabDef {
	c := crab.New("", nil)
	return &CrabDef{
		AimRangeUpperLimit: utils.Deg(c.AimRangeUpperLimit),
		AimRangeLowerLimit: utils.Deg(c.AimRangeLowerLimit),
		AimDistance:        c.AimDistance,
		SharpAimDelay:      c.SharpAimDelay,
		StuckTime:          c.StuckTime,
		DislodgeTime:       c.DislodgeTime,
		DislodgeImpulse:    c.DislodgeImpulse,
	}
}

func DecodeCrab(r io.Reader) (*CrabDef, error) {
	d := NewCrabDef()
	err := decode(r, d)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func LoadCrab(path string) (*CrabDef, error) {
	d := NewCrabDef()
	err := load(path, d)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *CrabDef) ReadProperty(name, value string) error {
	return readProperty(d, name, value)
}

func (d *CrabDef) Save(w io.Writer) error {
	return save(w, d)
}

func (d *CrabDef) paths(s crab.Side) [crab.MoveStateCount]*LimbPathDef {
	if s == crab.LEFTSIDE {
		return [crab.MoveStateCount]*LimbPathDef{
			crab.STAND:    d.LeftStandLimbPath,
			crab.WALK:     d.LeftWalkLimbPath,
			crab.DISLODGE: d.LeftDislodgeLimbPath,
		}
	}

	return [crab.MoveStateCount]*LimbPathDef{
		crab.STAND:    d.RightStandLimbPath,
		crab.WALK:     d.RightWalkLimbPath,
		crab.DISLODGE: d.RightDislodgeLimbPath,
	}
}

func (d *CrabDef) legs() [crab.RightBGLeg + 1]*LegDef {
	return [crab.RightBGLeg + 1]*LegDef{
		crab.LeftFGLeg:  d.LeftFGLeg,
		crab.LeftBGLeg:  d.LeftBGLeg,
		crab.RightFGLeg: d.RightFGLeg,
		crab.RightBGLeg: d.RightBGLeg,
	}
}

// Build returns a new crab with all of its parts attached. It isn't added to
// any world.
func (d *CrabDef) Build() (*crab.Crab, error) {
	b, err := d.body()
	if err != nil {
		return nil, fmt.Errorf("%w (while building crab)", err)
	}

	c := crab.New(d.PresetName, b)
	c.AimRangeUpperLimit = utils.Rad(d.AimRangeUpperLimit)
	c.AimRangeLowerLimit = utils.Rad(d.AimRangeLowerLimit)
	c.AimDistance = d.AimDistance
	c.SharpAimDelay = d.SharpAimDelay
	c.StuckTime = d.StuckTime
	c.DislodgeTime = d.DislodgeTime
	c.DislodgeImpulse = d.DislodgeImpulse

	for s := crab.Side(0); s < crab.SideCount; s++ {
		for st, pd := range d.paths(s) {
			if pd == nil {
				continue
			}

			name := fmt.Sprintf("%s %v %v", d.PresetName, s, crab.MoveState(st))
			p, err := pd.Build(name)
			if err != nil {
				return nil, err
			}

			c.Paths[s][crab.FGROUND][st] = p
			c.Paths[s][crab.BGROUND][st] = limbpath.Create(p)
		}
	}

	for slot, ld := range d.legs() {
		if ld == nil {
			continue
		}

		limb, err := ld.BuildLimb(fmt.Sprintf("%s %v", d.PresetName, crab.Slot(slot)))
		if err != nil {
			return nil, err
		}

		err = c.SetAttachmentSlot(crab.Slot(slot), limb)
		if err != nil {
			return nil, err
		}
	}

	if d.Turret != nil {
		t, err := d.Turret.Build()
		if err != nil {
			return nil, err
		}

		err = c.SetAttachmentSlot(crab.TurretSlot, t)
		if err != nil {
			return nil, err
		}
	}

	if d.Jetpack != nil {
		j, err := d.Jetpack.Build()
		if err != nil {
			return nil, err
		}

		err = c.SetAttachmentSlot(crab.JetpackSlot, j)
		if err != nil {
			return nil, err
		}
	}

	if d.AI != nil {
		m, err := crab.ParseMode(d.AI.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w (while building crab %s)", err, d.PresetName)
		}

		c.AI = crab.NewAI(m)
		c.AI.Thresholds = d.AI.Thresholds
	}

	return c, nil
}

type DeliveryAIDef struct {
	Mode       string                    `yaml:"Mode"`
	Thresholds rocket.DeliveryThresholds `yaml:"Thresholds"`
}

func (d *DeliveryAIDef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain DeliveryAIDef
	p := plain{Thresholds: rocket.DefaultDeliveryThresholds()}

	err := unmarshal(&p)
	if err != nil {
		return err
	}

	*d = DeliveryAIDef(p)
	return nil
}

type RocketDef struct {
	ActorDef `yaml:",inline"`

	// The left leg is a mirror image of the right one, unless it's given.
	RLeg *LegDef `yaml:"RLeg"`
	LLeg *LegDef `yaml:"LLeg,omitempty"`

	MThruster  *ThrusterDef `yaml:"MThruster,omitempty"`
	RThruster  *ThrusterDef `yaml:"RThruster,omitempty"`
	LThruster  *ThrusterDef `yaml:"LThruster,omitempty"`
	URThruster *ThrusterDef `yaml:"URThruster,omitempty"`
	ULThruster *ThrusterDef `yaml:"ULThruster,omitempty"`

	RaisedGearLimbPath   *LimbPathDef `yaml:"RaisedGearLimbPath"`
	LoweredGearLimbPath  *LimbPathDef `yaml:"LoweredGearLimbPath"`
	LoweringGearLimbPath *LimbPathDef `yaml:"LoweringGearLimbPath,omitempty"`
	RaisingGearLimbPath  *LimbPathDef `yaml:"RaisingGearLimbPath,omitempty"`

	ScuttleIfFlippedTime float64 `yaml:"ScuttleIfFlippedTime"`

	AI *DeliveryAIDef `yaml:"AI,omitempty"`
}

func NewRocketDef() *RocketDef {
	r := rocket.New("", nil)
	return &RocketDef{
		ScuttleIfFlippedTime: r.ScuttleIfFlippedTime,
	}
}

func DecodeRocket(r io.Reader) (*RocketDef, error) {
	d := NewRocketDef()
	err := decode(r, d)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func LoadRocket(path string) (*RocketDef, error) {
	d := NewRocketDef()
	err := load(path, d)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *RocketDef) ReadProperty(name, value string) error {
	return readProperty(d, name, value)
}

func (d *RocketDef) Save(w io.Writer) error {
	return save(w, d)
}

func (d *RocketDef) thrusters() [rocket.ThrusterCount]*ThrusterDef {
	return [rocket.ThrusterCount]*ThrusterDef{
		rocket.MTHRUSTER:  d.MThruster,
		rocket.RTHRUSTER:  d.RThruster,
		rocket.LTHRUSTER:  d.LThruster,
		rocket.URTHRUSTER: d.URThruster,
		rocket.ULTHRUSTER: d.ULThruster,
	}
}

func (d *RocketDef) gearPaths() [rocket.GearStateCount]*LimbPathDef {
	return [rocket.GearStateCount]*LimbPathDef{
		rocket.RAISED:   d.RaisedGearLimbPath,
		rocket.LOWERED:  d.LoweredGearLimbPath,
		rocket.LOWERING: d.LoweringGearLimbPath,
		rocket.RAISING:  d.RaisingGearLimbPath,
	}
}

// mirrored returns a copy of the leg definition, attached on the other side.
func mirrored(ld *LegDef) *LegDef {
	m := *ld
	m.ParentOffset.X = -m.ParentOffset.X
	return &m
}

// Build returns a new rocket with its gear and thrusters attached. Cargo is
// left to the caller.
func (d *RocketDef) Build() (*rocket.Rocket, error) {
	b, err := d.body()
	if err != nil {
		return nil, fmt.Errorf("%w (while building rocket)", err)
	}

	r := rocket.New(d.PresetName, b)
	r.ScuttleIfFlippedTime = d.ScuttleIfFlippedTime

	for g, pd := range d.gearPaths() {
		if pd == nil {
			continue
		}

		p, err := pd.Build(fmt.Sprintf("%s %v", d.PresetName, rocket.GearState(g)))
		if err != nil {
			return nil, err
		}

		err = r.SetGearPath(rocket.GearState(g), p)
		if err != nil {
			return nil, err
		}
	}

	for p, td := range d.thrusters() {
		if td == nil {
			continue
		}

		t, err := td.Build(rocket.ThrusterPos(p))
		if err != nil {
			return nil, err
		}

		err = r.SetThruster(rocket.ThrusterPos(p), t)
		if err != nil {
			return nil, err
		}
	}

	if d.RLeg != nil {
		left := d.LLeg
		if left == nil {
			left = mirrored(d.RLeg)
		}

		for s, ld := range [rocket.SideCount]*LegDef{rocket.RIGHTSIDE: d.RLeg, rocket.LEFTSIDE: left} {
			g, err := ld.BuildGear(fmt.Sprintf("%s %v gear", d.PresetName, rocket.Side(s)))
			if err != nil {
				return nil, err
			}
			r.SetGear(rocket.Side(s), g)
		}
	}

	if d.AI != nil {
		m, err := rocket.ParseDeliveryMode(d.AI.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w (while building rocket %s)", err, d.PresetName)
		}

		r.AI = rocket.NewDeliveryAI(m)
		r.AI.Thresholds = d.AI.Thresholds
	}

	return r, nil
}
