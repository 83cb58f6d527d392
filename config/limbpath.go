package config

import (
	"fmt"
	"io"

	"github.com/adammck/crab/components/legs/gait"
	"github.com/adammck/crab/limbpath"
	"github.com/adammck/crab/math2d"
)

type LimbPathDef struct {
	StartOffset   Vec   `yaml:"StartOffset"`
	StartSegCount int   `yaml:"StartSegCount"`
	AddSegment    []Vec `yaml:"AddSegment,omitempty"`

	// Generates the segments, instead of AddSegment.
	Stride *gait.Stride `yaml:"Stride,omitempty"`

	// Nil means the foot collides for the whole path.
	EndSegCount *int `yaml:"EndSegCount,omitempty"`

	SlowTravelSpeed   float64 `yaml:"SlowTravelSpeed"`
	NormalTravelSpeed float64 `yaml:"NormalTravelSpeed"`
	FastTravelSpeed   float64 `yaml:"FastTravelSpeed"`

	PushForce          float64 `yaml:"PushForce"`
	OneShot            bool    `yaml:"OneShot,omitempty"`
	CollisionsDisabled bool    `yaml:"CollisionsDisabled,omitempty"`
}

func (d *LimbPathDef) ReadProperty(name, value string) error {
	return readProperty(d, name, value)
}

func (d *LimbPathDef) Save(w io.Writer) error {
	return save(w, d)
}

func (d *LimbPathDef) segments() ([]math2d.Vector, error) {
	if d.Stride == nil {
		segs := make([]math2d.Vector, len(d.AddSegment))
		for i, s := range d.AddSegment {
			segs[i] = s.Vector()
		}
		return segs, nil
	}

	if len(d.AddSegment) > 0 {
		return nil, fmt.Errorf("can't have both Stride and AddSegment")
	}

	err := d.Stride.Validate()
	if err != nil {
		return nil, err
	}

	return d.Stride.Segments(), nil
}

// Validate returns an error if the path couldn't be followed.
func (d *LimbPathDef) Validate() error {
	segs, err := d.segments()
	if err != nil {
		return err
	}

	if d.StartSegCount < 0 || d.StartSegCount > len(segs) {
		return fmt.Errorf("StartSegCount %d out of range for %d segments", d.StartSegCount, len(segs))
	}

	if d.EndSegCount != nil && *d.EndSegCount > len(segs) {
		return fmt.Errorf("EndSegCount %d out of range for %d segments", *d.EndSegCount, len(segs))
	}

	if d.PushForce < 0 {
		return fmt.Errorf("negative PushForce: %v", d.PushForce)
	}

	// Static points don't travel, so don't need speeds.
	if len(segs) == 0 {
		return nil
	}

	for _, s := range []float64{d.SlowTravelSpeed, d.NormalTravelSpeed, d.FastTravelSpeed} {
		if s <= 0 {
			return fmt.Errorf("travel speeds must be positive: %v, %v, %v", d.SlowTravelSpeed, d.NormalTravelSpeed, d.FastTravelSpeed)
		}
	}

	return nil
}

// Build returns a new path, reset to its start.
func (d *LimbPathDef) Build(name string) (*limbpath.LimbPath, error) {
	err := d.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w (while building path %s)", err, name)
	}

	segs, _ := d.segments()
	speeds := [limbpath.SpeedCount]float64{
		limbpath.SLOW:   d.SlowTravelSpeed,
		limbpath.NORMAL: d.NormalTravelSpeed,
		limbpath.FAST:   d.FastTravelSpeed,
	}

	lp := limbpath.New(name, d.StartOffset.Vector(), d.StartSegCount, segs, speeds, d.PushForce)
	lp.OneShot = d.OneShot
	lp.CollisionsDisabled = d.CollisionsDisabled
	if d.EndSegCount != nil {
		lp.EndSegCount = *d.EndSegCount
	}

	lp.Init()
	return lp, nil
}

// LimbPathDefOf returns the definition which would build a copy of the path.
func LimbPathDefOf(lp *limbpath.LimbPath) *LimbPathDef {
	d := &LimbPathDef{
		StartOffset:        Vec{lp.StartOffset.X, lp.StartOffset.Y},
		StartSegCount:      lp.StartSegCount,
		SlowTravelSpeed:    lp.TravelSpeed[limbpath.SLOW],
		NormalTravelSpeed:  lp.TravelSpeed[limbpath.NORMAL],
		FastTravelSpeed:    lp.TravelSpeed[limbpath.FAST],
		PushForce:          lp.PushForce,
		OneShot:            lp.OneShot,
		CollisionsDisabled: lp.CollisionsDisabled,
	}

	for _, s := range lp.Segments {
		d.AddSegment = append(d.AddSegment, Vec{s.X, s.Y})
	}

	if lp.EndSegCount >= 0 {
		n := lp.EndSegCount
		d.EndSegCount = &n
	}

	return d
}
