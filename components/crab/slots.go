package crab

import (
	"fmt"

	"github.com/adammck/crab/attachable"
)

// Slot is a place on the crab where a part can be attached.
type Slot int

const (
	LeftFGLeg Slot = iota
	LeftBGLeg
	RightFGLeg
	RightBGLeg
	TurretSlot
	JetpackSlot
)

func (s Slot) String() string {
	switch s {
	case LeftFGLeg:
		return "LeftFGLeg"
	case LeftBGLeg:
		return "LeftBGLeg"
	case RightFGLeg:
		return "RightFGLeg"
	case RightBGLeg:
		return "RightBGLeg"
	case TurretSlot:
		return "Turret"
	case JetpackSlot:
		return "Jetpack"
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// LegSlot returns the slot for the leg on the given side and layer.
func LegSlot(s Side, l Layer) Slot {
	return Slot(int(s)*int(LayerCount) + int(l))
}

func (s Slot) leg() (Side, Layer, bool) {
	if s < LeftFGLeg || s > RightBGLeg {
		return 0, 0, false
	}
	return Side(int(s) / int(LayerCount)), Layer(int(s) % int(LayerCount)), true
}

// SetAttachmentSlot puts the part in the slot, replacing (and detaching)
// whatever was there. A nil part empties the slot. The part must be of the
// kind which the slot takes.
func (c *Crab) SetAttachmentSlot(slot Slot, p Part) error {
	if s, l, ok := slot.leg(); ok {
		var limb *Limb
		if p != nil {
			limb, ok = p.(*Limb)
			if !ok {
				return fmt.Errorf("%s: can't put %T in slot %v", c.Name, p, slot)
			}
		}

		c.detach(c.limbs[s][l])
		c.limbs[s][l] = limb
		if limb == nil {
			return nil
		}

		c.attach(limb)
		if limb.Foot != nil {
			c.Body().Parts.Add(limb.Foot)
			limb.Foot.Attach(limb.Leg.ID())
			limb.Leg.Foot = limb.Foot.ID()
		}

		// Start with the foot where the leg would put it.
		limb.Feet.SetLimbPos(c.jointPos(limb).Add(limb.Leg.AnkleOffset()))
		return nil
	}

	switch slot {
	case TurretSlot:
		var t *Turret
		if p != nil {
			var ok bool
			t, ok = p.(*Turret)
			if !ok {
				return fmt.Errorf("%s: can't put %T in slot %v", c.Name, p, slot)
			}
		}

		if c.Turret != nil {
			c.detach(c.Turret)
		}
		c.Turret = t
		if t != nil {
			c.attach(t)
		}

	case JetpackSlot:
		var j *Jetpack
		if p != nil {
			var ok bool
			j, ok = p.(*Jetpack)
			if !ok {
				return fmt.Errorf("%s: can't put %T in slot %v", c.Name, p, slot)
			}
		}

		if c.Jetpack != nil {
			c.detach(c.Jetpack)
		}
		c.Jetpack = j
		if j != nil {
			c.attach(j)
		}

	default:
		return fmt.Errorf("%s: unknown slot: %#v", c.Name, slot)
	}

	return nil
}

func (c *Crab) attach(p Part) {
	a := p.part()
	if a.Arena() != c.Body().Parts {
		c.Body().Parts.Add(a)
	}
	a.Attach(attachable.Root)
}

func (c *Crab) detach(p Part) {
	if p == nil {
		return
	}

	// A typed nil (e.g. a nil *Limb) in the interface.
	if l, ok := p.(*Limb); ok && l == nil {
		return
	}

	a := p.part()
	if a.IsAttached() {
		a.Detach()
	}
}

// checkParts empties the slots of the parts which have come off.
func (c *Crab) checkParts(broken []*attachable.Attachable) {
	for s := Side(0); s < SideCount; s++ {
		for l := Layer(0); l < LayerCount; l++ {
			limb := c.limbs[s][l]
			if limb != nil && !limb.Leg.IsAttached() {
				log.Infof("%s: lost %v%v leg", c.Name, s, l)
				c.limbs[s][l] = nil
			}
		}
	}

	if c.Turret != nil && !c.Turret.IsAttached() {
		c.Turret = nil
	}

	if c.Jetpack != nil && !c.Jetpack.IsAttached() {
		c.Jetpack = nil
	}

	if len(broken) > 0 {
		log.Debugf("%s: %d parts broke off", c.Name, len(broken))
	}
}
