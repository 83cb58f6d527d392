package attachable

import (
	"sort"

	"github.com/adammck/crab/math2d"
)

// Gib is what is left of a destroyed part.
type Gib struct {
	ID      ID
	Name    string
	Kind    Kind
	Pos     math2d.Vector
	Impulse math2d.Vector
	Blast   float64
	Ignore  ID
}

// Arena holds every part of one actor. Parts refer to each other by ID, so a
// part which has been removed can't be reached through a stale reference.
type Arena struct {
	parts map[ID]*Attachable
	order []ID
	next  ID
	gibs  []Gib
}

// NewArena returns an arena whose root is the given part.
func NewArena(root *Attachable) *Arena {
	ar := &Arena{
		parts: map[ID]*Attachable{},
		next:  Root,
	}

	root.Kind = KindBody
	ar.Add(root)
	return ar
}

// Add registers a part, and returns its new ID. Parts start detached.
func (ar *Arena) Add(a *Attachable) ID {
	if a.arena == ar {
		return a.id
	}

	a.id = ar.next
	a.arena = ar
	a.parent = None
	ar.next += 1

	ar.parts[a.id] = a
	ar.order = append(ar.order, a.id)
	return a.id
}

// Get returns the part with the given ID, or nil if there isn't one (any
// more).
func (ar *Arena) Get(id ID) *Attachable {
	return ar.parts[id]
}

func (ar *Arena) Root() *Attachable {
	return ar.parts[Root]
}

// Len returns the number of live parts, including the root.
func (ar *Arena) Len() int {
	return len(ar.parts)
}

// Children returns the parts attached directly to the given one, in the order
// they were added.
func (ar *Arena) Children(id ID) []*Attachable {
	cc := []*Attachable{}
	for _, cid := range ar.order {
		c := ar.parts[cid]
		if c != nil && c.parent == id && id != None {
			cc = append(cc, c)
		}
	}
	return cc
}

// Mass returns the mass of the part plus everything attached to it.
func (ar *Arena) Mass(id ID) float64 {
	a := ar.parts[id]
	if a == nil {
		return 0
	}

	m := a.Mass
	for _, c := range ar.Children(id) {
		m += ar.Mass(c.id)
	}

	return m
}

// Gibs returns every part destroyed so far.
func (ar *Arena) Gibs() []Gib {
	return ar.gibs
}

func (ar *Arena) gib(a *Attachable, impulse math2d.Vector, blast float64, ignore ID) {
	ar.gibs = append(ar.gibs, Gib{
		ID:      a.id,
		Name:    a.Name,
		Kind:    a.Kind,
		Pos:     a.pos,
		Impulse: impulse,
		Blast:   blast,
		Ignore:  ignore,
	})

	delete(ar.parts, a.id)
}

// Update positions every attached part at its joint, parents first, and lets
// the loose ones fall.
func (ar *Arena) Update(dt float64, gravity math2d.Vector) {
	var walk func(id ID)
	walk = func(id ID) {
		for _, c := range ar.Children(id) {
			c.update(dt, gravity)
			walk(c.id)
		}
	}

	walk(Root)

	for _, id := range ar.order {
		a := ar.parts[id]
		if a != nil && a.id != Root && !a.IsAttached() {
			a.update(dt, gravity)
			walk(a.id)
		}
	}
}

// TransferImpulses rolls the impulses of every part up towards the root,
// deepest first, and adds what reaches the root to acc. Returns the parts whose
// joints broke, sorted by ID.
func (ar *Arena) TransferImpulses(acc *math2d.Vector) []*Attachable {
	broken := []*Attachable{}

	var walk func(p *Attachable, into *math2d.Vector)
	walk = func(p *Attachable, into *math2d.Vector) {
		for _, c := range ar.Children(p.id) {
			walk(c, &c.impulse)
			if !c.TransferJointImpulses(into) {
				broken = append(broken, c)
			}
		}
	}

	if r := ar.Root(); r != nil {
		walk(r, acc)
	}

	sort.Slice(broken, func(i, j int) bool {
		return broken[i].id < broken[j].id
	})

	return broken
}

// TransferForces is TransferImpulses for forces, which never break joints.
func (ar *Arena) TransferForces(acc *math2d.Vector) {
	var walk func(p *Attachable, into *math2d.Vector)
	walk = func(p *Attachable, into *math2d.Vector) {
		for _, c := range ar.Children(p.id) {
			walk(c, &c.force)
			c.TransferJointForces(into)
		}
	}

	if r := ar.Root(); r != nil {
		walk(r, acc)
	}
}
