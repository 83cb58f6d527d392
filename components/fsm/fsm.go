package fsm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "fsm",
})

// Table is a transition table. Events which have no edge from a state leave
// the machine where it is.
type Table[S comparable, E comparable] struct {
	Name  string
	edges map[S]map[E]S
}

func NewTable[S comparable, E comparable](name string) *Table[S, E] {
	return &Table[S, E]{
		Name:  name,
		edges: map[S]map[E]S{},
	}
}

// Add adds an edge, replacing any existing one for the same state and event.
func (t *Table[S, E]) Add(from S, e E, to S) *Table[S, E] {
	m, ok := t.edges[from]
	if !ok {
		m = map[E]S{}
		t.edges[from] = m
	}

	m[e] = to
	return t
}

// AddAll adds the same edge from every one of the given states. Useful for
// aborts.
func (t *Table[S, E]) AddAll(from []S, e E, to S) *Table[S, E] {
	for _, s := range from {
		t.Add(s, e, to)
	}
	return t
}

// Transition returns the state which the event leads to from s.
func (t *Table[S, E]) Transition(s S, e E) S {
	if to, ok := t.edges[s][e]; ok {
		return to
	}
	return s
}

// Has returns true if the event leads anywhere from s.
func (t *Table[S, E]) Has(s S, e E) bool {
	_, ok := t.edges[s][e]
	return ok
}

// Machine is a table plus the current state, and how long it's been in it.
type Machine[S comparable, E comparable] struct {
	Table *Table[S, E]

	state   S
	elapsed float64
	ticks   int
}

func NewMachine[S comparable, E comparable](t *Table[S, E], initial S) *Machine[S, E] {
	return &Machine[S, E]{
		Table: t,
		state: initial,
	}
}

func (m *Machine[S, E]) State() S {
	return m.state
}

// SetState moves to s, resetting the time spent in the state even if it's the
// same one.
func (m *Machine[S, E]) SetState(s S) {
	if s != m.state {
		log.Debugf("%s: state=%v", m.Table.Name, s)
	}

	m.state = s
	m.elapsed = 0
	m.ticks = 0
}

// Fire applies the event, and returns true if the state changed.
func (m *Machine[S, E]) Fire(e E) bool {
	to := m.Table.Transition(m.state, e)
	if to == m.state {
		return false
	}

	m.SetState(to)
	return true
}

// Tick advances the time spent in the current state by dt seconds.
func (m *Machine[S, E]) Tick(dt float64) {
	m.elapsed += dt
	m.ticks += 1
}

// Elapsed returns the seconds spent in the current state.
func (m *Machine[S, E]) Elapsed() float64 {
	return m.elapsed
}

// Ticks returns the number of ticks spent in the current state.
func (m *Machine[S, E]) Ticks() int {
	return m.ticks
}

// Entered returns true until the first tick in the current state.
func (m *Machine[S, E]) Entered() bool {
	return m.ticks == 0
}

func (m *Machine[S, E]) String() string {
	return fmt.Sprintf("%s(%v, %.2fs)", m.Table.Name, m.state, m.elapsed)
}
