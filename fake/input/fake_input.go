package input

import (
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/math2d"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "input",
})

// FakeInput is a controller source which holds the same intents until they
// are changed.
type FakeInput struct {
	Intents []controller.Intent
	Aim     math2d.Vector

	// Number of times Read has been called.
	Reads int
}

func New(intents ...controller.Intent) *FakeInput {
	return &FakeInput{
		Intents: intents,
	}
}

// Parse returns a source holding the named intents, e.g. "MOVE_RIGHT".
func Parse(names []string) (*FakeInput, error) {
	f := New()
	for _, n := range names {
		i, err := controller.ParseIntent(n)
		if err != nil {
			return nil, err
		}
		f.Intents = append(f.Intents, i)
	}

	return f, nil
}

// Hold replaces the intents.
func (f *FakeInput) Hold(intents ...controller.Intent) {
	log.Debugf("holding %v", intents)
	f.Intents = intents
}

func (f *FakeInput) Read(now float64, st *controller.State) {
	f.Reads += 1
	for _, i := range f.Intents {
		st.Set(i, true)
	}
	st.AnalogAim = f.Aim
}
