package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/config"
	"github.com/adammck/crab/fake/input"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
	"github.com/sirupsen/logrus"
)

var (
	crabPath   = flag.String("crab", "", "the crab definition (yaml)")
	rocketPath = flag.String("rocket", "", "a rocket definition (yaml), to deliver the crab")
	seconds    = flag.Float64("seconds", 10, "simulated seconds to run for")
	rate       = flag.Int("rate", 60, "ticks per simulated second")
	realtime   = flag.Bool("realtime", false, "tick at wall clock speed")
	hold       = flag.String("hold", "", "intents to hold, e.g. MOVE_RIGHT,MOVE_FAST")
	padPath    = flag.String("controller", "", "the sixaxis event device, e.g. /dev/input/event0")
	ground     = flag.Float64("ground", 400, "height of the ground, in pixels")
	drop       = flag.Float64("drop", 300, "height above the ground to drop the rocket from")
	debug      = flag.Bool("debug", false, "log every state change")
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

type options struct {
	crab   string
	rocket string
	rate   int
	ground float64
	drop   float64
	source controller.Source
}

// setup returns a world containing the crab, either standing on the ground or
// (if there's a rocket) riding down in the rocket.
func setup(o options) (*core.World, error) {
	space := terrain.NewSpace()
	space.AddFlatGround(o.ground, terrain.Dirt)
	w := core.NewWorld(space, 1.0/float64(o.rate))

	cd, err := config.LoadCrab(o.crab)
	if err != nil {
		return nil, err
	}

	c, err := cd.Build()
	if err != nil {
		return nil, err
	}

	if o.source != nil {
		c.Controller.Source = o.source
	}

	c.Body().SetPosition(math2d.Vector{X: 0, Y: o.ground - c.Body().Radius})

	if o.rocket == "" {
		w.Add(c)
		return w, nil
	}

	// The crab isn't in the world until it's dropped, so boot it now.
	err = c.Boot()
	if err != nil {
		return nil, fmt.Errorf("%w (while booting %s)", err, c.Name)
	}

	rd, err := config.LoadRocket(o.rocket)
	if err != nil {
		return nil, err
	}

	r, err := rd.Build()
	if err != nil {
		return nil, err
	}

	r.Body().SetPosition(math2d.Vector{X: 0, Y: o.ground - r.Body().Radius - o.drop})
	r.Cargo = append(r.Cargo, c)
	r.OnUnload = func(a core.Actor) {
		log.Infof("%s dropped %s", r.Name, a.Body().Name)
		w.Add(a)
	}

	w.Add(r)
	return w, nil
}

func main() {
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *crabPath == "" || *rate <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	o := options{
		crab:   *crabPath,
		rocket: *rocketPath,
		rate:   *rate,
		ground: *ground,
		drop:   *drop,
	}

	var pad *controller.Sixaxis
	if *padPath != "" {
		log.Infof("opening controller: %s", *padPath)
		f, err := os.Open(*padPath)
		if err != nil {
			log.Fatalf("error opening controller: %s", err)
		}
		defer f.Close()

		pad = controller.NewSixaxis(f)
		err = pad.Boot()
		if err != nil {
			log.Fatalf("error booting controller: %s", err)
		}
		o.source = pad

	} else if *hold != "" {
		src, err := input.Parse(strings.Split(*hold, ","))
		if err != nil {
			log.Fatalf("error parsing -hold: %s", err)
		}
		o.source = src
	}

	w, err := setup(o)
	if err != nil {
		log.Fatalf("error while setting up: %s", err)
	}

	err = w.Boot()
	if err != nil {
		log.Fatalf("error while booting: %s", err)
	}

	// Catch both SIGINT (ctrl+c) and SIGTERM (kill/systemd), to stop after the
	// current tick rather than in the middle of one.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var tick <-chan time.Time
	if *realtime {
		t := time.NewTicker(time.Second / time.Duration(*rate))
		defer t.Stop()
		tick = t.C
	}

	log.Infof("running for %.1fs", *seconds)
	end := w.Context.SimTime + *seconds
	for n := 0; w.Context.SimTime < end && !w.Shutdown; n++ {
		if tick != nil {
			<-tick
		}

		select {
		case <-sig:
			log.Infof("caught signal, shutting down")
			w.Shutdown = true
		default:
		}

		if pad != nil && pad.Quit {
			w.Shutdown = true
		}

		err = w.Tick()
		if err != nil {
			log.Warnf("error while ticking: %s", err)
		}

		if n%*rate == 0 {
			for _, a := range w.Actors {
				b := a.Body()
				log.Infof("t=%.2f %v pos=%v vel=%v", w.Context.SimTime, a, b.Position(), b.Vel())
			}
		}
	}
}
