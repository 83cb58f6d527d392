// Command gaitview runs a crab and draws its limb paths and feet in the
// terminal, to check that a gait looks right.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/controller"
	"github.com/adammck/crab/config"
	"github.com/adammck/crab/fake/input"
	"github.com/adammck/crab/math2d"
	"github.com/adammck/crab/terrain"
	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
)

var (
	crabPath = flag.String("crab", "", "the crab definition (yaml)")
	scale    = flag.Float64("scale", 1, "pixels per column")
	rate     = flag.Int("rate", 60, "ticks per second")
	slow     = flag.Float64("slow", 1, "slow motion factor")
)

func main() {
	flag.Parse()

	if *crabPath == "" || *rate <= 0 || *slow <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	// Log lines would scribble over the screen.
	logrus.SetOutput(io.Discard)

	err := run()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	d, err := config.LoadCrab(*crabPath)
	if err != nil {
		return err
	}

	c, err := d.Build()
	if err != nil {
		return err
	}

	const groundY = 200.0
	space := terrain.NewSpace()
	space.AddFlatGround(groundY, terrain.Dirt)
	c.Body().SetPosition(math2d.Vector{X: 0, Y: groundY - c.Body().Radius})

	src := input.New()
	c.Controller.Source = src

	w := core.NewWorld(space, 1.0/float64(*rate))
	w.Add(c)
	err = w.Boot()
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	err = s.Init()
	if err != nil {
		return err
	}
	defer s.Fini()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	v := &view{scale: *scale}
	interval := time.Duration(float64(time.Second) * *slow / float64(*rate))
	t := time.NewTicker(interval)
	defer t.Stop()

	paused := false
	for !w.Shutdown {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()

			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					w.Shutdown = true
					break
				}

				switch ev.Rune() {
				case 'q':
					w.Shutdown = true
				case ' ':
					paused = !paused
				case 'a':
					src.Hold(controller.MoveLeft)
				case 'd':
					src.Hold(controller.MoveRight)
				case 'w':
					src.Hold(controller.BodyJump)
				case 's':
					src.Hold()
				}
			}

		case <-t.C:
			if paused {
				continue
			}

			err = w.Tick()
			if err != nil {
				return err
			}

			v.draw(s, w.Context, c)
		}
	}

	return nil
}
