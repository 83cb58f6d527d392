package main

import (
	"fmt"
	"math"

	core "github.com/adammck/crab"
	"github.com/adammck/crab/components/crab"
	"github.com/adammck/crab/math2d"
	"github.com/gdamore/tcell/v2"
)

var (
	groundStyle = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	bodyStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	pathStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	jointStyle  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	statusStyle = tcell.StyleDefault.Reverse(true)

	footStyles = [crab.LayerCount]tcell.Style{
		crab.FGROUND: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
		crab.BGROUND: tcell.StyleDefault.Foreground(tcell.ColorOrange),
	}
)

// view draws a crab and the terrain around it. The crab stays in the middle of
// the screen.
type view struct {

	// Pixels per column. Rows are twice as tall, like terminal cells.
	scale float64

	center math2d.Vector
	w, h   int
}

// cell returns the screen cell of a scene position.
func (v *view) cell(p math2d.Vector) (int, int) {
	x := (p.X-v.center.X)/v.scale + float64(v.w)/2
	y := (p.Y-v.center.Y)/(v.scale*2) + float64(v.h)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// pos returns the scene position in the middle of a screen cell.
func (v *view) pos(x, y int) math2d.Vector {
	return math2d.Vector{
		X: (float64(x)+0.5-float64(v.w)/2)*v.scale + v.center.X,
		Y: (float64(y)+0.5-float64(v.h)/2)*v.scale*2 + v.center.Y,
	}
}

func (v *view) put(s tcell.Screen, p math2d.Vector, r rune, st tcell.Style) {
	x, y := v.cell(p)
	if x < 0 || y < 0 || x >= v.w || y >= v.h-1 {
		return
	}
	s.SetContent(x, y, r, nil, st)
}

func (v *view) text(s tcell.Screen, y int, msg string, st tcell.Style) {
	for x := 0; x < v.w; x++ {
		r := ' '
		if x < len(msg) {
			r = rune(msg[x])
		}
		s.SetContent(x, y, r, nil, st)
	}
}

// draw renders one frame. The last row is the status line.
func (v *view) draw(s tcell.Screen, ctx *core.SimulationContext, c *crab.Crab) {
	v.w, v.h = s.Size()
	b := c.Body()
	v.center = b.Position()
	s.Clear()

	if ctx.Terrain != nil {
		for y := 0; y < v.h-1; y++ {
			for x := 0; x < v.w; x++ {
				if ctx.Terrain.IsSolid(v.pos(x, y)) {
					s.SetContent(x, y, '#', nil, groundStyle)
				}
			}
		}
	}

	for side := crab.Side(0); side < crab.SideCount; side++ {
		for l := crab.Layer(0); l < crab.LayerCount; l++ {
			limb := c.Limb(side, l)
			if limb == nil {
				continue
			}

			if lp := c.Paths[side][l][c.MoveState]; lp != nil {
				for _, p := range lp.Points() {
					v.put(s, p, '.', pathStyle)
				}
			}

			v.put(s, limb.Leg.JointPos(), 'o', jointStyle)
			v.put(s, limb.Feet.LimbPos(), '*', footStyles[l])
		}
	}

	v.put(s, b.Position(), '@', bodyStyle)

	v.text(s, v.h-1, fmt.Sprintf(" t=%.2fs %v strides=%d/%d pos=%v  [a/d] walk [w] jump [space] pause [q] quit",
		ctx.SimTime, c, c.Strides(crab.LEFTSIDE), c.Strides(crab.RIGHTSIDE), b.Position()), statusStyle)

	s.Show()
}
