package kindle

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is redrawn, in seconds.
const fpsRefresh = 0.5

// fpsOverlay displays FPS, TPS, and the particle population. Its image is
// redrawn every fpsRefresh seconds and blitted every frame.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	dirty   bool
	op      ebiten.DrawImageOptions
}

func newFPSOverlay() *fpsOverlay {
	// 160x32 fits two lines of ebitenutil's debug font.
	return &fpsOverlay{
		img:   ebiten.NewImage(160, 32),
		dirty: true,
	}
}

func (o *fpsOverlay) update(dt float64, s *Stage) {
	o.elapsed += dt
	if !o.dirty && o.elapsed < fpsRefresh {
		return
	}
	o.elapsed = 0
	o.dirty = false

	status := s.style.String()
	switch {
	case s.Recording():
		status += " REC"
	case s.Paused():
		status += " paused"
	}

	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f TPS: %.1f\n%d/%d %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(), s.sim.Len(), s.sim.MaxParticles(), status))
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, &o.op)
}
