package kindle

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// logOutput receives all diagnostic output. Tests swap it for a buffer.
var logOutput io.Writer = os.Stderr

// logf writes one prefixed diagnostic line.
func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(logOutput, "[kindle] "+format+"\n", args...)
}

// frameStats holds per-frame timing and population metrics.
// Only populated when Stage.debug is true.
type frameStats struct {
	updateTime   time.Duration
	drawTime     time.Duration
	particles    int
	maxParticles int
}

// debugLog prints timing and population stats.
func (s *Stage) debugLog(stats frameStats) {
	if !s.debug {
		return
	}
	logf("update: %v | draw: %v | total: %v",
		stats.updateTime, stats.drawTime, stats.updateTime+stats.drawTime)
	logf("particles: %d/%d | style: %s | time: %.2f",
		stats.particles, stats.maxParticles, s.style, s.time)
}

var (
	debugSourceColor = color.RGBA{0x40, 0xe0, 0xff, 0xc0}
	debugDragColor   = color.RGBA{0xff, 0x60, 0x40, 0xc0}
)

// drawDebugOverlay marks the emission span and drag direction and prints the
// main parameters in the top-left corner.
func (s *Stage) drawDebugOverlay(screen *ebiten.Image) {
	w, h := float64(s.width), float64(s.height)
	cx, cy := s.sim.SourceCenter()
	half := SourceHalfWidth(s.params.FlameSourceSize, w)

	vector.StrokeLine(screen, float32(cx-half), float32(cy), float32(cx+half), float32(cy), 1, debugSourceColor, true)
	vector.StrokeCircle(screen, float32(cx), float32(cy), 4, 1, debugSourceColor, true)

	if vx, vy := s.params.DragVelocityX, s.params.DragVelocityY; vx != 0 || vy != 0 {
		// Drag velocity is in texture space; flip Y back for the screen.
		const scale = 0.05
		ex, ey := cx+vx*w*scale, cy-vy*h*scale
		vector.StrokeLine(screen, float32(cx), float32(cy), float32(ex), float32(ey), 2, debugDragColor, true)
	}

	p := &s.params
	msg := fmt.Sprintf(
		"intensity %.2f  height %.2f  turb %.2f\nspeed %.2f  temp %.2f  sat %.2f\nwind %.2f @ %.2f  source %.2f,%.2f\nparticles %d/%d",
		p.Intensity, p.Height, p.Turbulence,
		p.Speed, p.Temperature, p.Saturation,
		p.WindStrength, p.WindDirection, p.FlameSourceX, p.FlameSourceY,
		s.sim.Len(), s.sim.MaxParticles())
	ebitenutil.DebugPrintAt(screen, msg, 4, 36)
}
