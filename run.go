package kindle

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the initial window size in pixels. Zero uses the
	// stage's current size.
	Width, Height int
	// ShowFPS enables the FPS and population overlay.
	ShowFPS bool
	// ScreenshotDir overrides where screenshots and recordings are written.
	ScreenshotDir string
	// Debug enables per-frame timing logs.
	Debug bool
}

// Run opens a resizable window and runs the stage until it is closed. Real
// keyboard and pointer input are enabled. This is a convenience wrapper;
// callers needing full control can pass the Stage to ebiten.RunGame.
func Run(s *Stage, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = s.Size()
	}
	if cfg.Title == "" {
		cfg.Title = "kindle"
	}
	if cfg.ScreenshotDir != "" {
		s.ScreenshotDir = cfg.ScreenshotDir
	}
	s.ShowFPS = cfg.ShowFPS
	s.SetDebugMode(cfg.Debug)
	s.liveInput = true

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(s); err != nil {
		return fmt.Errorf("run %s: %w", cfg.Title, err)
	}
	return nil
}
