package kindle

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled PNG of the composited frame. It is captured
// at the end of the current Draw, before any overlay, and written to
// ScreenshotDir.
func (s *Stage) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

func (s *Stage) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	img := readScreen(screen)
	now := time.Now()
	for _, label := range s.screenshotQueue {
		path, err := outputPath(s.ScreenshotDir, label, ".png", now)
		if err == nil {
			err = WritePNG(path, img)
		}
		switch {
		case err != nil:
			logf("screenshot: %v", err)
		case s.debug:
			logf("screenshot: wrote %s", path)
		}
	}
	s.screenshotQueue = s.screenshotQueue[:0]
}

// outputPath creates dir if needed and returns a timestamped file name in
// it, e.g. 20250101_120000_250_fire.png. A name already on disk gets a
// counter suffix (_2, _3, ...).
func outputPath(dir, label, ext string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	base := fmt.Sprintf("%s_%03d_%s", at.Format("20060102_150405"), at.Nanosecond()/int(time.Millisecond), sanitizeLabel(label))
	path := filepath.Join(dir, base+ext)
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readScreen copies a GPU image into a straight-alpha NRGBA image.
func readScreen(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(rgba.Pix)
	return toNRGBA(rgba)
}

// WritePNG encodes img to a PNG file.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', maps everything else to
// '_', and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
