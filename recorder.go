package kindle

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// DefaultRecordFPS is the GIF frame rate.
	DefaultRecordFPS = 30
	// DefaultRecordDuration caps a recording; it stops on its own after this.
	DefaultRecordDuration = 5 * time.Second
)

// Recorder collects composited frames into an animated GIF. Frames are
// offered once per Draw and sampled down to the recording frame rate.
type Recorder struct {
	every     int // capture one frame in every this many
	delay     int // per-frame delay in 1/100 s
	maxFrames int

	recording bool
	tick      int
	frames    []*image.Paletted
	delays    []int
}

// NewRecorder creates an idle recorder sampling at fps for at most d.
func NewRecorder(fps int, d time.Duration) *Recorder {
	if fps <= 0 {
		fps = DefaultRecordFPS
	}
	if d <= 0 {
		d = DefaultRecordDuration
	}
	return &Recorder{
		every:     max(1, int(math.Round(ReferenceFrameRate/float64(fps)))),
		delay:     max(1, int(math.Round(100/float64(fps)))),
		maxFrames: max(1, int(d.Seconds()*float64(fps))),
	}
}

// Start discards any previous frames and begins recording.
func (r *Recorder) Start() {
	r.recording = true
	r.tick = 0
	r.frames = r.frames[:0]
	r.delays = r.delays[:0]
}

// Recording reports whether frames are being collected.
func (r *Recorder) Recording() bool { return r.recording }

// Len returns the number of captured frames.
func (r *Recorder) Len() int { return len(r.frames) }

// Full reports whether the recording reached its maximum length.
func (r *Recorder) Full() bool { return len(r.frames) >= r.maxFrames }

// Tick advances the frame counter and reports whether the current frame
// should be captured.
func (r *Recorder) Tick() bool {
	if !r.recording || r.Full() {
		return false
	}
	due := r.tick%r.every == 0
	r.tick++
	return due
}

// Add quantizes img to the GIF palette and appends it.
func (r *Recorder) Add(img image.Image) {
	if !r.recording || r.Full() {
		return
	}
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	r.frames = append(r.frames, p)
	r.delays = append(r.delays, r.delay)
}

// Stop ends recording and returns the animation, or nil when no frame was
// captured.
func (r *Recorder) Stop() *gif.GIF {
	r.recording = false
	if len(r.frames) == 0 {
		return nil
	}
	g := &gif.GIF{
		Image: append([]*image.Paletted(nil), r.frames...),
		Delay: append([]int(nil), r.delays...),
	}
	r.frames = r.frames[:0]
	r.delays = r.delays[:0]
	return g
}

// EncodeGIF writes g to w.
func EncodeGIF(w io.Writer, g *gif.GIF) error {
	if err := gif.EncodeAll(w, g); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// WriteGIF encodes g to a file at the given path.
func WriteGIF(path string, g *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeGIF(f, g); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ToggleRecording starts a GIF recording, or stops the current one and
// writes it to ScreenshotDir.
func (s *Stage) ToggleRecording() {
	if s.recorder.Recording() {
		s.finishRecording()
		return
	}
	s.recorder.Start()
	if s.debug {
		logf("recording started")
	}
}

// Recording reports whether a GIF recording is in progress.
func (s *Stage) Recording() bool { return s.recorder.Recording() }

func (s *Stage) captureRecording(screen *ebiten.Image) {
	if !s.recorder.Tick() {
		return
	}
	s.recorder.Add(readScreen(screen))
	if s.recorder.Full() {
		s.finishRecording()
	}
}

func (s *Stage) finishRecording() {
	g := s.recorder.Stop()
	if g == nil {
		logf("recording: no frames captured")
		return
	}
	path, err := outputPath(s.ScreenshotDir, "fire", ".gif", time.Now())
	if err != nil {
		logf("recording: %v", err)
		return
	}
	if err := WriteGIF(path, g); err != nil {
		logf("recording: %v", err)
		return
	}
	logf("recording: wrote %d frames to %s", len(g.Image), path)
}
