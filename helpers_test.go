package kindle

import (
	"bytes"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertWithin(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

// captureLog redirects logf output to a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logOutput
	logOutput = &buf
	t.Cleanup(func() { logOutput = prev })
	return &buf
}

// fakeClock returns a clock that advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newTestStage(t *testing.T) *Stage {
	t.Helper()
	s := NewStage(StageConfig{Width: 800, Height: 600, Seed: 1})
	s.ScreenshotDir = t.TempDir()
	return s
}

func newTestSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.Width == 0 {
		cfg.Width, cfg.Height = 800, 600
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return NewSimulator(cfg)
}
