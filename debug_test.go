package kindle

import (
	"strings"
	"testing"
	"time"
)

func TestLogfPrefix(t *testing.T) {
	buf := captureLog(t)
	logf("hello %d", 42)
	if got := buf.String(); got != "[kindle] hello 42\n" {
		t.Errorf("logf wrote %q", got)
	}
}

func TestDebugLogOnlyWhenEnabled(t *testing.T) {
	s := newTestStage(t)
	buf := captureLog(t)

	stats := frameStats{
		updateTime:   2 * time.Millisecond,
		drawTime:     3 * time.Millisecond,
		particles:    12,
		maxParticles: 80,
	}
	s.debugLog(stats)
	if buf.Len() != 0 {
		t.Fatalf("debugLog wrote %q with debug off", buf.String())
	}

	s.SetDebugMode(true)
	s.debugLog(stats)
	out := buf.String()
	for _, want := range []string{"update: 2ms", "draw: 3ms", "total: 5ms", "particles: 12/80", "style: realistic"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q: %q", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("debug log has %d lines, want 2", n)
	}
}

func TestDebugPresetLogged(t *testing.T) {
	s := newTestStage(t)
	s.SetDebugMode(true)
	buf := captureLog(t)
	s.ApplyPreset("torch")
	if !strings.Contains(buf.String(), "preset: Torch") {
		t.Errorf("log = %q", buf.String())
	}
}
