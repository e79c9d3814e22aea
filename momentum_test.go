package kindle

import (
	"math"
	"testing"
)

func TestMomentumIdle(t *testing.T) {
	m := NewMomentum(0.5, 0.2)
	if m.Active() {
		t.Error("new momentum should be idle")
	}
	x, y := m.Update(frame)
	assertNear(t, "x", x, 0.5)
	assertNear(t, "y", y, 0.2)
}

func TestMomentumDragFollowsPointer(t *testing.T) {
	m := NewMomentum(0.5, 0.2)
	m.Press(0.5, 0.2)
	for i := 1; i <= 30; i++ {
		m.Move(0.5+float64(i)*0.005, 0.2, frame)
		m.Update(frame)
	}
	if !m.Dragging() {
		t.Fatal("expected Dragging")
	}
	vx, vy := m.Velocity()
	assertWithin(t, "vx", vx, 0.3, 0.01)
	assertNear(t, "vy", vy, 0)

	// Hold still long enough for the spring to settle on the pointer.
	for range 120 {
		m.Move(0.65, 0.2, frame)
		m.Update(frame)
	}
	x, _ := m.Position()
	assertWithin(t, "x settles on pointer", x, 0.65, 1e-3)
	vx, _ = m.Velocity()
	assertWithin(t, "held pointer velocity", vx, 0, 1e-6)
}

func TestMomentumCoastStopsBelowEpsilon(t *testing.T) {
	m := NewMomentum(0.3, 0.5)
	m.Press(0.3, 0.5)
	m.Move(0.31, 0.5, frame)
	m.Move(0.32, 0.5, frame)
	m.Release()
	if !m.Coasting() {
		t.Fatal("fast release should coast")
	}

	steps := 0
	for m.Coasting() {
		m.Update(frame)
		steps++
		if steps > 600 {
			t.Fatal("coast never stopped")
		}
		vx, vy := m.Velocity()
		if m.Coasting() && math.Hypot(vx, vy) < CoastEpsilon {
			t.Fatalf("still coasting at speed %v", math.Hypot(vx, vy))
		}
		x, y := m.Position()
		if x < 0 || x > 1 || y < 0 || y > 1 {
			t.Fatalf("position %v,%v left [0,1]", x, y)
		}
	}
	vx, vy := m.Velocity()
	if vx != 0 || vy != 0 {
		t.Errorf("velocity after coast = %v,%v, want 0", vx, vy)
	}
	tx, _ := m.Target()
	if tx <= 0.32 {
		t.Errorf("target %v did not coast past the release point", tx)
	}
}

func TestMomentumSlowReleaseDoesNotCoast(t *testing.T) {
	m := NewMomentum(0.5, 0.5)
	m.Press(0.5, 0.5)
	m.Move(0.5, 0.5, frame)
	m.Release()
	if m.Coasting() {
		t.Error("stationary release should not coast")
	}
}

func TestMomentumCoastClampsAtEdge(t *testing.T) {
	m := NewMomentum(0.95, 0.5)
	m.Press(0.95, 0.5)
	for i := 1; i <= 5; i++ {
		m.Move(0.95+float64(i)*0.01, 0.5, frame)
	}
	m.Release()
	for range 300 {
		x, y := m.Update(frame)
		if x < 0 || x > 1 || y < 0 || y > 1 {
			t.Fatalf("position %v,%v left [0,1]", x, y)
		}
	}
	tx, _ := m.Target()
	assertNear(t, "target x", tx, 1)
	if m.Coasting() {
		t.Error("coast should stop at the edge")
	}
}

func TestMomentumVelocityClamped(t *testing.T) {
	m := NewMomentum(0, 0)
	m.Press(0, 0)
	m.Move(1, 1, 0.001)
	vx, vy := m.Velocity()
	if vx > DragVelocityLimit || vy > DragVelocityLimit {
		t.Errorf("velocity %v,%v exceeds limit %v", vx, vy, DragVelocityLimit)
	}
}

func TestMomentumPressCancelsCoast(t *testing.T) {
	m := NewMomentum(0.3, 0.5)
	m.Press(0.3, 0.5)
	m.Move(0.35, 0.5, frame)
	m.Release()
	m.Press(0.4, 0.4)
	if m.Coasting() || !m.Dragging() {
		t.Error("press should cancel coasting and start a drag")
	}
	vx, vy := m.Velocity()
	if vx != 0 || vy != 0 {
		t.Errorf("velocity after press = %v,%v, want 0", vx, vy)
	}
}

func TestMomentumReset(t *testing.T) {
	m := NewMomentum(0.5, 0.5)
	m.Press(0.1, 0.1)
	m.Move(0.2, 0.2, frame)
	m.Reset(2, -1)
	x, y := m.Position()
	assertNear(t, "x", x, 1)
	assertNear(t, "y", y, 0)
	if m.Active() {
		t.Error("Reset should leave momentum idle")
	}
}
