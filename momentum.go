package kindle

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	// CoastFriction is the fraction of coast velocity kept per reference
	// frame after the pointer is released.
	CoastFriction = 0.92
	// CoastEpsilon is the speed, in texture units per second, below which
	// coasting stops.
	CoastEpsilon = 0.01

	springFrequency = 7.0
	springDamping   = 0.85
	velocitySmooth  = 0.5
)

// Momentum turns pointer drags into a flame source position and a drag
// velocity. While dragging, the source follows the pointer through a
// spring; after release it coasts along the last drag velocity with
// friction until it drops below CoastEpsilon. Positions are in texture space
// and are clamped to [0, 1] on every write.
type Momentum struct {
	spring   harmonica.Spring
	frameDT  float64
	acc      float64
	dragging bool
	coasting bool

	x, y             float64 // current source position
	sx, sy           float64 // spring velocity
	targetX, targetY float64
	vx, vy           float64 // drag velocity, texture units per second
}

// NewMomentum creates an idle Momentum resting at (x, y).
func NewMomentum(x, y float64) *Momentum {
	m := &Momentum{
		spring:  harmonica.NewSpring(harmonica.FPS(ReferenceFrameRate), springFrequency, springDamping),
		frameDT: 1 / ReferenceFrameRate,
	}
	m.Reset(x, y)
	return m
}

// Reset stops any drag or coast and places the source at (x, y).
func (m *Momentum) Reset(x, y float64) {
	m.x, m.y = clamp01(x), clamp01(y)
	m.targetX, m.targetY = m.x, m.y
	m.sx, m.sy = 0, 0
	m.vx, m.vy = 0, 0
	m.acc = 0
	m.dragging = false
	m.coasting = false
}

// Press starts a drag at texture-space point (x, y). Any coast in progress
// is cancelled.
func (m *Momentum) Press(x, y float64) {
	m.dragging = true
	m.coasting = false
	m.vx, m.vy = 0, 0
	m.targetX, m.targetY = clamp01(x), clamp01(y)
}

// Move updates the drag target. dt is the time since the previous pointer
// sample and is used to estimate drag velocity.
func (m *Momentum) Move(x, y, dt float64) {
	if !m.dragging {
		return
	}
	x, y = clamp01(x), clamp01(y)
	if dt > 0 {
		ix := (x - m.targetX) / dt
		iy := (y - m.targetY) / dt
		m.vx = clampVelocity(lerp(m.vx, ix, velocitySmooth))
		m.vy = clampVelocity(lerp(m.vy, iy, velocitySmooth))
	}
	m.targetX, m.targetY = x, y
}

// Release ends the drag. If the last drag velocity is fast enough the
// source starts coasting.
func (m *Momentum) Release() {
	if !m.dragging {
		return
	}
	m.dragging = false
	m.coasting = math.Hypot(m.vx, m.vy) >= CoastEpsilon
	if !m.coasting {
		m.vx, m.vy = 0, 0
	}
}

// Update advances coasting and the spring by dt seconds and returns the new
// source position.
func (m *Momentum) Update(dt float64) (x, y float64) {
	if dt <= 0 {
		return m.x, m.y
	}
	dt = math.Min(dt, MaxDeltaTime)

	if m.coasting {
		m.coast(dt)
	}

	m.acc += dt
	for m.acc >= m.frameDT {
		m.acc -= m.frameDT
		m.x, m.sx = m.spring.Update(m.x, m.sx, m.targetX)
		m.y, m.sy = m.spring.Update(m.y, m.sy, m.targetY)
		m.x, m.y = clamp01(m.x), clamp01(m.y)
	}
	return m.x, m.y
}

func (m *Momentum) coast(dt float64) {
	f := math.Pow(CoastFriction, dt*ReferenceFrameRate)
	m.vx *= f
	m.vy *= f

	m.targetX += m.vx * dt
	m.targetY += m.vy * dt
	if m.targetX <= 0 || m.targetX >= 1 {
		m.vx = 0
	}
	if m.targetY <= 0 || m.targetY >= 1 {
		m.vy = 0
	}
	m.targetX, m.targetY = clamp01(m.targetX), clamp01(m.targetY)

	if math.Hypot(m.vx, m.vy) < CoastEpsilon {
		m.vx, m.vy = 0, 0
		m.coasting = false
	}
}

// Position returns the current source position in texture space.
func (m *Momentum) Position() (x, y float64) { return m.x, m.y }

// Target returns the point the source is moving toward.
func (m *Momentum) Target() (x, y float64) { return m.targetX, m.targetY }

// Velocity returns the drag velocity in texture units per second. It is
// zero when the source is neither dragged nor coasting.
func (m *Momentum) Velocity() (vx, vy float64) { return m.vx, m.vy }

// Dragging reports whether a drag is in progress.
func (m *Momentum) Dragging() bool { return m.dragging }

// Coasting reports whether the source is coasting after a release.
func (m *Momentum) Coasting() bool { return m.coasting }

// Active reports whether the source is being dragged, coasting, or still
// settling toward its target.
func (m *Momentum) Active() bool {
	const settle = 1e-4
	return m.dragging || m.coasting ||
		math.Abs(m.x-m.targetX) > settle || math.Abs(m.y-m.targetY) > settle
}

func clampVelocity(v float64) float64 {
	return clamp(v, -DragVelocityLimit, DragVelocityLimit)
}
