package kindle

// The flame source is expressed in texture space: normalized 0-1 with the
// origin at the bottom-left, Y up. The flame shader consumes it unchanged.
// Particles live in screen space: pixels with the origin at the top-left,
// Y down. Every conversion between the two goes through this file.

// SourceToScreen converts a normalized texture-space point to screen pixels
// for a canvas of the given size.
func SourceToScreen(nx, ny, width, height float64) (x, y float64) {
	return nx * width, (1 - ny) * height
}

// ScreenToSource converts screen pixels back to normalized texture space.
// A zero-sized canvas maps everything to the origin.
func ScreenToSource(x, y, width, height float64) (nx, ny float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return x / width, 1 - y/height
}

// SourceHalfWidth returns half the emission span in pixels for a normalized
// source size.
func SourceHalfWidth(size, width float64) float64 {
	return size * width / 2
}

// VelocityToSource converts a screen-space velocity (pixels per second) to
// texture space (normalized units per second). Y flips sign.
func VelocityToSource(vx, vy, width, height float64) (nvx, nvy float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return vx / width, -vy / height
}
