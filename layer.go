package kindle

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Layer is a persistent offscreen canvas owned by the Stage. The flame field
// and the particle overlay each render into their own Layer, and the layers
// are composited onto the screen and into exports.
type Layer struct {
	image *ebiten.Image
	w, h  int
	blend BlendMode
}

// NewLayer creates a layer of the given size composited with blend.
func NewLayer(w, h int, blend BlendMode) *Layer {
	return &Layer{
		image: ebiten.NewImage(max(w, 1), max(h, 1)),
		w:     max(w, 1),
		h:     max(h, 1),
		blend: blend,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (l *Layer) Image() *ebiten.Image {
	return l.image
}

// Size returns the layer size in pixels.
func (l *Layer) Size() (w, h int) {
	return l.w, l.h
}

// Clear fills the layer with transparent black.
func (l *Layer) Clear() {
	l.image.Clear()
}

// DrawTo composites the layer onto dst at the origin.
func (l *Layer) DrawTo(dst *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.Blend = l.blend.EbitenBlend()
	dst.DrawImage(l.image, &op)
}

// Resize reallocates the layer when the size changes. Contents are lost.
// It reports whether a reallocation happened.
func (l *Layer) Resize(w, h int) bool {
	w, h = max(w, 1), max(h, 1)
	if w == l.w && h == l.h {
		return false
	}
	if l.image != nil {
		l.image.Deallocate()
	}
	l.image = ebiten.NewImage(w, h)
	l.w, l.h = w, h
	return true
}

// Dispose deallocates the underlying image. The Layer should not be used
// after calling Dispose.
func (l *Layer) Dispose() {
	if l.image != nil {
		l.image.Deallocate()
		l.image = nil
	}
}
