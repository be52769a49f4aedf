package softrast

import "math"

// Viewport maps a square view window in scene units onto normalized device
// space [0,1]².
//
// The window is described by its center and its half-extent vspan. A single
// span controls both axes, so zoom is always isotropic.
type Viewport struct {
	centerX, centerY float64
	vspan            float64

	sceneToNorm Matrix
}

// NewViewport returns a viewport framing a scene of the given size: centered
// on the scene with a half-extent covering its larger dimension.
func NewViewport(width, height float64) *Viewport {
	v := &Viewport{sceneToNorm: Identity()}
	span := math.Max(width, height) / 2
	if span <= 0 {
		span = 1
	}
	v.SetViewbox(width/2, height/2, span)
	return v
}

// SetViewbox recomputes the scene-to-normalized transform so that the
// square [cx-vspan, cx+vspan] × [cy-vspan, cy+vspan] maps onto [0,1]².
// Non-positive spans are ignored.
func (v *Viewport) SetViewbox(cx, cy, vspan float64) {
	if !(vspan > 0) {
		Logger().Warn("softrast: ignoring non-positive viewbox span", "vspan", vspan)
		return
	}

	s := 0.5 / vspan
	v.sceneToNorm = Matrix{
		A: s, B: 0, C: 0.5 - cx*s,
		D: 0, E: s, F: 0.5 - cy*s,
	}

	v.centerX = cx
	v.centerY = cy
	v.vspan = vspan
}

// UpdateViewbox pans the window by (-dx, -dy) scene units and multiplies
// the span by scale. The result is not clamped to the scene bounds.
func (v *Viewport) UpdateViewbox(dx, dy, scale float64) {
	v.SetViewbox(v.centerX-dx, v.centerY-dy, v.vspan*scale)
}

// Viewbox returns the current window center and half-extent.
func (v *Viewport) Viewbox() (cx, cy, vspan float64) {
	return v.centerX, v.centerY, v.vspan
}

// SceneToNorm returns the scene-to-normalized-device transform.
func (v *Viewport) SceneToNorm() Matrix {
	return v.sceneToNorm
}

// SceneToScreen composes the normalized transform with the device-to-pixel
// scale for a canvas of width × height pixels.
func (v *Viewport) SceneToScreen(width, height int) Matrix {
	return Scale(float64(width), float64(height)).Multiply(v.sceneToNorm)
}

// ScreenToScene maps a pixel position on a width × height canvas back to
// scene coordinates.
func (v *Viewport) ScreenToScene(x, y float64, width, height int) Point {
	return v.SceneToScreen(width, height).Invert().TransformPoint(Pt(x, y))
}

// ZoomAt multiplies the span by scale, keeping the scene point under pixel
// (x, y) in place.
func (v *Viewport) ZoomAt(x, y float64, width, height int, scale float64) {
	p := v.ScreenToScene(x, y, width, height)
	f := scale - 1
	v.UpdateViewbox((p.X-v.centerX)*f, (p.Y-v.centerY)*f, scale)
}
