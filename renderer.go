package softrast

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/softrast/internal/parallel"
)

// Renderer rasterizes scenes into a bound RGBA render target through a
// supersampled working buffer.
//
// A render is synchronous: DrawScene clears the sample buffer, walks the
// scene, outlines the canvas and resolves into the target before returning.
// A Renderer must not be used from more than one goroutine at a time, and
// the target or sample rate must not change while DrawScene runs.
type Renderer struct {
	target        []uint8
	width, height int
	sampleRate    int

	buf *SampleBuffer

	sceneToScreen Matrix

	triangulator Triangulator
	imageFilter  draw.Interpolator
	pool         *parallel.WorkerPool
}

// NewRenderer creates a renderer with no target bound.
// The scene-to-screen transform starts as the identity.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		sampleRate:    max(o.sampleRate, 1),
		sceneToScreen: Identity(),
		triangulator:  o.triangulator,
		imageFilter:   o.imageFilter,
	}
	if o.workers != 1 {
		r.pool = parallel.NewWorkerPool(o.workers)
	}
	return r
}

// SetRenderTarget binds buf as the output of subsequent renders and
// reallocates the sample buffer for the current sample rate.
// buf holds width×height tightly packed RGBA pixels and is written in place.
func (r *Renderer) SetRenderTarget(buf []uint8, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("softrast: invalid target size %dx%d", width, height)
	}
	if len(buf) < 4*width*height {
		return fmt.Errorf("softrast: target buffer has %d bytes, need %d", len(buf), 4*width*height)
	}

	r.target = buf
	r.width = width
	r.height = height
	r.realloc()
	return nil
}

// BindTarget binds a RenderTarget. The target must use the RGBA8 format
// with no row padding.
func (r *Renderer) BindTarget(t RenderTarget) error {
	if t == nil {
		return errors.New("softrast: nil target")
	}
	if f := t.Format(); f != gputypes.TextureFormatRGBA8Unorm {
		return fmt.Errorf("softrast: unsupported target format %v", f)
	}
	if t.Stride() != 4*t.Width() {
		return fmt.Errorf("softrast: target stride %d is not %d", t.Stride(), 4*t.Width())
	}
	return r.SetRenderTarget(t.Pixels(), t.Width(), t.Height())
}

// SetSampleRate changes the per-axis supersampling factor and reallocates
// the sample buffer. Values below 1 are treated as 1.
func (r *Renderer) SetSampleRate(rate int) {
	r.sampleRate = max(rate, 1)
	if r.target != nil {
		r.realloc()
	}
}

// SampleRate returns the per-axis supersampling factor.
func (r *Renderer) SampleRate() int {
	return r.sampleRate
}

// SampleBuffer returns the supersampled working surface, or nil before a
// target is bound.
func (r *Renderer) SampleBuffer() *SampleBuffer {
	return r.buf
}

// SetSceneTransform sets the base scene-to-screen transform applied to
// every top-level element.
func (r *Renderer) SetSceneTransform(m Matrix) {
	r.sceneToScreen = m
}

// SceneTransform returns the base scene-to-screen transform.
func (r *Renderer) SceneTransform() Matrix {
	return r.sceneToScreen
}

func (r *Renderer) realloc() {
	r.buf = NewSampleBuffer(r.width, r.height, r.sampleRate)
	Logger().Debug("softrast: sample buffer allocated",
		"width", r.width, "height", r.height, "rate", r.sampleRate, "bytes", len(r.buf.data))
}

// DrawScene performs one full render: reset the sample buffer, draw every
// element under the scene-to-screen transform, outline the canvas and
// resolve into the bound target. Without a bound target it does nothing.
func (r *Renderer) DrawScene(s *Scene) {
	if r.buf == nil {
		Logger().Warn("softrast: DrawScene without a render target")
		return
	}

	r.buf.Reset()

	if s != nil {
		for _, e := range s.Elements {
			r.drawElement(e, r.sceneToScreen)
		}
		r.drawOutline(s.Width, s.Height)
	}

	r.Resolve()

	if s != nil {
		Logger().Debug("softrast: scene rendered",
			"elements", len(s.Elements), "width", r.width, "height", r.height,
			"rate", r.sampleRate, "workers", r.Workers())
	}
}

// drawOutline frames the scene rectangle with black lines pushed one pixel
// outside its transformed corners.
func (r *Renderer) drawOutline(width, height float64) {
	m := r.sceneToScreen
	a := m.TransformPoint(Pt(0, 0)).Add(Pt(-1, -1))
	b := m.TransformPoint(Pt(width, 0)).Add(Pt(1, -1))
	c := m.TransformPoint(Pt(0, height)).Add(Pt(-1, 1))
	d := m.TransformPoint(Pt(width, height)).Add(Pt(1, 1))

	r.RasterizeLine(a.X, a.Y, b.X, b.Y, Black)
	r.RasterizeLine(a.X, a.Y, c.X, c.Y, Black)
	r.RasterizeLine(d.X, d.Y, b.X, b.Y, Black)
	r.RasterizeLine(d.X, d.Y, c.X, c.Y, Black)
}

// Resolve box-filters the sample buffer into the render target. DrawScene
// calls it once per render.
func (r *Renderer) Resolve() {
	if r.buf == nil {
		return
	}
	if r.pool == nil {
		r.buf.resolveRows(r.target, 0, r.height)
		return
	}
	r.pool.Rows(0, r.height, resolveMinBand, func(y0, y1 int) {
		r.buf.resolveRows(r.target, y0, y1)
	})
}

// Workers returns the number of goroutines that share row work, 1 when the
// renderer runs single-threaded.
func (r *Renderer) Workers() int {
	if r.pool == nil {
		return 1
	}
	return r.pool.Workers()
}

// Close releases the worker goroutines, if any. The renderer keeps working
// single-threaded afterwards.
func (r *Renderer) Close() {
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
}
