package softrast

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Triangles whose clipped bounding box spans fewer pixels than this are
// rasterized on the calling goroutine even when a worker pool exists.
const parallelTrianglePixels = 64 * 64

// Minimum rows per band when splitting work across workers.
const (
	triangleMinBand = 8
	resolveMinBand  = 16
)

// All rasterization entry points take screen-space coordinates in pixels.
// Coordinates off the target are legal; the affected samples are dropped.

// RasterizePoint fills every sample of the pixel containing (x, y).
func (r *Renderer) RasterizePoint(x, y float64, c RGBA) {
	if r.buf == nil {
		return
	}
	r.fillPixel(x, y, pixelOf(c))
}

func (r *Renderer) fillPixel(x, y float64, px [4]uint8) {
	fx, fy := math.Floor(x), math.Floor(y)
	if !(fx >= 0 && fx < float64(r.width) && fy >= 0 && fy < float64(r.height)) {
		return
	}
	r.buf.putPixel(int(fx), int(fy), px)
}

// RasterizeLine draws a one-pixel-wide segment from (x0, y0) to (x1, y1).
//
// Axis-aligned segments walk the integer cells from floor(min) up to, but
// not including, max. Other segments step one unit along the major axis and
// carry the minor axis in an error accumulator that advances once it reaches
// half a pixel. Only the steps that land on the target are visited, so the
// cost is bounded by the target size whatever the endpoints.
func (r *Renderer) RasterizeLine(x0, y0, x1, y1 float64, c RGBA) {
	if r.buf == nil || !finite(x0, y0, x1, y1) {
		return
	}
	px := pixelOf(c)
	dx, dy := x1-x0, y1-y0

	switch {
	case dy == 0:
		lo, hi := span(math.Min(x0, x1), math.Max(x0, x1), r.width)
		for x := lo; x < hi; x++ {
			r.fillPixel(x, y0, px)
		}
	case dx == 0:
		lo, hi := span(math.Min(y0, y1), math.Max(y0, y1), r.height)
		for y := lo; y < hi; y++ {
			r.fillPixel(x0, y, px)
		}
	default:
		r.walkLine(x0, y0, x1, y1, dy/dx, px)
	}
}

// span clamps the cells floor(lo) .. hi to [0, size). The result is empty
// when lo >= hi after clamping.
func span(lo, hi float64, size int) (float64, float64) {
	return math.Max(math.Floor(lo), 0), math.Min(hi, float64(size))
}

// walkLine handles segments with a finite non-zero slope m.
func (r *Renderer) walkLine(x0, y0, x1, y1, m float64, px [4]uint8) {
	shallow := math.Abs(m) <= 1

	start, end, other, inc := y0, y1, x0, 1/m
	size := r.height
	if shallow {
		start, end, other, inc = x0, x1, y0, m
		size = r.width
	}
	if !(start < end) {
		r.walkLine(x1, y1, x0, y0, m, px)
		return
	}
	dir := 1.0
	if inc < 0 {
		dir, inc = -1, -inc
	}

	first := math.Floor(start)
	lo, hi := span(start, end, size)
	if !(lo < hi) {
		return
	}

	// inc <= 1, so the accumulator stays in [-0.5, 0.5) and after k steps
	// the minor axis has advanced floor(k·inc + 0.5) times.
	var acc float64
	if k := lo - first; k > 0 {
		n := math.Floor(k*inc + 0.5)
		other += dir * n
		acc = k*inc - n
	}

	for step := lo; step < hi; step++ {
		if shallow {
			r.fillPixel(step, other, px)
		} else {
			r.fillPixel(other, step, px)
		}
		acc += inc
		if acc >= 0.5 {
			other += dir
			acc--
		}
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RasterizeTriangle fills the samples whose centers fall inside the
// triangle (x0,y0), (x1,y1), (x2,y2), in either winding order.
//
// A sample is inside when the three edge functions agree in sign, zero
// counting as either sign. Samples on an edge shared by two triangles are
// therefore claimed by both; the later triangle wins.
func (r *Renderer) RasterizeTriangle(x0, y0, x1, y1, x2, y2 float64, c RGBA) {
	if r.buf == nil {
		return
	}

	minX := math.Max(math.Floor(min(x0, x1, x2)), 0)
	maxX := math.Min(math.Ceil(max(x0, x1, x2)), float64(r.width))
	minY := math.Max(math.Floor(min(y0, y1, y2)), 0)
	maxY := math.Min(math.Ceil(max(y0, y1, y2)), float64(r.height))
	if !(minX < maxX && minY < maxY) {
		return
	}

	t := triangle{
		x0: x0, y0: y0, x1: x1, y1: y1, x2: x2, y2: y2,
		xa: int(minX), xb: int(maxX),
		px: pixelOf(c),
	}
	ya, yb := int(minY), int(maxY)

	if r.pool == nil || (t.xb-t.xa)*(yb-ya) < parallelTrianglePixels {
		t.rows(r.buf, ya, yb)
		return
	}
	r.pool.Rows(ya, yb, triangleMinBand, func(y0, y1 int) {
		t.rows(r.buf, y0, y1)
	})
}

// triangle is a screen-space triangle clipped to the columns [xa, xb).
type triangle struct {
	x0, y0, x1, y1, x2, y2 float64
	xa, xb                 int
	px                     [4]uint8
}

// rows tests every sample of pixel rows [ya, yb). Sample (i, j) sits at
// offset ((2i+1)/(2·rate), (2j+1)/(2·rate)) inside its pixel.
func (t *triangle) rows(b *SampleBuffer, ya, yb int) {
	rate := b.rate
	half := 1 / (2 * float64(rate))

	for y := ya; y < yb; y++ {
		for x := t.xa; x < t.xb; x++ {
			for j := range rate {
				cy := float64(y) + float64(2*j+1)*half
				for i := range rate {
					cx := float64(x) + float64(2*i+1)*half
					if t.covers(cx, cy) {
						b.putSample(x, y, i, j, t.px)
					}
				}
			}
		}
	}
}

// covers evaluates the edge functions of (v0→v1), (v1→v2), (v2→v0).
func (t *triangle) covers(x, y float64) bool {
	e0 := (t.x1-t.x0)*(y-t.y0) - (t.y1-t.y0)*(x-t.x0)
	e1 := (t.x2-t.x1)*(y-t.y1) - (t.y2-t.y1)*(x-t.x1)
	e2 := (t.x0-t.x2)*(y-t.y2) - (t.y0-t.y2)*(x-t.x2)
	return (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0)
}

// RasterizeImage samples img directly into the pixel rectangle spanned by
// (x0, y0) and (x1, y1) with the renderer's image filter. Every sample of a
// covered pixel receives the texel color; nothing is blended.
func (r *Renderer) RasterizeImage(x0, y0, x1, y1 float64, img image.Image) {
	if r.buf == nil || img == nil || img.Bounds().Empty() {
		return
	}

	dr, ok := pixelRect(x0, y0, x1, y1)
	if !ok {
		return
	}
	clip := dr.Intersect(image.Rect(0, 0, r.width, r.height))
	if clip.Empty() {
		return
	}

	// dr may extend past the target; Scale only writes the part inside
	// the scratch bounds.
	scratch := image.NewNRGBA(clip)
	r.imageFilter.Scale(scratch, dr, img, img.Bounds(), draw.Src, nil)

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			o := scratch.PixOffset(x, y)
			var px [4]uint8
			copy(px[:], scratch.Pix[o:o+4])
			r.buf.putPixel(x, y, px)
		}
	}
}

// pixelRect converts two opposite corners to an integer rectangle, flooring
// both so that adjacent images tile without gaps.
func pixelRect(x0, y0, x1, y1 float64) (image.Rectangle, bool) {
	const limit = 1 << 24
	vals := [4]float64{x0, y0, x1, y1}
	for i, v := range vals {
		if math.IsNaN(v) {
			return image.Rectangle{}, false
		}
		vals[i] = math.Max(-limit, math.Min(limit, math.Floor(v)))
	}
	rect := image.Rect(int(vals[0]), int(vals[1]), int(vals[2]), int(vals[3]))
	return rect, !rect.Empty()
}
