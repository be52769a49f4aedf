package softrast

import "math"

// Ellipse subdivision bounds, in segments per full turn.
const (
	minEllipseSegments = 12
	maxEllipseSegments = 256
)

// drawElement draws e under its parent's transform m. m is passed by value,
// so the parent's transform is restored implicitly when the call returns.
func (r *Renderer) drawElement(e Element, m Matrix) {
	if e == nil {
		return
	}
	e.draw(r, m)
}

func (p *Dot) draw(r *Renderer, m Matrix) {
	if p == nil {
		return
	}
	m = p.compose(m)

	q := m.TransformPoint(p.Position)
	r.RasterizePoint(q.X, q.Y, p.Style.Fill)
}

func (l *Line) draw(r *Renderer, m Matrix) {
	if l == nil {
		return
	}
	m = l.compose(m)

	p0 := m.TransformPoint(l.From)
	p1 := m.TransformPoint(l.To)
	r.RasterizeLine(p0.X, p0.Y, p1.X, p1.Y, l.Style.Stroke)
}

func (p *Polyline) draw(r *Renderer, m Matrix) {
	if p == nil {
		return
	}
	m = p.compose(m)

	c := p.Style.Stroke
	if c.A == 0 {
		return
	}
	for i := 0; i+1 < len(p.Points); i++ {
		p0 := m.TransformPoint(p.Points[i])
		p1 := m.TransformPoint(p.Points[i+1])
		r.RasterizeLine(p0.X, p0.Y, p1.X, p1.Y, c)
	}
}

func (rc *Rect) draw(r *Renderer, m Matrix) {
	if rc == nil {
		return
	}
	m = rc.compose(m)

	x, y := rc.Position.X, rc.Position.Y
	w, h := rc.Dimension.X, rc.Dimension.Y

	p0 := m.TransformPoint(Pt(x, y))
	p1 := m.TransformPoint(Pt(x+w, y))
	p2 := m.TransformPoint(Pt(x, y+h))
	p3 := m.TransformPoint(Pt(x+w, y+h))

	if c := rc.Style.Fill; c.A != 0 {
		r.RasterizeTriangle(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y, c)
		r.RasterizeTriangle(p2.X, p2.Y, p1.X, p1.Y, p3.X, p3.Y, c)
	}

	if c := rc.Style.Stroke; c.A != 0 {
		r.RasterizeLine(p0.X, p0.Y, p1.X, p1.Y, c)
		r.RasterizeLine(p1.X, p1.Y, p3.X, p3.Y, c)
		r.RasterizeLine(p3.X, p3.Y, p2.X, p2.Y, c)
		r.RasterizeLine(p2.X, p2.Y, p0.X, p0.Y, c)
	}
}

func (p *Polygon) draw(r *Renderer, m Matrix) {
	if p == nil {
		return
	}
	m = p.compose(m)

	if c := p.Style.Fill; c.A != 0 {
		tris := r.triangulator.Triangulate(p.Points)
		for i := 0; i+2 < len(tris); i += 3 {
			p0 := m.TransformPoint(tris[i])
			p1 := m.TransformPoint(tris[i+1])
			p2 := m.TransformPoint(tris[i+2])
			r.RasterizeTriangle(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y, c)
		}
	}

	if c := p.Style.Stroke; c.A != 0 {
		r.strokeLoop(p.Points, m, c)
	}
}

// strokeLoop draws the closed outline through pts, wrapping last to first.
func (r *Renderer) strokeLoop(pts []Point, m Matrix, c RGBA) {
	n := len(pts)
	for i := range n {
		p0 := m.TransformPoint(pts[i])
		p1 := m.TransformPoint(pts[(i+1)%n])
		r.RasterizeLine(p0.X, p0.Y, p1.X, p1.Y, c)
	}
}

// draw approximates the ellipse by a polygon whose edge count grows with
// its on-screen radius.
func (el *Ellipse) draw(r *Renderer, m Matrix) {
	if el == nil {
		return
	}
	m = el.compose(m)

	fill, stroke := el.Style.Fill, el.Style.Stroke
	if fill.A == 0 && stroke.A == 0 {
		return
	}

	pts := el.outline(m.ScaleFactor())
	if len(pts) == 0 {
		return
	}

	if fill.A != 0 {
		c := m.TransformPoint(el.Center)
		for i := range pts {
			p0 := m.TransformPoint(pts[i])
			p1 := m.TransformPoint(pts[(i+1)%len(pts)])
			r.RasterizeTriangle(c.X, c.Y, p0.X, p0.Y, p1.X, p1.Y, fill)
		}
	}

	if stroke.A != 0 {
		r.strokeLoop(pts, m, stroke)
	}
}

// outline returns the subdivided boundary in local coordinates.
func (el *Ellipse) outline(scale float64) []Point {
	rx, ry := math.Abs(el.Radius.X), math.Abs(el.Radius.Y)
	if rx == 0 && ry == 0 {
		return nil
	}

	radius := math.Max(rx, ry) * scale
	n := minEllipseSegments
	if seg := math.Ceil(math.Pi * radius); seg > float64(n) {
		n = int(math.Min(seg, maxEllipseSegments))
	}

	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Pt(el.Center.X+rx*math.Cos(a), el.Center.Y+ry*math.Sin(a))
	}
	return pts
}

func (im *Image) draw(r *Renderer, m Matrix) {
	if im == nil {
		return
	}
	m = im.compose(m)

	p0 := m.TransformPoint(im.Position)
	p1 := m.TransformPoint(im.Position.Add(im.Dimension))
	r.RasterizeImage(p0.X, p0.Y, p1.X, p1.Y, im.Texture)
}

func (g *Group) draw(r *Renderer, m Matrix) {
	if g == nil {
		return
	}
	m = g.compose(m)

	for _, child := range g.Elements {
		r.drawElement(child, m)
	}
}
