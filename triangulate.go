package softrast

// Triangulator splits a polygon's vertex loop into triangles.
//
// Triangulate returns a flat list of triangle vertices in the polygon's own
// coordinate space; its length is a multiple of 3. Degenerate input yields
// an empty list.
type Triangulator interface {
	Triangulate(points []Point) []Point
}

// EarClipper triangulates simple polygons of either winding by repeatedly
// cutting off convex vertices whose triangle contains no other vertex.
//
// Self-intersecting input cannot always be clipped; once no ear remains the
// rest of the loop is emitted as a fan from its first vertex.
type EarClipper struct{}

// Triangulate implements Triangulator.
func (EarClipper) Triangulate(points []Point) []Point {
	n := len(points)
	if n < 3 {
		return nil
	}

	area := signedArea(points)
	if area == 0 {
		return nil
	}

	// Visit vertices so that convex corners have a positive cross product.
	idx := make([]int, n)
	for i := range idx {
		if area > 0 {
			idx[i] = i
		} else {
			idx[i] = n - 1 - i
		}
	}

	out := make([]Point, 0, 3*(n-2))
	for len(idx) > 3 {
		k := findEar(points, idx)
		if k < 0 {
			for i := 1; i+1 < len(idx); i++ {
				out = append(out, points[idx[0]], points[idx[i]], points[idx[i+1]])
			}
			return out
		}

		prev := idx[(k+len(idx)-1)%len(idx)]
		next := idx[(k+1)%len(idx)]
		out = append(out, points[prev], points[idx[k]], points[next])
		idx = append(idx[:k], idx[k+1:]...)
	}

	return append(out, points[idx[0]], points[idx[1]], points[idx[2]])
}

// findEar returns the position in idx of a clippable vertex, or -1.
func findEar(points []Point, idx []int) int {
	m := len(idx)
	for k := range m {
		a := points[idx[(k+m-1)%m]]
		b := points[idx[k]]
		c := points[idx[(k+1)%m]]

		if b.Sub(a).Cross(c.Sub(b)) <= 0 {
			continue
		}

		ear := true
		for _, o := range idx {
			p := points[o]
			if p == a || p == b || p == c {
				continue
			}
			if inTriangle(p, a, b, c) {
				ear = false
				break
			}
		}
		if ear {
			return k
		}
	}
	return -1
}

// signedArea returns twice the signed area of the loop.
func signedArea(points []Point) float64 {
	var s float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		s += p.Cross(q)
	}
	return s
}

// inTriangle reports whether p lies inside or on the counter-clockwise
// triangle abc.
func inTriangle(p, a, b, c Point) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)) >= 0
}
