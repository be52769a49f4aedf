package softrast

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// pixelAt returns the resolved RGBA of (x, y) in a w-wide target.
func pixelAt(pixels []uint8, w, x, y int) [4]uint8 {
	o := 4 * (x + y*w)
	return [4]uint8(pixels[o : o+4])
}

func TestRendererEndToEndRect(t *testing.T) {
	r, pixels := newTestRenderer(t, 10, 10, 1)

	scene := &Scene{
		Width:  10,
		Height: 10,
		Elements: []Element{
			&Rect{
				Node:      Node{Style: Style{Fill: Red, Stroke: Transparent}},
				Position:  Pt(2, 2),
				Dimension: Pt(4, 4),
			},
		},
	}
	r.DrawScene(scene)

	red := [4]uint8{255, 0, 0, 255}
	for y := range 10 {
		for x := range 10 {
			want := white
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				want = red
			}
			if got := pixelAt(pixels, 10, x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRendererCanvasOutline(t *testing.T) {
	r, pixels := newTestRenderer(t, 10, 10, 1)
	r.DrawScene(&Scene{Width: 4, Height: 4})

	black := [4]uint8{0, 0, 0, 255}
	for i := range 5 {
		if got := pixelAt(pixels, 10, 5, i); got != black {
			t.Errorf("right edge pixel (5,%d) = %v, want black", i, got)
		}
		if got := pixelAt(pixels, 10, i, 5); got != black {
			t.Errorf("bottom edge pixel (%d,5) = %v, want black", i, got)
		}
	}
	if got := pixelAt(pixels, 10, 2, 2); got != white {
		t.Errorf("interior pixel = %v, want white", got)
	}
}

func TestRendererTransformStack(t *testing.T) {
	r, pixels := newTestRenderer(t, 20, 20, 1)
	blue := Style{Fill: Blue}

	scene := &Scene{
		Width:  20,
		Height: 20,
		Elements: []Element{
			&Group{
				Node: Node{Transform: transform(Translate(3, 0))},
				Elements: []Element{
					&Dot{Node: Node{Style: blue}, Position: Pt(1.5, 1.5)},
				},
			},
			&Dot{Node: Node{Style: blue}, Position: Pt(1.5, 1.5)},
			&Group{
				Node: Node{Transform: transform(Scale(2, 2))},
				Elements: []Element{
					&Group{
						Node: Node{Transform: transform(Translate(1, 1))},
						Elements: []Element{
							&Dot{Node: Node{Style: blue}, Position: Pt(1.25, 1.25)},
						},
					},
				},
			},
			nil,
		},
	}
	r.DrawScene(scene)

	want := map[[2]int]bool{{4, 1}: true, {1, 1}: true, {4, 4}: true}
	for y := range 20 {
		for x := range 20 {
			got := pixelAt(pixels, 20, x, y) == [4]uint8{0, 0, 255, 255}
			if got != want[[2]int{x, y}] {
				t.Errorf("pixel (%d,%d) blue = %v, want %v", x, y, got, want[[2]int{x, y}])
			}
		}
	}
}

func TestRendererSceneTransform(t *testing.T) {
	r, pixels := newTestRenderer(t, 8, 8, 1)
	r.SetSceneTransform(Translate(2, 3))
	if got := r.SceneTransform(); got != Translate(2, 3) {
		t.Fatalf("SceneTransform() = %+v", got)
	}

	r.DrawScene(&Scene{Width: 2, Height: 2, Elements: []Element{
		&Dot{Node: Node{Style: Style{Fill: Green}}, Position: Pt(0.5, 0.5)},
	}})

	if got := pixelAt(pixels, 8, 2, 3); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("pixel (2,3) = %v, want green", got)
	}
}

func TestRendererDotIgnoresAlpha(t *testing.T) {
	r, pixels := newTestRenderer(t, 4, 4, 1)
	r.DrawScene(&Scene{Width: 4, Height: 4, Elements: []Element{
		&Dot{Node: Node{Style: Style{Fill: Transparent}}, Position: Pt(1, 1)},
	}})

	if got := pixelAt(pixels, 4, 1, 1); got != [4]uint8{0, 0, 0, 0} {
		t.Errorf("pixel (1,1) = %v, want transparent black", got)
	}
}

func TestRendererLineIgnoresAlpha(t *testing.T) {
	r, pixels := newTestRenderer(t, 4, 4, 1)
	r.DrawScene(&Scene{Width: 4, Height: 4, Elements: []Element{
		&Line{Node: Node{Style: Style{Stroke: Transparent}}, From: Pt(0, 1), To: Pt(3, 1)},
	}})

	if got := pixelAt(pixels, 4, 1, 1); got != [4]uint8{0, 0, 0, 0} {
		t.Errorf("pixel (1,1) = %v, want transparent black", got)
	}
}

func TestRendererPolylineIsOpen(t *testing.T) {
	pts := []Point{Pt(1, 1), Pt(6, 1), Pt(6, 6)}
	black := [4]uint8{0, 0, 0, 255}

	tests := []struct {
		name     string
		elem     Element
		diagonal bool
	}{
		{"polyline", &Polyline{Node: Node{Style: Style{Stroke: Black}}, Points: pts}, false},
		{"polygon", &Polygon{Node: Node{Style: Style{Stroke: Black}}, Points: pts}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, pixels := newTestRenderer(t, 10, 10, 1)
			r.DrawScene(&Scene{Width: 10, Height: 10, Elements: []Element{tt.elem}})

			if got := pixelAt(pixels, 10, 3, 1); got != black {
				t.Errorf("top edge pixel = %v, want black", got)
			}
			if got := pixelAt(pixels, 10, 6, 3); got != black {
				t.Errorf("right edge pixel = %v, want black", got)
			}
			if got := pixelAt(pixels, 10, 3, 3) == black; got != tt.diagonal {
				t.Errorf("closing diagonal drawn = %v, want %v", got, tt.diagonal)
			}
		})
	}
}

func TestRendererAlphaGating(t *testing.T) {
	tri := []Point{Pt(0, 0), Pt(8, 0), Pt(0, 8)}
	tests := []struct {
		name string
		elem Element
	}{
		{"polyline", &Polyline{Points: tri}},
		{"rect", &Rect{Position: Pt(1, 1), Dimension: Pt(5, 5)}},
		{"polygon", &Polygon{Points: tri}},
		{"ellipse", &Ellipse{Center: Pt(4, 4), Radius: Pt(3, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, pixels := newTestRenderer(t, 8, 8, 2)
			r.DrawScene(&Scene{Width: 8, Height: 8, Elements: []Element{tt.elem}})

			for i := 0; i < len(pixels); i++ {
				if pixels[i] != 255 {
					t.Fatalf("byte %d = %d, want untouched white", i, pixels[i])
				}
			}
		})
	}
}

func TestRendererRectStrokeOnly(t *testing.T) {
	r, pixels := newTestRenderer(t, 10, 10, 1)
	r.DrawScene(&Scene{Width: 10, Height: 10, Elements: []Element{
		&Rect{Node: Node{Style: Style{Stroke: Black}}, Position: Pt(2, 2), Dimension: Pt(4, 4)},
	}})

	black := [4]uint8{0, 0, 0, 255}
	for _, p := range [][2]int{{2, 2}, {5, 2}, {6, 2}, {6, 5}, {2, 6}, {5, 6}, {2, 5}} {
		if got := pixelAt(pixels, 10, p[0], p[1]); got != black {
			t.Errorf("outline pixel %v = %v, want black", p, got)
		}
	}
	for _, p := range [][2]int{{3, 3}, {4, 4}, {3, 4}} {
		if got := pixelAt(pixels, 10, p[0], p[1]); got != white {
			t.Errorf("interior pixel %v = %v, want white", p, got)
		}
	}
}

type countingTriangulator struct {
	calls int
}

func (c *countingTriangulator) Triangulate(points []Point) []Point {
	c.calls++
	return EarClipper{}.Triangulate(points)
}

func TestRendererPolygonFill(t *testing.T) {
	tri := &countingTriangulator{}
	r, pixels := newTestRenderer(t, 10, 10, 1, WithTriangulator(tri))

	// Concave "L" shape.
	lshape := []Point{Pt(1, 1), Pt(4, 1), Pt(4, 6), Pt(8, 6), Pt(8, 9), Pt(1, 9)}
	r.DrawScene(&Scene{Width: 10, Height: 10, Elements: []Element{
		&Polygon{Node: Node{Style: Style{Fill: Red}}, Points: lshape},
		&Polygon{Node: Node{Style: Style{Stroke: Black}}, Points: lshape},
	}})

	if tri.calls != 1 {
		t.Errorf("Triangulate called %d times, want 1", tri.calls)
	}

	red := [4]uint8{255, 0, 0, 255}
	for _, p := range [][2]int{{2, 2}, {2, 7}, {6, 7}} {
		if got := pixelAt(pixels, 10, p[0], p[1]); got != red {
			t.Errorf("inside pixel %v = %v, want red", p, got)
		}
	}
	for _, p := range [][2]int{{6, 3}, {7, 2}} {
		if got := pixelAt(pixels, 10, p[0], p[1]); got != white {
			t.Errorf("notch pixel %v = %v, want white", p, got)
		}
	}
}

func TestRendererEllipse(t *testing.T) {
	r, pixels := newTestRenderer(t, 20, 20, 2)
	r.DrawScene(&Scene{Width: 20, Height: 20, Elements: []Element{
		&Ellipse{Node: Node{Style: Style{Fill: Red}}, Center: Pt(10, 10), Radius: Pt(5, 3)},
	}})

	if got := pixelAt(pixels, 20, 10, 10); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("center pixel = %v, want red", got)
	}
	for _, p := range [][2]int{{10, 14}, {16, 10}, {4, 10}} {
		if got := pixelAt(pixels, 20, p[0], p[1]); got != white {
			t.Errorf("outside pixel %v = %v, want white", p, got)
		}
	}
}

func TestEllipseOutlineSegments(t *testing.T) {
	tests := []struct {
		name   string
		radius Point
		scale  float64
		want   int
	}{
		{"tiny", Pt(1, 1), 1, minEllipseSegments},
		{"medium", Pt(10, 4), 1, 32},
		{"zoomed", Pt(10, 4), 2, 63},
		{"huge", Pt(1000, 1000), 1, maxEllipseSegments},
		{"empty", Pt(0, 0), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := &Ellipse{Radius: tt.radius}
			if got := len(el.outline(tt.scale)); got != tt.want {
				t.Errorf("len(outline(%v)) = %d, want %d", tt.scale, got, tt.want)
			}
		})
	}
}

func TestRendererImageElement(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 255})

	r, pixels := newTestRenderer(t, 8, 8, 1)
	r.DrawScene(&Scene{Width: 8, Height: 8, Elements: []Element{
		&Image{Node: Node{Transform: transform(Translate(1, 1))}, Position: Pt(1, 1), Dimension: Pt(2, 2), Texture: tex},
		&Image{Position: Pt(5, 5), Dimension: Pt(2, 2)},
	}})

	green := [4]uint8{0, 255, 0, 255}
	for _, p := range [][2]int{{2, 2}, {3, 3}} {
		if got := pixelAt(pixels, 8, p[0], p[1]); got != green {
			t.Errorf("pixel %v = %v, want green", p, got)
		}
	}
	for _, p := range [][2]int{{4, 4}, {5, 5}} {
		if got := pixelAt(pixels, 8, p[0], p[1]); got != white {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
}

func TestRendererSampleRateInvariance(t *testing.T) {
	c := RGBA{R: 0.3, G: 0.6, B: 0.9, A: 1}
	want := pixelOf(c)

	for _, rate := range []int{1, 4, 16} {
		r, pixels := newTestRenderer(t, 8, 8, rate)
		r.DrawScene(&Scene{Width: 8, Height: 8, Elements: []Element{
			&Rect{Node: Node{Style: Style{Fill: c}}, Dimension: Pt(8, 8)},
		}})

		for y := range 8 {
			for x := range 8 {
				if got := pixelAt(pixels, 8, x, y); got != want {
					t.Fatalf("rate %d: pixel (%d,%d) = %v, want %v", rate, x, y, got, want)
				}
			}
		}
	}
}

func TestRendererAntialiasedEdge(t *testing.T) {
	r, pixels := newTestRenderer(t, 4, 4, 4)
	// Half-plane x+y <= 4 split along the pixel diagonals.
	r.RasterizeTriangle(0, 0, 4, 0, 0, 4, Black)
	r.Resolve()

	// Pixel (1,2) straddles the hypotenuse: 10 of 16 sample centers lie
	// on or inside it.
	got := pixelAt(pixels, 4, 1, 2)
	if want := uint8(255 * 6 / 16); got[0] != want {
		t.Errorf("edge pixel red = %d, want %d", got[0], want)
	}
	if got[3] != 255 {
		t.Errorf("edge pixel alpha = %d, want 255", got[3])
	}
}

func buildStressScene() *Scene {
	var elems []Element
	for i := range 12 {
		a := float64(i) * math.Pi / 6
		elems = append(elems, &Rect{
			Node: Node{
				Transform: transform(Translate(64, 64).Multiply(Rotate(a))),
				Style:     Style{Fill: RGBA{R: float64(i) / 12, G: 0.5, B: 1 - float64(i)/12, A: 1}, Stroke: Black},
			},
			Position:  Pt(-10, -60),
			Dimension: Pt(20, 120),
		})
	}
	elems = append(elems, &Polygon{
		Node:   Node{Style: Style{Fill: RGB(0.2, 0.8, 0.2), Stroke: Red}},
		Points: []Point{Pt(5, 5), Pt(120, 10), Pt(60, 40), Pt(110, 120), Pt(10, 100)},
	})
	return &Scene{Width: 128, Height: 128, Elements: elems}
}

func TestRendererParallelMatchesSerial(t *testing.T) {
	scene := buildStressScene()

	serial, serialPixels := newTestRenderer(t, 128, 128, 2)
	serial.DrawScene(scene)

	par, parPixels := newTestRenderer(t, 128, 128, 2, WithWorkers(4))
	par.DrawScene(scene)

	if serial.Workers() != 1 || par.Workers() != 4 {
		t.Errorf("Workers() = %d, %d, want 1, 4", serial.Workers(), par.Workers())
	}

	if !bytes.Equal(serialPixels, parPixels) {
		t.Error("parallel render differs from serial render")
	}
}

func TestRendererSetSampleRate(t *testing.T) {
	r, _ := newTestRenderer(t, 5, 3, 1)
	if got := len(r.SampleBuffer().Data()); got != 4*5*3 {
		t.Fatalf("sample bytes = %d, want %d", got, 4*5*3)
	}

	r.SetSampleRate(3)
	if r.SampleRate() != 3 {
		t.Errorf("SampleRate() = %d, want 3", r.SampleRate())
	}
	if got := len(r.SampleBuffer().Data()); got != 4*15*9 {
		t.Errorf("sample bytes = %d, want %d", got, 4*15*9)
	}

	r.SetSampleRate(0)
	if r.SampleRate() != 1 {
		t.Errorf("SampleRate() after 0 = %d, want 1", r.SampleRate())
	}
}

func TestRendererSetRenderTargetErrors(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	if err := r.SetRenderTarget(make([]uint8, 10), 2, 2); err == nil {
		t.Error("SetRenderTarget() with short buffer should fail")
	}
	if err := r.SetRenderTarget(nil, -1, 2); err == nil {
		t.Error("SetRenderTarget() with negative width should fail")
	}
	if r.SampleBuffer() != nil {
		t.Error("failed SetRenderTarget() should not allocate")
	}

	// Rendering without a target is a no-op.
	r.DrawScene(&Scene{Width: 1, Height: 1})
}

func TestRendererBindTarget(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	target := NewPixmapTarget(6, 4)
	if err := r.BindTarget(target); err != nil {
		t.Fatalf("BindTarget() error = %v", err)
	}
	r.DrawScene(&Scene{Width: 6, Height: 4, Elements: []Element{
		&Dot{Node: Node{Style: Style{Fill: Red}}, Position: Pt(3, 2)},
	}})
	if got := target.Image().NRGBAAt(3, 2); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("target pixel = %v, want red", got)
	}

	if err := r.BindTarget(nil); err == nil {
		t.Error("BindTarget(nil) should fail")
	}

	padded := image.NewNRGBA(image.Rect(0, 0, 8, 8)).SubImage(image.Rect(0, 0, 4, 4)).(*image.NRGBA)
	if err := r.BindTarget(NewPixmapTargetFromImage(padded)); err == nil {
		t.Error("BindTarget() with row padding should fail")
	}
}

func transform(m Matrix) *Matrix {
	return &m
}

func TestNodeLocalTransform(t *testing.T) {
	var n Node
	if got := n.LocalTransform(); got != Identity() {
		t.Errorf("nil LocalTransform() = %+v, want identity", got)
	}
	n.Transform = transform(Scale(2, 2))
	if got := n.LocalTransform(); got != Scale(2, 2) {
		t.Errorf("LocalTransform() = %+v, want Scale(2,2)", got)
	}
	n.Transform = &Matrix{}
	if got := n.LocalTransform(); got != (Matrix{}) {
		t.Errorf("zero LocalTransform() = %+v, want the zero matrix", got)
	}
}

func TestRendererZeroTransformCollapses(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"zero matrix", Matrix{}},
		{"zero scale", Scale(0, 0)},
		{"zero scale under translation", Translate(4, 4).Multiply(Scale(0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRenderer(t, 10, 10, 2)
			red := Style{Fill: Red, Stroke: Red}
			r.DrawScene(&Scene{Width: 10, Height: 10, Elements: []Element{
				&Rect{Node: Node{Transform: transform(tt.m), Style: red}, Position: Pt(2, 2), Dimension: Pt(4, 4)},
				&Ellipse{Node: Node{Transform: transform(tt.m), Style: red}, Center: Pt(5, 5), Radius: Pt(3, 3)},
				&Polygon{Node: Node{Transform: transform(tt.m), Style: red}, Points: []Point{Pt(1, 1), Pt(8, 1), Pt(4, 8)}},
			}})
			if n := len(touched(r.SampleBuffer())); n != 0 {
				t.Errorf("%d pixels touched under a collapsing transform, want 0", n)
			}
		})
	}
}

func TestRendererSkipsTypedNilElements(t *testing.T) {
	r, pixels := newTestRenderer(t, 6, 6, 1)
	r.DrawScene(&Scene{Width: 6, Height: 6, Elements: []Element{
		(*Dot)(nil), (*Line)(nil), (*Polyline)(nil), (*Rect)(nil),
		(*Polygon)(nil), (*Ellipse)(nil), (*Image)(nil),
		&Group{Elements: []Element{(*Group)(nil), (*Dot)(nil)}},
		&Dot{Node: Node{Style: Style{Fill: Red}}, Position: Pt(2, 2)},
	}})
	if got := pixelAt(pixels, 6, 2, 2); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("pixel (2,2) = %v, want red", got)
	}
}

func BenchmarkDrawScene(b *testing.B) {
	scene := buildStressScene()
	for _, workers := range []int{1, 0} {
		name := "serial"
		if workers != 1 {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			r := NewRenderer(WithSampleRate(4), WithWorkers(workers))
			defer r.Close()
			_ = r.SetRenderTarget(make([]uint8, 4*128*128), 128, 128)

			for b.Loop() {
				r.DrawScene(scene)
			}
		})
	}
}
