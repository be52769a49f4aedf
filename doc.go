// Package softrast rasterizes 2D scene graphs on the CPU.
//
// # Overview
//
// A Scene is an ordered tree of elements (Dot, Line, Polyline, Rect,
// Polygon, Ellipse, Image and nested Group), each with its own affine
// transform and fill/stroke style. A Renderer walks the tree, composing
// transforms on the way down, converts every primitive to screen space and
// rasterizes it into a supersampled buffer. After the walk the buffer is
// box-filtered into the caller's RGBA pixels.
//
// # Quick Start
//
//	pixels := make([]byte, 4*640*480)
//
//	r := softrast.NewRenderer(softrast.WithSampleRate(4))
//	defer r.Close()
//	_ = r.SetRenderTarget(pixels, 640, 480)
//
//	vp := softrast.NewViewport(scene.Width, scene.Height)
//	r.SetSceneTransform(vp.SceneToScreen(640, 480))
//	r.DrawScene(scene)
//
// # Sampling Model
//
// Each pixel holds rate×rate samples. Triangles are tested per sample with
// edge functions; points and lines fill whole pixels. Writes overwrite the
// sample: colors are never blended with what is already there, and alpha
// only decides whether a fill or stroke pass runs.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// The Viewport maps a square window of the scene onto normalized device
// space [0,1]², which SceneToScreen stretches over the canvas.
package softrast
