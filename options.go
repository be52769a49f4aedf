package softrast

import "golang.org/x/image/draw"

// Option configures a Renderer during creation.
//
// Example:
//
//	r := softrast.NewRenderer(
//	    softrast.WithSampleRate(4),
//	    softrast.WithWorkers(0),
//	)
type Option func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	sampleRate   int
	workers      int
	triangulator Triangulator
	imageFilter  draw.Interpolator
}

// defaultOptions returns the default renderer options: one sample per
// pixel, single-threaded, ear clipping and nearest-texel image sampling.
func defaultOptions() rendererOptions {
	return rendererOptions{
		sampleRate:   1,
		workers:      1,
		triangulator: EarClipper{},
		imageFilter:  draw.NearestNeighbor,
	}
}

// WithSampleRate sets the initial per-axis supersampling factor.
// Each pixel holds rate² samples. Values below 1 are treated as 1.
func WithSampleRate(rate int) Option {
	return func(o *rendererOptions) {
		o.sampleRate = rate
	}
}

// WithWorkers sets how many goroutines split triangle rasterization and
// resolve by pixel rows. 1 (the default) renders on the calling goroutine;
// 0 or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithTriangulator replaces the polygon triangulation collaborator.
func WithTriangulator(t Triangulator) Option {
	return func(o *rendererOptions) {
		if t != nil {
			o.triangulator = t
		}
	}
}

// WithImageFilter selects the texel sampler used for Image elements,
// for example draw.NearestNeighbor or draw.BiLinear.
func WithImageFilter(f draw.Interpolator) Option {
	return func(o *rendererOptions) {
		if f != nil {
			o.imageFilter = f
		}
	}
}
