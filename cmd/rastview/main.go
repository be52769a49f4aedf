// Command rastview opens a window that displays a scene file and lets the
// user pan, zoom and change the sample rate interactively.
//
// Keys: arrows pan, +/- zoom about the view center, 1-4 select the sample
// rate, R resets the view, Esc quits. The mouse wheel zooms about the
// cursor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/gogpu/softrast"
	"github.com/gogpu/softrast/internal/config"
	"github.com/gogpu/softrast/scenefile"
)

const (
	panStep  = 0.1
	zoomStep = 1.25
)

var errQuit = errors.New("quit")

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, errQuit) {
		slog.Error("rastview failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("rastview", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	scenePath := fs.String("scene", "", "scene file (.yaml, .yml or .toml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scenePath == "" {
		return errors.New("missing -scene")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	softrast.SetLogger(logger)

	scene, err := scenefile.Load(*scenePath)
	if err != nil {
		return err
	}

	filter, _ := cfg.Filter()
	r := softrast.NewRenderer(
		softrast.WithSampleRate(cfg.SampleRate),
		softrast.WithWorkers(cfg.Workers),
		softrast.WithImageFilter(filter),
	)
	defer r.Close()

	target := softrast.NewPixmapTarget(cfg.Width, cfg.Height)
	if err := r.BindTarget(target); err != nil {
		return err
	}

	v := &viewer{
		renderer: r,
		target:   target,
		scene:    scene,
		viewport: softrast.NewViewport(scene.Width, scene.Height),
		dirty:    true,
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(60)
	v.updateTitle()
	return ebiten.RunGame(v)
}

type viewer struct {
	renderer *softrast.Renderer
	target   *softrast.PixmapTarget
	scene    *softrast.Scene
	viewport *softrast.Viewport
	frame    *ebiten.Image
	rgba     *image.RGBA
	dirty    bool
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	_, _, span := v.viewport.Viewbox()
	step := span * panStep
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy -= step
	}

	scale := 1.0
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		scale /= zoomStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		scale *= zoomStep
	}
	if dx != 0 || dy != 0 || scale != 1 {
		v.viewport.UpdateViewbox(dx, dy, scale)
		v.dirty = true
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		wheel := zoomStep
		if wy > 0 {
			wheel = 1 / zoomStep
		}
		cx, cy := ebiten.CursorPosition()
		v.viewport.ZoomAt(float64(cx), float64(cy), v.target.Width(), v.target.Height(), wheel)
		v.dirty = true
	}

	rates := []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}
	for i, k := range rates {
		if inpututil.IsKeyJustPressed(k) && v.renderer.SampleRate() != i+1 {
			v.renderer.SetSampleRate(i + 1)
			v.dirty = true
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.viewport = softrast.NewViewport(v.scene.Width, v.scene.Height)
		v.dirty = true
	}

	if v.dirty {
		v.updateTitle()
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	w, h := v.target.Width(), v.target.Height()
	if v.frame == nil {
		v.frame = ebiten.NewImage(w, h)
		v.rgba = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	if v.dirty {
		v.renderer.SetSceneTransform(v.viewport.SceneToScreen(w, h))
		v.renderer.DrawScene(v.scene)
		// WritePixels takes premultiplied alpha.
		draw.Draw(v.rgba, v.rgba.Bounds(), v.target.Image(), image.Point{}, draw.Src)
		v.frame.WritePixels(v.rgba.Pix)
		v.dirty = false
	}
	screen.DrawImage(v.frame, nil)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.target.Width(), v.target.Height()
}

func (v *viewer) updateTitle() {
	cx, cy, span := v.viewport.Viewbox()
	ebiten.SetWindowTitle(fmt.Sprintf("rastview  center=(%.1f, %.1f) span=%.1f rate=%d",
		cx, cy, span, v.renderer.SampleRate()))
}
