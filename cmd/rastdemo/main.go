// Command rastdemo renders a scene file to a PNG image.
//
// Usage:
//
//	rastdemo -scene house.yaml -out house.png -width 400 -height 400 -rate 4
//
// Defaults come from SOFTRAST_* environment variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/softrast"
	"github.com/gogpu/softrast/internal/config"
	"github.com/gogpu/softrast/scenefile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("rastdemo failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("rastdemo", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	var (
		scenePath = fs.String("scene", "", "scene file (.yaml, .yml or .toml)")
		output    = fs.String("out", "out.png", "output PNG file")
		cx        = fs.Float64("cx", 0, "view center x in scene units (default: scene center)")
		cy        = fs.Float64("cy", 0, "view center y in scene units (default: scene center)")
		span      = fs.Float64("span", 0, "view half-extent in scene units (default: fit scene)")
	)
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

	vp := softrast.NewViewport(scene.Width, scene.Height)
	vcx, vcy, vspan := vp.Viewbox()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cx":
			vcx = *cx
		case "cy":
			vcy = *cy
		case "span":
			vspan = *span
		}
	})
	vp.SetViewbox(vcx, vcy, vspan)
	r.SetSceneTransform(vp.SceneToScreen(cfg.Width, cfg.Height))

	start := time.Now()
	r.DrawScene(scene)
	slog.Info("scene rendered",
		"scene", *scenePath, "width", cfg.Width, "height", cfg.Height,
		"rate", cfg.SampleRate, "elapsed", time.Since(start))

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, target.Image()); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", *output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("image saved", "path", *output)
	return nil
}
