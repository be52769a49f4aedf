// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package softrast

import (
	"image"

	"github.com/gogpu/gputypes"
)

// RenderTarget is a CPU-accessible destination for resolved pixels.
//
// The renderer accepts only tightly packed RGBA8 targets; see
// [Renderer.BindTarget].
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data, 4 bytes per pixel.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a render target backed by *image.NRGBA. Resolved pixels
// carry straight (non-premultiplied) alpha, which is the NRGBA layout.
//
// Example:
//
//	target := softrast.NewPixmapTarget(800, 600)
//	_ = r.BindTarget(target)
//	r.DrawScene(scene)
//	img := target.Image()
type PixmapTarget struct {
	img *image.NRGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.NRGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.NRGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.NRGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.NRGBA {
	return t.img
}

// Resize replaces the backing image. The contents are not preserved and the
// target must be bound again.
func (t *PixmapTarget) Resize(width, height int) {
	t.img = image.NewNRGBA(image.Rect(0, 0, width, height))
}

var _ RenderTarget = (*PixmapTarget)(nil)
