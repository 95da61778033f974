package screensink

import "image"

// RGBAView wraps an RGBA8 PixelBuffer as an image.RGBA without copying,
// so callers can hand it to golang.org/x/image/draw or image/png. Panics
// if buf's format isn't RGBA8 — this is a demo/interop convenience, not
// part of the cache's core byte-level path (fill.go stays format-agnostic
// so the cache works with formats image.RGBA knows nothing about).
func RGBAView(buf *PixelBuffer) *image.RGBA {
	if buf.Format != RGBA8 {
		panic("screensink: RGBAView requires an RGBA8 buffer")
	}
	area := buf.Area()
	return &image.RGBA{
		Pix:    buf.Pix(),
		Stride: buf.Stride(),
		Rect:   image.Rect(area.Left, area.Top, area.Right(), area.Bottom()),
	}
}
