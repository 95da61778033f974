package screensink

import "sync/atomic"

// PixelFormat describes the byte layout of a pixel buffer. The cache is
// deliberately format-agnostic — it never interprets pixel values, only
// copies bytes — so a PixelFormat is nothing more than a stride hint.
type PixelFormat struct {
	// BytesPerPixel is the size of one pixel in bytes.
	BytesPerPixel int

	// Bands is the number of color/coverage bands packed into each pixel
	// (e.g. 4 for RGBA, 1 for an 8-bit greyscale mask).
	Bands int
}

// RGBA8 is the 4-byte-per-pixel, 4-band format used by the demo producer
// and by RGBAView.
var RGBA8 = PixelFormat{BytesPerPixel: 4, Bands: 4}

// Gray8 is the 1-byte-per-pixel, 1-band format used for the coverage mask
// output.
var Gray8 = PixelFormat{BytesPerPixel: 1, Bands: 1}

// bufferAllocator creates the backing storage for a PixelBuffer of the
// given size. It is a function value (rather than a hardcoded make call)
// so tests can install one that fails, exercising the rebind-failure
// tolerance path: the original source's tile_queue swallowed a failed
// im_region_buffer with a bare printf, and callers here must tolerate the
// same failure by treating the tile as unpainted. Defaults to always
// succeeding.
type bufferAllocator func(size int) ([]byte, error)

func defaultAllocator(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// PixelBuffer is a rectangular pixel buffer anchored at a fixed origin.
// It owns its memory for the lifetime of the Tile that holds it; under
// eviction pressure the owning Tile rebinds the same PixelBuffer to a new
// area rather than allocating a fresh one.
type PixelBuffer struct {
	Format PixelFormat

	left, top     int
	width, height int
	stride        int
	pix           []byte

	// invalid mirrors the upstream image's own "invalid" flag: once set,
	// the tile is treated as unpainted for read purposes even though
	// painted may still be true. It is set from outside render.lock (the
	// upstream image can invalidate a buffer at any time) so it must be
	// atomic.
	invalid atomic.Bool

	alloc bufferAllocator
}

// NewPixelBuffer creates a buffer of the given format covering a width x
// height area at the given origin.
func NewPixelBuffer(format PixelFormat, left, top, width, height int) *PixelBuffer {
	b := &PixelBuffer{Format: format, alloc: defaultAllocator}
	_ = b.rebind(left, top, width, height)
	return b
}

// Area returns the buffer's current coverage rectangle.
func (b *PixelBuffer) Area() Rect {
	return Rect{Left: b.left, Top: b.top, Width: b.width, Height: b.height}
}

// Stride returns the row stride in bytes.
func (b *PixelBuffer) Stride() int { return b.stride }

// Pix returns the raw backing storage. Callers must stay within
// Area()'s bounds.
func (b *PixelBuffer) Pix() []byte { return b.pix }

// RowAddr returns the byte offset of pixel (x, y) in canvas space. It does
// not bounds-check; callers must first intersect against Area().
func (b *PixelBuffer) RowAddr(x, y int) int {
	localX := x - b.left
	localY := y - b.top
	return localY*b.stride + localX*b.Format.BytesPerPixel
}

// Invalid reports whether the upstream producer has marked this buffer's
// contents stale since it was last painted.
func (b *PixelBuffer) Invalid() bool { return b.invalid.Load() }

// Invalidate marks the buffer's contents stale. This does not, by
// itself, re-queue the tile — a consumer must re-request the area for
// repainting to happen.
func (b *PixelBuffer) Invalidate() { b.invalid.Store(true) }

// rebind reassigns the buffer to cover a new area, reusing the existing
// allocation when its size is unchanged. On allocator failure the buffer
// is left in an undefined-contents state and an error is returned; callers
// must tolerate this by treating the tile as unpainted.
func (b *PixelBuffer) rebind(left, top, width, height int) error {
	size := width * height * b.Format.BytesPerPixel
	if len(b.pix) != size {
		pix, err := b.alloc(size)
		if err != nil {
			return err
		}
		b.pix = pix
	}
	b.left, b.top, b.width, b.height = left, top, width, height
	b.stride = width * b.Format.BytesPerPixel
	b.invalid.Store(false)
	return nil
}
