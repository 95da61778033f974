package screensink

import "errors"

// fillRegion is the FillFunc registered on a Render's primary output. It
// implements the original source's region_fill: walk region.Valid one
// tile at a time, request each tile, and copy whatever pixels are
// available — painted tiles copy real data, anything else leaves the
// area zeroed. Never blocks on a worker goroutine and never returns an
// error for a missing tile; this is the non-blocking, best-effort fill
// contract.
func (r *Render) fillRegion(region *Region) error {
	for _, area := range tileGrid(region.Valid, r.tileWidth, r.tileHeight) {
		overlap, ok := area.Intersect(region.Valid)
		if !ok {
			continue
		}

		r.lock.Lock()
		t, err := r.tileRequest(area)
		if err != nil {
			r.lock.Unlock()
			if errors.Is(err, ErrAllocation) {
				zeroRect(region.Buf, overlap)
				continue
			}
			return err
		}
		painted := t.painted
		src := t.buffer
		r.lock.Unlock()

		if !painted {
			zeroRect(region.Buf, overlap)
			continue
		}
		copyRect(region.Buf, src, overlap)
	}
	return nil
}

// fillMask is the FillFunc registered on a Render's optional coverage
// mask output. It writes a single coverage byte per pixel instead of
// copying producer data — 0xFF where a tile covering the pixel is
// already painted, 0x00 otherwise. Observing coverage must never itself
// generate demand, so unlike fillRegion this only looks a tile up; it
// never calls tileRequest and never queues anything, mirroring the
// original source's render_tile_lookup.
func (r *Render) fillMask(region *Region) error {
	for _, area := range tileGrid(region.Valid, r.tileWidth, r.tileHeight) {
		overlap, ok := area.Intersect(region.Valid)
		if !ok {
			continue
		}

		r.lock.Lock()
		t := r.tiles[keyOf(area)]
		painted := t != nil && t.painted && !t.buffer.Invalid()
		r.lock.Unlock()

		fillByte(region.Buf, overlap, 0x00)
		if painted {
			fillByte(region.Buf, overlap, 0xFF)
		}
	}
	return nil
}

// copyRect byte-copies the overlap region of src into dst, row by row.
// Deliberately format-agnostic — like the original source's memcpy-based
// tile_copy, it never interprets pixel values, so it works unchanged for
// RGBA8, Gray8, or any other PixelFormat.
func copyRect(dst, src *PixelBuffer, overlap Rect) {
	bpp := dst.Format.BytesPerPixel
	rowBytes := overlap.Width * bpp
	if rowBytes <= 0 {
		return
	}
	for y := 0; y < overlap.Height; y++ {
		row := overlap.Top + y
		srcOff := src.RowAddr(overlap.Left, row)
		dstOff := dst.RowAddr(overlap.Left, row)
		copy(dst.pix[dstOff:dstOff+rowBytes], src.pix[srcOff:srcOff+rowBytes])
	}
}

// zeroRect clears the overlap region of dst to zero bytes.
func zeroRect(dst *PixelBuffer, overlap Rect) {
	bpp := dst.Format.BytesPerPixel
	rowBytes := overlap.Width * bpp
	if rowBytes <= 0 {
		return
	}
	for y := 0; y < overlap.Height; y++ {
		row := overlap.Top + y
		off := dst.RowAddr(overlap.Left, row)
		clear(dst.pix[off : off+rowBytes])
	}
}

// fillByte sets every byte of the overlap region of dst to v.
func fillByte(dst *PixelBuffer, overlap Rect, v byte) {
	bpp := dst.Format.BytesPerPixel
	rowBytes := overlap.Width * bpp
	if rowBytes <= 0 {
		return
	}
	for y := 0; y < overlap.Height; y++ {
		row := overlap.Top + y
		off := dst.RowAddr(overlap.Left, row)
		line := dst.pix[off : off+rowBytes]
		for i := range line {
			line[i] = v
		}
	}
}
