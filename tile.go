package screensink

import "container/list"

// Tile is one fixed-size cache entry, covering a tile-aligned rectangle of
// the producer's coordinate space.
//
// A Tile is owned by exactly one Render for its entire lifetime and lives
// in that Render's all slice until the Render is destroyed. render is a
// back-pointer used only by touch/queue below — Render remains the sole
// owner.
type Tile struct {
	render *Render

	area    Rect
	painted bool
	buffer  *PixelBuffer

	ticks int64

	// dirtyElem is this tile's node in render.dirty, or nil if the tile is
	// not currently queued. Keeping the *list.Element lets touch() and
	// the dispatcher's allocate step remove/reorder in O(1) instead of
	// scanning the list, the same cost tradeoff the original source's
	// GSList-based g_slist_find/remove pays for with an O(n) scan; we
	// avoid that scan with an intrusive pointer instead.
	dirtyElem *list.Element
}

func newTile(r *Render) *Tile {
	return &Tile{
		render: r,
		buffer: NewPixelBuffer(r.format, 0, 0, r.tileWidth, r.tileHeight),
	}
}

// touch implements the original source's tile_touch: bump the LRU tick
// and, if the tile is dirty and already queued, move it to the front of
// dirty. Must be called with render.lock held.
//
// A tile that is dirty but NOT yet queued (dirtyElem == nil) is
// intentionally left alone here — this mirrors the original source's
// g_slist_find/remove-then-prepend, which only bumps a tile already
// present in the list. Preserved as-is to avoid double-queueing.
func (t *Tile) touch() {
	r := t.render
	t.ticks = r.ticks
	r.ticks++

	if !t.painted && t.dirtyElem != nil {
		r.dirty.MoveToFront(t.dirtyElem)
	}
}

// queue implements the original source's tile_queue: bind the tile to a
// new area, rebind its buffer, and either hand it to the background
// worker (async mode) or paint it synchronously. Must be called with
// render.lock held. The caller is responsible for removing any stale
// `tiles` map entry for the tile's previous position before calling this
// when relocating an existing tile.
func (t *Tile) queue(area Rect) error {
	r := t.render

	t.painted = false
	t.area = area
	if err := t.buffer.rebind(area.Left, area.Top, area.Width, area.Height); err != nil {
		// The original source swallows this with a bare printf and
		// returns a tile with painted=false and an undefined buffer;
		// callers tolerate this via the zero-fill path. We keep that
		// behavior but make the failure observable through logging
		// instead of a silent print.
		Logger().Warn("screensink: tile buffer rebind failed",
			"area", area, "err", err)
	}
	r.tiles[keyOf(area)] = t

	if r.async() {
		if t.dirtyElem != nil {
			r.dirty.MoveToFront(t.dirtyElem)
		} else {
			t.dirtyElem = r.dirty.PushFront(t)
		}
		registryPut(r)
		return nil
	}

	// Sync mode: paint immediately, under the caller's already-held
	// render.lock, exactly like the original's tile_queue calling
	// im_prepare() synchronously. No notification is delivered, and a
	// compute failure here is surfaced to the waiting caller rather than
	// swallowed.
	if err := r.in.Compute(t.buffer, t.area); err != nil {
		return err
	}
	t.painted = true
	return nil
}
