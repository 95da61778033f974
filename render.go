package screensink

import (
	"container/list"
	"sync"
)

// Unlimited is the max_tiles sentinel meaning "no cache size limit".
const Unlimited = -1

// Render is one cache instance bound to a producer/consumer pair. It owns
// its tiles, the position→tile index, the dirty list, configuration, a
// lock, and a reference count.
type Render struct {
	// Configuration, immutable after creation.
	in                     Producer
	out, mask              Output
	tileWidth, tileHeight  int
	maxTiles               int
	priority               int
	notify                 NotifyFunc
	a                      any
	format                 PixelFormat

	refMu    sync.Mutex
	refCount int

	// lock is the coarse-grained mutex guarding every field below: every
	// read or mutation of tile structures happens under it.
	lock sync.Mutex

	all    []*Tile
	ntiles int
	tiles  map[tileKey]*Tile

	// dirty holds unpainted tiles, most-recently-queued at the front.
	// container/list gives O(1) push-front, move-to-front, and removal
	// given an *list.Element — the same complexity the original source
	// gets from GSList only because it is willing to pay an O(n)
	// g_slist_find first; Tile.dirtyElem sidesteps that scan entirely.
	dirty *list.List

	ticks int64
}

func newRender(in Producer, out, mask Output, tileWidth, tileHeight, maxTiles, priority int, notify NotifyFunc, a any) *Render {
	refs := 1
	if mask != nil {
		refs = 2
	}
	return &Render{
		in:         in,
		out:        out,
		mask:       mask,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		maxTiles:   maxTiles,
		priority:   priority,
		notify:     notify,
		a:          a,
		format:     in.Describe().Format,
		refCount:   refs,
		tiles:      make(map[tileKey]*Tile),
		dirty:      list.New(),
	}
}

// async reports whether this Render operates in async mode: notify is set,
// so new tiles are queued for the background dispatcher rather than
// painted synchronously. Go always has goroutines available, so — unlike
// the original's `have_threads` build-time flag — the only condition
// left is whether a notify callback was supplied.
func (r *Render) async() bool {
	return r.notify != nil
}

// tileRequest implements the original source's tile_request decision
// order: hit, then grow, then evict. Must be called with r.lock held.
// Returns the bound Tile, or nil with ErrAllocation if no tile could be
// produced, or nil with ErrClosed once the Render has been destroyed.
func (r *Render) tileRequest(area Rect) (*Tile, error) {
	if r.tiles == nil {
		return nil, ErrClosed
	}
	key := keyOf(area)

	var t *Tile
	if existing, ok := r.tiles[key]; ok {
		// Hit: re-dirty if the tile isn't currently valid.
		t = existing
		if !t.painted || t.buffer.Invalid() {
			if err := t.queue(area); err != nil {
				return nil, err
			}
		}
	} else if r.ntiles < r.maxTiles || r.maxTiles == Unlimited {
		// Grow: room for a fresh tile.
		t = newTile(r)
		r.all = append(r.all, t)
		r.ntiles++
		if err := t.queue(area); err != nil {
			return nil, err
		}
	} else {
		// Reuse: painted LRU first, then the tail of dirty as a last
		// resort.
		t = r.evictPainted()
		if t == nil {
			t = r.evictDirty()
		}
		if t == nil {
			return nil, ErrAllocation
		}
		delete(r.tiles, keyOf(t.area))
		if err := t.queue(area); err != nil {
			return nil, err
		}
	}

	t.touch()
	return t, nil
}

// evictPainted scans all tiles for the painted tile with the smallest
// ticks (LRU among painted). O(ntiles), acceptable because max_tiles is
// typically small.
func (r *Render) evictPainted() *Tile {
	var best *Tile
	for _, t := range r.all {
		if !t.painted {
			continue
		}
		if best == nil || t.ticks < best.ticks {
			best = t
		}
	}
	return best
}

// evictDirty takes the tail of dirty — the oldest pending tile, chosen
// over the head because the head is the most recently requested and most
// likely to matter to the current consumer viewport.
func (r *Render) evictDirty() *Tile {
	elem := r.dirty.Back()
	if elem == nil {
		return nil
	}
	t := elem.Value.(*Tile)
	r.dirty.Remove(elem)
	t.dirtyElem = nil
	return t
}

// ref increments the reference count.
func (r *Render) ref() {
	r.refMu.Lock()
	r.refCount++
	r.refMu.Unlock()
}

// unref decrements the reference count and destroys the Render when it
// reaches zero.
func (r *Render) unref() {
	r.refMu.Lock()
	r.refCount--
	kill := r.refCount == 0
	r.refMu.Unlock()

	if kill {
		r.destroy()
	}
}

// destroy frees a Render's tiles and removes it from the dirty registry.
// Destruction must not race with any read: the only source of decrements
// is output-close callbacks, and output closure implies no further fill
// callbacks will arrive.
func (r *Render) destroy() {
	registryRemove(r)

	r.lock.Lock()
	r.all = nil
	r.ntiles = 0
	r.tiles = nil
	r.dirty = list.New()
	r.lock.Unlock()

	Logger().Info("screensink: render destroyed", "priority", r.priority)
}

// closeOutput is the close-notification callback wired onto out and
// mask: it unrefs the Render and sets the reschedule flag so a
// dispatcher holding a stale ref wakes promptly.
func (r *Render) closeOutput() {
	r.unref()
	setReschedule()
}
