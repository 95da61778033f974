package screensink

import (
	"context"
	"sync"
)

// workerFanout bounds how many tiles of a single Render are painted
// concurrently before the dispatcher checks for a higher-priority
// Render to switch to. Matches the original source's fixed-size
// render thread pool, sized here to a modest constant rather than
// runtime.NumCPU() since tile painting is typically producer-bound, not
// CPU-bound on the dispatcher's own goroutines.
const workerFanout = 4

// runDispatcher is the single long-lived background goroutine: pop the
// highest-priority dirty Render, drive a small worker pool over its dirty
// tiles, and repeat. It exits when ctx is canceled (resetRegistryForTest,
// or process shutdown).
func runDispatcher(ctx context.Context, sys *dispatchSubsystem) {
	defer close(sys.done)

	for {
		r, err := registryGet(ctx, sys)
		if err != nil {
			return
		}

		// Clear the flag once, at the top of this dispatch, rather than
		// letting each worker goroutine clear it for itself — the flag
		// must stay set for every goroutine in this dispatch's pool until
		// the next one starts, or the first goroutine to observe it would
		// consume it while its siblings kept draining the low-priority
		// Render's dirty list.
		sys.reschedule.Store(false)

		// Hold an extra reference for the duration of painting so a
		// consumer closing its output mid-paint can't destroy r while a
		// worker goroutine still has its lock, tiles, or dirty list in
		// hand. The original source brackets render_work the same way
		// with render_ref/render_unref.
		r.ref()
		runWorkPool(ctx, sys, r)
		r.unref()
	}
}

// runWorkPool paints r's dirty tiles with up to workerFanout concurrent
// goroutines, stopping early if the reschedule flag is raised so a
// higher-priority Render isn't starved. Any tiles still dirty when the
// pool stops are put back on the registry.
func runWorkPool(ctx context.Context, sys *dispatchSubsystem, r *Render) {
	var wg sync.WaitGroup
	for i := 0; i < workerFanout; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				if sys.reschedule.Load() {
					return
				}
				t, ok := r.allocate()
				if !ok {
					return
				}
				r.work(t)
			}
		}()
	}
	wg.Wait()

	r.lock.Lock()
	stillDirty := r.dirty.Len() > 0
	r.lock.Unlock()
	if stillDirty {
		registryPut(r)
	}
}

// allocate pops the front (most recently touched) tile off the dirty
// list, implementing the painting half of the original source's
// render_allocate. Front, not back, so a tile the consumer just asked
// for is painted ahead of ones only sitting in cache from an earlier
// viewport.
func (r *Render) allocate() (*Tile, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	elem := r.dirty.Front()
	if elem == nil {
		return nil, false
	}
	t := elem.Value.(*Tile)
	r.dirty.Remove(elem)
	t.dirtyElem = nil
	return t, true
}

// work computes one tile's pixels and marks it painted, implementing
// the original source's render_work. Compute runs without r.lock held —
// each worker owns a distinct Tile's buffer, so concurrent calls for
// different tiles of the same Render never touch the same memory. A
// failure here is swallowed and logged rather than propagated: async
// mode has no waiting caller to report it to, and the tile is simply
// left unpainted, to be re-queued the next time it's requested.
func (r *Render) work(t *Tile) {
	if err := r.in.Compute(t.buffer, t.area); err != nil {
		Logger().Warn("screensink: async tile compute failed",
			"area", t.area, "err", err)
		return
	}

	r.lock.Lock()
	t.painted = true
	area := t.area
	r.lock.Unlock()

	if r.notify != nil {
		r.notify(r.out, area, r.a)
	}
}
