// Package screensink provides an asynchronous screen-sink pixel cache.
//
// # Overview
//
// screensink sits between a slow pixel producer — an image pipeline whose
// per-pixel computation may be expensive — and one or more fast consumers,
// typically an interactive viewer that repeatedly requests sub-regions of
// the same image. A consumer asks for a rectangular region; the cache
// returns whatever pixels it already has immediately and schedules any
// missing tiles for computation on a background worker. A companion
// coverage mask reports, per tile, whether the pixels currently visible
// through the output are valid.
//
// # Quick start
//
//	render, err := screensink.NewSinkScreen(producer, out, mask,
//	    64, 64, 256, 0, notifyFn, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// out and mask are now pull-based region providers; reading from
//	// them returns whatever is cached and queues the rest.
//
// # Architecture
//
// The module is organized as:
//   - Tile: a fixed-size cache entry holding pixels and paint state.
//   - Render: one cache instance, owning its tiles, dirty queue, and lock.
//   - a process-wide dirty registry, ordered by Render priority.
//   - a single background dispatcher that drains the highest-priority
//     Render's dirty queue through a small worker pool.
package screensink
