// Package resultcache memoizes a Producer's output by request area.
//
// # Overview
//
// The tile cache in the parent package already avoids recomputing pixels
// a consumer has already seen, but every cache miss still calls the
// wrapped Producer directly. When a Producer is itself expensive and
// deterministic — the same thing the original source's doc comment for
// its sink_screen entry point points at with "See also: im_cache()" —
// wrapping it in a Cache here gives a second, independent memoization
// layer that multiple Renders (with different tile grids, or even
// different max_tiles) can share.
//
// # Quick start
//
//	producer := resultcache.Wrap(expensiveProducer, 4096, nil)
//	render, err := screensink.NewSinkScreen(producer, out, mask, 64, 64, 256, 0, nil, nil)
package resultcache
