package screensink

import "errors"

// Sentinel errors returned by the entry points and fill callbacks. Only
// configuration and bootstrap errors are fatal; the cache otherwise
// favors availability over fidelity and reads back as zero pixels with a
// zero mask bit.
var (
	// ErrBadTileSize is returned when tile_width or tile_height is not
	// positive.
	ErrBadTileSize = errors.New("screensink: tile width and height must be positive")

	// ErrBadMaxTiles is returned when max_tiles is less than -1.
	ErrBadMaxTiles = errors.New("screensink: max_tiles must be -1 (unlimited) or >= 0")

	// ErrThreadCreate is returned when the background dispatcher could not
	// be started.
	ErrThreadCreate = errors.New("screensink: unable to start background dispatcher")

	// ErrClosed is returned by the main output's fill callback when it is
	// invoked after the owning Render has been destroyed. The mask fill
	// callback does not return it; it reports such a Render's area as
	// uncovered (all zero).
	ErrClosed = errors.New("screensink: render is closed")

	// ErrAllocation is returned internally when a new Tile cannot be
	// allocated and no tile can be evicted to take its place. fillRegion
	// never propagates this to its caller: the affected grid cell is
	// simply zero-filled.
	ErrAllocation = errors.New("screensink: tile allocation failed")
)
