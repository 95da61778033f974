package screensink

// NewSinkScreen is the single entry point: it binds a Producer to one or
// two pull-based Outputs through a tile cache. in supplies pixels; out
// receives the main image; mask, if non-nil,
// receives an 8-bit coverage byte per pixel (0xFF painted, 0x00
// otherwise). priority orders this Render against every other live
// Render when the background dispatcher has more than one competing for
// attention — higher values go first. notify, if non-nil, puts the
// Render in async mode: new tiles are handed to the background
// dispatcher and notify runs once per tile as it finishes, instead of
// every fill blocking until the producer has been called directly.
func NewSinkScreen(in Producer, out, mask Output, tileWidth, tileHeight, maxTiles, priority int, notify NotifyFunc, a any) (*Render, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, ErrBadTileSize
	}
	if maxTiles < Unlimited {
		return nil, ErrBadMaxTiles
	}
	if err := ensureSubsystem(); err != nil {
		return nil, ErrThreadCreate
	}

	r := newRender(in, out, mask, tileWidth, tileHeight, maxTiles, priority, notify, a)

	desc := in.Describe()
	out.SetDescriptor(desc)
	out.RegisterFiller(r.fillRegion)
	out.OnClose(r.closeOutput)

	if mask != nil {
		maskDesc := Descriptor{Width: desc.Width, Height: desc.Height, Format: Gray8}
		mask.SetDescriptor(maskDesc)
		mask.RegisterFiller(r.fillMask)
		mask.OnClose(r.closeOutput)
	}

	Logger().Info("screensink: render created",
		"width", desc.Width, "height", desc.Height,
		"tile_width", tileWidth, "tile_height", tileHeight,
		"max_tiles", maxTiles, "priority", priority, "async", r.async())

	return r, nil
}
