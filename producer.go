package screensink

// Descriptor describes the pixel geometry of an image: its size and the
// format of each pixel. sink.go copies the producer's Descriptor onto the
// output and mask images when a Render is created.
type Descriptor struct {
	Width, Height int
	Format        PixelFormat
}

// Producer is the single external collaborator: the image pipeline that
// actually computes pixels for a tile region. The cache invokes it
// through Compute and otherwise does not care how pixels are produced —
// there is deliberately no other hook into this interface.
type Producer interface {
	// Describe returns the producer's pixel geometry. Called by
	// NewSinkScreen while the Render is created, and not afterwards.
	Describe() Descriptor

	// Compute synchronously fills buf with the pixels of the source image
	// over area. It must be safe to call concurrently from distinct
	// worker goroutines, each with its own buffer.
	Compute(buf *PixelBuffer, area Rect) error
}
