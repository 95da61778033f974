package screensink

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// countingProducer fills every pixel with a constant byte and counts how
// many times Compute was invoked, so tests can assert on cache-hit
// behavior (a tile requested twice without eviction should only compute
// once).
type countingProducer struct {
	width, height int
	format        PixelFormat
	calls         atomic.Int64

	mu     sync.Mutex
	failAt map[tileKey]bool
}

func newCountingProducer(width, height int, format PixelFormat) *countingProducer {
	return &countingProducer{width: width, height: height, format: format}
}

func (p *countingProducer) Describe() Descriptor {
	return Descriptor{Width: p.width, Height: p.height, Format: p.format}
}

func (p *countingProducer) failOn(area Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt == nil {
		p.failAt = make(map[tileKey]bool)
	}
	p.failAt[keyOf(area)] = true
}

func (p *countingProducer) Compute(buf *PixelBuffer, area Rect) error {
	p.calls.Add(1)

	p.mu.Lock()
	fail := p.failAt != nil && p.failAt[keyOf(area)]
	p.mu.Unlock()
	if fail {
		return fmt.Errorf("countingProducer: injected failure for %+v", area)
	}

	pix := buf.Pix()
	for i := range pix {
		pix[i] = byte(area.Left + area.Top + 1)
	}
	return nil
}

// testOutput is a minimal Output that records its descriptor, filler,
// and close callbacks, and lets tests drive Fill directly.
type testOutput struct {
	desc    Descriptor
	filler  FillFunc
	closers []func()
}

func (o *testOutput) SetDescriptor(desc Descriptor) { o.desc = desc }
func (o *testOutput) RegisterFiller(fn FillFunc)    { o.filler = fn }
func (o *testOutput) OnClose(fn func())             { o.closers = append(o.closers, fn) }

func (o *testOutput) Fill(region *Region) error {
	return o.filler(region)
}

func (o *testOutput) Close() {
	for _, fn := range o.closers {
		fn()
	}
}

// syncNotify drains into a plain slice, useful for async tests that want
// to assert on exactly which areas were notified.
type syncNotify struct {
	mu     sync.Mutex
	events []NotifyEvent
}

func (n *syncNotify) Notify(out Output, area Rect, a any) {
	n.mu.Lock()
	n.events = append(n.events, NotifyEvent{Out: out, Area: area, A: a})
	n.mu.Unlock()
}

func (n *syncNotify) snapshot() []NotifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotifyEvent(nil), n.events...)
}
