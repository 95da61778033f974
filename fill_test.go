package screensink

import (
	"testing"
	"time"
)

func TestFillRegionAsyncZeroFillsThenConverges(t *testing.T) {
	resetRegistryForTest()

	p := newCountingProducer(64, 64, RGBA8)
	out := &testOutput{}
	notify := &syncNotify{}

	if _, err := NewSinkScreen(p, out, nil, 8, 8, 16, 0, notify.Notify, nil); err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}

	area := Rect{Left: 0, Top: 0, Width: 8, Height: 8}
	buf := NewPixelBuffer(RGBA8, 0, 0, 8, 8)
	region := &Region{Valid: area, Buf: buf}

	if err := out.Fill(region); err != nil {
		t.Fatalf("fill: %v", err)
	}

	// The tile was only just queued: the background dispatcher may not
	// have painted it yet, so every byte must read back as zero — fills
	// never block and never return stale garbage.
	for i, b := range buf.Pix() {
		if b != 0 {
			t.Fatalf("byte %d = %#x before paint, want 0", i, b)
			break
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(notify.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(notify.snapshot()) == 0 {
		t.Fatal("timed out waiting for the dispatcher to notify tile completion")
	}

	if err := out.Fill(region); err != nil {
		t.Fatalf("fill after notify: %v", err)
	}
	for i, b := range buf.Pix() {
		if b == 0 {
			t.Fatalf("byte %d still zero after notified paint", i)
		}
	}
}

func TestAsyncPaintNotifiesOutOnlyOnce(t *testing.T) {
	resetRegistryForTest()

	p := newCountingProducer(64, 64, RGBA8)
	out := &testOutput{}
	mask := &testOutput{}
	notify := &syncNotify{}

	if _, err := NewSinkScreen(p, out, mask, 8, 8, 16, 0, notify.Notify, nil); err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}

	area := Rect{Left: 0, Top: 0, Width: 8, Height: 8}
	outBuf := NewPixelBuffer(RGBA8, 0, 0, 8, 8)
	if err := out.Fill(&Region{Valid: area, Buf: outBuf}); err != nil {
		t.Fatalf("fill: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(notify.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	events := notify.snapshot()
	if len(events) != 1 {
		t.Fatalf("got %d notify events for one painted tile, want exactly 1", len(events))
	}
	if events[0].Out != out {
		t.Fatalf("notify was called with %v, want the render's out", events[0].Out)
	}
}

func TestFillRegionPartialOverlapLeavesOutsideValidUntouched(t *testing.T) {
	p := newCountingProducer(64, 64, RGBA8)
	out := &testOutput{}
	if _, err := NewSinkScreen(p, out, nil, 8, 8, 16, 0, nil, nil); err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}

	// A buffer the size of one tile, but a Valid rect covering only half
	// of it; fillRegion must not touch bytes outside Valid.
	buf := NewPixelBuffer(RGBA8, 0, 0, 8, 8)
	for i := range buf.Pix() {
		buf.Pix()[i] = 0xAA
	}
	region := &Region{Valid: Rect{Left: 0, Top: 0, Width: 4, Height: 8}, Buf: buf}

	if err := out.Fill(region); err != nil {
		t.Fatalf("fill: %v", err)
	}

	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			off := buf.RowAddr(x, y)
			if buf.Pix()[off] != 0xAA {
				t.Fatalf("byte outside Valid at (%d,%d) was overwritten: %#x", x, y, buf.Pix()[off])
			}
		}
	}
}
