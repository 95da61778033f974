package screensink

import "testing"

func TestRefCountingDestroysOnLastClose(t *testing.T) {
	p := newCountingProducer(32, 32, RGBA8)
	out := &testOutput{}
	mask := &testOutput{}

	r, err := NewSinkScreen(p, out, mask, 8, 8, 16, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}

	if r.refCount != 2 {
		t.Fatalf("refCount with an out and a mask = %d, want 2", r.refCount)
	}

	out.Close()
	if r.tiles == nil {
		t.Fatal("render destroyed after only one of two outputs closed")
	}

	mask.Close()
	if r.tiles != nil {
		t.Fatal("render should be destroyed once both outputs are closed")
	}
}

func TestRefCountingSingleOutput(t *testing.T) {
	p := newCountingProducer(32, 32, RGBA8)
	out := &testOutput{}

	r, err := NewSinkScreen(p, out, nil, 8, 8, 16, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}
	if r.refCount != 1 {
		t.Fatalf("refCount with only an out = %d, want 1", r.refCount)
	}

	out.Close()
	if r.tiles != nil {
		t.Fatal("render should be destroyed once its only output closes")
	}
}

func TestMaskDescriptorForcedToGray8(t *testing.T) {
	p := newCountingProducer(16, 16, RGBA8)
	out := &testOutput{}
	mask := &testOutput{}

	if _, err := NewSinkScreen(p, out, mask, 8, 8, 4, 0, nil, nil); err != nil {
		t.Fatalf("NewSinkScreen: %v", err)
	}

	if mask.desc.Format != Gray8 {
		t.Fatalf("mask descriptor format = %+v, want Gray8", mask.desc.Format)
	}
	if mask.desc.Width != 16 || mask.desc.Height != 16 {
		t.Fatalf("mask descriptor size = %dx%d, want 16x16", mask.desc.Width, mask.desc.Height)
	}
}
