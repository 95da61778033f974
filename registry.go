package screensink

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"golang.org/x/sync/semaphore"
)

// registryEntry is one node in the process-wide dirty registry. seq
// breaks ties between equal-priority Renders in submission order,
// matching the original source's behavior of walking dirty renders in
// the order they were linked onto the list.
type registryEntry struct {
	render *Render
	seq    int64
}

func registryLess(a, b *registryEntry) bool {
	if a.render.priority != b.render.priority {
		return a.render.priority > b.render.priority
	}
	return a.seq < b.seq
}

// dispatchSubsystem is the process-wide background-worker state: the
// priority-ordered tree of dirty Renders, the counting semaphore that
// wakes the dispatcher, the advisory reschedule flag, and the goroutine
// lifecycle needed to tear it down cleanly between test scenarios.
type dispatchSubsystem struct {
	mu    sync.Mutex
	tree  *btree.BTreeG[*registryEntry]
	index map[*Render]*registryEntry
	seq   int64

	sem *semaphore.Weighted

	reschedule atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

var (
	subsystemMu sync.Mutex
	subsystem   *dispatchSubsystem
)

// ensureSubsystem lazily starts the dispatcher goroutine on first use. It
// is safe to call from every NewSinkScreen invocation.
func ensureSubsystem() error {
	subsystemMu.Lock()
	defer subsystemMu.Unlock()

	if subsystem != nil {
		return nil
	}
	subsystem = newDispatchSubsystem()
	return nil
}

func newDispatchSubsystem() *dispatchSubsystem {
	ctx, cancel := context.WithCancel(context.Background())
	sys := &dispatchSubsystem{
		tree:   btree.NewG(32, registryLess),
		index:  make(map[*Render]*registryEntry),
		sem:    semaphore.NewWeighted(1 << 30),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	// Hold every unit up front so the number of available units equals the
	// number of pending wakeups: registryPut's Release(1) posts one and
	// registryGet's Acquire(ctx, 1) waits for and consumes one.
	sys.sem.TryAcquire(1 << 30)
	go runDispatcher(ctx, sys)
	return sys
}

// resetRegistryForTest cancels the current dispatcher goroutine, waits
// for it to exit, and installs a fresh subsystem. Used by tests that need
// scenario isolation without leaking goroutines across test cases.
func resetRegistryForTest() {
	subsystemMu.Lock()
	old := subsystem
	subsystemMu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}

	subsystemMu.Lock()
	subsystem = newDispatchSubsystem()
	subsystemMu.Unlock()
}

// registryPut implements the original source's render_dirty_put: add r
// to the registry if it isn't already present, raise the reschedule flag
// so a running dispatch loop checks for a newly-dirtied higher-priority
// Render promptly, and wake the dispatcher. Safe to call with r.lock held
// (it never touches r's own fields besides priority, which is
// immutable).
func registryPut(r *Render) {
	subsystemMu.Lock()
	sys := subsystem
	subsystemMu.Unlock()
	if sys == nil {
		return
	}

	sys.mu.Lock()
	if _, present := sys.index[r]; present {
		sys.mu.Unlock()
		return
	}
	sys.seq++
	entry := &registryEntry{render: r, seq: sys.seq}
	sys.index[r] = entry
	sys.tree.ReplaceOrInsert(entry)
	sys.mu.Unlock()

	sys.reschedule.Store(true)
	sys.sem.Release(1)
}

// registryGet implements the original source's render_dirty_get: block
// until a dirty Render is available, then return the highest-priority
// one, removing it from the registry.
//
// A successful Acquire can still find an empty tree: registryRemove may
// have deleted the entry that posted this wakeup between its Release and
// this call's lock acquisition, if the Render was destroyed in that
// window. That is not registry closure, just a lost race with nothing to
// show for it, so this loops and waits for the next wakeup instead of
// returning an error — only ctx cancellation is terminal.
func registryGet(ctx context.Context, sys *dispatchSubsystem) (*Render, error) {
	for {
		if err := sys.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		sys.mu.Lock()
		entry, ok := sys.tree.Min()
		if !ok {
			sys.mu.Unlock()
			continue
		}
		sys.tree.Delete(entry)
		delete(sys.index, entry.render)
		sys.mu.Unlock()
		return entry.render, nil
	}
}

// registryRemove drops r from the registry if it is still present,
// consuming its pending wakeup with TryAcquire so the semaphore count
// stays matched to the tree's size — the Go analogue of the original
// source's im_semaphore_upn(&sem, -1) "decrement without a matching up",
// used when a Render is destroyed before the dispatcher gets to it.
func registryRemove(r *Render) {
	subsystemMu.Lock()
	sys := subsystem
	subsystemMu.Unlock()
	if sys == nil {
		return
	}

	sys.mu.Lock()
	entry, present := sys.index[r]
	if present {
		sys.tree.Delete(entry)
		delete(sys.index, r)
	}
	sys.mu.Unlock()

	if present {
		sys.sem.TryAcquire(1)
	}
}

// setReschedule raises the advisory flag the dispatcher checks between
// tiles so it can drop a render that just lost its last consumer and pick
// up a newly-dirtied, higher-priority one instead.
func setReschedule() {
	subsystemMu.Lock()
	sys := subsystem
	subsystemMu.Unlock()
	if sys != nil {
		sys.reschedule.Store(true)
	}
}
