package flatfile

import "sync"

// guard serializes every read and write against one collection file. Each
// collection gets a one-slot channel; goroutines blocked on a full channel
// are admitted in arrival order, so access is FIFO per collection.
//
// There is no timeout: a holder that never releases blocks the collection
// for the lifetime of the store.
type guard struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newGuard() *guard {
	return &guard{slots: make(map[string]chan struct{})}
}

func (g *guard) slot(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		g.slots[name] = ch
	}
	return ch
}

// acquire blocks until the caller holds name and returns the release
// function. Release must be called exactly once.
func (g *guard) acquire(name string) (release func()) {
	ch := g.slot(name)
	ch <- struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}
}
