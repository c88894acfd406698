// internal/voice/keyedmutex.go
package voice

import "sync"

// keyedMutex serializes event handling per channel id. A "leave" and a
// "join" for the same room must never interleave their read-modify-write of
// the session row or the join tracker, and the hold must span the store and
// transport calls in between; events for different rooms proceed in
// parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, creating an entry on first use. The
// returned func releases the mutex and discards the entry once no goroutine
// holds or waits on it, so the map does not grow with dead room ids.
func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
