package toggle

import "sync"

// cellLocks hands out one mutex per cell key. Entries are reference counted
// and dropped once nobody holds or waits for them.
type cellLocks struct {
	mu    sync.Mutex
	locks map[string]*cellLock
}

type cellLock struct {
	mu   sync.Mutex
	refs int
}

func newCellLocks() *cellLocks {
	return &cellLocks{locks: make(map[string]*cellLock)}
}

func (c *cellLocks) lock(key string) (unlock func()) {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &cellLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}

func (c *cellLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
