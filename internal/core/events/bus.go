package events

import (
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

type Kind int

const (
	RecordCreated Kind = iota + 1
	RecordUpdated
	RecordDestroyed
	ItemChanged
	ItemDestroyed
)

func (k Kind) String() string {
	switch k {
	case RecordCreated:
		return "record_created"
	case RecordUpdated:
		return "record_updated"
	case RecordDestroyed:
		return "record_destroyed"
	case ItemChanged:
		return "item_changed"
	case ItemDestroyed:
		return "item_destroyed"
	default:
		return "unknown"
	}
}

// Changed is published after a store mutation succeeded. Day is empty for
// item level changes.
type Changed struct {
	Kind   Kind
	UserID string
	ItemID string
	Day    domain.DayKey
}

type Handler func(Changed)

// Bus fans Changed events out to subscribers synchronously, in subscription
// order. Handlers run on the publisher's goroutine and must not block.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function removing it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(ev Changed) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// Publisher is the side of the bus the core writes to.
type Publisher interface {
	Publish(ev Changed)
}
