package events_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := events.NewBus()
	var got []string

	bus.Subscribe(func(ev events.Changed) { got = append(got, "first:"+ev.ItemID) })
	bus.Subscribe(func(ev events.Changed) { got = append(got, "second:"+ev.ItemID) })

	bus.Publish(events.Changed{Kind: events.RecordCreated, ItemID: "item-1"})

	assert.Equal(t, []string{"first:item-1", "second:item-1"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(func(events.Changed) { calls++ })

	bus.Publish(events.Changed{Kind: events.ItemChanged})
	unsubscribe()
	unsubscribe()
	bus.Publish(events.Changed{Kind: events.ItemChanged})

	assert.Equal(t, 1, calls)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(events.Changed) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(events.Changed{Kind: events.RecordDestroyed})
		}()
	}
	wg.Wait()

	require.Equal(t, 50, count)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "record_created", events.RecordCreated.String())
	assert.Equal(t, "item_destroyed", events.ItemDestroyed.String())
	assert.Equal(t, "unknown", events.Kind(0).String())
}
