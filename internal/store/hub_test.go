package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_SubscribePublishUnsubscribe(t *testing.T) {
	h := &hub{}

	var got []Change
	unsubscribe := h.subscribe(func(c Change) {
		got = append(got, c)
	})

	h.publish(Change{Key: KeyEnabled, OldValue: false, NewValue: true})
	assert.Len(t, got, 1)
	assert.Equal(t, KeyEnabled, got[0].Key)

	unsubscribe()
	h.publish(Change{Key: KeyEnabled, OldValue: true, NewValue: false})
	assert.Len(t, got, 1, "no delivery after unsubscribe")
	assert.Equal(t, 0, h.len())
}

func TestHub_SameFunctionTwiceRemovedIndividually(t *testing.T) {
	h := &hub{}

	count := 0
	fn := func(Change) { count++ }

	first := h.subscribe(fn)
	second := h.subscribe(fn)

	h.publish(Change{Key: KeySettings})
	assert.Equal(t, 2, count)

	first()
	h.publish(Change{Key: KeySettings})
	assert.Equal(t, 3, count, "second registration still delivers")

	second()
	h.publish(Change{Key: KeySettings})
	assert.Equal(t, 3, count)
}

func TestHub_UnsubscribeDuringPublish(t *testing.T) {
	h := &hub{}

	var unsubscribe func()
	fired := 0
	unsubscribe = h.subscribe(func(Change) {
		fired++
		unsubscribe()
	})

	h.publish(Change{Key: KeyEnabled})
	h.publish(Change{Key: KeyEnabled})
	assert.Equal(t, 1, fired)
}

func TestHub_ConcurrentPublish(t *testing.T) {
	h := &hub{}

	var mu sync.Mutex
	total := 0
	h.subscribe(func(Change) {
		mu.Lock()
		total++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.publish(Change{Key: KeyEnabled})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, total)
}
