// SPDX-License-Identifier: GPL-3.0-or-later
package queue

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(source string, uid uint32) *domain.Envelope {
	return &domain.Envelope{SourceId: source, Uid: uid}
}

func TestMessageQueue_Fifo(t *testing.T) {
	q := NewMessageQueue(nil)
	e1, e2, e3 := envelope("a", 1), envelope("a", 2), envelope("a", 3)
	q.Enqueue(e1)
	q.Enqueue(e2)
	q.Enqueue(e3)

	assert.Equal(t, 3, q.Size())
	assert.Same(t, e1, q.Dequeue(time.Millisecond))
	assert.Same(t, e2, q.Dequeue(time.Millisecond))
	assert.Same(t, e3, q.Dequeue(time.Millisecond))
	assert.True(t, q.IsEmpty())
}

func TestMessageQueue_DequeueTimeout(t *testing.T) {
	q := NewMessageQueue(nil)

	start := time.Now()
	assert.Nil(t, q.Dequeue(20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMessageQueue_DequeueWakesOnEnqueue(t *testing.T) {
	q := NewMessageQueue(nil)
	e := envelope("a", 1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(e)
	}()

	assert.Same(t, e, q.Dequeue(time.Second))
}

func TestMessageQueue_ConcurrentProducers(t *testing.T) {
	q := NewMessageQueue(nil)
	producers, perProducer := 8, 200

	wg := &sync.WaitGroup{}
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			for i := 1; i <= perProducer; i++ {
				q.Enqueue(envelope(source, uint32(i)))
			}
		}(fmt.Sprintf("source%d", p))
	}

	lastUid := map[string]uint32{}
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for received < producers*perProducer {
			env := q.Dequeue(time.Second)
			if env == nil {
				return
			}
			assert.Greater(t, env.Uid, lastUid[env.SourceId], "order within a producer must be kept")
			lastUid[env.SourceId] = env.Uid
			received++
		}
	}()

	wg.Wait()
	<-done
	assert.Equal(t, producers*perProducer, received)
	assert.True(t, q.IsEmpty())
}

func TestMessageQueue_ResetPublishesEvent(t *testing.T) {
	bus := events.NewBus()
	ch, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	q := NewMessageQueue(bus)
	e := envelope("a", 1)
	q.Enqueue(e)
	require.Equal(t, events.MessageEnqueued{Envelope: e}, <-ch)

	q.Reset()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, events.MessageQueueReset{}, <-ch)
	assert.Nil(t, q.Dequeue(time.Millisecond))
}
