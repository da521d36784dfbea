// SPDX-License-Identifier: GPL-3.0-or-later
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
)

// DefaultPollInterval bounds how long the consumer blocks before it checks for a stop request.
const DefaultPollInterval = 100 * time.Millisecond

// MessageQueue buffers envelopes between the fetch goroutines of all sources and the single
// consumer. Envelopes of one producer keep their order.
type MessageQueue struct {
	mu    sync.Mutex
	items []*domain.Envelope
	// ready holds a token while items may be available; it wakes a waiting consumer.
	ready chan struct{}

	bus *events.Bus
}

func NewMessageQueue(bus *events.Bus) *MessageQueue {
	return &MessageQueue{
		ready: make(chan struct{}, 1),
		bus:   bus,
	}
}

func (q *MessageQueue) Enqueue(env *domain.Envelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.mu.Unlock()

	q.signal()
	q.bus.Publish(events.MessageEnqueued{Envelope: env})
}

// Dequeue returns the head of the queue, waiting at most timeout for an envelope. It returns nil
// when the timeout elapses.
func (q *MessageQueue) Dequeue(timeout time.Duration) *domain.Envelope {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.DequeueContext(ctx)
}

// DequeueContext waits for an envelope until ctx is done and returns nil in that case.
func (q *MessageQueue) DequeueContext(ctx context.Context) *domain.Envelope {
	for {
		if env := q.pop(); env != nil {
			return env
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return q.pop()
		}
	}
}

func (q *MessageQueue) pop() *domain.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	env := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) > 0 {
		q.signal()
	}
	return env
}

func (q *MessageQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Size is advisory, producers and the consumer may change it at any time.
func (q *MessageQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *MessageQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Reset drops all queued envelopes and notifies observers.
func (q *MessageQueue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()

	q.bus.Publish(events.MessageQueueReset{})
}
