// SPDX-License-Identifier: GPL-3.0-or-later

// Package events delivers typed notifications from the import pipeline to observers such as a user
// interface. Publishing never blocks: an observer that does not keep up loses events and the loss is
// counted.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/CrawX/go-imap-historian/domain"
)

type Event interface {
	Name() string
}

type ImportingChanged struct {
	Old, New bool
}

type MessageEnqueued struct {
	Envelope *domain.Envelope
}

type MessageQueueReset struct{}

type HistoryAdded struct {
	History *domain.History
}

type HistoryListReset struct{}

type ContactRemoved struct {
	Contact  domain.ContactInfo
	SourceId string
}

type ImportServiceStopped struct{}

func (ImportingChanged) Name() string     { return "importing status changed" }
func (MessageEnqueued) Name() string      { return "message enqueued" }
func (MessageQueueReset) Name() string    { return "message queue initialized" }
func (HistoryAdded) Name() string         { return "history record added" }
func (HistoryListReset) Name() string     { return "history list initialized" }
func (ContactRemoved) Name() string       { return "contact removed from history" }
func (ImportServiceStopped) Name() string { return "import service stopped" }

type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextId      int
	dropped     atomic.Int64
}

func NewBus() *Bus {
	return &Bus{
		subscribers: map[int]chan Event{},
	}
}

// Subscribe returns a channel receiving all events published from now on, and a function that
// unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextId
	b.nextId++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(ch)
		})
	}
}

// Publish is safe on a nil bus, which drops everything.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Bus) Dropped() int64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}
