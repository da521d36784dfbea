// SPDX-License-Identifier: GPL-3.0-or-later
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	first, unsubscribeFirst := bus.Subscribe(4)
	second, unsubscribeSecond := bus.Subscribe(4)
	defer unsubscribeSecond()

	bus.Publish(ImportingChanged{Old: false, New: true})
	assert.Equal(t, ImportingChanged{Old: false, New: true}, <-first)
	assert.Equal(t, ImportingChanged{Old: false, New: true}, <-second)

	unsubscribeFirst()
	unsubscribeFirst()
	_, open := <-first
	assert.False(t, open)

	bus.Publish(MessageQueueReset{})
	assert.Equal(t, MessageQueueReset{}, <-second)
}

func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(HistoryListReset{})
	bus.Publish(HistoryListReset{})
	bus.Publish(HistoryListReset{})

	assert.Equal(t, int64(2), bus.Dropped())
	assert.Equal(t, "history list initialized", (<-ch).Name())
}

func TestBus_Nil(t *testing.T) {
	var bus *Bus
	bus.Publish(MessageQueueReset{})
	assert.Equal(t, int64(0), bus.Dropped())
}
