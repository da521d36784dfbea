// SPDX-License-Identifier: GPL-3.0-or-later
package model

import (
	"sync"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
)

// HistoryList holds the histories of the current session for display and later correction.
type HistoryList struct {
	mu        sync.Mutex
	histories []*domain.History
	bus       *events.Bus
}

func NewHistoryList(bus *events.Bus) *HistoryList {
	return &HistoryList{bus: bus}
}

func (l *HistoryList) Add(h *domain.History) {
	l.mu.Lock()
	l.histories = append(l.histories, h)
	l.mu.Unlock()

	l.bus.Publish(events.HistoryAdded{History: h})
}

func (l *HistoryList) All() []*domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.History(nil), l.histories...)
}

func (l *HistoryList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.histories)
}

// ByContact returns all histories referencing contact. An empty sourceId matches every source.
func (l *HistoryList) ByContact(contact domain.ContactInfo, sourceId string) []*domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := []*domain.History{}
	for _, h := range l.histories {
		if matches(h, contact, sourceId) {
			result = append(result, h)
		}
	}
	return result
}

// RemoveContact removes the histories referencing contact and returns them.
func (l *HistoryList) RemoveContact(contact domain.ContactInfo, sourceId string) []*domain.History {
	l.mu.Lock()
	removed := []*domain.History{}
	kept := l.histories[:0]
	for _, h := range l.histories {
		if matches(h, contact, sourceId) {
			removed = append(removed, h)
		} else {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(l.histories); i++ {
		l.histories[i] = nil
	}
	l.histories = kept
	l.mu.Unlock()

	if len(removed) > 0 {
		l.bus.Publish(events.ContactRemoved{Contact: contact, SourceId: sourceId})
	}
	return removed
}

// CountByStatus tallies the histories per status.
func (l *HistoryList) CountByStatus() map[domain.Status]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := map[domain.Status]int{}
	for _, h := range l.histories {
		counts[h.Status()]++
	}
	return counts
}

func (l *HistoryList) Reset() {
	l.mu.Lock()
	l.histories = nil
	l.mu.Unlock()

	l.bus.Publish(events.HistoryListReset{})
}

func matches(h *domain.History, contact domain.ContactInfo, sourceId string) bool {
	if len(sourceId) > 0 && h.SourceId() != sourceId {
		return false
	}
	return h.ContactInfo().Equal(contact)
}
