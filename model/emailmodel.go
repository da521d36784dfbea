// SPDX-License-Identifier: GPL-3.0-or-later
package model

import (
	"context"
	"sync"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/events"
)

// ImportSource is the part of a mail source the import service reports processed messages to.
type ImportSource interface {
	// MarkImported moves the message of env to the processed folder.
	MarkImported(env *domain.Envelope) error
	// MessageHandled is called once per processed message. imported is false when a history of the
	// message could not be put into the CRM.
	MessageHandled(env *domain.Envelope, imported bool)
}

type sourceEntry struct {
	settings *domain.SourceSettings
	source   ImportSource
	complete bool
}

// EmailModel owns the registered sources and the importing indicator. Importing is switched on when
// an import starts and switched off once every registered source completed its fetch.
type EmailModel struct {
	mu        sync.Mutex
	sources   map[string]*sourceEntry
	order     []string
	importing bool
	// changed is closed and replaced whenever importing flips.
	changed chan struct{}

	bus *events.Bus
}

func NewEmailModel(bus *events.Bus) *EmailModel {
	return &EmailModel{
		sources: map[string]*sourceEntry{},
		changed: make(chan struct{}),
		bus:     bus,
	}
}

func (m *EmailModel) Register(settings *domain.SourceSettings, source ImportSource) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[settings.Id]; !ok {
		m.order = append(m.order, settings.Id)
	}
	m.sources[settings.Id] = &sourceEntry{settings: settings, source: source}
}

func (m *EmailModel) Settings(sourceId string) (*domain.SourceSettings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sources[sourceId]
	if !ok {
		return nil, false
	}
	return e.settings, true
}

func (m *EmailModel) Source(sourceId string) (ImportSource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sources[sourceId]
	if !ok || e.source == nil {
		return nil, false
	}
	return e.source, true
}

func (m *EmailModel) SourceIds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// StartImporting marks every source as incomplete and switches importing on.
func (m *EmailModel) StartImporting() {
	m.mu.Lock()
	for _, e := range m.sources {
		e.complete = false
	}
	m.mu.Unlock()

	m.SetImporting(true)
}

// SourceCompleted records that a source finished fetching and switches importing off when it was the
// last one.
func (m *EmailModel) SourceCompleted(sourceId string) {
	m.mu.Lock()
	if e, ok := m.sources[sourceId]; ok {
		e.complete = true
	}
	allComplete := true
	for _, e := range m.sources {
		allComplete = allComplete && e.complete
	}
	m.mu.Unlock()

	if allComplete {
		m.SetImporting(false)
	}
}

func (m *EmailModel) SetImporting(importing bool) {
	m.mu.Lock()
	old := m.importing
	if old == importing {
		m.mu.Unlock()
		return
	}
	m.importing = importing
	close(m.changed)
	m.changed = make(chan struct{})
	m.mu.Unlock()

	m.bus.Publish(events.ImportingChanged{Old: old, New: importing})
}

func (m *EmailModel) IsImporting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importing
}

// WaitImported blocks until importing is off or ctx is done.
func (m *EmailModel) WaitImported(ctx context.Context) error {
	for {
		m.mu.Lock()
		importing, changed := m.importing, m.changed
		m.mu.Unlock()

		if !importing {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
