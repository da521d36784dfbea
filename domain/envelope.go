// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"sync/atomic"
	"time"
)

type Address struct {
	Name    string
	Address string
}

func (a Address) String() string {
	if len(a.Name) == 0 {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

// Envelope is a snapshot of one fetched message. It is not modified after creation, except for the
// add-existing-history flag which is reset when the envelope is queued again for reprocessing.
type Envelope struct {
	SourceId   string
	Folder     string
	Uid        uint32
	MailIdHash string

	From    Address
	To      []Address
	Subject string
	Body    string
	Date    time.Time

	skipExistingHistory atomic.Bool
}

// AddExistingHistory reports whether a History that already exists in the CRM should still be
// added to the history list.
func (e *Envelope) AddExistingHistory() bool {
	return !e.skipExistingHistory.Load()
}

func (e *Envelope) SetAddExistingHistory(add bool) {
	e.skipExistingHistory.Store(!add)
}
