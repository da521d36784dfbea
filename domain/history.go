// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"strings"
	"sync"
	"time"
)

const TaskTypeEmail = "email"

type Result string

const (
	ResultDone     = Result("done")
	ResultReceived = Result("received")
)

type Status int

const (
	StatusNone = Status(iota)
	StatusAdded
	StatusExists
	StatusContactNotFound
	StatusMultipleContactsFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusAdded:
		return "ADDED"
	case StatusExists:
		return "EXISTS"
	case StatusContactNotFound:
		return "CONTACT_NOT_FOUND"
	case StatusMultipleContactsFound:
		return "MULTIPLE_CONTACTS_FOUND"
	case StatusError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ContactInfo references a CRM contact by email address. Id is nil while the address is unmatched.
type ContactInfo struct {
	Id   *int64
	Name string
	Info string
}

// Equal compares by address only, case-insensitively.
func (c ContactInfo) Equal(other ContactInfo) bool {
	return strings.EqualFold(strings.TrimSpace(c.Info), strings.TrimSpace(other.Info))
}

// Key is the normalized address used for map lookups and duplicate detection.
func (c ContactInfo) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Info))
}

func (c ContactInfo) Matched() bool {
	return c.Id != nil
}

type Contact struct {
	Id    int64
	Name  string
	Email string
}

// History is one importable interaction record. Flags and notes may be edited while the history is
// displayed, so access to mutable state goes through the methods.
type History struct {
	mu sync.Mutex

	TaskType    string
	Result      Result
	Description string
	Notes       string
	Date        time.Time
	LoggedBy    int64
	Contact     ContactInfo

	Challenge   bool
	Thank       bool
	MassMailing bool

	// CrmId is set once the history has been persisted or found in the CRM.
	CrmId *int64

	// Envelope is the message the history was converted from.
	Envelope *Envelope

	status Status
	cause  error
}

func NewHistory(env *Envelope, loggedBy int64) *History {
	return &History{
		TaskType:    TaskTypeEmail,
		Description: env.Subject,
		Notes:       env.Body,
		Date:        env.Date,
		LoggedBy:    loggedBy,
		Envelope:    env,
	}
}

// Clone returns a copy with fresh status, used to derive per-recipient histories from a base.
func (h *History) Clone() *History {
	h.mu.Lock()
	defer h.mu.Unlock()

	return &History{
		TaskType:    h.TaskType,
		Result:      h.Result,
		Description: h.Description,
		Notes:       h.Notes,
		Date:        h.Date,
		LoggedBy:    h.LoggedBy,
		Contact:     h.Contact,
		Challenge:   h.Challenge,
		Thank:       h.Thank,
		MassMailing: h.MassMailing,
		Envelope:    h.Envelope,
	}
}

func (h *History) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *History) Cause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cause
}

// SetStatusIfNone sets status only when no status has been recorded yet and reports whether it did.
func (h *History) SetStatusIfNone(status Status) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusNone {
		return false
	}
	h.status = status
	return true
}

// MarkPersisted records the CRM id and sets ADDED or EXISTS.
func (h *History) MarkPersisted(id int64, existed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.CrmId = &id
	h.cause = nil
	if existed {
		h.status = StatusExists
	} else {
		h.status = StatusAdded
	}
}

func (h *History) Fail(cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusError
	h.cause = cause
}

// Reset clears status and cause so the history can be processed again.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusNone
	h.cause = nil
	h.CrmId = nil
}

// Matched sets the contact identity after a successful lookup.
func (h *History) Matched(id int64, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Contact.Id = &id
	h.Contact.Name = name
}

func (h *History) ContactInfo() ContactInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Contact
}

func (h *History) SetNotes(notes string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Notes = notes
}

func (h *History) SetFlags(challenge, thank, massMailing bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Challenge = challenge
	h.Thank = thank
	h.MassMailing = massMailing
}

// SourceId returns the id of the mail source the history came from.
func (h *History) SourceId() string {
	if h.Envelope == nil {
		return ""
	}
	return h.Envelope.SourceId
}

// Key is the natural key used to detect histories already present in the CRM.
func (h *History) Key() HistoryKey {
	key := HistoryKey{Contact: h.ContactInfo().Key()}
	if h.Envelope != nil {
		key.MailIdHash = h.Envelope.MailIdHash
	}
	return key
}

type HistoryKey struct {
	MailIdHash string
	Contact    string
}
