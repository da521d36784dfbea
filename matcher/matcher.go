// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"

	"github.com/sirupsen/logrus"
)

// ContactMatcher resolves the contact address of a history against the CRM contacts.
type ContactMatcher struct {
	contacts domain.ContactFinder
	l        *logrus.Logger
}

func NewContactMatcher(contacts domain.ContactFinder) *ContactMatcher {
	return &ContactMatcher{
		contacts: contacts,
		l:        log.Logger(log.LOG_MATCHER),
	}
}

// Resolve fills in the contact id and name when exactly one contact has the address. No match and
// ambiguous matches are recorded as status, unless the history already has one. Datastore failures
// are returned as *domain.HistoryProcessingError.
func (m *ContactMatcher) Resolve(h *domain.History) error {
	contact := h.ContactInfo()

	found, err := m.contacts.FindContactsByEmail(contact.Info)
	if err != nil {
		return &domain.HistoryProcessingError{Contact: contact.Info, Err: err}
	}

	logger := m.l.WithFields(logrus.Fields{"contact": contact.Info, "matches": len(found)})
	switch len(found) {
	case 0:
		h.SetStatusIfNone(domain.StatusContactNotFound)
		logger.Debug("No contact found")
	case 1:
		h.Matched(found[0].Id, found[0].Name)
		logger.WithField("id", found[0].Id).Debug("Matched contact")
	default:
		h.SetStatusIfNone(domain.StatusMultipleContactsFound)
		logger.Debug("Multiple contacts found")
	}

	return nil
}
