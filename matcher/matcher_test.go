// SPDX-License-Identifier: GPL-3.0-or-later
package matcher

import (
	"errors"
	"testing"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/domain/mocks"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) (*gomock.Controller, *ContactMatcher, *mocks.MockContactFinder) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockContactFinder(ctrl)
	return ctrl, &ContactMatcher{contacts: finder, l: log.NullLogger()}, finder
}

func historyFor(address string) *domain.History {
	h := domain.NewHistory(&domain.Envelope{}, 1)
	h.Contact = domain.ContactInfo{Name: "Display", Info: address}
	return h
}

func TestContactMatcher_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		found         []*domain.Contact
		initialStatus domain.Status
		status        domain.Status
		matchedId     *int64
		matchedName   string
	}{
		{"notfound", nil, domain.StatusNone, domain.StatusContactNotFound, nil, "Display"},
		{"multiple", []*domain.Contact{{Id: 1}, {Id: 2}}, domain.StatusNone, domain.StatusMultipleContactsFound, nil, "Display"},
		{"single", []*domain.Contact{{Id: 5, Name: "Alice"}}, domain.StatusNone, domain.StatusNone, i64(5), "Alice"},
		{"notfoundkeepsprior", nil, domain.StatusError, domain.StatusError, nil, "Display"},
		{"multiplekeepsprior", []*domain.Contact{{Id: 1}, {Id: 2}}, domain.StatusContactNotFound, domain.StatusContactNotFound, nil, "Display"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, m, finder := setup(t)
			defer ctrl.Finish()

			h := historyFor("a@x.com")
			if tc.initialStatus != domain.StatusNone {
				h.SetStatusIfNone(tc.initialStatus)
			}

			finder.EXPECT().FindContactsByEmail(gomock.Eq("a@x.com")).Return(tc.found, nil)

			assert.NoError(t, m.Resolve(h))
			assert.Equal(t, tc.status, h.Status())
			assert.Equal(t, tc.matchedId, h.ContactInfo().Id)
			assert.Equal(t, tc.matchedName, h.ContactInfo().Name)
		})
	}
}

func TestContactMatcher_NoMatchThenMultipleForSameAddress(t *testing.T) {
	ctrl, m, finder := setup(t)
	defer ctrl.Finish()

	gomock.InOrder(
		finder.EXPECT().FindContactsByEmail("a@x.com").Return(nil, nil),
		finder.EXPECT().FindContactsByEmail("a@x.com").Return([]*domain.Contact{{Id: 1}, {Id: 2}}, nil),
	)

	first, second := historyFor("a@x.com"), historyFor("a@x.com")
	assert.NoError(t, m.Resolve(first))
	assert.NoError(t, m.Resolve(second))
	assert.Equal(t, domain.StatusContactNotFound, first.Status())
	assert.Equal(t, domain.StatusMultipleContactsFound, second.Status())
}

func TestContactMatcher_DatastoreFailure(t *testing.T) {
	ctrl, m, finder := setup(t)
	defer ctrl.Finish()

	dbErr := errors.New("database is locked")
	finder.EXPECT().FindContactsByEmail("a@x.com").Return(nil, dbErr)

	h := historyFor("a@x.com")
	err := m.Resolve(h)

	var processingErr *domain.HistoryProcessingError
	assert.True(t, errors.As(err, &processingErr))
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, domain.StatusNone, h.Status(), "the caller records the error")
}

func i64(v int64) *int64 {
	return &v
}
