// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"testing"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *Persistence {
	log.InitDiscardLogging()
	p, err := NewPersistence(DriverSqlite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		p.Close()
	})
	return p
}

func matchedHistory(hash string, contactId int64, email string) *domain.History {
	env := &domain.Envelope{
		SourceId:   "work",
		MailIdHash: hash,
		Subject:    "Offer",
		Body:       "See attachment",
		Date:       time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	h := domain.NewHistory(env, 3)
	h.Result = domain.ResultDone
	h.Thank = true
	h.Contact = domain.ContactInfo{Info: email}
	h.Matched(contactId, "Alice")
	return h
}

func TestNewPersistence_UnknownDriver(t *testing.T) {
	p, err := NewPersistence("mysql", "")
	assert.Nil(t, p)
	assert.EqualError(t, err, `unknown database driver "mysql"`)
}

func TestPersistence_Contacts(t *testing.T) {
	p := setup(t)

	alice, err := p.AddContact("Alice", "Alice@X.com")
	require.NoError(t, err)
	_, err = p.AddContact("Bob", "bob@x.com")
	require.NoError(t, err)
	_, err = p.AddContact("Bob Two", "bob@x.com")
	require.NoError(t, err)

	found, err := p.FindContactsByEmail(" alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, []*domain.Contact{{Id: alice, Name: "Alice", Email: "Alice@X.com"}}, found)

	found, err = p.FindContactsByEmail("bob@x.com")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = p.FindContactsByEmail("carol@x.com")
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := p.AllContacts()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Alice", all[0].Name)
}

func TestPersistence_SaveHistory(t *testing.T) {
	p := setup(t)

	contactId, err := p.AddContact("Alice", "a@x.com")
	require.NoError(t, err)

	id, existed, err := p.SaveHistory(matchedHistory("hash1", contactId, "a@x.com"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotZero(t, id)

	again, existed, err := p.SaveHistory(matchedHistory("hash1", contactId, "A@X.com"))
	require.NoError(t, err)
	assert.True(t, existed, "same message and contact is a duplicate")
	assert.Equal(t, id, again)

	other, existed, err := p.SaveHistory(matchedHistory("hash2", contactId, "a@x.com"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotEqual(t, id, other)

	saved, err := p.RecentHistories(10)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, other, saved[0].Id)
	assert.Equal(t, contactId, saved[0].ContactId)
	assert.Equal(t, "a@x.com", saved[0].ContactEmail)
	assert.Equal(t, "done", saved[0].Result)
	assert.Equal(t, "Offer", saved[0].Description)
	assert.Equal(t, int64(3), saved[0].LoggedBy)
	assert.True(t, saved[0].Thank)
	assert.Equal(t, "work", saved[0].SourceId)
	assert.Equal(t, p.ImportRun(), saved[0].ImportRun)

	saved, err = p.RecentHistories(1)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestPersistence_SaveHistoryRollback(t *testing.T) {
	p := setup(t)

	_, _, err := p.SaveHistory(matchedHistory("hash1", 99, "ghost@x.com"))
	assert.Error(t, err, "the contact does not exist")

	saved, err := p.RecentHistories(10)
	require.NoError(t, err)
	assert.Empty(t, saved)

	contactId, err := p.AddContact("Alice", "a@x.com")
	require.NoError(t, err)
	_, existed, err := p.SaveHistory(matchedHistory("hash1", contactId, "a@x.com"))
	assert.NoError(t, err, "a failed save leaves nothing behind")
	assert.False(t, existed)
}

func TestPersistence_SaveHistoryUnmatched(t *testing.T) {
	p := setup(t)

	h := domain.NewHistory(&domain.Envelope{MailIdHash: "hash"}, 1)
	h.Contact = domain.ContactInfo{Info: "a@x.com"}

	_, _, err := p.SaveHistory(h)
	assert.ErrorIs(t, err, ErrContactNotMatched)
}

func TestPersistence_FolderState(t *testing.T) {
	p := setup(t)

	state, err := p.FolderState("work", "INBOX")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, p.SaveFolderState(domain.FolderState{SourceId: "work", Folder: "INBOX", UidValidity: 1, LastUid: 10}))
	require.NoError(t, p.SaveFolderState(domain.FolderState{SourceId: "work", Folder: "INBOX", UidValidity: 2, LastUid: 20}))
	require.NoError(t, p.SaveFolderState(domain.FolderState{SourceId: "home", Folder: "INBOX", UidValidity: 5, LastUid: 50}))

	state, err = p.FolderState("work", "INBOX")
	require.NoError(t, err)
	assert.Equal(t, &domain.FolderState{SourceId: "work", Folder: "INBOX", UidValidity: 2, LastUid: 20}, state)
}
