// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/persistence.go -package=mocks . CrmGateway,ContactFinder,HistoryStore,FolderStateStore
type FolderState struct {
	SourceId    string
	Folder      string
	UidValidity uint32
	LastUid     uint32
}

type SavedHistory struct {
	Id           int64
	ContactId    int64
	ContactEmail string
	Result       string
	Description  string
	Date         string
	LoggedBy     int64
	Thank        bool
	SourceId     string
	ImportRun    string
}

type ContactFinder interface {
	FindContactsByEmail(email string) ([]*Contact, error)
}

type HistoryStore interface {
	// SaveHistory inserts the history in its own transaction unless a history with the same key
	// exists. It returns the CRM id and whether the history already existed.
	SaveHistory(h *History) (int64, bool, error)
}

type FolderStateStore interface {
	FolderState(sourceId, folder string) (*FolderState, error)
	SaveFolderState(state FolderState) error
}

type CrmGateway interface {
	ContactFinder
	HistoryStore
	FolderStateStore

	AddContact(name, email string) (int64, error)
	AllContacts() ([]*Contact, error)
	RecentHistories(limit int) ([]*SavedHistory, error)
	Close() error
}
