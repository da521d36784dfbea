// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/imap.go -package=mocks . ImapConnector
type RawImapMail struct {
	Uid     uint32
	RawMail []byte
}

type ImapConnector interface {
	Select(folder string) (uint32, error)
	ListUids() ([]uint32, error)
	FetchMail(uid uint32) (*RawImapMail, error)
	MoveReady() (error, error)
	Move(uids []uint32, folder string) error

	Close() error
}

// ImapDialer opens an authenticated IMAP session.
type ImapDialer func(server, user, password string) (ImapConnector, error)
