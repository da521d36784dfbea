// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"fmt"
	"io/ioutil"
	"sort"
	"sync"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap-move"
	"github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

// ImapConnection is one authenticated session. Commands are serialized, so the fetch goroutine of a
// source and the import service may share it.
type ImapConnection struct {
	mu         sync.Mutex
	connection *client.Client
	mailMover  mover

	server, user string

	selectedFolder string

	l *logrus.Logger
}

// Dial satisfies domain.ImapDialer.
func Dial(server, user, password string) (domain.ImapConnector, error) {
	conn, err := NewImapConnection(server, user, password)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewImapConnection(server string, user string, password string) (*ImapConnection, error) {
	imapClient, err := client.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	err = imapClient.Login(user, password)
	if err != nil {
		_ = imapClient.Logout()
		return nil, fmt.Errorf("could not login to imap: %w", err)
	}

	uidPlusClient := uidplus.NewClient(imapClient)
	uidPlusSupported, err := uidPlusClient.SupportUidPlus()
	if err != nil {
		return nil, fmt.Errorf("could not check for UIDPLUS support: %w", err)
	}

	moveClient := move.NewClient(imapClient)
	moveSupported, err := moveClient.SupportMove()
	if err != nil {
		return nil, fmt.Errorf("could not check for MOVE support: %w", err)
	}

	conn := &ImapConnection{
		connection: imapClient,
		server:     server,
		user:       user,
		l:          log.Logger(log.LOG_IMAP),
	}

	baseLogger := conn.l.WithFields(logrus.Fields{"server": server, "user": user})
	baseLogger.Debug("Logged in to server")

	if moveSupported {
		baseLogger.Debug("MOVE supported on server")
		conn.mailMover = &extensionMover{moveClient: moveClient}
	} else {
		fallback := &copyExpungeMover{client: imapClient}
		if uidPlusSupported {
			baseLogger.Info("MOVE not supported on server, using copy&UID expunge")
			fallback.uidExpunger = uidPlusClient
		} else {
			baseLogger.Info("MOVE and UIDPLUS not supported on server, falling back to copy&flag&expunge")
		}
		conn.mailMover = fallback
	}

	return conn, nil
}

func (ic *ImapConnection) Select(folder string) (uint32, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	m, err := ic.connection.Select(folder, false)
	if err != nil {
		return 0, fmt.Errorf("could not select folder: %w", err)
	}

	ic.selectedFolder = folder
	ic.l.WithFields(logrus.Fields{"folder": folder, "messages": m.Messages}).Debug("Selected folder")
	return m.UidValidity, nil
}

// ListUids returns all uids of the selected folder in ascending order.
func (ic *ImapConnection) ListUids() ([]uint32, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	criteria := imap.NewSearchCriteria()
	ids, err := ic.connection.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could not list folder: %w", err)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (ic *ImapConnection) FetchMail(uid uint32) (*domain.RawImapMail, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)

	messages := make(chan *imap.Message, 1)
	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}

	fetchItems := []imap.FetchItem{fullBodySection.FetchItem()}
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.UidFetch(seqset, fetchItems, messages)
	}()

	var mail *domain.RawImapMail
	var readErr error
	for msg := range messages {
		r := msg.GetBody(fullBodySection)
		if r == nil {
			readErr = fmt.Errorf("server returned no body for uid %d", uid)
			continue
		}
		rawBody, err := ioutil.ReadAll(r)
		if err != nil {
			readErr = fmt.Errorf("could not read mail body: %w", err)
			continue
		}

		mail = &domain.RawImapMail{
			Uid:     msg.Uid,
			RawMail: rawBody,
		}
	}

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch mail: %w", err)
	}
	if readErr != nil {
		return nil, readErr
	}
	if mail == nil {
		return nil, fmt.Errorf("mail with uid %d not found in %s", uid, ic.selectedFolder)
	}

	return mail, nil
}

func (ic *ImapConnection) MoveReady() (error, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.mailMover.moveReady()
}

func (ic *ImapConnection) Move(uids []uint32, folder string) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.mailMover.move(uids, folder)
}

func (ic *ImapConnection) Close() error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.connection.Logout()
}
