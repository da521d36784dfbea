// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"fmt"

	"github.com/emersion/go-imap"
)

// mover relocates imported mails, e.g. into a processed folder.
type mover interface {
	move(uids []uint32, folder string) error
	moveReady() (error, error)
}

type moveClient interface {
	UidMove(seqset *imap.SeqSet, dest string) error
}

// extensionMover uses the MOVE extension and is ready at all times.
type extensionMover struct {
	moveClient moveClient
}

func (m *extensionMover) move(uids []uint32, folder string) error {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	err := m.moveClient.UidMove(seqset, folder)
	if err != nil {
		return fmt.Errorf("could not move mails: %w", err)
	}
	return nil
}

func (m *extensionMover) moveReady() (error, error) {
	return nil, nil
}

type copyExpungeClient interface {
	UidCopy(seqset *imap.SeqSet, dest string) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	Expunge(ch chan uint32) error
}

type uidExpunger interface {
	UidExpunge(seqSet *imap.SeqSet, ch chan uint32) error
}

var ErrItemsFlaggedDeleted = errors.New("folder has previous items with delete flag set")

// copyExpungeMover copies, flags and expunges. Without UIDPLUS a plain EXPUNGE removes every
// flagged mail in the folder, so it refuses to run while other mails carry the deleted flag.
type copyExpungeMover struct {
	client      copyExpungeClient
	uidExpunger uidExpunger
}

func (c *copyExpungeMover) move(uids []uint32, folder string) error {
	notReadyReason, err := c.moveReady()
	if err != nil {
		return fmt.Errorf("could not check for move readiness: %w", err)
	}
	if notReadyReason != nil {
		return fmt.Errorf("folder is not ready for copy&expunge: %w", notReadyReason)
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	err = c.client.UidCopy(seqset, folder)
	if err != nil {
		return fmt.Errorf("could not copy mails: %w", err)
	}

	err = c.client.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.DeletedFlag}, nil)
	if err != nil {
		return fmt.Errorf("could not set delete flag: %w", err)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		if c.uidExpunger != nil {
			done <- c.uidExpunger.UidExpunge(seqset, out)
		} else {
			done <- c.client.Expunge(out)
		}
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge mails: %w", err)
	}

	if expunged != len(uids) {
		return fmt.Errorf("unexpected number of expunges, expected %d got %d", len(uids), expunged)
	}

	return nil
}

func (c *copyExpungeMover) moveReady() (error, error) {
	if c.uidExpunger != nil {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	ids, err := c.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could not search for deleted mails in folder: %w", err)
	}

	if len(ids) > 0 {
		return ErrItemsFlaggedDeleted, nil
	}
	return nil, nil
}
