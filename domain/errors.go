// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFolderNotOpen  = errors.New("folder is not open")
	ErrNoMoreMessages = errors.New("no more messages in folder")
)

// ConnectionError is returned when a mail source or the CRM cannot be reached, the credentials are
// rejected or the folder cannot be opened.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect %s: %v", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HistoryProcessingError wraps datastore failures while resolving the contact of a history.
type HistoryProcessingError struct {
	Contact string
	Err     error
}

func (e *HistoryProcessingError) Error() string {
	return fmt.Sprintf("could not process history for %s: %v", e.Contact, e.Err)
}

func (e *HistoryProcessingError) Unwrap() error {
	return e.Err
}
