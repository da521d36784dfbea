// SPDX-License-Identifier: GPL-3.0-or-later
package mailsource

import (
	"fmt"

	"github.com/CrawX/go-imap-historian/domain"

	"golang.org/x/time/rate"
)

const (
	TypeImap  = "imap"
	TypeGmail = "gmail"

	DefaultFolder     = "INBOX"
	DefaultGmailHost  = "imap.gmail.com:993"
	DefaultGmailLabel = "[Gmail]/All Mail"
)

// Account holds what is needed to reach one mailbox.
type Account struct {
	Type     string
	Host     string
	User     string
	Password string
	// Folder is the folder of an imap account or the label of a gmail account.
	Folder string
}

// Defaults fills in host and folder defaults for the account type.
func (a Account) Defaults() Account {
	if a.Type == TypeGmail {
		if len(a.Host) == 0 {
			a.Host = DefaultGmailHost
		}
		if len(a.Folder) == 0 {
			a.Folder = DefaultGmailLabel
		}
	}
	if len(a.Folder) == 0 {
		a.Folder = DefaultFolder
	}
	return a
}

type ConfigFunc func(c *configuration) error

// Credentials enables the keyring and the interactive prompt for accounts without a configured password.
func Credentials(store domain.CredentialStore, prompter domain.PasswordPrompter) ConfigFunc {
	return func(c *configuration) error {
		c.Credentials = store
		c.Prompter = prompter
		return nil
	}
}

// SinceLastImport restricts the traversal to messages newer than the last import of the folder.
func SinceLastImport(states domain.FolderStateStore) ConfigFunc {
	return func(c *configuration) error {
		if states == nil {
			return fmt.Errorf("SinceLastImport needs a folder state store")
		}
		c.FolderStates = states
		return nil
	}
}

func SkipSeen(filter domain.SeenFilter) ConfigFunc {
	return func(c *configuration) error {
		c.Seen = filter
		return nil
	}
}

// DryRun keeps the folder state of the last import, so a later real import traverses the same messages.
func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true
		return nil
	}
}

// FetchRate limits fetching to perSecond messages. Zero means unlimited.
func FetchRate(perSecond float64) ConfigFunc {
	return func(c *configuration) error {
		if perSecond < 0 {
			return fmt.Errorf("FetchRate cannot be negative")
		}
		if perSecond > 0 {
			c.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
		return nil
	}
}

type configuration struct {
	Credentials  domain.CredentialStore
	Prompter     domain.PasswordPrompter
	FolderStates domain.FolderStateStore
	Seen         domain.SeenFilter
	Limiter      *rate.Limiter
	DryRun       bool
}
