// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"context"

	"github.com/CrawX/go-imap-historian/addresslist"
)

//go:generate mockgen -destination=mocks/source.go -package=mocks . CredentialStore,PasswordPrompter,SeenFilter,ErrorReporter

// SourceSettings is the part of a mail source's configuration used while converting its messages.
type SourceSettings struct {
	Id              string
	Nickname        string
	CrmUserId       int64
	MyAddresses     *addresslist.List
	IgnoreList      *addresslist.List
	ProcessedFolder string
}

func NewSourceSettings(id, nickname string, crmUserId int64, myAddresses, ignoreList []string, processedFolder string) (*SourceSettings, error) {
	my, err := addresslist.New(myAddresses)
	if err != nil {
		return nil, err
	}
	ignore, err := addresslist.New(ignoreList)
	if err != nil {
		return nil, err
	}

	return &SourceSettings{
		Id:              id,
		Nickname:        nickname,
		CrmUserId:       crmUserId,
		MyAddresses:     my,
		IgnoreList:      ignore,
		ProcessedFolder: processedFolder,
	}, nil
}

type CredentialStore interface {
	Password(sourceId string) (string, error)
	SetPassword(sourceId, password string) error
	ForgetPassword(sourceId string) error
}

type PasswordPrompter interface {
	PromptPassword(sourceId, user string) (string, error)
}

// SeenFilter remembers fetched messages across imports. IsNew marks key as seen, Forget undoes it for
// messages that were not imported.
type SeenFilter interface {
	IsNew(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type ErrorReporter interface {
	Report(err error, tags map[string]string)
	Flush()
}
