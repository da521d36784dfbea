// SPDX-License-Identifier: GPL-3.0-or-later
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "go-imap-historian"

// KeyringStore keeps mail source passwords in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/go-imap-historian/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("go-imap-historian-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open keyring: %w", err)
	}
	return ring, nil
}

func NewKeyringStore() (*KeyringStore, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

func key(sourceId string) string {
	return "source:" + sourceId
}

// Password returns the stored password of the source, or an empty string if none is stored.
func (s *KeyringStore) Password(sourceId string) (string, error) {
	item, err := s.ring.Get(key(sourceId))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not get password of %s: %w", sourceId, err)
	}

	return string(item.Data), nil
}

func (s *KeyringStore) SetPassword(sourceId, password string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key(sourceId),
		Label: serviceName + " " + sourceId,
		Data:  []byte(password),
	})
	if err != nil {
		return fmt.Errorf("could not set password of %s: %w", sourceId, err)
	}

	return nil
}

// ForgetPassword removes the stored password. Forgetting a password that is not stored is not an error.
func (s *KeyringStore) ForgetPassword(sourceId string) error {
	err := s.ring.Remove(key(sourceId))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("could not delete password of %s: %w", sourceId, err)
	}

	return nil
}
