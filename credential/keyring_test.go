// SPDX-License-Identifier: GPL-3.0-or-later
package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringStore(t *testing.T) {
	store := &KeyringStore{ring: keyring.NewArrayKeyring(nil)}

	password, err := store.Password("work")
	require.NoError(t, err)
	assert.Empty(t, password)

	require.NoError(t, store.SetPassword("work", "secret"))
	require.NoError(t, store.SetPassword("home", "other"))

	password, err = store.Password("work")
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	require.NoError(t, store.ForgetPassword("work"))
	password, err = store.Password("work")
	require.NoError(t, err)
	assert.Empty(t, password)

	assert.NoError(t, store.ForgetPassword("work"), "forgetting twice is fine")

	password, err = store.Password("home")
	require.NoError(t, err)
	assert.Equal(t, "other", password)
}
