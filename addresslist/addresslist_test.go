// SPDX-License-Identifier: GPL-3.0-or-later
package addresslist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Contains(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		address  string
		expected bool
	}{
		{"exact", []string{"me@co.com"}, "me@co.com", true},
		{"exactcase", []string{"Me@Co.com"}, "ME@co.COM", true},
		{"exacttrim", []string{" me@co.com "}, "me@co.com", true},
		{"exactmiss", []string{"me@co.com"}, "you@co.com", false},
		{"dotisliteral", []string{"me@co.com"}, "me@coXcom", false},
		{"starprefix", []string{"mailer-daemon@*"}, "mailer-daemon@example.com", true},
		{"starprefixmiss", []string{"mailer-daemon@*"}, "other@example.com", false},
		{"stardomain", []string{"*@spam.org"}, "anyone@spam.org", true},
		{"stardomainsub", []string{"*@spam.org"}, "anyone@sub.spam.org", false},
		{"staranywhere", []string{"*noreply*"}, "team-noreply@x.com", true},
		{"starempty", []string{"a*@x.com"}, "a@x.com", true},
		{"question", []string{"user?@x.com"}, "user1@x.com", true},
		{"questionexactlyone", []string{"user?@x.com"}, "user@x.com", false},
		{"questiontwo", []string{"user?@x.com"}, "user12@x.com", false},
		{"patternanchored", []string{"bob@x.*"}, "jimbob@x.com", false},
		{"patterncase", []string{"MAILER-DAEMON@*"}, "mailer-daemon@mail.co.com", true},
		{"metachars", []string{"a+b@*"}, "a+b@x.com", true},
		{"metacharsliteral", []string{"a+b@*"}, "aab@x.com", false},
		{"emptyaddress", []string{"*"}, "", false},
		{"emptylist", nil, "a@x.com", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.entries)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, l.Contains(tc.address))
		})
	}
}

func TestList_Nil(t *testing.T) {
	var l *List
	assert.False(t, l.Contains("a@x.com"))
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Entries())
}

func TestList_Entries(t *testing.T) {
	l := MustNew("A@x.com", "", "  ", "*@y.com")
	assert.Equal(t, []string{"a@x.com", "*@y.com"}, l.Entries())
	assert.Equal(t, 2, l.Len())
}
