// SPDX-License-Identifier: GPL-3.0-or-later
package reporter

import (
	"errors"
	"testing"

	"github.com/CrawX/go-imap-historian/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReporter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := &LogReporter{l: logger}

	err := errors.New("boom")
	r.Report(err, map[string]string{"source": "work"})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, err, entry.Data["error"])
	assert.Equal(t, "work", entry.Data["source"])
}

func TestNewSentryReporter(t *testing.T) {
	log.InitDiscardLogging()

	r, err := NewSentryReporter("not a dsn", "test")
	assert.Nil(t, r)
	assert.Error(t, err)

	// An empty dsn yields a client that drops every event.
	r, err = NewSentryReporter("", "test")
	require.NoError(t, err)
	r.Report(errors.New("boom"), map[string]string{"contact": "a@x.com"})
	r.Flush()
}
