// SPDX-License-Identifier: GPL-3.0-or-later
package reporter

import (
	"fmt"
	"time"

	"github.com/CrawX/go-imap-historian/log"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const flushTimeout = 2 * time.Second

// LogReporter writes reported errors to the import service log.
type LogReporter struct {
	l *logrus.Logger
}

func NewLogReporter() *LogReporter {
	return &LogReporter{l: log.Logger(log.LOG_IMPORT)}
}

func (r *LogReporter) Report(err error, tags map[string]string) {
	fields := logrus.Fields{"error": err}
	for k, v := range tags {
		fields[k] = v
	}
	r.l.WithFields(fields).Error("Unexpected error")
}

func (r *LogReporter) Flush() {}

// SentryReporter sends reported errors to Sentry and logs them.
type SentryReporter struct {
	hub *sentry.Hub
	log *LogReporter
}

func NewSentryReporter(dsn, release string) (*SentryReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize sentry: %w", err)
	}

	return &SentryReporter{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: NewLogReporter(),
	}, nil
}

func (r *SentryReporter) Report(err error, tags map[string]string) {
	r.log.Report(err, tags)
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

func (r *SentryReporter) Flush() {
	if !r.hub.Flush(flushTimeout) {
		r.log.l.Warn("Could not send all errors to sentry")
	}
}
