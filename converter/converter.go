// SPDX-License-Identifier: GPL-3.0-or-later
package converter

import (
	"fmt"
	"strings"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/mail"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
)

type ContactResolver interface {
	Resolve(h *domain.History) error
}

type SettingsProvider interface {
	Settings(sourceId string) (*domain.SourceSettings, bool)
}

// Converter turns envelopes into histories.
type Converter struct {
	settings SettingsProvider
	resolver ContactResolver

	configuration *configuration

	l *logrus.Logger
}

func NewConverter(settings SettingsProvider, resolver ContactResolver, configFunc ...ConfigFunc) (*Converter, error) {
	config := &configuration{}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &Converter{
		settings:      settings,
		resolver:      resolver,
		configuration: config,
		l:             log.Logger(log.LOG_CONVERTER),
	}, nil
}

// Convert returns the histories for env, or nil when the sender is ignored. Sent messages yield one
// history per remaining recipient, which may be none. Received messages yield exactly one history.
// Contact resolution failures are recorded on the affected history and never abort the conversion.
func (c *Converter) Convert(env *domain.Envelope) ([]*domain.History, error) {
	settings, ok := c.settings.Settings(env.SourceId)
	if !ok {
		return nil, fmt.Errorf("unknown mail source %s", env.SourceId)
	}

	logger := c.l.WithFields(logrus.Fields{"source": settings.Nickname, "uid": env.Uid, "subject": mail.ShortSubject(env.Subject)})

	sender := env.From.Address
	if c.configuration.GlobalIgnore.Contains(sender) || settings.IgnoreList.Contains(sender) {
		logger.WithField("from", sender).Debug("Sender is ignored, discarding message")
		return nil, nil
	}

	base := domain.NewHistory(env, settings.CrmUserId)

	if !settings.MyAddresses.Contains(sender) {
		base.Result = domain.ResultReceived
		base.Contact = domain.ContactInfo{Name: env.From.Name, Info: sender}
		c.resolve(base, logger)
		return []*domain.History{base}, nil
	}

	base.Result = domain.ResultDone
	thank := c.configuration.isThank(env.Subject)

	histories := []*domain.History{}
	for _, recipient := range env.To {
		address := strings.TrimSpace(recipient.Address)
		rlog := logger.WithField("to", address)

		if err := checkmail.ValidateFormat(address); err != nil {
			rlog.WithField("error", err).Warn("Skipping malformed recipient")
			continue
		}

		switch {
		case settings.MyAddresses.Contains(address):
			rlog.Debug("Skipping own address")
			continue
		case c.configuration.GlobalIgnore.Contains(address):
			rlog.Debug("Skipping globally ignored recipient")
			continue
		case settings.IgnoreList.Contains(address):
			rlog.Debug("Skipping recipient ignored by source")
			continue
		}

		h := base.Clone()
		h.Contact = domain.ContactInfo{Name: recipient.Name, Info: address}
		c.resolve(h, rlog)
		if thank {
			h.Thank = true
		}

		histories = append(histories, h)
	}

	return histories, nil
}

func (c *Converter) resolve(h *domain.History, logger *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			h.Fail(fmt.Errorf("contact resolution panicked: %v", r))
			logger.WithField("error", r).Error("Contact resolution panicked")
		}
	}()

	err := c.resolver.Resolve(h)
	if err != nil {
		logger.WithField("error", err).Warn("Could not resolve contact")
		h.Fail(err)
	}
}
