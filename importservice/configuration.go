// SPDX-License-Identifier: GPL-3.0-or-later
package importservice

import (
	"fmt"
	"time"

	"github.com/CrawX/go-imap-historian/domain"
	"github.com/CrawX/go-imap-historian/queue"
)

type ConfigFunc func(c *configuration) error

// DryRun converts and matches histories without saving them.
func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true

		return nil
	}
}

// PollInterval is how long the consumer waits for a message before checking for a stop.
func PollInterval(interval time.Duration) ConfigFunc {
	return func(c *configuration) error {
		if interval <= 0 {
			return fmt.Errorf("PollInterval must be positive")
		}
		c.PollInterval = interval
		return nil
	}
}

func ReportErrors(reporter domain.ErrorReporter) ConfigFunc {
	return func(c *configuration) error {
		if reporter == nil {
			return fmt.Errorf("ErrorReporter cannot be null")
		}
		c.Reporter = reporter
		return nil
	}
}

type configuration struct {
	DryRun       bool
	PollInterval time.Duration
	Reporter     domain.ErrorReporter
}

func defaultConfiguration() *configuration {
	return &configuration{
		PollInterval: queue.DefaultPollInterval,
	}
}
