// SPDX-License-Identifier: GPL-3.0-or-later
package converter

import (
	"fmt"
	"strings"

	"github.com/CrawX/go-imap-historian/addresslist"
)

type ConfigFunc func(c *configuration) error

func GlobalIgnore(entries []string) ConfigFunc {
	return func(c *configuration) error {
		list, err := addresslist.New(entries)
		if err != nil {
			return fmt.Errorf("could not compile global ignore list: %w", err)
		}

		c.GlobalIgnore = list
		return nil
	}
}

// AutoThank flags histories of sent mails whose subject starts with one of the prefixes. Blank
// prefixes are skipped.
func AutoThank(subjectPrefixes []string) ConfigFunc {
	return func(c *configuration) error {
		prefixes := make([]string, 0, len(subjectPrefixes))
		for _, p := range subjectPrefixes {
			if len(strings.TrimSpace(p)) == 0 {
				continue
			}
			prefixes = append(prefixes, strings.ToLower(p))
		}
		if len(prefixes) == 0 {
			return fmt.Errorf("AutoThank needs at least one subject prefix")
		}

		c.AutoThank = true
		c.ThankPrefixes = prefixes
		return nil
	}
}

type configuration struct {
	GlobalIgnore *addresslist.List

	AutoThank     bool
	ThankPrefixes []string
}

func (c *configuration) isThank(subject string) bool {
	if !c.AutoThank {
		return false
	}

	subject = strings.ToLower(subject)
	for _, p := range c.ThankPrefixes {
		if strings.HasPrefix(subject, p) {
			return true
		}
	}
	return false
}
