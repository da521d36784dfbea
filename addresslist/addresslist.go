// SPDX-License-Identifier: GPL-3.0-or-later

// Package addresslist matches email addresses against configured lists. Entries are either exact
// addresses, compared case-insensitively, or glob patterns where '*' matches any run of characters
// and '?' matches exactly one character.
package addresslist

import (
	"fmt"
	"regexp"
	"strings"
)

type List struct {
	entries  []string
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

func New(entries []string) (*List, error) {
	l := &List{
		exact: map[string]struct{}{},
	}

	for _, e := range entries {
		e = normalize(e)
		if len(e) == 0 {
			continue
		}

		l.entries = append(l.entries, e)
		if !IsWildcard(e) {
			l.exact[e] = struct{}{}
			continue
		}

		re, err := compile(e)
		if err != nil {
			return nil, fmt.Errorf("could not compile address pattern %q: %w", e, err)
		}
		l.patterns = append(l.patterns, re)
	}

	return l, nil
}

func MustNew(entries ...string) *List {
	l, err := New(entries)
	if err != nil {
		panic(err)
	}
	return l
}

// Contains reports whether address is on the list. A nil list contains nothing.
func (l *List) Contains(address string) bool {
	if l == nil {
		return false
	}

	address = normalize(address)
	if len(address) == 0 {
		return false
	}

	if _, ok := l.exact[address]; ok {
		return true
	}

	for _, p := range l.patterns {
		if p.MatchString(address) {
			return true
		}
	}

	return false
}

func (l *List) Entries() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.entries...)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func IsWildcard(entry string) bool {
	return strings.ContainsAny(entry, "*?")
}

func compile(entry string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")

	literal := strings.Builder{}
	flush := func() {
		sb.WriteString(regexp.QuoteMeta(literal.String()))
		literal.Reset()
	}

	for _, r := range entry {
		switch r {
		case '*':
			flush()
			sb.WriteString(".*")
		case '?':
			flush()
			sb.WriteString(".")
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	sb.WriteString("$")

	return regexp.Compile(sb.String())
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
