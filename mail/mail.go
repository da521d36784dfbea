// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/CrawX/go-imap-historian/domain"

	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

var ErrNoSender = errors.New("message has no sender")

// Message is the parsed content of a raw mail that an envelope is built from.
type Message struct {
	MailIdHash string
	From       domain.Address
	To         []domain.Address
	Subject    string
	Body       string
	Date       time.Time
}

func ParseMessage(rawMail []byte) (*Message, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(rawMail))
	if err != nil && mr == nil {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}
	defer mr.Close()

	h := mr.Header

	from := recipients(h, "From")
	if len(from) == 0 || len(strings.TrimSpace(from[0].Address)) == 0 {
		return nil, ErrNoSender
	}

	subject, mailIdHash, err := headerInfos(h)
	if err != nil {
		return nil, err
	}

	date, err := h.Date()
	if err != nil {
		date = time.Time{}
	}

	to := []domain.Address{}
	for _, field := range []string{"To", "Cc", "Bcc"} {
		to = append(to, recipients(h, field)...)
	}

	body, err := textBody(mr)
	if err != nil {
		return nil, fmt.Errorf("could not read mail body: %w", err)
	}

	return &Message{
		MailIdHash: mailIdHash,
		From:       from[0],
		To:         to,
		Subject:    subject,
		Body:       body,
		Date:       date,
	}, nil
}

// recipients parses an address list header. When the list as a whole is malformed every entry is
// parsed on its own and entries that still fail are kept verbatim, so callers can decide per
// recipient what to do with them.
func recipients(h gomail.Header, field string) []domain.Address {
	raw := strings.TrimSpace(h.Get(field))
	if len(raw) == 0 {
		return nil
	}

	result := []domain.Address{}
	list, err := h.AddressList(field)
	if err == nil {
		for _, a := range list {
			result = append(result, domain.Address{Name: a.Name, Address: a.Address})
		}
		return result
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}

		a, err := gomail.ParseAddress(part)
		if err != nil {
			result = append(result, domain.Address{Address: part})
			continue
		}
		result = append(result, domain.Address{Name: a.Name, Address: a.Address})
	}

	return result
}

var htmlTags = regexp.MustCompile(`(?s)<[^>]*>`)

func textBody(mr *gomail.Reader) (string, error) {
	var plain, html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		inline, ok := p.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := inline.ContentType()
		if err != nil {
			contentType = "text/plain"
		}

		content, err := ioutil.ReadAll(p.Body)
		if err != nil {
			return "", err
		}

		switch {
		case contentType == "text/plain" && len(plain) == 0:
			plain = string(content)
		case contentType == "text/html" && len(html) == 0:
			html = string(content)
		}
	}

	if len(plain) > 0 {
		return strings.TrimSpace(plain), nil
	}

	return strings.TrimSpace(htmlTags.ReplaceAllString(html, "")), nil
}

// headerInfos returns the decoded subject and the identity hash of a message.
func headerInfos(h gomail.Header) (string, string, error) {
	subject, err := h.Subject()
	if err != nil {
		dec := &mime.WordDecoder{}
		subject, err = dec.DecodeHeader(h.Get("Subject"))
		if err != nil {
			subject = h.Get("Subject")
		}
	}

	hash, err := mailIdHash(h.Header.Values("Message-Id"), h.Header.Values("Received"), h.Get("Date"), h.Get("From"), subject)
	if err != nil {
		return "", "", err
	}

	return subject, hash, nil
}

// mailIdHash identifies a message by its Message-Id, which is the same in every mailbox and folder
// the message lands in. Messages without one are identified by their Received headers, then by date,
// sender and subject.
func mailIdHash(messageIdHeader, receivedHeader []string, date, from, subject string) (string, error) {
	messageId := strings.TrimSpace(strings.Join(messageIdHeader, ""))
	if len(messageId) > 0 {
		return hash([][]string{{messageId}})
	}

	if len(receivedHeader) > 0 {
		return hash([][]string{receivedHeader})
	}

	if len(date) == 0 && len(from) == 0 && len(subject) == 0 {
		return "", fmt.Errorf("no header to identify message found")
	}
	return hash([][]string{{date}, {from}, {subject}})
}

// ShortSubject cuts a subject to 30 characters for log fields.
func ShortSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) > 30 {
		subject = string(runes[:30]) + "..."
	}
	return subject
}

func hash(input [][]string) (string, error) {
	sha := sha256.New()
	for _, i := range input {
		for _, ii := range i {
			_, err := sha.Write([]byte(ii))
			if err != nil {
				return "", fmt.Errorf("could not hash: %w", err)
			}
		}
	}

	return fmt.Sprintf("%x", sha.Sum(nil)), nil
}
