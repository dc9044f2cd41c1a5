// Package mailer delivers the digest email through the Gmail API and manages
// the OAuth credential it needs.
package mailer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"ai-news-digest/internal/domain/entity"
)

// ErrHeaderInjection is returned when a header value contains CR or LF.
var ErrHeaderInjection = errors.New("mailer: header contains line break")

// Message is a plain-text email.
type Message struct {
	// From is optional. Gmail fills in the authenticated account when empty.
	From    string
	To      string
	Subject string
	Body    string
}

// Bytes renders m as an RFC 5322 message with a UTF-8 body in base64 and an
// RFC 2047 encoded subject.
func (m Message) Bytes() ([]byte, error) {
	if err := entity.ValidateRecipient(m.To); err != nil {
		return nil, err
	}
	for _, v := range []string{m.From, m.Subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, ErrHeaderInjection
		}
	}

	var buf bytes.Buffer
	if m.From != "" {
		fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	}
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(m.Body))
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}

// Raw returns the base64url form of Bytes expected by users.messages.send.
func (m Message) Raw() (string, error) {
	b, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
