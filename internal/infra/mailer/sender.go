package mailer

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sender sends one message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// DryRunMessageID is returned by WriterSender.
const DryRunMessageID = "dry-run"

// WriterSender writes the message in readable form instead of sending it.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSender returns a Sender that prints to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send writes the headers and the decoded body.
func (s *WriterSender) Send(_ context.Context, msg Message) (string, error) {
	if _, err := msg.Bytes(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "To: %s\nSubject: %s\n\n%s\n", msg.To, msg.Subject, msg.Body); err != nil {
		return "", fmt.Errorf("write message: %w", err)
	}
	return DryRunMessageID, nil
}
