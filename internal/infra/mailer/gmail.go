package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"ai-news-digest/internal/domain/entity"
	"ai-news-digest/internal/observability/metrics"
	"ai-news-digest/internal/resilience/circuitbreaker"
	"ai-news-digest/internal/resilience/retry"
)

// gmailUserID addresses the authenticated account.
const gmailUserID = "me"

// GmailSender sends messages with users.messages.send.
type GmailSender struct {
	service        *gmail.Service
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	timeout        time.Duration
}

// NewGmailSender creates a GmailSender authenticated by ts with its own
// circuit breaker. Extra client options (endpoint, HTTP client) are applied
// after the token source.
func NewGmailSender(ctx context.Context, ts oauth2.TokenSource, timeout time.Duration, opts ...option.ClientOption) (*GmailSender, error) {
	return newGmailSender(ctx, ts, timeout, circuitbreaker.New(circuitbreaker.GmailAPIConfig()), opts...)
}

func newGmailSender(ctx context.Context, ts oauth2.TokenSource, timeout time.Duration, cb *circuitbreaker.CircuitBreaker, opts ...option.ClientOption) (*GmailSender, error) {
	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GmailSender{
		service:        svc,
		circuitBreaker: cb,
		retryConfig:    retry.MailSendConfig(),
		timeout:        timeout,
	}, nil
}

// permanent hides a transport error from retry.IsRetryable. A send that
// timed out may still have been delivered, so only explicit 429/5xx
// responses are retried.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }

// Send delivers msg and returns the Gmail message ID.
func (s *GmailSender) Send(ctx context.Context, msg Message) (string, error) {
	raw, err := msg.Raw()
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}
	if s.circuitBreaker.IsOpen() {
		return "", fmt.Errorf("gmail api unavailable: %w", gobreaker.ErrOpenState)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var id string
	err = retry.WithBackoff(ctx, s.retryConfig, func() error {
		result, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return s.service.Users.Messages.Send(gmailUserID, &gmail.Message{Raw: raw}).Context(ctx).Do()
		})
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("gmail send: %w: %w", &retry.HTTPError{StatusCode: apiErr.Code, Message: apiErr.Message}, err)
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return fmt.Errorf("gmail api unavailable: %w", err)
			}
			return permanent{err: err}
		}
		id = result.(*gmail.Message).Id
		return nil
	})
	if err != nil {
		var p permanent
		if errors.As(err, &p) {
			err = fmt.Errorf("gmail send: %w", p.err)
		}
		return "", err
	}
	return id, nil
}

// SenderFactory builds a Sender for an obtained token.
type SenderFactory func(ctx context.Context, tok *oauth2.Token) (Sender, error)

// GmailMailer obtains a credential and sends one message per call. Errors
// are *entity.DeliveryError tagged with the failing stage.
type GmailMailer struct {
	credentials *CredentialManager
	newSender   SenderFactory
	from        string
}

// NewGmailMailer creates a GmailMailer. from may be empty.
func NewGmailMailer(credentials *CredentialManager, newSender SenderFactory, from string) *GmailMailer {
	return &GmailMailer{credentials: credentials, newSender: newSender, from: from}
}

// GmailSenderFactory returns a SenderFactory that builds GmailSenders with a
// static token source. All senders it builds share one circuit breaker, so
// failures accumulate across sends.
func GmailSenderFactory(timeout time.Duration, opts ...option.ClientOption) SenderFactory {
	cb := circuitbreaker.New(circuitbreaker.GmailAPIConfig())
	return func(ctx context.Context, tok *oauth2.Token) (Sender, error) {
		return newGmailSender(ctx, oauth2.StaticTokenSource(tok), timeout, cb, opts...)
	}
}

// Send obtains (and if needed persists) the credential, then sends the
// digest. It returns the provider message ID.
func (m *GmailMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	tok, err := m.credentials.Obtain(ctx)
	if err != nil {
		metrics.RecordMailDelivery(false)
		return "", &entity.DeliveryError{Stage: entity.DeliveryStageCredential, Err: err}
	}

	sender, err := m.newSender(ctx, tok)
	if err != nil {
		metrics.RecordMailDelivery(false)
		return "", &entity.DeliveryError{Stage: entity.DeliveryStageSend, Err: err}
	}

	id, err := sender.Send(ctx, Message{From: m.from, To: to, Subject: subject, Body: body})
	if err != nil {
		metrics.RecordMailDelivery(false)
		return "", &entity.DeliveryError{Stage: entity.DeliveryStageSend, Err: err}
	}
	metrics.RecordMailDelivery(true)
	return id, nil
}

// WriterMailer adapts a Sender (typically WriterSender) to the mailer port
// without any credential handling.
type WriterMailer struct {
	sender Sender
}

// NewWriterMailer creates a WriterMailer.
func NewWriterMailer(sender Sender) *WriterMailer {
	return &WriterMailer{sender: sender}
}

// Send forwards to the wrapped Sender.
func (m *WriterMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	id, err := m.sender.Send(ctx, Message{To: to, Subject: subject, Body: body})
	if err != nil {
		return "", &entity.DeliveryError{Stage: entity.DeliveryStageSend, Err: err}
	}
	return id, nil
}
