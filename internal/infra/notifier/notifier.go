// Package notifier posts short failure alerts for digest runs to chat
// webhooks (Slack, Discord). Alerts are best effort: callers log a returned
// error and carry on.
package notifier

import (
	"context"
	"errors"
	"time"
)

// Alert describes a failed digest run.
type Alert struct {
	RunID    string
	Kind     string // config, network, delivery, unknown
	Message  string
	Occurred time.Time
}

// Alerter sends run-failure alerts.
type Alerter interface {
	NotifyFailure(ctx context.Context, alert Alert) error
}

// Config selects the alert channels. Empty URLs disable a channel.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	Timeout           time.Duration
}

// New returns an Alerter for every configured channel, or a NoOpAlerter when
// none is configured.
func New(cfg Config) Alerter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	var alerters []Alerter
	if cfg.SlackWebhookURL != "" {
		alerters = append(alerters, NewSlackNotifier(SlackConfig{WebhookURL: cfg.SlackWebhookURL, Timeout: cfg.Timeout}))
	}
	if cfg.DiscordWebhookURL != "" {
		alerters = append(alerters, NewDiscordNotifier(DiscordConfig{WebhookURL: cfg.DiscordWebhookURL, Timeout: cfg.Timeout}))
	}
	switch len(alerters) {
	case 0:
		return NewNoOpAlerter()
	case 1:
		return alerters[0]
	default:
		return MultiAlerter(alerters)
	}
}

// MultiAlerter fans an alert out to every channel. All channels are tried;
// their errors are joined.
type MultiAlerter []Alerter

// NotifyFailure implements Alerter.
func (m MultiAlerter) NotifyFailure(ctx context.Context, alert Alert) error {
	var errs []error
	for _, a := range m {
		if err := a.NotifyFailure(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
