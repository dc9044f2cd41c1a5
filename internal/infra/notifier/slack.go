package notifier

import (
	"context"
	"fmt"
	"time"
)

// SlackConfig contains configuration for Slack webhook alerts.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier posts alerts to a Slack Incoming Webhook.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier creates a SlackNotifier limited to 1 request/second
// (the Incoming Webhook limit).
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("slack", config.WebhookURL, config.Timeout, NewRateLimiter(1.0, 1))}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength  = 3000
	maxFallbackLength     = 150
	slackTruncationSuffix = "..."
)

func buildSlackPayload(alert Alert) SlackWebhookPayload {
	fallback := truncate(fmt.Sprintf("AI news digest failed (%s)", alert.Kind), maxFallbackLength, slackTruncationSuffix)
	section := truncate(fmt.Sprintf("*AI news digest run failed* (`%s`)\n```%s```", alert.Kind, alert.Message),
		maxSectionTextLength, slackTruncationSuffix)
	footer := fmt.Sprintf("run %s • %s", alert.RunID, alert.Occurred.Format(time.RFC3339))

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: footer}}},
		},
	}
}

// NotifyFailure implements Alerter.
func (s *SlackNotifier) NotifyFailure(ctx context.Context, alert Alert) error {
	return s.hook.send(ctx, alert.RunID, buildSlackPayload(alert))
}
