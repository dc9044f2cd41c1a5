package notifier

import (
	"context"
	"time"
)

// DiscordConfig contains configuration for Discord webhook alerts.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier posts alerts to a Discord webhook.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier creates a DiscordNotifier limited to 0.5 requests/second
// with a burst of 3 (Discord allows 30 requests per minute).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("discord", config.WebhookURL, config.Timeout, NewRateLimiter(0.5, 3))}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// Discord red (#ED4245)
	discordRedColor = 15548997
)

func buildDiscordPayload(alert Alert) DiscordWebhookPayload {
	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       "AI news digest run failed (" + alert.Kind + ")",
			Description: truncate(alert.Message, maxDescriptionLength, truncationSuffix),
			Color:       discordRedColor,
			Footer:      DiscordEmbedFooter{Text: "run " + alert.RunID},
			Timestamp:   alert.Occurred.Format(time.RFC3339),
		}},
	}
}

// NotifyFailure implements Alerter.
func (d *DiscordNotifier) NotifyFailure(ctx context.Context, alert Alert) error {
	return d.hook.send(ctx, alert.RunID, buildDiscordPayload(alert))
}
