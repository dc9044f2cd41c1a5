package logging

import (
	"regexp"
)

var (
	// Order matters: the more specific Anthropic pattern runs before OpenAI's.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Does not match an already masked key (contains '*').
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	googleKeyPattern = regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`)

	// OAuth access and refresh tokens issued by Google.
	googleAccessTokenPattern  = regexp.MustCompile(`ya29\.[0-9A-Za-z._-]+`)
	googleRefreshTokenPattern = regexp.MustCompile(`1//[0-9A-Za-z_-]{10,}`)

	// apiKey=... or key=... in a URL query.
	queryKeyPattern = regexp.MustCompile(`(?i)([?&](?:api_?key|key)=)[^&\s"]+`)

	// Chat webhook secrets live in the URL path.
	slackWebhookPattern   = regexp.MustCompile(`(https://hooks\.slack\.com/services/)[^\s"]+`)
	discordWebhookPattern = regexp.MustCompile(`(https://(?:discord|discordapp)\.com/api/webhooks/)[^\s"]+`)

	// Password in URL userinfo.
	urlPasswordPattern = regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with API keys, OAuth tokens and
// webhook secrets masked. Use it for anything that leaves the process
// (alerts) or is logged at error level.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks secrets in msg.
func Sanitize(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = googleKeyPattern.ReplaceAllString(msg, "AIza****")

	msg = googleAccessTokenPattern.ReplaceAllString(msg, "ya29.****")
	msg = googleRefreshTokenPattern.ReplaceAllString(msg, "1//****")

	msg = queryKeyPattern.ReplaceAllString(msg, "${1}****")

	msg = slackWebhookPattern.ReplaceAllString(msg, "${1}****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "${1}****")

	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
