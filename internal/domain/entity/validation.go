package entity

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateArticleURL checks that an article link is an absolute http(s) URL
// with a host. It performs no DNS lookups; network-level checks belong to the
// content fetcher.
func ValidateArticleURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: err.Error()}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateRecipient checks that an email recipient is a single RFC 5322 address.
func ValidateRecipient(addr string) error {
	if addr == "" {
		return &ValidationError{Field: "to_email", Message: "recipient is required"}
	}
	if strings.ContainsAny(addr, "\r\n") {
		return &ValidationError{Field: "to_email", Message: "recipient must not contain line breaks"}
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return &ValidationError{Field: "to_email", Message: "recipient must be an email address"}
	}
	return nil
}
