package fetcher

import "errors"

// Sentinel errors returned by the content fetchers. Callers treat every one
// of them as "no text" for the article.
var (
	// ErrInvalidURL indicates the URL is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the host resolves to a private address (SSRF prevention).
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect limit was reached.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded its timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed indicates the page was fetched but no text could be extracted.
	ErrExtractionFailed = errors.New("content extraction failed")
)
