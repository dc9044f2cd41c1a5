package entity

import (
	"fmt"
	"strings"
	"time"
)

const (
	headingTitle   = "■ 記事タイトル"
	headingSummary = "■ 日本語要約"
	headingURL     = "■ 元記事へのURL"
	// EntrySeparator closes every block of the digest body.
	EntrySeparator = "------------------------------"

	subjectFormat = "【自動配信】本日のAIニュース (%s)"
)

// Digest is the ordered list of entries delivered in one email.
type Digest struct {
	Entries []DigestEntry
}

// Body renders the plain-text email body. Entries keep their order and each
// block ends with the separator line followed by a blank line.
func (d Digest) Body() string {
	var b strings.Builder
	for _, e := range d.Entries {
		b.WriteString(headingTitle)
		b.WriteString("\n")
		b.WriteString(e.Title)
		b.WriteString("\n\n")
		b.WriteString(headingSummary)
		b.WriteString("\n")
		b.WriteString(e.Summary)
		b.WriteString("\n\n")
		b.WriteString(headingURL)
		b.WriteString("\n")
		b.WriteString(e.URL)
		b.WriteString("\n\n")
		b.WriteString(EntrySeparator)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Len returns the number of entries.
func (d Digest) Len() int {
	return len(d.Entries)
}

// Subject returns the email subject for a digest sent at now in loc.
// A nil loc means UTC.
func Subject(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf(subjectFormat, now.In(loc).Format("2006-01-02"))
}
