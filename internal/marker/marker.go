// Package marker implements the machine-parseable fragment embedded in every
// reminder body. The marker is the system's only durable record of which
// thread a scheduled reminder belongs to; there is no database behind it.
package marker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prnudge/prnudge/internal/core"
)

// Wire format: [PR-NUDGE ts=<thread timestamp> url=<subject url>]
// The url field ends at the first "]" or whitespace, so a subject URL
// containing either cannot round-trip; GitHub pull request links never do.
var markerRE = regexp.MustCompile(`\[PR-NUDGE ts=([0-9]+\.[0-9]+) url=([^\]\s]+)\]`)

// prURLRE recognizes GitHub pull request links inside mention text.
var prURLRE = regexp.MustCompile(`https?://github\.com/[^/\s>|]+/[^/\s>|]+/pull/[0-9]+`)

// Marker ties a scheduled reminder back to its thread of origin.
type Marker struct {
	// ThreadTS is the platform-assigned timestamp of the thread's origin
	// message, e.g. "1726480800.000100". Opaque, but ordered within a channel.
	ThreadTS string
	// URL is the subject pull request link.
	URL string
}

// String renders the marker in wire form.
func (m Marker) String() string {
	return fmt.Sprintf("[PR-NUDGE ts=%s url=%s]", m.ThreadTS, m.URL)
}

// Parse extracts a marker from a message body. The body may contain
// arbitrary text around the marker, and the platform may have auto-linked
// the URL as <url> or <url|label>; both forms are unwrapped.
func Parse(body string) (Marker, error) {
	match := markerRE.FindStringSubmatch(body)
	if match == nil {
		// The URL may have been wrapped in angle brackets by the platform,
		// which also captures the closing "]" differently. Retry on an
		// unwrapped copy of the body.
		match = markerRE.FindStringSubmatch(unwrapLinks(body))
	}
	if match == nil {
		return Marker{}, core.NewMalformedInputError("no well-formed marker in body", map[string]any{"body": body})
	}
	return Marker{ThreadTS: match[1], URL: unwrapLinks(match[2])}, nil
}

// FindPRURL returns the first pull request URL in text, if any. Slack link
// mangling (<url> and <url|label>) is tolerated.
func FindPRURL(text string) (string, bool) {
	url := prURLRE.FindString(text)
	return url, url != ""
}

// unwrapLinks strips Slack auto-link syntax: "<url>" and "<url|label>"
// become "url".
func unwrapLinks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		inner := s[i+1 : i+end]
		if pipe := strings.IndexByte(inner, '|'); pipe >= 0 {
			inner = inner[:pipe]
		}
		b.WriteString(inner)
		i += end
	}
	return b.String()
}
