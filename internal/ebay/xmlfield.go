package ebay

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// The Trading API returns a small fixed set of response shapes, so fields are
// pulled out with tolerant patterns instead of a full XML parser. Long-form
// seller HTML arrives CDATA-wrapped and may contain literal angle brackets
// and ampersands that would corrupt naive tag matching, which is why the
// CDATA form is always tried first. If the upstream schema were open-ended
// this would need a structured parser; it is a deliberate scope boundary.

var (
	fieldPatternMu sync.Mutex
	cdataPatterns  = map[string]*regexp.Regexp{}
	plainPatterns  = map[string]*regexp.Regexp{}
)

func cdataPattern(tag string) *regexp.Regexp {
	fieldPatternMu.Lock()
	defer fieldPatternMu.Unlock()

	re, ok := cdataPatterns[tag]
	if !ok {
		re = regexp.MustCompile(fmt.Sprintf(
			`(?s)<%s(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</%s>`,
			regexp.QuoteMeta(tag), regexp.QuoteMeta(tag),
		))
		cdataPatterns[tag] = re
	}
	return re
}

func plainPattern(tag string) *regexp.Regexp {
	fieldPatternMu.Lock()
	defer fieldPatternMu.Unlock()

	re, ok := plainPatterns[tag]
	if !ok {
		re = regexp.MustCompile(fmt.Sprintf(
			`(?s)<%s(?:\s[^>]*)?>(.*?)</%s>`,
			regexp.QuoteMeta(tag), regexp.QuoteMeta(tag),
		))
		plainPatterns[tag] = re
	}
	return re
}

// ExtractField returns the text content of the first occurrence of tag in
// xmlBody. The CDATA-wrapped form wins over the plain-text form when both
// could match. Multi-line bodies are preserved intact; only surrounding
// whitespace is trimmed.
func ExtractField(xmlBody, tag string) (string, bool) {
	if m := cdataPattern(tag).FindStringSubmatch(xmlBody); m != nil {
		return m[1], true
	}
	if m := plainPattern(tag).FindStringSubmatch(xmlBody); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

var successAckPattern = regexp.MustCompile(`<Ack(?:\s[^>]*)?>\s*(?:Success|Warning)\s*</Ack>`)

// IsSuccessAck reports whether the response carries a success (or warning)
// acknowledgement. eBay treats Warning acks as successful calls with
// advisory messages attached.
func IsSuccessAck(xmlBody string) bool {
	return successAckPattern.MatchString(xmlBody)
}

// HasErrorBlock reports whether the response contains an Errors block.
func HasErrorBlock(xmlBody string) bool {
	return strings.Contains(xmlBody, "<Errors>") || strings.Contains(xmlBody, "<Errors ")
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&amp;", "&",
)

// UnescapeEntities reverses the HTML escaping eBay applies to titles and
// other short text fields.
func UnescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}
