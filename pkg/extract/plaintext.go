package extract

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/linkcheck/models"
)

// urlPattern matches scheme-anchored URLs in running text. Trailing
// sentence punctuation is trimmed after the match.
var urlPattern = regexp.MustCompile(`(?i)\b(?:https?|ftp|file)://[^\s<>"'\x60]+`)

// emailPattern is a pragmatic address matcher, not a full RFC 5322
// grammar.
var emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

// Plaintext scans running text for URLs and email addresses, in
// source order.
func Plaintext(content []byte) []models.RawURI {
	text := string(content)

	type match struct {
		start int
		raw   models.RawURI
	}
	var matches []match

	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		candidate := trimTrailingPunct(text[loc[0]:loc[1]])
		if candidate == "" {
			continue
		}
		matches = append(matches, match{start: loc[0], raw: models.RawURI{Text: candidate}})
	}
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		// Addresses inside a matched URL (basic auth, mailto already
		// captured) are skipped.
		if insideAny(text, loc[0], urlPattern) {
			continue
		}
		matches = append(matches, match{
			start: loc[0],
			raw:   models.RawURI{Text: "mailto:" + text[loc[0]:loc[1]]},
		})
	}

	// Restore source order across the two scans.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].start > matches[j].start; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}

	found := make([]models.RawURI, 0, len(matches))
	for _, m := range matches {
		found = append(found, m.raw)
	}
	return found
}

func trimTrailingPunct(candidate string) string {
	return strings.TrimRight(candidate, ".,;:!?)]}'\">")
}

func insideAny(text string, pos int, re *regexp.Regexp) bool {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if pos >= loc[0] && pos < loc[1] {
			return true
		}
	}
	return false
}
