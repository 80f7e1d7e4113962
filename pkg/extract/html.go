package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/dtnitsch/linkcheck/models"
)

// linkAttributes whitelists the element/attribute pairs that carry
// checkable references. Everything else in a start tag is ignored.
var linkAttributes = map[string][]string{
	"a":          {"href"},
	"area":       {"href"},
	"audio":      {"src"},
	"blockquote": {"cite"},
	"del":        {"cite"},
	"embed":      {"src"},
	"form":       {"action"},
	"iframe":     {"src"},
	"img":        {"src", "srcset"},
	"input":      {"src"},
	"ins":        {"cite"},
	"link":       {"href"},
	"object":     {"data"},
	"q":          {"cite"},
	"script":     {"src"},
	"source":     {"src", "srcset"},
	"track":      {"src"},
	"video":      {"src", "poster"},
}

// HTML walks the token stream and emits a candidate for every
// whitelisted element/attribute pair, in document order. srcset
// values are split into their individual URL candidates.
func HTML(content []byte) []models.RawURI {
	var found []models.RawURI
	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return found
		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			attrs, ok := linkAttributes[token.Data]
			if !ok {
				continue
			}
			for _, attr := range token.Attr {
				if !contains(attrs, attr.Key) {
					continue
				}
				if attr.Key == "srcset" {
					for _, candidate := range splitSrcset(attr.Val) {
						found = append(found, models.RawURI{
							Text:      candidate,
							Element:   token.Data,
							Attribute: attr.Key,
						})
					}
					continue
				}
				text := strings.TrimSpace(attr.Val)
				if skipCandidate(text) {
					continue
				}
				found = append(found, models.RawURI{
					Text:      text,
					Element:   token.Data,
					Attribute: attr.Key,
				})
			}
		}
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// skipCandidate drops values that can never resolve to a checkable
// target: empty strings, bare fragments, and javascript pseudo-URLs.
func skipCandidate(text string) bool {
	if text == "" || strings.HasPrefix(text, "#") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(text), "javascript:")
}

// splitSrcset breaks a srcset value into its URL candidates, dropping
// the width/density descriptors.
func splitSrcset(val string) []string {
	var urls []string
	for _, part := range strings.Split(val, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		candidate := fields[0]
		if skipCandidate(candidate) {
			continue
		}
		urls = append(urls, candidate)
	}
	return urls
}
