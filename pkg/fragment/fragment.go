// Package fragment builds the set of in-page anchor identifiers for a
// document so URL fragments can be verified against it.
package fragment

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/dtnitsch/linkcheck/models"
)

// Index holds the anchors of a single document. HTML ids are matched
// case-sensitively; auto-generated markdown ids case-insensitively.
type Index struct {
	htmlIDs map[string]struct{}
	autoIDs map[string]struct{} // stored lowercase
}

// New extracts the anchor set for a fetched body. Unknown types yield
// an empty index, so every fragment check against them fails.
func New(fileType models.FileType, body []byte) *Index {
	idx := &Index{
		htmlIDs: make(map[string]struct{}),
		autoIDs: make(map[string]struct{}),
	}
	switch fileType {
	case models.FileTypeHTML:
		idx.indexHTML(body)
	case models.FileTypeMarkdown:
		idx.indexMarkdown(body)
	}
	return idx
}

// Contains reports whether the fragment resolves to an anchor.
func (idx *Index) Contains(fragment string) bool {
	if _, ok := idx.htmlIDs[fragment]; ok {
		return true
	}
	_, ok := idx.autoIDs[strings.ToLower(fragment)]
	return ok
}

// Len returns the number of distinct anchors.
func (idx *Index) Len() int {
	return len(idx.htmlIDs) + len(idx.autoIDs)
}

// indexHTML records every id attribute plus legacy <a name="..."> anchors.
func (idx *Index) indexHTML(body []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}
	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr("id"); ok && id != "" {
			idx.htmlIDs[id] = struct{}{}
		}
	})
	doc.Find("a[name]").Each(func(_ int, sel *goquery.Selection) {
		if name, ok := sel.Attr("name"); ok && name != "" {
			idx.htmlIDs[name] = struct{}{}
		}
	})
}

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// indexMarkdown records GitHub-style auto-ids for headings, explicit
// {#id} heading attributes, and ids from embedded raw HTML.
func (idx *Index) indexMarkdown(body []byte) {
	root := mdParser.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := headingText(node, body)
			if explicit, rest := explicitID(title); explicit != "" {
				idx.htmlIDs[explicit] = struct{}{}
				title = rest
			}
			if id := AutoID(title); id != "" {
				idx.autoIDs[id] = struct{}{}
			}
		case *ast.RawHTML:
			idx.indexEmbeddedHTML(rawHTMLValue(node.Segments, body))
		case *ast.HTMLBlock:
			idx.indexEmbeddedHTML(rawHTMLValue(node.Lines(), body))
		}
		return ast.WalkContinue, nil
	})
}

func (idx *Index) indexEmbeddedHTML(chunk []byte) {
	sub := &Index{htmlIDs: idx.htmlIDs, autoIDs: idx.autoIDs}
	sub.indexHTML(chunk)
}

func rawHTMLValue(segments *text.Segments, source []byte) []byte {
	var out []byte
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		out = append(out, seg.Value(source)...)
	}
	return out
}

func headingText(node *ast.Heading, source []byte) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			sb.Write(textNode.Segment.Value(source))
			continue
		}
		if str, ok := child.(*ast.String); ok {
			sb.Write(str.Value)
		}
	}
	return sb.String()
}

var explicitIDPattern = regexp.MustCompile(`\{#([^}\s]+)\}\s*$`)

// explicitID splits a trailing {#custom-id} attribute off a heading
// title.
func explicitID(title string) (id, rest string) {
	m := explicitIDPattern.FindStringSubmatchIndex(title)
	if m == nil {
		return "", title
	}
	return title[m[2]:m[3]], strings.TrimSpace(title[:m[0]])
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\- ]`)
var dashRun = regexp.MustCompile(`-+`)

// AutoID derives the GitHub-style anchor id for a heading title:
// lowercase, strip punctuation, spaces to dashes, collapse dash runs.
func AutoID(title string) string {
	id := strings.ToLower(strings.TrimSpace(title))
	id = nonAlnum.ReplaceAllString(id, "")
	id = strings.ReplaceAll(id, " ", "-")
	id = dashRun.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}
