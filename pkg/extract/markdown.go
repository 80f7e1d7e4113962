package extract

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/dtnitsch/linkcheck/models"
)

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown walks the commonmark AST and emits link and image
// destinations, autolinks, and whatever the embedded raw HTML
// contains (re-fed to the HTML extractor).
func Markdown(content []byte) []models.RawURI {
	root := mdParser.Parser().Parse(text.NewReader(content))

	var found []models.RawURI
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			if dest := string(node.Destination); !skipCandidate(dest) {
				found = append(found, models.RawURI{Text: dest, Element: "a", Attribute: "href"})
			}
		case *ast.Image:
			if dest := string(node.Destination); !skipCandidate(dest) {
				found = append(found, models.RawURI{Text: dest, Element: "img", Attribute: "src"})
			}
		case *ast.AutoLink:
			dest := string(node.URL(content))
			if node.AutoLinkType == ast.AutoLinkEmail {
				dest = "mailto:" + dest
			}
			if !skipCandidate(dest) {
				found = append(found, models.RawURI{Text: dest, Element: "a", Attribute: "href"})
			}
		case *ast.RawHTML:
			found = append(found, HTML(segmentBytes(node.Segments, content))...)
		case *ast.HTMLBlock:
			found = append(found, HTML(linesBytes(node.Lines(), content))...)
		}
		return ast.WalkContinue, nil
	})
	return found
}

func segmentBytes(segments *text.Segments, source []byte) []byte {
	var out []byte
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		out = append(out, segment.Value(source)...)
	}
	return out
}

func linesBytes(lines *text.Segments, source []byte) []byte {
	var out []byte
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		out = append(out, line.Value(source)...)
	}
	return out
}
