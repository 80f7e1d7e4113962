// Package extract pulls raw link candidates out of input content.
// Extractors are pure: content in, candidates out, no I/O. Candidates
// keep their element/attribute provenance so downstream policy can
// suppress false positives.
package extract

import (
	"github.com/dtnitsch/linkcheck/models"
)

// Links dispatches on the content's file type and returns candidates
// in source order. Unknown content is scanned as plaintext only when
// includeVerbatim is set; otherwise it yields nothing.
func Links(content models.InputContent, includeVerbatim bool) []models.RawURI {
	switch content.FileType {
	case models.FileTypeHTML:
		return HTML(content.Content)
	case models.FileTypeMarkdown:
		return Markdown(content.Content)
	case models.FileTypePlaintext, models.FileTypeEmail:
		return Plaintext(content.Content)
	default:
		if includeVerbatim {
			return Plaintext(content.Content)
		}
		return nil
	}
}
