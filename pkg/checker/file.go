package checker

import (
	"os"
	"path/filepath"

	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/fragment"
)

// checkFile verifies a file:// target: the path must exist and be
// readable. Directories fall back to their index.html. Fragments are
// verified against HTML and Markdown files when enabled.
func (c *Client) checkFile(req models.Request) models.Status {
	path := filepath.Clean(filepath.FromSlash(req.URI.Path()))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.ErrorStatus(models.ErrIO, "no such file: "+path)
		}
		return models.ErrorStatus(models.ErrIO, err.Error())
	}
	if info.IsDir() {
		path = filepath.Join(path, "index.html")
		if _, err := os.Stat(path); err != nil {
			return models.ErrorStatus(models.ErrIO, "no index.html in directory: "+filepath.Dir(path))
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return models.ErrorStatus(models.ErrIO, err.Error())
	}
	f.Close()

	if !c.cfg.IncludeFragments || !req.URI.HasFragment() {
		return models.Ok(200)
	}

	fileType := models.FileTypeFromPath(path)
	if fileType != models.FileTypeHTML && fileType != models.FileTypeMarkdown {
		return models.Ok(200)
	}

	idx := c.fragmentIndex(req.Fingerprint(), func() *fragment.Index {
		body, err := os.ReadFile(path)
		if err != nil {
			return fragment.New(models.FileTypeUnknown, nil)
		}
		return fragment.New(fileType, body)
	})
	if idx.Contains(req.URI.Fragment()) {
		return models.Ok(200)
	}
	return models.ErrorStatus(models.ErrFragmentMissing, req.URI.Fragment())
}
