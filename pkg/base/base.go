// Package base resolves relative references against a per-input base,
// which is either a URL or a filesystem directory.
package base

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/linkcheck/pkg/uri"
)

// Kind tags the two base variants.
type Kind int

const (
	KindURL Kind = iota
	KindDir
)

// Base anchors relative references found in an input.
type Base struct {
	kind Kind
	url  *url.URL // KindURL
	dir  string   // KindDir, absolute
}

// New interprets raw as a base. http(s) URLs become URL bases;
// everything else is treated as a filesystem directory.
func New(raw string) (*Base, error) {
	if raw == "" {
		return nil, fmt.Errorf("invalid base: empty")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid base %q", raw)
		}
		return &Base{kind: KindURL, url: u}, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base %q: %w", raw, err)
	}
	return &Base{kind: KindDir, dir: abs}, nil
}

// FromDir builds a directory base rooted at dir.
func FromDir(dir string) (*Base, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid base %q: %w", dir, err)
	}
	return &Base{kind: KindDir, dir: abs}, nil
}

// Kind returns the base variant.
func (b *Base) Kind() Kind {
	return b.kind
}

func (b *Base) String() string {
	if b.kind == KindURL {
		return b.url.String()
	}
	return b.dir
}

// Resolve turns a raw reference into an absolute URI. Absolute
// references, mailto: and tel: pass through. Protocol-relative
// references inherit the base scheme. Path references join the base:
// URL bases use standard reference resolution, directory bases yield
// file:// URIs rooted at the directory. A nil base only accepts
// absolute references.
func Resolve(b *Base, raw string) (*uri.URI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("invalid URL: empty reference")
	}

	// Absolute and opaque forms never consult the base.
	if strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") || strings.HasPrefix(raw, "data:") {
		return uri.Parse(raw)
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return uri.Parse(raw)
	}

	if b == nil {
		return nil, fmt.Errorf("invalid URL %q: relative reference without a base", raw)
	}

	switch b.kind {
	case KindURL:
		ref, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		return uri.FromURL(b.url.ResolveReference(ref))
	case KindDir:
		if strings.HasPrefix(raw, "//") {
			// Protocol-relative against a filesystem base has no
			// scheme to inherit.
			return nil, fmt.Errorf("invalid URL %q: protocol-relative reference without a URL base", raw)
		}
		path := raw
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return nil, fmt.Errorf("invalid URL %q: empty path", raw)
		}
		unescaped, err := url.PathUnescape(path)
		if err == nil {
			path = unescaped
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.dir, path)
		}
		fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			fileURL.Fragment = raw[i+1:]
		}
		return uri.FromURL(fileURL)
	}
	return nil, fmt.Errorf("invalid base")
}
