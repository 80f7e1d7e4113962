package fragment

import (
	"testing"

	"github.com/dtnitsch/linkcheck/models"
)

func TestHTMLIndex(t *testing.T) {
	body := []byte(`<html><body>
<h1 id="Intro">Intro</h1>
<div id="setup-guide">...</div>
<a name="legacy-anchor">old</a>
</body></html>`)
	idx := New(models.FileTypeHTML, body)

	tests := []struct {
		name     string
		fragment string
		want     bool
	}{
		{"id match", "Intro", true},
		{"HTML ids are case-sensitive", "intro", false},
		{"second id", "setup-guide", true},
		{"legacy a name", "legacy-anchor", true},
		{"missing", "nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.Contains(tt.fragment); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.fragment, got, tt.want)
			}
		})
	}
}

func TestMarkdownIndex(t *testing.T) {
	body := []byte(`# Getting Started

## Install & Configure!

### Custom {#my-id}

<div id="embedded-html"></div>
`)
	idx := New(models.FileTypeMarkdown, body)

	tests := []struct {
		name     string
		fragment string
		want     bool
	}{
		{"auto id", "getting-started", true},
		{"auto ids are case-insensitive", "Getting-Started", true},
		{"punctuation stripped", "install--configure", false},
		{"punctuation collapsed", "install-configure", true},
		{"explicit id", "my-id", true},
		{"embedded html id", "embedded-html", true},
		{"missing", "nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.Contains(tt.fragment); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.fragment, got, tt.want)
			}
		})
	}
}

func TestAutoID(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Getting Started", "getting-started"},
		{"Install & Configure!", "install-configure"},
		{"  spaced  out  ", "spaced-out"},
		{"already-dashed", "already-dashed"},
	}
	for _, tt := range tests {
		if got := AutoID(tt.title); got != tt.want {
			t.Errorf("AutoID(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestUnknownTypeYieldsEmptyIndex(t *testing.T) {
	idx := New(models.FileTypeUnknown, []byte("# Heading"))
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if idx.Contains("heading") {
		t.Error("empty index should contain nothing")
	}
}
