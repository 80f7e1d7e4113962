package filter

import (
	"testing"

	"github.com/dtnitsch/linkcheck/pkg/uri"
)

func mustParse(t *testing.T, raw string) *uri.URI {
	t.Helper()
	u, err := uri.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", raw, err)
	}
	return u
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		url  string
		want Verdict
	}{
		{
			name: "plain URL accepted",
			opts: Options{Schemes: []string{"http", "https"}},
			url:  "https://golang.org/doc",
			want: Accept,
		},
		{
			name: "scheme not permitted",
			opts: Options{Schemes: []string{"https"}},
			url:  "ftp://mirror.net/file",
			want: Exclude,
		},
		{
			name: "private address with policy on",
			opts: Options{ExcludePrivate: true},
			url:  "http://10.0.0.1/",
			want: Exclude,
		},
		{
			name: "private address with policy off",
			opts: Options{},
			url:  "http://10.0.0.1/",
			want: Accept,
		},
		{
			name: "loopback with policy on",
			opts: Options{ExcludeLoopback: true},
			url:  "http://127.0.0.1:3000/",
			want: Exclude,
		},
		{
			name: "link local with policy on",
			opts: Options{ExcludeLinkLocal: true},
			url:  "http://169.254.10.1/",
			want: Exclude,
		},
		{
			name: "example domain always excluded",
			opts: Options{},
			url:  "https://example.com/anything",
			want: Exclude,
		},
		{
			name: "mailto with exclude mail",
			opts: Options{ExcludeMail: true},
			url:  "mailto:dev@golang.org",
			want: Exclude,
		},
		{
			name: "file scheme with exclude file",
			opts: Options{ExcludeFile: true},
			url:  "file:///srv/www/index.html",
			want: Exclude,
		},
		{
			name: "file path prefix rule",
			opts: Options{ExcludePath: []string{"/srv/private"}},
			url:  "file:///srv/private/doc.html",
			want: Exclude,
		},
		{
			name: "include set misses",
			opts: Options{Include: []string{`golang\.org`}},
			url:  "https://rust-lang.org/",
			want: Exclude,
		},
		{
			name: "include set hits",
			opts: Options{Include: []string{`golang\.org`}},
			url:  "https://golang.org/pkg",
			want: Accept,
		},
		{
			name: "exclude regex hits",
			opts: Options{Exclude: []string{`\.pdf$`}},
			url:  "https://golang.org/spec.pdf",
			want: Exclude,
		},
		{
			name: "include and exclude both match favours exclusion",
			opts: Options{Include: []string{`golang`}, Exclude: []string{`golang`}},
			url:  "https://golang.org/",
			want: Exclude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if got := f.Decide(mustParse(t, tt.url)); got != tt.want {
				t.Errorf("Decide(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestNewRejectsBadPatterns(t *testing.T) {
	if _, err := New(Options{Include: []string{"("}}); err == nil {
		t.Error("New() accepted an invalid include pattern")
	}
	if _, err := New(Options{Exclude: []string{"["}}); err == nil {
		t.Error("New() accepted an invalid exclude pattern")
	}
}
