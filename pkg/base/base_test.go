package base

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveWithURLBase(t *testing.T) {
	b, err := New("https://docs.site.io/guide/")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "absolute passthrough",
			ref:  "https://other.net/page",
			want: "https://other.net/page",
		},
		{
			name: "relative path",
			ref:  "intro.html",
			want: "https://docs.site.io/guide/intro.html",
		},
		{
			name: "parent relative",
			ref:  "../api/index.html",
			want: "https://docs.site.io/api/index.html",
		},
		{
			name: "root relative",
			ref:  "/about",
			want: "https://docs.site.io/about",
		},
		{
			name: "protocol relative inherits scheme",
			ref:  "//cdn.site.io/app.js",
			want: "https://cdn.site.io/app.js",
		},
		{
			name: "mailto passthrough",
			ref:  "mailto:team@site.io",
			want: "mailto:team@site.io",
		},
		{
			name: "tel passthrough",
			ref:  "tel:+15550100",
			want: "tel:+15550100",
		},
		{
			name: "fragment preserved",
			ref:  "intro.html#setup",
			want: "https://docs.site.io/guide/intro.html#setup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Resolve(b, tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.ref, err)
			}
			if u.String() != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, u.String(), tt.want)
			}
		})
	}
}

func TestResolveWithDirBase(t *testing.T) {
	dir := t.TempDir()
	b, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() failed: %v", err)
	}

	u, err := Resolve(b, "docs/readme.md")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if !u.IsFile() {
		t.Fatalf("expected file URI, got %q", u.String())
	}
	wantPath := filepath.ToSlash(filepath.Join(dir, "docs", "readme.md"))
	if !strings.HasSuffix(u.Path(), wantPath) {
		t.Errorf("resolved path = %q, want suffix %q", u.Path(), wantPath)
	}

	if _, err := Resolve(b, "//cdn.site.io/app.js"); err == nil {
		t.Error("protocol-relative reference against a dir base should fail")
	}
}

func TestResolveDirBaseKeepsFragment(t *testing.T) {
	b, err := FromDir(t.TempDir())
	if err != nil {
		t.Fatalf("FromDir() failed: %v", err)
	}
	u, err := Resolve(b, "page.html#install")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if u.Fragment() != "install" {
		t.Errorf("Fragment() = %q, want install", u.Fragment())
	}
}

func TestResolveWithoutBase(t *testing.T) {
	if _, err := Resolve(nil, "relative/path.html"); err == nil {
		t.Error("relative reference without a base should fail")
	}
	u, err := Resolve(nil, "https://site.io/x")
	if err != nil {
		t.Fatalf("absolute reference without a base failed: %v", err)
	}
	if u.String() != "https://site.io/x" {
		t.Errorf("got %q", u.String())
	}
}

func TestNewRejectsBadBases(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
	if _, err := New("https://"); err == nil {
		t.Error("New(\"https://\") should fail")
	}
}
