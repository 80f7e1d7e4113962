package uri

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "simple HTTPS URL",
			raw:  "https://example.com/path",
		},
		{
			name: "mailto address",
			raw:  "mailto:hello@example.com",
		},
		{
			name: "file URI",
			raw:  "file:///tmp/index.html",
		},
		{
			name:    "relative reference rejected",
			raw:     "../docs/index.html",
			wantErr: true,
		},
		{
			name:    "schemeless host rejected",
			raw:     "example.com/page",
			wantErr: true,
		},
		{
			name:    "missing host rejected",
			raw:     "https:///nohost",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(*URI) bool
	}{
		{"mailto", "mailto:a@b.de", func(u *URI) bool { return u.IsMail() }},
		{"tel", "tel:+1-555-0100", func(u *URI) bool { return u.IsTel() }},
		{"file", "file:///etc/hosts", func(u *URI) bool { return u.IsFile() }},
		{"website", "http://example.org", func(u *URI) bool { return u.IsWebsite() }},
		{"loopback IP", "http://127.0.0.1/x", func(u *URI) bool { return u.IsLoopback() }},
		{"localhost name", "http://localhost:8080", func(u *URI) bool { return u.IsLoopback() }},
		{"private IP", "http://10.0.0.1/", func(u *URI) bool { return u.IsPrivate() }},
		{"private 192.168", "http://192.168.1.10/", func(u *URI) bool { return u.IsPrivate() }},
		{"link local", "http://169.254.0.1/", func(u *URI) bool { return u.IsLinkLocal() }},
		{"example domain", "https://www.example.com/page", func(u *URI) bool { return u.IsExampleDomain() }},
		{"test TLD", "https://foo.test/", func(u *URI) bool { return u.IsExampleDomain() }},
		{"public host is not private", "https://golang.org", func(u *URI) bool { return !u.IsPrivate() && !u.IsLoopback() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.raw, err)
			}
			if !tt.want(u) {
				t.Errorf("predicate failed for %q", tt.raw)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "drops fragment",
			raw:  "https://example.org/page#section",
			want: "https://example.org/page",
		},
		{
			name: "drops default port",
			raw:  "https://example.org:443/page",
			want: "https://example.org/page",
		},
		{
			name: "keeps explicit port",
			raw:  "http://example.org:8080/page",
			want: "http://example.org:8080/page",
		},
		{
			name: "lowercases host",
			raw:  "http://Example.ORG/Page",
			want: "http://example.org/Page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.raw, err)
			}
			if got := u.Normalized(); got != tt.want {
				t.Errorf("Normalized() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMailAddress(t *testing.T) {
	u, err := Parse("mailto:user@example.net?subject=hi")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := u.MailAddress(); got != "user@example.net" {
		t.Errorf("MailAddress() = %q, want user@example.net", got)
	}
}

func TestWithoutFragment(t *testing.T) {
	u, err := Parse("https://example.org/page#frag")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !u.HasFragment() || u.Fragment() != "frag" {
		t.Fatalf("Fragment() = %q, want frag", u.Fragment())
	}
	stripped := u.WithoutFragment()
	if stripped.HasFragment() {
		t.Error("WithoutFragment() kept the fragment")
	}
	if u.Fragment() != "frag" {
		t.Error("WithoutFragment() mutated the original")
	}
}
