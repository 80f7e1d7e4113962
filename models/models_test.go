package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewInputClassification(t *testing.T) {
	tests := []struct {
		raw  string
		want InputKind
	}{
		{"-", InputStdin},
		{"https://site.io/page", InputRemoteURL},
		{"http://site.io", InputRemoteURL},
		{"docs/**/*.md", InputFsGlob},
		{"notes?.txt", InputFsGlob},
		{"README.md", InputFsPath},
		{"./docs", InputFsPath},
	}
	for _, tt := range tests {
		if got := NewInput(tt.raw).Kind; got != tt.want {
			t.Errorf("NewInput(%q).Kind = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFileTypeFromPath(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"index.html", FileTypeHTML},
		{"doc.HTM", FileTypeHTML},
		{"README.md", FileTypeMarkdown},
		{"notes.markdown", FileTypeMarkdown},
		{"plain.txt", FileTypePlaintext},
		{"mail.eml", FileTypeEmail},
		{"binary.bin", FileTypeUnknown},
		{"no-extension", FileTypeUnknown},
	}
	for _, tt := range tests {
		if got := FileTypeFromPath(tt.path); got != tt.want {
			t.Errorf("FileTypeFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSniffFileType(t *testing.T) {
	if got := SniffFileType([]byte("  <!DOCTYPE html><html>")); got != FileTypeHTML {
		t.Errorf("doctype sniff = %v, want HTML", got)
	}
	if got := SniffFileType([]byte("<HTML><body>")); got != FileTypeHTML {
		t.Errorf("html tag sniff = %v, want HTML", got)
	}
	if got := SniffFileType([]byte("just some text")); got != FileTypeUnknown {
		t.Errorf("plain sniff = %v, want Unknown", got)
	}
}

func TestCacheStatusRoundTrip(t *testing.T) {
	tests := []struct {
		status CacheStatus
		field  string
	}{
		{CacheStatus{OK: true, Code: 200}, "200"},
		{CacheStatus{OK: false, Code: 404}, "404"},
		{CacheStatus{OK: false}, "error"},
	}
	for _, tt := range tests {
		if got := tt.status.CSVField(); got != tt.field {
			t.Errorf("CSVField() = %q, want %q", got, tt.field)
		}
		parsed, err := ParseCacheStatus(tt.field)
		if err != nil {
			t.Fatalf("ParseCacheStatus(%q) failed: %v", tt.field, err)
		}
		if parsed.OK != tt.status.OK {
			t.Errorf("ParseCacheStatus(%q).OK = %v, want %v", tt.field, parsed.OK, tt.status.OK)
		}
	}

	if _, err := ParseCacheStatus("nonsense"); err == nil {
		t.Error("ParseCacheStatus should reject non-numeric fields")
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		success bool
		failure bool
	}{
		{"ok", Ok(200), true, false},
		{"redirected", Redirected(200), true, false},
		{"http error", HTTPError(404), false, true},
		{"timeout", Timeout(0), false, true},
		{"excluded", Excluded(), false, false},
		{"unsupported", Unsupported("tel"), false, false},
		{"cached ok", Cached(CacheStatus{OK: true, Code: 200}), true, false},
		{"cached error", Cached(CacheStatus{OK: false, Code: 500}), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsSuccess(); got != tt.success {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.success)
			}
			if got := tt.status.IsFailure(); got != tt.failure {
				t.Errorf("IsFailure() = %v, want %v", got, tt.failure)
			}
		})
	}
}

func TestResponseJSON(t *testing.T) {
	resp := Response{
		Source: "README.md",
		URL:    "https://a.io/",
		Status: ErrorStatus(ErrFragmentMissing, "setup"),
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"status":"error"`, `"error":"fragment_missing"`, `"detail":"setup"`} {
		if !strings.Contains(text, want) {
			t.Errorf("JSON %s missing %s", text, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
max_concurrency: 10
max_redirects: 2
timeout: 5s
method: head
exclude_private: true
accepted_status_codes: [200, 204]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxConcurrency != 10 || cfg.MaxRedirects != 2 {
		t.Errorf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Method != MethodHead {
		t.Errorf("Method = %v, want head", cfg.Method)
	}
	if !cfg.ExcludePrivate {
		t.Error("ExcludePrivate not applied")
	}
	if len(cfg.AcceptedStatusCodes) != 2 {
		t.Errorf("AcceptedStatusCodes = %v", cfg.AcceptedStatusCodes)
	}
	// Defaults survive for fields the file does not mention.
	if cfg.MaxConcurrencyPerHost != 8 {
		t.Errorf("MaxConcurrencyPerHost default lost: %d", cfg.MaxConcurrencyPerHost)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without inputs")
	}
	cfg.Inputs = []Input{NewInput("README.md")}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
	cfg.Method = "teleport"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject unknown methods")
	}
}
