package common

import "testing"

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean URL untouched",
			raw:  "https://site.io/page",
			want: "https://site.io/page",
		},
		{
			name: "surrounding whitespace",
			raw:  "  https://site.io/page \n",
			want: "https://site.io/page",
		},
		{
			name: "trailing comma",
			raw:  "https://site.io/page,",
			want: "https://site.io/page",
		},
		{
			name: "trailing period and quote",
			raw:  `https://site.io/page."`,
			want: "https://site.io/page",
		},
		{
			name: "angle brackets",
			raw:  "<https://site.io/page>",
			want: "https://site.io/page",
		},
		{
			name: "unbalanced closing paren removed",
			raw:  "https://site.io/page)",
			want: "https://site.io/page",
		},
		{
			name: "balanced parens kept",
			raw:  "https://en.wikipedia.org/wiki/Go_(programming_language)",
			want: "https://en.wikipedia.org/wiki/Go_(programming_language)",
		},
		{
			name: "paren then period",
			raw:  "https://site.io/page).",
			want: "https://site.io/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.raw); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFilterResultFields(t *testing.T) {
	type record struct {
		URL    string `json:"url"`
		Status string `json:"status"`
		Code   int    `json:"code"`
	}
	rec := record{URL: "https://a.io/", Status: "ok", Code: 200}

	full := FilterResultFields(rec, "", false)
	if len(full) != 3 {
		t.Errorf("empty field list should keep all fields, got %v", full)
	}

	filtered := FilterResultFields(rec, "url,status", false)
	if len(filtered) != 2 {
		t.Errorf("filtered = %v, want url and status only", filtered)
	}
	if _, ok := filtered["code"]; ok {
		t.Error("code should have been projected away")
	}
}
