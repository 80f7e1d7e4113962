package extract

import (
	"testing"

	"github.com/dtnitsch/linkcheck/models"
)

func texts(found []models.RawURI) []string {
	out := make([]string, 0, len(found))
	for _, raw := range found {
		out = append(out, raw.Text)
	}
	return out
}

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "anchor and image",
			html: `<a href="https://a.io/">a</a><img src="/logo.png">`,
			want: []string{"https://a.io/", "/logo.png"},
		},
		{
			name: "script and link tags",
			html: `<link href="style.css" rel="stylesheet"><script src="app.js"></script>`,
			want: []string{"style.css", "app.js"},
		},
		{
			name: "srcset split into candidates",
			html: `<img srcset="small.png 480w, large.png 1080w">`,
			want: []string{"small.png", "large.png"},
		},
		{
			name: "video poster and source",
			html: `<video poster="cover.jpg"><source src="clip.mp4"></video>`,
			want: []string{"cover.jpg", "clip.mp4"},
		},
		{
			name: "bare fragment and javascript skipped",
			html: `<a href="#top">top</a><a href="javascript:void(0)">x</a><a href="/real">r</a>`,
			want: []string{"/real"},
		},
		{
			name: "non-whitelisted attribute ignored",
			html: `<div data-url="https://nope.io/"><a href="/yes">y</a></div>`,
			want: []string{"/yes"},
		},
		{
			name: "form action",
			html: `<form action="/submit"><input type="submit"></form>`,
			want: []string{"/submit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(HTML([]byte(tt.html)))
			if len(got) != len(tt.want) {
				t.Fatalf("HTML() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("HTML()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHTMLProvenance(t *testing.T) {
	found := HTML([]byte(`<script src="app.js"></script>`))
	if len(found) != 1 {
		t.Fatalf("expected one candidate, got %d", len(found))
	}
	if found[0].Element != "script" || found[0].Attribute != "src" {
		t.Errorf("provenance = %s/%s, want script/src", found[0].Element, found[0].Attribute)
	}
}

func TestMarkdown(t *testing.T) {
	md := `# Title

A [guide](https://docs.io/guide) and an image ![logo](img/logo.png).

Autolink: <https://auto.io/page>

<a href="https://raw.io/x">embedded</a>
`
	got := texts(Markdown([]byte(md)))
	want := map[string]bool{
		"https://docs.io/guide": true,
		"img/logo.png":          true,
		"https://auto.io/page":  true,
		"https://raw.io/x":      true,
	}
	if len(got) != len(want) {
		t.Fatalf("Markdown() = %v, want %d candidates", got, len(want))
	}
	for _, text := range got {
		if !want[text] {
			t.Errorf("unexpected candidate %q", text)
		}
	}
}

func TestMarkdownEmailAutolink(t *testing.T) {
	got := texts(Markdown([]byte("Contact <dev@site.io> for help.")))
	if len(got) != 1 || got[0] != "mailto:dev@site.io" {
		t.Errorf("Markdown() = %v, want [mailto:dev@site.io]", got)
	}
}

func TestPlaintext(t *testing.T) {
	text := `See https://first.io/a then mail root@host.example.io or visit
http://second.io/b (really).`
	got := texts(Plaintext([]byte(text)))
	want := []string{
		"https://first.io/a",
		"mailto:root@host.example.io",
		"http://second.io/b",
	}
	if len(got) != len(want) {
		t.Fatalf("Plaintext() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Plaintext()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinksDispatch(t *testing.T) {
	unknown := models.InputContent{
		Source:   "test",
		FileType: models.FileTypeUnknown,
		Content:  []byte("see https://x.io/page"),
	}
	if got := Links(unknown, false); got != nil {
		t.Errorf("unknown content without verbatim should yield nothing, got %v", got)
	}
	if got := Links(unknown, true); len(got) != 1 {
		t.Errorf("unknown content with verbatim should scan as plaintext, got %v", got)
	}

	html := models.InputContent{
		Source:   "test",
		FileType: models.FileTypeHTML,
		Content:  []byte(`<a href="/x">x</a>`),
	}
	if got := Links(html, false); len(got) != 1 || got[0].Text != "/x" {
		t.Errorf("HTML dispatch failed, got %v", got)
	}
}
