package mailparse

import (
	"strings"
	"testing"
)

func TestExtractHTMLStripsScriptAndStyle(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><head><style>body { color: red; }</style></head>` +
		`<body><script>alert("evil");</script><p>Visible text</p></body></html>`

	text, _ := ExtractHTML(htmlBody)
	if strings.Contains(text, "alert") || strings.Contains(text, "color: red") {
		t.Errorf("script/style content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Visible text") {
		t.Errorf("visible text missing: %q", text)
	}
}

func TestExtractHTMLSeparatesWords(t *testing.T) {
	t.Parallel()

	text, _ := ExtractHTML("<div>first</div><div>second</div>")
	if text != "first second" {
		t.Errorf("got %q, want %q", text, "first second")
	}
}

func TestExtractHTMLCapsExternalImages(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString(`<img src="https://example.com/img` + string(rune('0'+i)) + `.png">`)
	}
	// cid and data references must not count as external.
	b.WriteString(`<img src="cid:logo"><img src="data:image/png;base64,xx">`)

	_, urls := ExtractHTML(b.String())
	if len(urls) != maxExternalImages {
		t.Fatalf("urls: got %d, want %d", len(urls), maxExternalImages)
	}
	for i, u := range urls {
		want := "https://example.com/img" + string(rune('0'+i)) + ".png"
		if u != want {
			t.Errorf("urls[%d]: got %q, want %q", i, u, want)
		}
	}
}

func TestSnippetPrefersHTMLOverText(t *testing.T) {
	t.Parallel()

	c := &Content{
		HTML: "<p>from html</p>",
		Text: "from text",
	}
	if got := c.Snippet(); got != "from html" {
		t.Errorf("got %q, want %q", got, "from html")
	}
}

func TestSnippetFallsBackToPlaceholder(t *testing.T) {
	t.Parallel()

	c := &Content{}
	if got := c.Snippet(); got != "(no text)" {
		t.Errorf("got %q, want %q", got, "(no text)")
	}
}

func TestSnippetNormalizesAndCaps(t *testing.T) {
	t.Parallel()

	c := &Content{Text: "a\t\tb\n\n  c " + strings.Repeat("x", 2*snippetLimit)}
	got := c.Snippet()
	if !strings.HasPrefix(got, "a b c ") {
		t.Errorf("whitespace not normalized: %q", got[:10])
	}
	if len(got) > snippetLimit {
		t.Errorf("length: got %d, want <= %d", len(got), snippetLimit)
	}
}

func TestSnippetCapKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	c := &Content{Text: strings.Repeat("ö", snippetLimit)}
	got := c.Snippet()
	if len(got) > snippetLimit {
		t.Errorf("length: got %d, want <= %d", len(got), snippetLimit)
	}
	for _, r := range got {
		if r != 'ö' {
			t.Fatalf("multi-byte rune split at cap: %q", r)
		}
	}
}
