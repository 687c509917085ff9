package render

import (
	"strings"
	"testing"
)

func TestDocumentFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subject string
		want    string
	}{
		{"Invoice #42 (March)", "Invoice_42_March_.pdf"},
		{"already_safe-name", "already_safe-name.pdf"},
		{"", "email.pdf"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50) + ".pdf"},
		{"Hello, Wörld!", "Hello_W_rld_.pdf"},
	}
	for _, tt := range tests {
		if got := DocumentFilename(tt.subject); got != tt.want {
			t.Errorf("DocumentFilename(%q): got %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestWrapPlainTextEscapesHTML(t *testing.T) {
	t.Parallel()

	got := WrapPlainText(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Errorf("markup not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("escaped text missing: %q", got)
	}
	if !strings.HasPrefix(got, "<html>") {
		t.Errorf("not wrapped in a document: %q", got)
	}
}
