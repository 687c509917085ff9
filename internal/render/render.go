// Package render converts resolved HTML into a paginated PDF for
// delivery as a file attachment.
package render

import (
	"context"
	"html"
	"regexp"
)

// Renderer produces a PDF from an HTML document. Implementations must
// treat failures as recoverable: the forwarder falls back to
// snippet-only delivery when rendering errors out.
type Renderer interface {
	RenderPDF(ctx context.Context, htmlBody string) ([]byte, error)
}

// WrapPlainText builds the minimal HTML container used when a message
// has no rich body, so a text-only email still renders to a document.
func WrapPlainText(text string) string {
	return `<html><head><meta charset="utf-8"><style>body { font-family: sans-serif; }</style></head><body><pre>` +
		html.EscapeString(text) + `</pre></body></html>`
}

var unsafeFilenameChars = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

// DocumentFilename derives the rendered document's filename from the
// message subject: unsafe characters become underscores, the base is
// truncated to 50 characters, and an empty result falls back to a
// generic name.
func DocumentFilename(subject string) string {
	base := unsafeFilenameChars.ReplaceAllString(subject, "_")
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "email"
	}
	return base + ".pdf"
}
