package mailparse

import (
	"strings"

	"golang.org/x/net/html"
)

// maxExternalImages bounds how many remote image URLs are harvested
// from one HTML body.
const maxExternalImages = 3

// snippetLimit caps the snippet shown in the Discord embed.
const snippetLimit = 1500

// noTextPlaceholder is used when a message has no readable body.
const noTextPlaceholder = "(no text)"

// ExtractHTML tokenizes an HTML body and returns its visible text plus
// up to maxExternalImages http(s) image URLs in document order. Text
// inside script and style elements is dropped; text from adjacent
// elements is joined with single spaces so words never run together.
func ExtractHTML(htmlBody string) (text string, imageURLs []string) {
	z := html.NewTokenizer(strings.NewReader(htmlBody))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if tag == "img" && len(imageURLs) < maxExternalImages && hasAttr {
				if src := tagAttr(z, "src"); strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
					imageURLs = append(imageURLs, src)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := strings.TrimSpace(string(z.Text()))
			if t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
	}

	return b.String(), imageURLs
}

func tagAttr(z *html.Tokenizer, want string) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == want {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

// Snippet derives the embed description for a message: HTML-derived
// text when an HTML body exists, else the plain-text body, else a
// placeholder. The result is whitespace-collapsed and length-capped.
func (c *Content) Snippet() string {
	var text string
	if c.HTML != "" {
		text, _ = ExtractHTML(c.HTML)
	} else {
		text = c.Text
	}
	return normalizeSnippet(text)
}

func normalizeSnippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if len(s) > snippetLimit {
		// Cut on a rune boundary so multi-byte characters survive.
		cut := snippetLimit
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		s = s[:cut]
	}
	if s == "" {
		return noTextPlaceholder
	}
	return s
}
