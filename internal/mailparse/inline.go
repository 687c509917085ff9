package mailparse

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// InlineDataURIs rewrites cid: image references in an HTML body so a
// renderer with no access to the original message can still show the
// embedded images. Every image part carrying a Content-ID is encoded as
// a data: URI; every src attribute referencing that id is substituted,
// whether the markup quotes it with double quotes, single quotes, or
// not at all. Content-IDs that nothing references are encoded but
// unused, which is fine.
func InlineDataURIs(htmlBody string, parts []Part) string {
	if htmlBody == "" {
		return htmlBody
	}

	for _, p := range parts {
		if p.Kind != KindImage || p.ContentID == "" || len(p.Data) == 0 {
			continue
		}
		dataURI := fmt.Sprintf("data:%s;base64,%s", p.ContentType, base64.StdEncoding.EncodeToString(p.Data))

		htmlBody = strings.ReplaceAll(htmlBody, `src="cid:`+p.ContentID+`"`, `src="`+dataURI+`"`)
		htmlBody = strings.ReplaceAll(htmlBody, `src='cid:`+p.ContentID+`'`, `src='`+dataURI+`'`)
		htmlBody = strings.ReplaceAll(htmlBody, `src=cid:`+p.ContentID, `src="`+dataURI+`"`)
	}

	return htmlBody
}
