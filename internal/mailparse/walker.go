package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func init() {
	// Register GBK so bodies from QQ/163 mailboxes decode instead of
	// failing with `unhandled charset "gbk"`.
	charset.RegisterEncoding("gbk", simplifiedchinese.GBK)
}

const (
	// maxTextBytes caps how much of a text part is read.
	maxTextBytes = 1 << 20
	// maxPartBytes caps how much of an image or attachment part is read.
	maxPartBytes = 25 << 20
)

// Walk parses a raw message and flattens it into a Content: decoded
// subject and sender, the first text/plain and first text/html bodies,
// and every image or named-attachment part in traversal order. Later
// duplicate text or HTML parts are ignored. A part that fails to decode
// is skipped with a warning; only a message whose top-level structure
// cannot be read at all is an error.
func Walk(raw []byte, logger *slog.Logger) (*Content, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		if mr == nil {
			return nil, fmt.Errorf("read message: %w", err)
		}
		logger.Warn("message header partially decoded", "error", err)
	}
	defer mr.Close()

	content := &Content{
		Subject: headerText(mr.Header, "Subject"),
		Sender:  headerText(mr.Header, "From"),
	}

	counter := 0
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				logger.Warn("skipping part with unknown charset", "error", err)
				continue
			}
			logger.Warn("stopping part walk", "error", err)
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ctype, _, _ := h.ContentType()
			switch {
			case strings.HasPrefix(ctype, "image/"):
				counter++
				part, ok := readImagePart(p.Body, ctype, h.Get("Content-ID"), "", counter, logger)
				if ok {
					content.Parts = append(content.Parts, part)
				}
			case ctype == "text/html" && content.HTML == "":
				b, err := io.ReadAll(io.LimitReader(p.Body, maxTextBytes))
				if err != nil {
					logger.Warn("skipping undecodable html part", "error", err)
					continue
				}
				content.HTML = string(b)
			case ctype == "text/plain" && content.Text == "":
				b, err := io.ReadAll(io.LimitReader(p.Body, maxTextBytes))
				if err != nil {
					logger.Warn("skipping undecodable text part", "error", err)
					continue
				}
				content.Text = string(b)
			}

		case *mail.AttachmentHeader:
			ctype, _, _ := h.ContentType()
			filename, _ := h.Filename()
			isImage := strings.HasPrefix(ctype, "image/")
			if !isImage && filename == "" {
				// Unnamed non-image attachment, nothing to forward.
				continue
			}
			counter++
			part, ok := readImagePart(p.Body, ctype, h.Get("Content-ID"), filename, counter, logger)
			if ok {
				if !isImage {
					part.Kind = KindAttachment
				}
				content.Parts = append(content.Parts, part)
			}
		}
	}

	return content, nil
}

// readImagePart drains and classifies one image-bearing part.
func readImagePart(body io.Reader, ctype, rawCID, filename string, counter int, logger *slog.Logger) (Part, bool) {
	data, err := io.ReadAll(io.LimitReader(body, maxPartBytes))
	if err != nil {
		logger.Warn("skipping undecodable part", "content_type", ctype, "error", err)
		return Part{}, false
	}
	if len(data) == 0 {
		return Part{}, false
	}

	cid := strings.Trim(strings.TrimSpace(rawCID), "<>")
	if filename == "" {
		filename = synthesizeFilename(ctype, cid, counter)
	}

	return Part{
		Kind:        KindImage,
		ContentType: ctype,
		ContentID:   cid,
		Filename:    filename,
		Data:        data,
	}, true
}

// synthesizeFilename builds a name for a part that carries none, from
// its Content-ID when available, else from a walk-scoped counter.
func synthesizeFilename(ctype, cid string, counter int) string {
	ext := "bin"
	if i := strings.Index(ctype, "/"); i >= 0 && i+1 < len(ctype) {
		ext = ctype[i+1:]
	}
	base := cid
	if base == "" {
		base = fmt.Sprintf("image-%d", counter)
	}
	return base + "." + ext
}

// headerText returns the decoded value of a header, falling back to the
// raw value when RFC 2047 decoding fails.
func headerText(h mail.Header, key string) string {
	if v, err := h.Text(key); err == nil {
		return v
	}
	raw := h.Get(key)
	dec := new(mime.WordDecoder)
	if v, err := dec.DecodeHeader(raw); err == nil {
		return v
	}
	return raw
}
