// Package mailparse turns raw RFC 5322 messages into the normalized
// pieces the bridge forwards: decoded headers, a text snippet, and the
// image material referenced by or attached to the message.
package mailparse

import "fmt"

// PartKind classifies a MIME part once, during the walk, so nothing
// downstream needs to compare content-type strings again.
type PartKind int

const (
	KindText PartKind = iota
	KindHTML
	KindImage
	KindAttachment
)

func (k PartKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	case KindImage:
		return "image"
	case KindAttachment:
		return "attachment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Part is one decoded leaf of a message body. The transfer encoding has
// already been undone; Data holds the raw payload bytes.
type Part struct {
	Kind        PartKind
	ContentType string // e.g. "image/png"
	ContentID   string // without angle brackets, empty if absent
	Filename    string // never empty for image/attachment parts
	Data        []byte
}

// Content is the result of walking one message.
type Content struct {
	Subject string
	Sender  string
	HTML    string // first text/html part, empty if none
	Text    string // first text/plain part, empty if none
	Parts   []Part // image and attachment parts in traversal order
}
