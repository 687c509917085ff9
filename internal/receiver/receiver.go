// Package receiver provides the mailbox collaborators the forwarder
// polls: one session per tick, unseen messages in, seen-flag mutations
// out.
package receiver

import (
	"context"
	"time"
)

// Message is one fetched email.
type Message struct {
	ID   string    // Message-ID, or synthesized when absent
	Date time.Time // date the email was sent/received
	Raw  []byte    // raw RFC 5322 message bytes

	// uid is the IMAP UID backing MarkSeen; zero for POP3.
	uid uint32
}

// Session is one open mailbox connection, used for a single poll tick.
type Session interface {
	// Unseen returns the unprocessed messages in mailbox order.
	Unseen(ctx context.Context) ([]Message, error)

	// MarkSeen flags one message as processed. For IMAP this sets
	// \Seen on the server; for POP3 it records the ID locally.
	MarkSeen(ctx context.Context, m Message) error

	// Close releases the connection.
	Close() error
}

// Receiver opens sessions against a remote mail server.
type Receiver interface {
	Connect(ctx context.Context) (Session, error)
}
