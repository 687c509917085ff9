package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	pop3client "github.com/knadh/go-pop3"

	"github.com/tracyhatemice/mailcord/internal/dedup"
)

// POP3Receiver opens sessions over POP3/POP3S. POP3 has no server-side
// seen flag, so unseen state lives in the dedup tracker instead.
type POP3Receiver struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	tracker  *dedup.Tracker
	logger   *slog.Logger
}

// NewPOP3 creates a new POP3 receiver.
func NewPOP3(host string, port int, username, password string, useTLS bool, tracker *dedup.Tracker, logger *slog.Logger) *POP3Receiver {
	return &POP3Receiver{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		tracker:  tracker,
		logger:   logger,
	}
}

func (r *POP3Receiver) Connect(ctx context.Context) (Session, error) {
	addr := net.JoinHostPort(r.host, fmt.Sprintf("%d", r.port))

	client := pop3client.New(pop3client.Opt{
		Host:       r.host,
		Port:       r.port,
		TLSEnabled: r.useTLS,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, fmt.Errorf("pop3 connect %s: %w", addr, err)
	}

	if err := conn.Auth(r.username, r.password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("pop3 auth %s: %w", r.username, err)
	}

	return &pop3Session{
		conn:     conn,
		tracker:  r.tracker,
		username: r.username,
		logger:   r.logger,
	}, nil
}

type pop3Session struct {
	conn     *pop3client.Conn
	tracker  *dedup.Tracker
	username string
	logger   *slog.Logger
}

func (s *pop3Session) Unseen(ctx context.Context) ([]Message, error) {
	msgs, err := s.conn.List(0)
	if err != nil {
		return nil, fmt.Errorf("pop3 list: %w", err)
	}

	s.logger.Debug("fetched message list", "count", len(msgs))

	var messages []Message
	for _, msg := range msgs {
		rawBuf, err := s.conn.RetrRaw(msg.ID)
		if err != nil {
			s.logger.Warn("pop3 retrieve failed", "msg_id", msg.ID, "error", err)
			continue
		}
		raw := rawBuf.Bytes()

		msgID := extractMessageID(raw)
		if msgID == "" {
			// Fall back to UIDL if available, otherwise sequence + user.
			if msg.UID != "" {
				msgID = fmt.Sprintf("pop3-uid-%s-%s", msg.UID, s.username)
			} else {
				msgID = fmt.Sprintf("pop3-%d-%s", msg.ID, s.username)
			}
		}

		if s.tracker.Contains(msgID) {
			continue
		}

		messages = append(messages, Message{
			ID:   msgID,
			Date: extractDate(raw),
			Raw:  raw,
		})
	}

	if len(messages) > 0 {
		s.logger.Info("found unseen messages", "count", len(messages))
	}
	return messages, nil
}

func (s *pop3Session) MarkSeen(ctx context.Context, m Message) error {
	return s.tracker.MarkSeen(m.ID)
}

func (s *pop3Session) Close() error {
	return s.conn.Quit()
}

// extractMessageID parses Message-ID from raw email bytes.
func extractMessageID(raw []byte) string {
	reader, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		return ""
	}
	defer reader.Close()
	return reader.Header.Get("Message-ID")
}

// extractDate parses the Date header from raw email bytes.
func extractDate(raw []byte) time.Time {
	reader, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		return time.Time{}
	}
	defer reader.Close()
	date, err := reader.Header.Date()
	if err != nil {
		return time.Time{}
	}
	return date
}
