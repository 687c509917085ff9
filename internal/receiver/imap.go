package receiver

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPReceiver opens sessions over IMAP/IMAPS. The server's \Seen flag
// is the only processed-state store; fetches peek so nothing is marked
// seen before delivery succeeds.
type IMAPReceiver struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	folder   string
	logger   *slog.Logger
}

// NewIMAP creates a new IMAP receiver.
func NewIMAP(host string, port int, username, password string, useTLS bool, folder string, logger *slog.Logger) *IMAPReceiver {
	if folder == "" {
		folder = "INBOX"
	}
	return &IMAPReceiver{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		folder:   folder,
		logger:   logger,
	}
}

func (r *IMAPReceiver) Connect(ctx context.Context) (Session, error) {
	addr := net.JoinHostPort(r.host, fmt.Sprintf("%d", r.port))

	var client *imapclient.Client
	var err error

	if r.useTLS {
		client, err = imapclient.DialTLS(addr, &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: r.host},
		})
	} else {
		client, err = imapclient.DialInsecure(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", addr, err)
	}

	if err := client.Login(r.username, r.password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap login %s: %w", r.username, err)
	}

	if _, err := client.Select(r.folder, nil).Wait(); err != nil {
		client.Logout().Wait()
		client.Close()
		return nil, fmt.Errorf("imap select %s: %w", r.folder, err)
	}

	return &imapSession{
		client:   client,
		username: r.username,
		logger:   r.logger,
	}, nil
}

type imapSession struct {
	client   *imapclient.Client
	username string
	logger   *slog.Logger
}

func (s *imapSession) Unseen(ctx context.Context) ([]Message, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		s.logger.Debug("no unseen messages")
		return nil, nil
	}

	s.logger.Info("found unseen messages", "count", len(uids))

	uidSet := imap.UIDSetNum(uids...)
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOptions := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	buffers, err := s.client.Fetch(uidSet, fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	var messages []Message
	for _, buf := range buffers {
		var msgID string
		if buf.Envelope != nil {
			msgID = buf.Envelope.MessageID
		}
		if msgID == "" {
			msgID = fmt.Sprintf("imap-%d-%s", buf.UID, s.username)
		}

		content := buf.FindBodySection(bodySection)
		if len(content) == 0 {
			s.logger.Warn("empty body, skipping", "msg_id", msgID)
			continue
		}

		var date time.Time
		if buf.Envelope != nil {
			date = buf.Envelope.Date
		}

		messages = append(messages, Message{
			ID:   msgID,
			Date: date,
			Raw:  content,
			uid:  uint32(buf.UID),
		})
	}

	return messages, nil
}

func (s *imapSession) MarkSeen(ctx context.Context, m Message) error {
	if m.uid == 0 {
		return fmt.Errorf("message %s has no uid", m.ID)
	}
	uidSet := imap.UIDSetNum(imap.UID(m.uid))
	flags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	if err := s.client.Store(uidSet, flags, nil).Close(); err != nil {
		return fmt.Errorf("imap store seen: %w", err)
	}
	return nil
}

func (s *imapSession) Close() error {
	defer s.client.Close()
	return s.client.Logout().Wait()
}
