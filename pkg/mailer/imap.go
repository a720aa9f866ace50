package mailer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/smtp"
	"strings"
	"time"

	msgdomain "supportmail-backend/internal/message/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// IMAPConfig holds connection settings for a generic IMAP/SMTP mailbox
type IMAPConfig struct {
	Server     string
	Port       int
	SMTPServer string
	SMTPPort   int
	Address    string
	Password   string
}

// IMAPSource implements Source against a generic IMAP server, with SMTP for
// outbound mail
type IMAPSource struct {
	cfg IMAPConfig
}

// NewIMAPSource creates a new IMAP-backed mail source
func NewIMAPSource(cfg IMAPConfig) *IMAPSource {
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.SMTPServer == "" {
		cfg.SMTPServer = cfg.Server
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	return &IMAPSource{cfg: cfg}
}

// connect dials the IMAP server and selects INBOX
func (s *IMAPSource) connect() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial: %w", err)
	}

	if err := c.Login(s.cfg.Address, s.cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap select INBOX: %w", err)
	}
	return c, nil
}

// FetchUnread retrieves messages without the \Seen flag
func (s *IMAPSource) FetchUnread(ctx context.Context, max int) ([]msgdomain.Message, error) {
	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// Newest messages last in the search result; cap at max
	if max > 0 && len(ids) > max {
		ids = ids[len(ids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	// Peek so fetching does not set \Seen; MarkRead is an explicit step
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, section.FetchItem()}

	msgCh := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, msgCh)
	}()

	var messages []msgdomain.Message
	for msg := range msgCh {
		converted, err := convertIMAPMessage(msg, section)
		if err != nil {
			log.Printf("[IMAP] Failed to parse message %d: %v", msg.SeqNum, err)
			continue
		}
		messages = append(messages, converted)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	return messages, nil
}

// MarkRead sets the \Seen flag on the message with the given Message-Id
func (s *IMAPSource) MarkRead(ctx context.Context, externalID string) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Message-Id", externalID)
	ids, err := c.Search(criteria)
	if err != nil {
		return fmt.Errorf("imap search by Message-Id: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := c.Store(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("imap store \\Seen: %w", err)
	}
	return nil
}

// Send submits an outbound message over SMTP and returns the generated
// Message-Id
func (s *IMAPSource) Send(ctx context.Context, to, subject, body string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.cfg.SMTPServer)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.Address))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Message-Id: %s\r\n", messageID))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPServer, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Address, s.cfg.Password, s.cfg.SMTPServer)
	if err := smtp.SendMail(addr, auth, s.cfg.Address, []string{to}, []byte(msg.String())); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

// convertIMAPMessage maps a fetched IMAP message to the domain message
func convertIMAPMessage(msg *imap.Message, section *imap.BodySectionName) (msgdomain.Message, error) {
	if msg.Envelope == nil {
		return msgdomain.Message{}, fmt.Errorf("message has no envelope")
	}

	from := ""
	if len(msg.Envelope.From) > 0 {
		from = msg.Envelope.From[0].Address()
	}

	receivedAt := msg.InternalDate
	if receivedAt.IsZero() {
		receivedAt = msg.Envelope.Date
	}

	body := ""
	if r := msg.GetBody(section); r != nil {
		mr, err := mail.CreateReader(r)
		if err != nil {
			return msgdomain.Message{}, fmt.Errorf("create mail reader: %w", err)
		}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			if _, ok := part.Header.(*mail.InlineHeader); ok {
				data, err := io.ReadAll(part.Body)
				if err == nil && body == "" {
					body = string(data)
				}
			}
		}
	}

	return msgdomain.Message{
		ExternalID: msg.Envelope.MessageId,
		From:       from,
		Subject:    msg.Envelope.Subject,
		Body:       body,
		ReceivedAt: receivedAt,
		Labels:     []string{"INBOX"},
	}, nil
}
