package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	msgdomain "supportmail-backend/internal/message/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSource implements Source against the Gmail API for the configured
// support mailbox
type GmailSource struct {
	clientID     string
	clientSecret string
	accessToken  string
	refreshToken string
	fromAddress  string
}

// NewGmailSource creates a new Gmail-backed mail source
func NewGmailSource(clientID, clientSecret, accessToken, refreshToken, fromAddress string) *GmailSource {
	return &GmailSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		fromAddress:  fromAddress,
	}
}

// service creates a Gmail service with the mailbox's tokens
func (s *GmailSource) service(ctx context.Context) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		TokenType:    "Bearer",
	}

	// Force a refresh path when a refresh token is available
	if s.refreshToken != "" {
		token.Expiry = time.Now()
	}

	oauthCfg := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	client := oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, token))
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// FetchUnread retrieves unread inbox messages
func (s *GmailSource) FetchUnread(ctx context.Context, max int) ([]msgdomain.Message, error) {
	srv, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	listResp, err := srv.Users.Messages.List("me").
		Q("is:unread in:inbox").
		MaxResults(int64(max)).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list unread messages: %w", err)
	}

	messages := make([]msgdomain.Message, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		full, err := srv.Users.Messages.Get("me", ref.Id).Format("full").Do()
		if err != nil {
			log.Printf("[Gmail] Failed to fetch message %s: %v", ref.Id, err)
			continue
		}
		messages = append(messages, convertGmailMessage(full))
	}
	return messages, nil
}

// MarkRead removes the UNREAD label from a message
func (s *GmailSource) MarkRead(ctx context.Context, externalID string) error {
	srv, err := s.service(ctx)
	if err != nil {
		return err
	}

	_, err = srv.Users.Messages.Modify("me", externalID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Do()
	if err != nil {
		return fmt.Errorf("unable to mark message as read: %w", err)
	}
	return nil
}

// Send submits an outbound message through the Gmail API
func (s *GmailSource) Send(ctx context.Context, to, subject, body string) (string, error) {
	srv, err := s.service(ctx)
	if err != nil {
		return "", err
	}

	var raw strings.Builder
	raw.WriteString(fmt.Sprintf("From: %s\r\n", s.fromAddress))
	raw.WriteString(fmt.Sprintf("To: %s\r\n", to))
	raw.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(body)

	sent, err := srv.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw.String())),
	}).Do()
	if err != nil {
		return "", fmt.Errorf("unable to send message: %w", err)
	}
	return sent.Id, nil
}

// convertGmailMessage maps a Gmail API message to the domain message
func convertGmailMessage(msg *gmail.Message) msgdomain.Message {
	from := getHeader(msg.Payload, "From")
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	receivedAt := time.Now()
	if msg.InternalDate > 0 {
		receivedAt = time.UnixMilli(msg.InternalDate)
	}

	return msgdomain.Message{
		ExternalID: msg.Id,
		From:       from,
		Subject:    getHeader(msg.Payload, "Subject"),
		Body:       extractBody(msg.Payload),
		ReceivedAt: receivedAt,
		Labels:     msg.LabelIds,
	}
}

func getHeader(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree preferring text/plain parts
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(decoded)
		}
	}

	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}

	// Last resort: whatever the top-level body carries
	if payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(decoded)
		}
	}
	return ""
}
