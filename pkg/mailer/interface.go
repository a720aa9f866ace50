package mailer

import (
	"context"
	"fmt"

	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/pkg/config"
)

// Source is the mail collaborator contract consumed by the pipeline.
// Implement this interface to add new mail providers (Gmail, IMAP, etc.)
type Source interface {
	// FetchUnread retrieves up to max unread messages from the support inbox
	FetchUnread(ctx context.Context, max int) ([]msgdomain.Message, error)

	// MarkRead flags a fetched message as read. Best-effort: callers log
	// failures and move on.
	MarkRead(ctx context.Context, externalID string) error

	// Send submits an outbound message and returns its external message ID
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// NewSource creates a Source based on the config.
// This is the factory function - switch mail provider by changing
// config.MailProvider.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.MailProvider {
	case "gmail":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required for the gmail provider")
		}
		return NewGmailSource(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GmailAccessToken, cfg.GmailRefreshToken, cfg.SupportAddress), nil

	case "imap":
		if cfg.IMAPServer == "" || cfg.SupportAddress == "" {
			return nil, fmt.Errorf("IMAP_SERVER and SUPPORT_ADDRESS are required for the imap provider")
		}
		return NewIMAPSource(IMAPConfig{
			Server:     cfg.IMAPServer,
			Port:       cfg.IMAPPort,
			SMTPServer: cfg.SMTPServer,
			SMTPPort:   cfg.SMTPPort,
			Address:    cfg.SupportAddress,
			Password:   cfg.MailboxPassword,
		}), nil

	case "":
		return nil, fmt.Errorf("MAIL_PROVIDER not configured")

	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.MailProvider)
	}
}
