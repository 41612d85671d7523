// Package email delivers transactional email through Resend.
package email

import (
	"context"
	"fmt"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender implements the EmailSender port with the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

var _ outbound.EmailSender = (*ResendSender)(nil)

// NewResendSender creates a sender from configuration
func NewResendSender(cfg *config.Config, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.Email.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.Email.FromName, cfg.Email.FromAddress),
		logger: logger.Named("email"),
	}
}

// Send delivers a single email
func (s *ResendSender) Send(ctx context.Context, msg outbound.EmailMessage) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("failed to send email",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("sending email: %w", err)
	}

	s.logger.Info("email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", sent.Id),
	)
	return nil
}
