package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/suicidekings/carclub/internal/logger"
)

// Service sends membership notification emails. Sends are best-effort;
// failures are logged and never propagated, so a mail outage cannot make
// webhook processing fail.
type Service struct {
	client *Client
	logger *logger.Logger
}

// NewService creates a new email service
func NewService(client *Client, logger *logger.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// SendMembershipActivated notifies a member that their subscription is live.
func (s *Service) SendMembershipActivated(ctx context.Context, to, chapterName string) {
	subject := fmt.Sprintf("Welcome to %s", chapterName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour membership with %s is now active. See you at the next meet.\n",
		extractNameFromEmail(to), chapterName,
	)
	s.send(ctx, to, subject, body)
}

// SendPaymentFailed notifies a member that a renewal payment did not go
// through and their membership is past due.
func (s *Service) SendPaymentFailed(ctx context.Context, to, chapterName string) {
	subject := fmt.Sprintf("Payment issue with your %s membership", chapterName)
	body := fmt.Sprintf(
		"Hi %s,\n\nA membership payment for %s failed. Please update your payment method to keep your membership active.\n",
		extractNameFromEmail(to), chapterName,
	)
	s.send(ctx, to, subject, body)
}

// SendRefundProcessed confirms a refund back to the member.
func (s *Service) SendRefundProcessed(ctx context.Context, to, chapterName string, amount decimal.Decimal, currency string) {
	subject := fmt.Sprintf("Your refund from %s", chapterName)
	body := fmt.Sprintf(
		"Hi %s,\n\nA refund of %s %s from %s has been processed. It may take a few days to appear on your statement.\n",
		extractNameFromEmail(to), amount.StringFixed(2), strings.ToUpper(currency), chapterName,
	)
	s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) {
	if !s.client.IsEnabled() {
		s.logger.Debugw("email client is disabled, skipping email send",
			"to", to,
			"subject", subject,
		)
		return
	}

	messageID, err := s.client.SendEmail(ctx, s.client.GetFromAddress(), to, subject, "", body)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", to,
			"subject", subject,
		)
		return
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", to,
		"subject", subject,
	)
}

// extractNameFromEmail extracts the name part from an email address
// e.g., "john.doe@example.com" -> "john.doe"
func extractNameFromEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "there"
}
