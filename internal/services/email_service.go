package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	pkglogger "github.com/catatan-app/catatan/pkg/logger"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPasswordChangedEmail(ctx context.Context, email string, changedAt time.Time) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendPasswordChangedEmail notifies the user that their account
// password was changed through the recovery flow.
func (s *AWSSESEmailService) SendPasswordChangedEmail(ctx context.Context, email string, changedAt time.Time) error {
	when := changedAt.UTC().Format(time.RFC1123)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .warning { background-color: #fff3cd; padding: 10px; border-left: 4px solid #ffc107; margin: 10px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your Password Was Changed</h1>
        </div>
        <div class="content">
            <p>Your account password was changed on %s using the security question recovery flow.</p>
            <div class="warning">
                <strong>Didn't do this?</strong> If you did not reset your password, your security answer may be compromised. Reset your password immediately and update your security question.
            </div>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, when)

	textBody := fmt.Sprintf(`Your Password Was Changed

Your account password was changed on %s using the security question recovery flow.

Didn't do this? If you did not reset your password, your security answer may be compromised. Reset your password immediately and update your security question.

This is an automated message. Please do not reply to this email.
`, when)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your password was changed"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send password changed email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("password changed email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("message_id", *result.MessageId))

	return nil
}

// NoopEmailService drops all mail. Used when email delivery is
// disabled in configuration.
type NoopEmailService struct {
	logger *slog.Logger
}

// NewNoopEmailService creates an email service that logs instead of sending
func NewNoopEmailService(logger *slog.Logger) *NoopEmailService {
	return &NoopEmailService{logger: logger}
}

func (s *NoopEmailService) SendPasswordChangedEmail(ctx context.Context, email string, changedAt time.Time) error {
	s.logger.Info("email delivery disabled, skipping password changed email",
		slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}
