package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/srm/internal/models"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, user *models.User) error
}

// SESClient is the part of the SES API used here.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   SESClient
	fromAddress string
	siteURL     string
	logger      *slog.Logger
}

// NewAWSSESEmailService loads the default AWS credential chain for region.
func NewAWSSESEmailService(ctx context.Context, region, fromAddress, siteURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSSESEmailServiceWithClient(ses.NewFromConfig(cfg), fromAddress, siteURL, logger), nil
}

func NewAWSSESEmailServiceWithClient(client SESClient, fromAddress, siteURL string, logger *slog.Logger) *AWSSESEmailService {
	return &AWSSESEmailService{
		sesClient:   client,
		fromAddress: fromAddress,
		siteURL:     siteURL,
		logger:      logger,
	}
}

// SendWelcomeEmail greets a newly registered user.
func (s *AWSSESEmailService) SendWelcomeEmail(ctx context.Context, user *models.User) error {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h1>Welcome, %s</h1>
    <p>Your account <strong>%s</strong> has been created. You can now record customers, their suppliers and supplier compliance details.</p>
    <p><a href="%s">Sign in</a></p>
    <p style="color: #666; font-size: 12px;">If you did not create this account, please contact your administrator.</p>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(user.Username), html.EscapeString(s.siteURL))

	textBody := fmt.Sprintf(`Welcome, %s

Your account %s has been created. You can now record customers, their suppliers and supplier compliance details.

Sign in: %s

If you did not create this account, please contact your administrator.
`, name, user.Username, s.siteURL)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Welcome to Supplier Relationship Management")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send welcome email via SES",
			slog.String("email", pkglogger.SanitizedEmail(user.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("welcome email sent",
		slog.String("email", pkglogger.SanitizedEmail(user.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogEmailService records the email it would have sent. Used when no SES
// region or sender is configured.
type LogEmailService struct {
	logger *slog.Logger
}

func NewLogEmailService(logger *slog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) SendWelcomeEmail(ctx context.Context, user *models.User) error {
	s.logger.Info("email delivery disabled, welcome email skipped",
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))
	return nil
}
