package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// sesAPI is the part of the SES client the email service calls
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
	log        logrus.FieldLogger
}

var _ InviteMailer = (*EmailService)(nil)

// EmailConfig holds the settings for NewEmailService
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
	Debug      bool
}

// NewEmailService creates a new email service. Without a sender address the
// service is created disabled.
func NewEmailService(ctx context.Context, cfg EmailConfig, log *logrus.Logger) (*EmailService, error) {
	entry := log.WithField("component", "email")

	if cfg.FromEmail == "" {
		entry.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: entry}, nil
	}

	if cfg.Debug {
		entry.WithFields(logrus.Fields{
			"region":       cfg.AWSRegion,
			"from":         cfg.FromEmail,
			"from_name":    cfg.FromName,
			"app_base_url": cfg.AppBaseURL,
		}).Info("[DEBUG] Initializing email service with AWS SES")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	entry.WithFields(logrus.Fields{"from": cfg.FromEmail, "region": cfg.AWSRegion}).Info("Email service enabled")

	return newEmailService(sesv2.NewFromConfig(awsCfg), cfg, entry), nil
}

func newEmailService(client sesAPI, cfg EmailConfig, log logrus.FieldLogger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: cfg.AppBaseURL,
		enabled:    true,
		debug:      cfg.Debug,
		log:        log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendFamilyInviteEmail sends a family group invite code
func (s *EmailService) SendFamilyInviteEmail(ctx context.Context, toEmail, inviterName, groupName, inviteCode string) error {
	if !s.enabled {
		s.log.WithField("to", toEmail).Info("Skipping email send (service disabled): family invite")
		return nil
	}

	subject := fmt.Sprintf("%s invited you to the %s family on GiftCircle", inviterName, groupName)
	joinLink := fmt.Sprintf("%s/join?code=%s", s.appBaseURL, inviteCode)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #c0392b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.code { font-size: 28px; letter-spacing: 6px; font-weight: bold; text-align: center; margin: 20px 0; }
		.button { display: inline-block; padding: 12px 30px; background-color: #c0392b; color: white; text-decoration: none; border-radius: 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>You're invited!</h1>
		</div>
		<div class="content">
			<p>%s has invited you to join the <strong>%s</strong> family group on GiftCircle, where you can share wishlists and coordinate gifts.</p>
			<p>Your invite code:</p>
			<p class="code">%s</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Join the family</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from GiftCircle. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(inviterName), html.EscapeString(groupName), inviteCode, joinLink)

	textBody := fmt.Sprintf(`%s has invited you to join the %s family group on GiftCircle.

Your invite code: %s

Join here: %s

---
This is an automated email from GiftCircle. Please do not reply.
`, inviterName, groupName, inviteCode, joinLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if s.debug {
		s.log.WithFields(logrus.Fields{
			"from":       fromAddress,
			"to":         toEmail,
			"html_bytes": len(htmlBody),
			"text_bytes": len(textBody),
		}).Info("[DEBUG] Calling SES SendEmail API")
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	entry := s.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject})
	if result != nil && result.MessageId != nil {
		entry = entry.WithField("message_id", *result.MessageId)
	}
	entry.Info("Email sent successfully")
	return nil
}
