package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"becomebetter/internal/models"
)

// EmailSender is the subset of the SES client used to deliver mail
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, logger *zap.Logger, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return NewDisabledEmailService(logger), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return NewEmailServiceWithSender(logger, sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

// NewDisabledEmailService returns a service that logs and skips every send
func NewDisabledEmailService(logger *zap.Logger) *EmailService {
	return &EmailService{enabled: false, logger: logger}
}

// NewEmailServiceWithSender builds an enabled service around an existing sender
func NewEmailServiceWithSender(logger *zap.Logger, sender EmailSender, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     sender,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimSuffix(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

const emailStyles = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
		.content { padding: 20px; }
		.insight { background-color: #e7f3ff; padding: 15px; border-radius: 4px; margin: 20px 0; }
		.button { display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 4px; margin-top: 20px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }`

// wrapHTML renders the shared email layout around an already escaped body
func wrapHTML(heading, body string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
%s
		</div>
		<div class="footer">
			<p>This is an automated email from Become Better. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, emailStyles, heading, body)
}

// SendReminderEmail lists the goals still waiting for today's update
func (s *EmailService) SendReminderEmail(ctx context.Context, user models.User, pendingGoals []models.Goal) error {
	if !s.IsEnabled() {
		s.logger.Info("skipping reminder email (service disabled)", zap.String("to", user.Email))
		return nil
	}

	var htmlItems, textItems []string
	for _, goal := range pendingGoals {
		htmlItems = append(htmlItems, "- "+html.EscapeString(goal.Title))
		textItems = append(textItems, "- "+goal.Title)
	}

	name := user.DisplayName()
	subject := fmt.Sprintf("Reminder: Update Your Goals - %d Pending", len(pendingGoals))
	heading := fmt.Sprintf("Time to Update Your Goals, %s!", html.EscapeString(name))
	htmlBody := wrapHTML(heading, fmt.Sprintf(`			<p>Don't forget to update your progress on these goals today:</p>
			<p>%s</p>
			<p>Consistency is key to becoming better. Keep up the great work!</p>
			<a href="%s/" class="button">Update Goals</a>`, strings.Join(htmlItems, "<br>"), s.appBaseURL))

	textBody := fmt.Sprintf(`Time to Update Your Goals, %s!

Don't forget to update your progress on these goals today:
%s

Consistency is key to becoming better. Keep up the great work!

Update your goals: %s/
`, name, strings.Join(textItems, "\n"), s.appBaseURL)

	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

// SendInsightEmail delivers a freshly generated insight
func (s *EmailService) SendInsightEmail(ctx context.Context, user models.User, goal models.Goal, content string) error {
	if !s.IsEnabled() {
		s.logger.Info("skipping insight email (service disabled)", zap.String("to", user.Email))
		return nil
	}

	link := fmt.Sprintf("%s/goals/%d", s.appBaseURL, goal.ID)
	subject := "New Insight: " + goal.Title
	heading := "New Insight for Your Goal: " + html.EscapeString(goal.Title)
	escaped := strings.ReplaceAll(html.EscapeString(content), "\n", "<br>")
	htmlBody := wrapHTML(heading, fmt.Sprintf(`			<div class="insight">
				%s
			</div>
			<a href="%s">View Full Details</a>`, escaped, link))

	textBody := fmt.Sprintf("New Insight for Your Goal: %s\n\n%s\n\nView full details: %s\n", goal.Title, content, link)

	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.IsEnabled() {
		s.logger.Info("skipping password reset email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	if s.debug {
		s.logger.Debug("reset link generated", zap.String("link", resetLink))
	}

	subject := "Reset Your Become Better Password"
	htmlBody := wrapHTML("Password Reset Request", fmt.Sprintf(`			<p>Hi %s,</p>
			<p>We received a request to reset your Become Better password.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Reset Password</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>This link will expire in 1 hour.</strong></p>
			<p>If you didn't request a password reset, you can safely ignore this email.</p>`,
		html.EscapeString(toName), resetLink, resetLink))

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset your Become Better password.

Click the link below to reset your password:
%s

This link will expire in 1 hour.

If you didn't request a password reset, you can safely ignore this email.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.IsEnabled() {
		s.logger.Info("skipping welcome email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	subject := "Welcome to Become Better!"
	htmlBody := wrapHTML("Welcome to Become Better!", fmt.Sprintf(`			<p>Hi %s,</p>
			<p>Thank you for creating your account. Here's what you can do next:</p>
			<ul>
				<li>Create your first goal</li>
				<li>Check in every day to build a streak</li>
				<li>Pick a reminder time that suits you</li>
				<li>Unlock personal insights after a week of updates</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Get Started</a>
			</p>`, html.EscapeString(toName), s.appBaseURL))

	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your account. Here's what you can do next:
- Create your first goal
- Check in every day to build a streak
- Pick a reminder time that suits you
- Unlock personal insights after a week of updates

Get started: %s/login
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		s.logger.Debug("sending email",
			zap.String("from", fromAddress),
			zap.String("to", toEmail),
			zap.String("subject", subject),
			zap.Int("html_bytes", len(htmlBody)),
			zap.Int("text_bytes", len(textBody)),
		)
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}
