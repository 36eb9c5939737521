package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"rolodex/internal/config"
)

// Notifier delivers verification codes to users.
type Notifier interface {
	SendOTPEmail(ctx context.Context, email, name, code string) error
}

// NewNotifier picks the mail transport from config. SES is the production
// driver; SMTP covers local and self-hosted setups.
func NewNotifier(cfg *config.MailConfig, logger *slog.Logger) (Notifier, error) {
	switch cfg.Driver {
	case "ses":
		return NewSESNotifier(cfg, logger)
	case "smtp":
		return NewSMTPNotifier(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

const otpEmailSubject = "Your verification code"

func otpEmailHTML(name, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .code { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; padding: 16px; background-color: #f8f9fa; border-radius: 4px; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <p>Hi %s,</p>
        <p>Use this code to verify your email address:</p>
        <div class="code">%s</div>
        <p>The code expires in 10 minutes. Requesting a new code invalidates this one.</p>
        <div class="footer">
            <p>If you didn't create an account, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`, name, code)
}

func otpEmailText(name, code string) string {
	return fmt.Sprintf("Hi %s,\n\nYour verification code is: %s\n\nThe code expires in 10 minutes. If you didn't create an account, ignore this email.\n", name, code)
}

// SESNotifier sends mail through AWS SES.
type SESNotifier struct {
	client      *ses.Client
	fromAddress string
	logger      *slog.Logger
}

func NewSESNotifier(cfg *config.MailConfig, logger *slog.Logger) (*SESNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		logger:      logger,
	}, nil
}

func (s *SESNotifier) SendOTPEmail(ctx context.Context, email, name, code string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(otpEmailSubject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(otpEmailHTML(name, code)),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(otpEmailText(name, code)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.logger.Error("failed to send verification email via SES", slog.Any("error", err))
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info("verification email sent", slog.String("driver", "ses"))
	return nil
}

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

func NewSMTPNotifier(cfg *config.MailConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.FromAddress,
		logger:   logger,
	}
}

func (s *SMTPNotifier) SendOTPEmail(ctx context.Context, email, name, code string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + email + "\r\n")
	msg.WriteString("Subject: " + otpEmailSubject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(otpEmailHTML(name, code))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{email}, []byte(msg.String())); err != nil {
		s.logger.Error("failed to send verification email via SMTP", slog.Any("error", err))
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info("verification email sent", slog.String("driver", "smtp"))
	return nil
}
