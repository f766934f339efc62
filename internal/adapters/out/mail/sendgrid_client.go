// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridClient implements the checkout's MailSender port.
type SendGridClient struct {
	apiKey string
	logger *zap.Logger
}

func NewSendGridClient(apiKey string, logger *zap.Logger) *SendGridClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridClient{apiKey: apiKey, logger: logger}
}

// Send sends a plain-text confirmation email. The HTML part is a minimal
// <pre> wrapper so clients that hide text/plain still render something.
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	fromEmail := sgmail.NewEmail("Savora", from)
	toEmail := sgmail.NewEmail("", to)

	htmlContent := fmt.Sprintf("<pre>%s</pre>", body)
	message := sgmail.NewSingleEmail(fromEmail, subject, toEmail, body, htmlContent)

	client := sendgrid.NewSendClient(c.apiKey)

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		c.logger.Warn("sendgrid send failed",
			zap.Int("status", response.StatusCode),
			zap.String("to", to))
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s",
			response.StatusCode, response.Body)
	}

	c.logger.Info("mail sent",
		zap.Int("status", response.StatusCode),
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}
