package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/logger"
)

// sender abstracts the sendgrid client so tests can intercept requests.
type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client delivers transactional mail through Sendgrid.
type Client struct {
	sender sender
	from   string
	logg   *logger.Logger
}

// New returns a mail client, or nil when no API key is configured so callers
// can treat mail delivery as an optional dependency.
func New(cfg config.SendgridConfig, logg *logger.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &Client{
		sender: sendgrid.NewSendClient(cfg.APIKey),
		from:   cfg.DefaultFrom,
		logg:   logg,
	}
}

// Send delivers a plain-text message to a single recipient.
func (c *Client) Send(ctx context.Context, to, from, subject, body string) error {
	if from == "" {
		from = c.from
	}

	message := mail.NewSingleEmailPlainText(
		mail.NewEmail("", from),
		subject,
		mail.NewEmail("", to),
		body,
	)

	resp, err := c.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		rejection := fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
		if c.logg != nil {
			c.logg.Error(c.logg.WithField(ctx, "sendgrid_status", resp.StatusCode), "mail delivery rejected", rejection)
		}
		return rejection
	}
	return nil
}
