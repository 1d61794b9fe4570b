package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrRejected marks a send the provider refused for good. Retrying the same
// message will not succeed.
var ErrRejected = errors.New("email rejected")

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs messages. It is used when no mail provider is set up.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("email not sent: no mail provider configured")
	return nil
}

// SendGridMailer sends through the SendGrid v3 mail API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer builds a mailer for apiKey sending as from. An empty
// host targets the public SendGrid API.
func NewSendGridMailer(apiKey, from, host string) *SendGridMailer {
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = rest.Post
	return &SendGridMailer{
		client: &sendgrid.Client{Request: req},
		from:   mail.NewEmail("", from),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail(msg.ToName, msg.ToEmail), msg.Text, "")
	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.ToEmail, err)
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: sendgrid refused email to %s: status %d: %s", ErrRejected, msg.ToEmail, resp.StatusCode, resp.Body)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid failed to accept email to %s: status %d: %s", msg.ToEmail, resp.StatusCode, resp.Body)
	}
	return nil
}
