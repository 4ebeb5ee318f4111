package notifier

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shrimpsizemoose/trekker/logger"
)

// EmailSender delivers processing notices to submitters.
type EmailSender interface {
	Send(to, subject, body string) error
}

type SendgridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendgridSender(key, fromName, fromEmail string) *SendgridSender {
	return &SendgridSender{
		client: sendgrid.NewSendClient(key),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendgridSender) Send(to, subject, body string) error {
	message := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail("", to), body, body)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}
	return nil
}

// ConsoleSender writes notices to the log instead of sending them.
// Used in dev setups and tests.
type ConsoleSender struct{}

func (ConsoleSender) Send(to, subject, body string) error {
	logger.Info.Printf("Email to %s: %s\n%s", to, subject, body)
	return nil
}
