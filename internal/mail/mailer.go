package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/luisale89/storage-manager-sub000/internal/config"
)

// ErrMailUnavailable means the SMTP relay rejected or never received the
// message. Endpoints that create rows around a send roll those rows back.
var ErrMailUnavailable = errors.New("mail service unavailable")

type Mailer struct {
	client *gomail.Client
	from   string
}

func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}
	return nil
}

func (m *Mailer) SendVerificationCode(ctx context.Context, to string, code int) error {
	body := fmt.Sprintf("Your verification code is %06d. It expires shortly.", code)
	return m.send(ctx, to, "Verify your email", body)
}

func (m *Mailer) SendInvitation(ctx context.Context, to, companyName string) error {
	body := fmt.Sprintf(
		"You have been invited to join %s. Sign up or log in with this email address to accept.",
		companyName)
	return m.send(ctx, to, "You have been invited", body)
}
