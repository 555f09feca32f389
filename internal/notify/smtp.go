package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
)

// Mailer delivers alerts over SMTP, one message per recipient address.
type Mailer struct {
	Host     string
	Port     string
	From     string
	Password string

	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs an SMTP notifier.
func NewMailer(host, port, from, password string) *Mailer {
	return &Mailer{Host: host, Port: port, From: from, Password: password, sendMail: smtp.SendMail}
}

// Notify implements Notifier.
func (m *Mailer) Notify(ctx context.Context, recipients []string, alert Alert) error {
	send := m.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	addr := m.Host + ":" + m.Port

	subject := "Subject: Emergency Supply Request\n"
	msg := []byte(subject + "\n" + alert.Text())

	var errs []error
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := send(addr, auth, m.From, []string{to}, msg); err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
