package worker

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/jhoicas/imanod-api/internal/application/ports"
)

// SMTPMailer envía correos de texto plano por SMTP con autenticación PLAIN.
type SMTPMailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

// NewSMTPMailer construye el mailer. Sin usuario el envío se hace sin autenticación.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		user:     user,
		password: password,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", host, port),
	}
}

var _ ports.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("mailer: sin destinatarios")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	return nil
}
