// Package mailer delivers verification mail. The SMTP client is built
// once at startup and injected where needed.
package mailer

import (
	"strings"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, html string) error
}

// IsRejected reports whether a send failed because the receiving
// server refused the address (SMTP 550), as opposed to a transport or
// configuration problem.
func IsRejected(err error) bool {
	return err != nil && strings.Contains(err.Error(), "550")
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, username, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *smtpMailer) Send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}
