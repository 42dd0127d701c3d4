package mailer

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Mailer submits plain-text mail over SMTP.
type Mailer struct {
	server   string
	username string
	password string
	from     string
	name     string
	insecure bool
}

type Option func(*Mailer)

func WithInsecure() Option {
	return func(m *Mailer) {
		m.insecure = true
	}
}

func WithSenderName(name string) Option {
	return func(m *Mailer) {
		m.name = name
	}
}

// New builds a Mailer for server ("host:port"), authenticating as username
// and sending from the given address.
func New(server, username, password, from string, opts ...Option) *Mailer {
	m := &Mailer{
		server:   server,
		username: username,
		password: password,
		from:     from,
		name:     "WorkMate",
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Configured reports whether enough settings are present to send mail.
func (m *Mailer) Configured() bool {
	return m != nil && m.server != "" && m.from != ""
}

func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("mailer is not configured")
	}

	auth := sasl.NewPlainClient("", m.username, m.password)

	var builder strings.Builder
	fmt.Fprintf(&builder, "To: %s\r\n", to)
	fmt.Fprintf(&builder, "From: %s <%s>\r\n", m.name, m.from)
	fmt.Fprintf(&builder, "MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&builder, "Subject: %s\r\n\r\n", subject)
	fmt.Fprintf(&builder, "%s\r\n", body)
	msg := strings.NewReader(builder.String())

	if !m.insecure {
		return smtp.SendMail(m.server, auth, m.from, []string{to}, msg)
	}

	c, err := smtp.Dial(m.server)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if err := c.Hello("workmate"); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.SendMail(m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
