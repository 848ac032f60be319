package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultSMTPPort = 25

// SMTPMailer relays through an unauthenticated SMTP server and upgrades to
// TLS when the server offers STARTTLS
type SMTPMailer struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func (m *SMTPMailer) Send(ctx context.Context, message *Message) error {
	port := m.Port
	if port == 0 {
		port = DefaultSMTPPort
	}
	timeout := m.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	body, err := message.Bytes()
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.Host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if err := client.Mail(message.From); err != nil {
		return err
	}
	for _, recipient := range message.To {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(body); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	log.Info().Strs("to", message.To).Str("subject", message.Subject).Msg("Email sent")

	return client.Quit()
}
