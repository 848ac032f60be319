package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
	TransportNone  = "none"
)

type Mailer interface {
	Send(ctx context.Context, message *Message) error
}

// Settings selects and configures a mail transport
type Settings struct {
	Transport string

	SMTPHost string
	SMTPPort int

	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
}

func NewMailer(ctx context.Context, settings Settings) (Mailer, error) {
	switch strings.ToLower(settings.Transport) {
	case TransportSMTP, "":
		return &SMTPMailer{
			Host: settings.SMTPHost,
			Port: settings.SMTPPort,
		}, nil
	case TransportGmail:
		return NewGmailMailer(ctx, settings.GmailClientID, settings.GmailClientSecret, settings.GmailRefreshToken)
	case TransportNone:
		return &DisabledMailer{}, nil
	}

	return nil, fmt.Errorf("unknown mail transport %q", settings.Transport)
}

// DisabledMailer only logs what would have been sent
type DisabledMailer struct{}

func (m *DisabledMailer) Send(_ context.Context, message *Message) error {
	log.Info().Str("subject", message.Subject).Strs("to", message.To).Msg("Email transport disabled, not sending")

	return nil
}
