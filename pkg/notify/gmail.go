package notify

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends through the Gmail API as the account owning the
// refresh token
type GmailMailer struct {
	Service *gmail.Service
}

func NewGmailMailer(ctx context.Context, clientID string, clientSecret string, refreshToken string) (*GmailMailer, error) {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	tokenSource := config.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now(),
	})

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailMailer{Service: service}, nil
}

func (m *GmailMailer) Send(ctx context.Context, message *Message) error {
	body, err := message.Bytes()
	if err != nil {
		return err
	}

	sent, err := m.Service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(body),
	}).Context(ctx).Do()
	if err != nil {
		return err
	}

	log.Info().Str("id", sent.Id).Strs("to", message.To).Str("subject", message.Subject).Msg("Email sent through Gmail")

	return nil
}
