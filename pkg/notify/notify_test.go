package notify_test

import (
	"context"
	"mime"
	"net/mail"
	"strings"
	"testing"

	"github.com/licencecheck/licencecheck/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Bytes(t *testing.T) {
	message := &notify.Message{
		From:     "no-reply@example.com",
		To:       []string{"a@example.com", "b@example.com"},
		Subject:  "Driver Licence Change Report – 2024-01-10",
		HTMLBody: "<h2>Report</h2><p>D → DZ</p>",
	}

	raw, err := message.Bytes()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, message.Subject, subject)
	assert.Equal(t, "a@example.com, b@example.com", parsed.Header.Get("To"))
	assert.Contains(t, parsed.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "quoted-printable", parsed.Header.Get("Content-Transfer-Encoding"))
}

func TestNewMailer(t *testing.T) {
	ctx := context.Background()

	mailer, err := notify.NewMailer(ctx, notify.Settings{Transport: "SMTP", SMTPHost: "mail.example.com"})
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPMailer{}, mailer)

	mailer, err = notify.NewMailer(ctx, notify.Settings{Transport: "none"})
	require.NoError(t, err)
	assert.NoError(t, mailer.Send(ctx, &notify.Message{Subject: "x"}))

	_, err = notify.NewMailer(ctx, notify.Settings{Transport: "pigeon"})
	assert.Error(t, err)
}
