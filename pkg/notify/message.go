package notify

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"
)

// Message is one HTML email
type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
}

// Bytes renders the message as RFC 5322 text with a quoted-printable HTML
// body
func (m *Message) Bytes() ([]byte, error) {
	var buffer bytes.Buffer

	headers := [][2]string{
		{"From", m.From},
		{"To", strings.Join(m.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", m.Subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
		{"Content-Transfer-Encoding", "quoted-printable"},
	}
	for _, header := range headers {
		fmt.Fprintf(&buffer, "%s: %s\r\n", header[0], header[1])
	}
	buffer.WriteString("\r\n")

	writer := quotedprintable.NewWriter(&buffer)
	if _, err := writer.Write([]byte(m.HTMLBody)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
