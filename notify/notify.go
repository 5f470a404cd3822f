// Package notify sends e-mail notifications to the hotel staff
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"cozyvile/models"

	"github.com/resend/resend-go/v2"
)

const NotificationTypeContact = "contact"

type Notification struct {
	Type    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New message from {{.Label}}</h2>
<p><b>E-mail:</b> {{.Email}}{{if .Phone}}<br><b>Phone:</b> {{.Phone}}{{end}}<br><b>Category:</b> {{.Category}}</p>
{{if .Subject}}<p><b>Subject:</b> {{.Subject}}</p>{{end}}
<p style="white-space: pre-wrap">{{.Message}}</p>`))

// ResendNotifier delivers notifications through the Resend API
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     []string
}

func NewResendNotifier(apiKey, from string, to []string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *ResendNotifier) NotifyContact(ctx context.Context, msg *models.ContactMessage) error {
	buf := bytes.Buffer{}
	if err := contactTemplate.Execute(&buf, msg); err != nil {
		return err
	}
	subject := "New contact message"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	return n.Send(ctx, &Notification{
		Type:    NotificationTypeContact,
		To:      n.to,
		ReplyTo: msg.Email,
		Subject: subject,
		HTML:    buf.String(),
	})
}

func (n *ResendNotifier) Send(ctx context.Context, notification *Notification) error {
	if len(notification.To) == 0 {
		return fmt.Errorf("notification %q has no recipients", notification.Type)
	}
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      notification.To,
		Subject: notification.Subject,
		Html:    notification.HTML,
	}
	if notification.ReplyTo != "" {
		params.ReplyTo = notification.ReplyTo
	}
	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Notification %s to %s, error: %v", notification.Type, strings.Join(notification.To, ","), err)
		return fmt.Errorf("resend: %w", err)
	}
	log.Printf("Notification %s sent, id %s", notification.Type, sent.Id)
	return nil
}
