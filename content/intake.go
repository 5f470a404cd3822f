package content

import (
	"context"
	"log"
	"strings"

	"cozyvile/gateway"
	"cozyvile/models"
	"cozyvile/utils"
)

const (
	MessageSubscribed        = "Thanks for subscribing!"
	MessageAlreadySubscribed = "You are already subscribed"
	MessageContactReceived   = "Thank you! Your message has been sent, we will get back to you shortly."
	MessageInvalidEmail      = "Please enter a valid email"
)

// Notifier tells the hotel about a new contact message
type Notifier interface {
	NotifyContact(ctx context.Context, msg *models.ContactMessage) error
}

type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Intake takes the public form submissions, always through the public handle
type Intake struct {
	access   *gateway.Access
	notifier Notifier
}

// NewIntake accepts a nil notifier
func NewIntake(access *gateway.Access, notifier Notifier) *Intake {
	return &Intake{access: access, notifier: notifier}
}

func (in *Intake) Subscribe(ctx context.Context, email string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !models.ValidEmail(email) {
		return Result{}, invalid("email", MessageInvalidEmail)
	}
	err := in.access.Public().Append(ctx, "newsletter_subscribers", gateway.Row{"email": email})
	if gateway.IsUniqueViolation(err) {
		return Result{OK: true, Message: MessageAlreadySubscribed}, nil
	}
	if err != nil {
		return Result{}, remote("subscribe", err)
	}
	log.Printf("New newsletter subscriber")
	return Result{OK: true, Message: MessageSubscribed}, nil
}

func (in *Intake) Contact(ctx context.Context, msg *models.ContactMessage) (Result, error) {
	for _, field := range []*string{&msg.FirstName, &msg.LastName, &msg.Email, &msg.Phone, &msg.Subject, &msg.Category, &msg.Message} {
		*field = strings.TrimSpace(utils.StripTags(*field))
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return Result{}, validationError(err)
	}
	if err := in.access.Public().Append(ctx, "contact_messages", msg.Columns()); err != nil {
		return Result{}, remote("send message", err)
	}
	if in.notifier != nil {
		if err := in.notifier.NotifyContact(ctx, msg); err != nil {
			log.Printf("Contact notification failed: %v", err)
		}
	}
	return Result{OK: true, Message: MessageContactReceived}, nil
}
