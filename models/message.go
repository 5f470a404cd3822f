package models

import (
	"regexp"
	"strings"
	"time"

	"cozyvile/gateway"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is the coarse shape check used by the public forms
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type ContactMessage struct {
	ID        string    `json:"id" form:"-" gorm:"primaryKey;type:varchar(36)"`
	FirstName string    `json:"first_name" form:"first_name" gorm:"type:varchar(100)"`
	LastName  string    `json:"last_name" form:"last_name" gorm:"type:varchar(100)"`
	Email     string    `json:"email" form:"email" gorm:"type:varchar(300)"`
	Phone     string    `json:"phone" form:"phone" gorm:"type:varchar(50)"`
	Subject   string    `json:"subject" form:"subject" gorm:"type:varchar(300)"`
	Category  string    `json:"category" form:"category" gorm:"type:varchar(50)"`
	Message   string    `json:"message" form:"message"`
	CreatedAt time.Time `json:"created_at" form:"-"`
}

func (ContactMessage) TableName() string { return "contact_messages" }

func (m *ContactMessage) RecordID() string { return m.ID }

func (m *ContactMessage) Label() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m *ContactMessage) Normalize() {
	m.Email = strings.TrimSpace(m.Email)
	if m.Category == "" {
		m.Category = "general"
	}
}

func (m *ContactMessage) Validate() error {
	if err := required("first_name", m.FirstName); err != nil {
		return err
	}
	if err := required("email", m.Email); err != nil {
		return err
	}
	if !ValidEmail(m.Email) {
		return &FieldError{Field: "email", Message: "is not a valid e-mail address"}
	}
	return required("message", m.Message)
}

func (m *ContactMessage) Columns() gateway.Row {
	return gateway.Row{
		"first_name": m.FirstName,
		"last_name":  m.LastName,
		"email":      m.Email,
		"phone":      m.Phone,
		"subject":    m.Subject,
		"category":   m.Category,
		"message":    m.Message,
	}
}

type NewsletterSubscriber struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" form:"email" gorm:"type:varchar(300);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (NewsletterSubscriber) TableName() string { return "newsletter_subscribers" }
