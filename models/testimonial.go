package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
)

type Testimonial struct {
	ID        string    `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	GuestName string    `json:"guest_name" form:"guest_name" gorm:"type:varchar(200);not null"`
	Quote     string    `json:"quote" form:"quote"`
	Rating    int       `json:"rating" form:"rating"`
	IsActive  bool      `json:"is_active" form:"is_active"`
	SortOrder int       `json:"sort_order" form:"sort_order"`
	CreatedAt time.Time `json:"created_at" form:"-"`
}

func (Testimonial) TableName() string { return "testimonials" }

func (t *Testimonial) RecordID() string { return t.ID }
func (t *Testimonial) Label() string    { return t.GuestName }

func (t *Testimonial) Normalize() {
	t.GuestName = strings.TrimSpace(t.GuestName)
	t.Quote = strings.TrimSpace(t.Quote)
	if t.Rating == 0 {
		t.Rating = 5
	}
}

func (t *Testimonial) Validate() error {
	if err := required("guest_name", t.GuestName); err != nil {
		return err
	}
	if err := required("quote", t.Quote); err != nil {
		return err
	}
	if t.Rating < 1 || t.Rating > 5 {
		return &FieldError{Field: "rating", Message: "must be between 1 and 5"}
	}
	return nil
}

func (t *Testimonial) Columns() gateway.Row {
	return gateway.Row{
		"guest_name": t.GuestName,
		"quote":      t.Quote,
		"rating":     t.Rating,
		"is_active":  t.IsActive,
		"sort_order": t.SortOrder,
	}
}

// Stars renders the rating for templates
func (t *Testimonial) Stars() string {
	if t.Rating < 0 || t.Rating > 5 {
		return ""
	}
	return strings.Repeat("★", t.Rating) + strings.Repeat("☆", 5-t.Rating)
}
