package models

import (
	"strings"

	"gorm.io/gorm"
)

// Init creates the tables for a self hosted database. The hosted service
// ships its own schema and row level security policies.
func Init(db *gorm.DB) error {
	return db.AutoMigrate(
		&Room{}, &RoomImage{},
		&DiningOutlet{}, &DiningImage{},
		&Venue{}, &VenueImage{},
		&GalleryImage{},
		&Amenity{}, &RoomAmenity{},
		&Testimonial{},
		&ContactMessage{},
		&NewsletterSubscriber{},
		&SiteSettings{},
	)
}

// FieldError is a missing or invalid form field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Message: "is required"}
	}
	return nil
}

// ImageLink is the common shape of the room, dining and venue image rows
type ImageLink struct {
	ID        string `json:"id"`
	ImageURL  string `json:"image_url"`
	Alt       string `json:"alt"`
	SortOrder int    `json:"sort_order"`
}
