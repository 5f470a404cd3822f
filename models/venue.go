package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
	"cozyvile/utils"
)

// Venue is an event space, shown under /events
type Venue struct {
	ID               string       `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string       `json:"name" form:"name" gorm:"type:varchar(200);not null"`
	Slug             string       `json:"slug" form:"slug" gorm:"type:varchar(200);uniqueIndex"`
	Capacity         int          `json:"capacity" form:"capacity"`
	ShortDescription string       `json:"short_description" form:"short_description"`
	FullDescription  string       `json:"full_description" form:"full_description"`
	IsActive         bool         `json:"is_active" form:"is_active"`
	SortOrder        int          `json:"sort_order" form:"sort_order"`
	CreatedAt        time.Time    `json:"created_at" form:"-"`
	Images           []VenueImage `json:"venue_images,omitempty" form:"-" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
}

type VenueImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VenueID   string    `json:"venue_id" gorm:"type:varchar(36);index;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(2000)"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (Venue) TableName() string      { return "venues" }
func (VenueImage) TableName() string { return "venue_images" }

func (v *Venue) RecordID() string { return v.ID }
func (v *Venue) Label() string    { return v.Name }

func (v *Venue) Normalize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Slug = utils.Slugify(v.Slug)
	if v.Slug == "" {
		v.Slug = utils.Slugify(v.Name)
	}
}

func (v *Venue) Validate() error {
	if err := required("name", v.Name); err != nil {
		return err
	}
	if v.Capacity < 0 {
		return &FieldError{Field: "capacity", Message: "cannot be negative"}
	}
	return nil
}

func (v *Venue) Columns() gateway.Row {
	return gateway.Row{
		"name":              v.Name,
		"slug":              v.Slug,
		"capacity":          v.Capacity,
		"short_description": v.ShortDescription,
		"full_description":  v.FullDescription,
		"is_active":         v.IsActive,
		"sort_order":        v.SortOrder,
	}
}

func (v *Venue) Cover() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0].ImageURL
}
