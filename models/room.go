package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
	"cozyvile/utils"
)

const (
	RoomTypeRoom  = "room"
	RoomTypeSuite = "suite"
)

type Room struct {
	ID               string      `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string      `json:"name" form:"name" gorm:"type:varchar(200);not null"`
	Slug             string      `json:"slug" form:"slug" gorm:"type:varchar(200);uniqueIndex"`
	Type             string      `json:"type" form:"type" gorm:"type:varchar(20)"`
	ShortDescription string      `json:"short_description" form:"short_description"`
	FullDescription  string      `json:"full_description" form:"full_description"`
	PriceFrom        float64     `json:"price_from" form:"price_from"`
	Size             string      `json:"size" form:"size" gorm:"type:varchar(50)"`
	Guests           int         `json:"guests" form:"guests"`
	Beds             int         `json:"beds" form:"beds"`
	IsFeatured       bool        `json:"is_featured" form:"is_featured"`
	IsActive         bool        `json:"is_active" form:"is_active"`
	SortOrder        int         `json:"sort_order" form:"sort_order"`
	CreatedAt        time.Time   `json:"created_at" form:"-"`
	Images           []RoomImage `json:"room_images,omitempty" form:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	// AmenityIDs is only set by the admin form, nil leaves the links as they are
	AmenityIDs   []string      `json:"amenity_ids,omitempty" form:"amenity_ids" gorm:"-"`
	AmenityLinks []RoomAmenity `json:"-" form:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

type RoomImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RoomID    string    `json:"room_id" gorm:"type:varchar(36);index;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(2000)"`
	Alt       string    `json:"alt" gorm:"type:varchar(300)"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomAmenity links a room to one of the hotel amenities
type RoomAmenity struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RoomID    string    `json:"room_id" gorm:"type:varchar(36);uniqueIndex:idx_room_amenity;not null"`
	AmenityID string    `json:"amenity_id" gorm:"type:varchar(36);uniqueIndex:idx_room_amenity;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Room) TableName() string        { return "rooms" }
func (RoomImage) TableName() string   { return "room_images" }
func (RoomAmenity) TableName() string { return "room_amenities" }

func (r *Room) RecordID() string { return r.ID }
func (r *Room) Label() string    { return r.Name }

func (r *Room) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = utils.Slugify(r.Slug)
	if r.Slug == "" {
		r.Slug = utils.Slugify(r.Name)
	}
	if r.Type == "" {
		r.Type = RoomTypeRoom
	}
}

func (r *Room) Validate() error {
	if err := required("name", r.Name); err != nil {
		return err
	}
	if r.Type != RoomTypeRoom && r.Type != RoomTypeSuite {
		return &FieldError{Field: "type", Message: "must be room or suite"}
	}
	if r.PriceFrom < 0 {
		return &FieldError{Field: "price_from", Message: "cannot be negative"}
	}
	if r.Guests < 0 || r.Beds < 0 {
		return &FieldError{Field: "guests", Message: "cannot be negative"}
	}
	return nil
}

// Columns are the editable columns written on create and save
func (r *Room) Columns() gateway.Row {
	return gateway.Row{
		"name":              r.Name,
		"slug":              r.Slug,
		"type":              r.Type,
		"short_description": r.ShortDescription,
		"full_description":  r.FullDescription,
		"price_from":        r.PriceFrom,
		"size":              r.Size,
		"guests":            r.Guests,
		"beds":              r.Beds,
		"is_featured":       r.IsFeatured,
		"is_active":         r.IsActive,
		"sort_order":        r.SortOrder,
	}
}

// Cover is the first image by sort order, if any
func (r *Room) Cover() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0].ImageURL
}
