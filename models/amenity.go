package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
)

type Amenity struct {
	ID          string        `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string        `json:"name" form:"name" gorm:"type:varchar(200);not null"`
	Icon        string        `json:"icon" form:"icon" gorm:"type:varchar(100)"`
	Description string        `json:"description" form:"description"`
	Category    string        `json:"category" form:"category" gorm:"type:varchar(100)"`
	IsActive    bool          `json:"is_active" form:"is_active"`
	SortOrder   int           `json:"sort_order" form:"sort_order"`
	CreatedAt   time.Time     `json:"created_at" form:"-"`
	RoomLinks   []RoomAmenity `json:"-" form:"-" gorm:"foreignKey:AmenityID;constraint:OnDelete:CASCADE"`
}

func (Amenity) TableName() string { return "amenities" }

func (a *Amenity) RecordID() string { return a.ID }
func (a *Amenity) Label() string    { return a.Name }

func (a *Amenity) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Category = strings.TrimSpace(a.Category)
}

func (a *Amenity) Validate() error {
	return required("name", a.Name)
}

func (a *Amenity) Columns() gateway.Row {
	return gateway.Row{
		"name":        a.Name,
		"icon":        a.Icon,
		"description": a.Description,
		"category":    a.Category,
		"is_active":   a.IsActive,
		"sort_order":  a.SortOrder,
	}
}
