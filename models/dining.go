package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
	"cozyvile/utils"
)

type DiningOutlet struct {
	ID               string        `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string        `json:"name" form:"name" gorm:"type:varchar(200);not null"`
	Slug             string        `json:"slug" form:"slug" gorm:"type:varchar(200);uniqueIndex"`
	ShortDescription string        `json:"short_description" form:"short_description"`
	FullDescription  string        `json:"full_description" form:"full_description"`
	OpeningHours     string        `json:"opening_hours" form:"opening_hours" gorm:"type:varchar(200)"`
	IsActive         bool          `json:"is_active" form:"is_active"`
	SortOrder        int           `json:"sort_order" form:"sort_order"`
	CreatedAt        time.Time     `json:"created_at" form:"-"`
	Images           []DiningImage `json:"dining_images,omitempty" form:"-" gorm:"foreignKey:DiningID;constraint:OnDelete:CASCADE"`
}

type DiningImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DiningID  string    `json:"dining_id" gorm:"type:varchar(36);index;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(2000)"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (DiningOutlet) TableName() string { return "dining_outlets" }
func (DiningImage) TableName() string  { return "dining_images" }

func (d *DiningOutlet) RecordID() string { return d.ID }
func (d *DiningOutlet) Label() string    { return d.Name }

func (d *DiningOutlet) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Slug = utils.Slugify(d.Slug)
	if d.Slug == "" {
		d.Slug = utils.Slugify(d.Name)
	}
}

func (d *DiningOutlet) Validate() error {
	return required("name", d.Name)
}

func (d *DiningOutlet) Columns() gateway.Row {
	return gateway.Row{
		"name":              d.Name,
		"slug":              d.Slug,
		"short_description": d.ShortDescription,
		"full_description":  d.FullDescription,
		"opening_hours":     d.OpeningHours,
		"is_active":         d.IsActive,
		"sort_order":        d.SortOrder,
	}
}

func (d *DiningOutlet) Cover() string {
	if len(d.Images) == 0 {
		return ""
	}
	return d.Images[0].ImageURL
}
