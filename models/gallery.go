package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
)

var GalleryCategories = []string{"rooms", "dining", "amenities", "events"}

type GalleryImage struct {
	ID        string    `json:"id" form:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" form:"title" gorm:"type:varchar(300)"`
	Category  string    `json:"category" form:"category" gorm:"type:varchar(50);index"`
	ImageURL  string    `json:"image_url" form:"-" gorm:"type:varchar(2000)"`
	IsActive  bool      `json:"is_active" form:"is_active"`
	SortOrder int       `json:"sort_order" form:"sort_order"`
	CreatedAt time.Time `json:"created_at" form:"-"`
}

func (GalleryImage) TableName() string { return "gallery_images" }

func (g *GalleryImage) RecordID() string { return g.ID }
func (g *GalleryImage) Label() string    { return g.Title }

func (g *GalleryImage) Normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.Category = strings.ToLower(strings.TrimSpace(g.Category))
	if g.Category == "" {
		g.Category = GalleryCategories[0]
	}
}

func (g *GalleryImage) Validate() error {
	if err := required("title", g.Title); err != nil {
		return err
	}
	for _, c := range GalleryCategories {
		if c == g.Category {
			return nil
		}
	}
	return &FieldError{Field: "category", Message: "is not a gallery category"}
}

// Columns leaves image_url out, it is only written once the cover is stored
func (g *GalleryImage) Columns() gateway.Row {
	return gateway.Row{
		"title":      g.Title,
		"category":   g.Category,
		"is_active":  g.IsActive,
		"sort_order": g.SortOrder,
	}
}
