package models

import (
	"strings"
	"time"

	"cozyvile/gateway"
)

const DefaultHotelName = "Cozy Vile Hotel"

// SiteSettings is a singleton row
type SiteSettings struct {
	ID            string    `json:"id,omitempty" form:"id" gorm:"primaryKey;type:varchar(36)"`
	HotelName     string    `json:"hotel_name" form:"hotel_name" gorm:"type:varchar(200)"`
	LogoURL       string    `json:"logo_url" form:"logo_url" gorm:"type:varchar(2000)"`
	HeroImageURL  string    `json:"hero_image_url" form:"hero_image_url" gorm:"type:varchar(2000)"`
	Address       string    `json:"address" form:"address"`
	Phone         string    `json:"phone" form:"phone" gorm:"type:varchar(50)"`
	Email         string    `json:"email" form:"email" gorm:"type:varchar(300)"`
	MapEmbedURL   string    `json:"map_embed_url" form:"map_embed_url" gorm:"type:varchar(2000)"`
	InstagramURL  string    `json:"instagram_url" form:"instagram_url" gorm:"type:varchar(2000)"`
	FacebookURL   string    `json:"facebook_url" form:"facebook_url" gorm:"type:varchar(2000)"`
	AdminPassword string    `json:"admin_password,omitempty" form:"-" gorm:"type:varchar(200)"`
	CreatedAt     time.Time `json:"created_at" form:"-"`
}

func (SiteSettings) TableName() string { return "site_settings" }

// PublicColumns is the select list of the public read, it never includes
// the admin password hash
var PublicColumns = []string{
	"id", "hotel_name", "logo_url", "hero_image_url", "address", "phone",
	"email", "map_embed_url", "instagram_url", "facebook_url", "created_at",
}

func DefaultSettings() SiteSettings {
	return SiteSettings{HotelName: DefaultHotelName}
}

func (s *SiteSettings) Normalize() {
	s.HotelName = strings.TrimSpace(s.HotelName)
	if s.HotelName == "" {
		s.HotelName = DefaultHotelName
	}
	s.Email = strings.TrimSpace(s.Email)
}

func (s *SiteSettings) Validate() error {
	if s.Email != "" && !ValidEmail(s.Email) {
		return &FieldError{Field: "email", Message: "is not a valid e-mail address"}
	}
	return nil
}

// Columns excludes admin_password, which is only written by a password change
func (s *SiteSettings) Columns() gateway.Row {
	return gateway.Row{
		"hotel_name":     s.HotelName,
		"logo_url":       s.LogoURL,
		"hero_image_url": s.HeroImageURL,
		"address":        s.Address,
		"phone":          s.Phone,
		"email":          s.Email,
		"map_embed_url":  s.MapEmbedURL,
		"instagram_url":  s.InstagramURL,
		"facebook_url":   s.FacebookURL,
	}
}
