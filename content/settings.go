package content

import (
	"context"
	"errors"
	"log"

	"cozyvile/gateway"
	"cozyvile/models"

	"golang.org/x/crypto/bcrypt"
)

const settingsTable = "site_settings"

// Settings manages the site_settings singleton
type Settings struct {
	access     *gateway.Access
	BcryptCost int
}

func NewSettings(access *gateway.Access) *Settings {
	return &Settings{access: access, BcryptCost: bcrypt.DefaultCost}
}

// Load reads the public columns of the first row, or defaults when there is none
func (s *Settings) Load(ctx context.Context) models.SiteSettings {
	var rows []models.SiteSettings
	err := s.access.Public().Select(ctx, gateway.Query{
		Table:   settingsTable,
		Columns: models.PublicColumns,
		Order:   []gateway.Order{gateway.Asc("created_at")},
		Limit:   1,
	}, &rows)
	if err != nil {
		log.Printf("Public read of %s failed: %v", settingsTable, err)
	}
	if len(rows) == 0 {
		return models.DefaultSettings()
	}
	return rows[0]
}

// currentID finds the id of the existing row, privileged first
func (s *Settings) currentID(ctx context.Context) string {
	rows := readWithFallback[models.SiteSettings](ctx, s.access, gateway.Query{
		Table:   settingsTable,
		Columns: []string{"id"},
		Order:   []gateway.Order{gateway.Asc("created_at")},
		Limit:   1,
	})
	if len(rows) == 0 {
		return ""
	}
	return rows[0].ID
}

// Save updates the existing row, or inserts the first one
func (s *Settings) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return validationError(err)
	}
	return s.write(ctx, settings.ID, settings.Columns(), func(id string) { settings.ID = id })
}

func (s *Settings) ChangePassword(ctx context.Context, password, confirm string) error {
	if password == "" {
		return invalid("password", "is required")
	}
	if confirm == "" {
		return invalid("confirm", "is required")
	}
	if password != confirm {
		return invalid("confirm", "does not match the new password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return invalid("password", err.Error())
	}
	return s.write(ctx, "", gateway.Row{"admin_password": string(hash)}, nil)
}

func (s *Settings) write(ctx context.Context, id string, columns gateway.Row, created func(string)) error {
	gw, err := s.access.Privileged()
	if err != nil {
		return privilegedMissing()
	}
	if id == "" {
		id = s.currentID(ctx)
	}
	if id != "" {
		if err = gw.Update(ctx, settingsTable, columns, gateway.Eq("id", id)); err != nil {
			return remote("update settings", err)
		}
		return nil
	}
	if _, ok := columns["hotel_name"]; !ok {
		columns["hotel_name"] = models.DefaultHotelName
	}
	if id, err = gw.Insert(ctx, settingsTable, columns); err != nil {
		return remote("create settings", err)
	}
	if created != nil {
		created(id)
	}
	return nil
}

// PasswordHash returns the stored admin password hash, empty when none was set
func (s *Settings) PasswordHash(ctx context.Context) (string, error) {
	gw, err := s.access.Privileged()
	if err != nil {
		return "", privilegedMissing()
	}
	var rows []models.SiteSettings
	err = gw.Select(ctx, gateway.Query{
		Table:   settingsTable,
		Columns: []string{"id", "admin_password"},
		Order:   []gateway.Order{gateway.Asc("created_at")},
		Limit:   1,
	}, &rows)
	if err != nil {
		return "", remote("read admin password", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].AdminPassword, nil
}

// IsConfigurationError reports whether err comes from a missing collaborator
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
