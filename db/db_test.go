package db

import (
	"path/filepath"
	"testing"

	"cozyvile/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"site.db", "site.db?_foreign_keys=1"},
		{"file:site.db?cache=shared", "file:site.db?cache=shared&_foreign_keys=1"},
		{"file:site.db?_foreign_keys=0", "file:site.db?_foreign_keys=0"},
		{"site.db?_fk=1", "site.db?_fk=1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.dsn), tt.dsn)
	}
}

func TestOpen_SqliteCascadesImageLinks(t *testing.T) {
	d, err := Open("sqlite", filepath.Join(t.TempDir(), "site.db"), false)
	require.NoError(t, err)
	sqlDB, err := d.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, models.Init(d))

	var enabled int
	require.NoError(t, d.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	require.NoError(t, d.Create(&models.Room{ID: "r1", Name: "Garden Room", Slug: "garden-room"}).Error)
	for _, id := range []string{"i1", "i2"} {
		require.NoError(t, d.Create(&models.RoomImage{ID: id, RoomID: "r1", ImageURL: id + ".jpg"}).Error)
	}
	require.NoError(t, d.Exec("DELETE FROM rooms WHERE id = ?", "r1").Error)

	var left int64
	require.NoError(t, d.Model(&models.RoomImage{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x", false)
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}
