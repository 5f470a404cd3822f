package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFromURL_InvertsPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		bucket string
		path   string
	}{
		{"simple", "https://abc.supabase.co", BucketRooms, "room-1/1700000000000_a.jpg"},
		{"trailing slash base", "https://abc.supabase.co/", BucketGallery, "gallery/g-1/1_b.png"},
		{"spaces and unicode", "http://localhost:8080", BucketDining, "dining/d 1/1_café menu.jpg"},
		{"reserved characters", "https://cdn.test", BucketVenues, "venues/v-1/1_50%_off?#.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := PublicURL(tt.base, tt.bucket, tt.path)
			got, err := PathFromURL(tt.bucket, url)
			require.NoError(t, err)
			assert.Equal(t, tt.path, got)
		})
	}
}

func TestPathFromURL_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		url    string
	}{
		{"no marker", BucketRooms, "https://example.com/images/a.jpg"},
		{"other bucket", BucketRooms, "https://abc.supabase.co/storage/v1/object/public/gallery/a.jpg"},
		{"empty path", BucketRooms, "https://abc.supabase.co/storage/v1/object/public/rooms/"},
		{"bad escape", BucketRooms, "https://abc.supabase.co/storage/v1/object/public/rooms/%zz.jpg"},
		{"empty", BucketRooms, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PathFromURL(tt.bucket, tt.url)
			assert.True(t, errors.Is(err, ErrInvalidURL), "got %v", err)
		})
	}
}

func TestPathFromURL_IgnoresQuery(t *testing.T) {
	got, err := PathFromURL(BucketRooms, "https://abc.supabase.co/storage/v1/object/public/rooms/r/1_a.jpg?width=300#top")
	require.NoError(t, err)
	assert.Equal(t, "r/1_a.jpg", got)
}

func TestObjectPath(t *testing.T) {
	stamp := time.UnixMilli(1700000000123)
	assert.Equal(t, "dining/d-1/1700000000123_sky_lounge.jpg", ObjectPath("dining", "d-1", "sky lounge.jpg", stamp))
	assert.Equal(t, "r-1/1700000000123_a.png", ObjectPath("", "r-1", "a.png", stamp))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my photo (1).JPG", "my_photo__1_.JPG"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\me\\pic.png", "pic.png"},
		{"", "file"},
		{"..", "file"},
		{"zürich.jpg", "z__rich.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.name))
		})
	}
}
