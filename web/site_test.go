package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cozyvile/content"
	"cozyvile/gateway"
	"cozyvile/gateway/gatewaytest"
	"cozyvile/models"
	"cozyvile/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(db *gatewaytest.Memory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	access := gateway.NewAccess(db, nil)
	amenities := content.NewManager[*models.Amenity](content.Amenities, access, nil)
	site := &Site{
		Settings:      content.NewSettings(access),
		Rooms:         content.NewManager[*models.Room](content.Rooms, access, nil),
		Dining:        content.NewManager[*models.DiningOutlet](content.Dining, access, nil),
		Venues:        content.NewManager[*models.Venue](content.Venues, access, nil),
		Gallery:       content.NewManager[*models.GalleryImage](content.Gallery, access, nil),
		Amenities:     amenities,
		RoomAmenities: content.NewLinks(content.RoomAmenityLinks, amenities, access),
		Testimonials:  content.NewManager[*models.Testimonial](content.Testimonials, access, nil),
		Intake:        content.NewIntake(access, nil),
	}
	router := gin.New()
	site.Register(router)
	return router
}

func request(router http.Handler, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	db := gatewaytest.NewMemory()
	db.Seed("rooms", gateway.Row{"name": "Garden Room", "slug": "garden-room", "is_active": true, "is_featured": false, "sort_order": 1})
	db.Seed("rooms", gateway.Row{"name": "Sea Suite", "slug": "sea-suite", "is_active": true, "is_featured": true, "sort_order": 2})
	db.Seed("testimonials", gateway.Row{"guest_name": "Ann", "quote": "Lovely", "rating": 5, "is_active": true})

	rec := request(newSite(db), http.MethodGet, "/?format=json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	home := struct {
		Settings     models.SiteSettings  `json:"Settings"`
		Rooms        []models.Room        `json:"Rooms"`
		Testimonials []models.Testimonial `json:"Testimonials"`
		Amenities    []models.Amenity     `json:"Amenities"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &home))
	assert.Equal(t, models.DefaultHotelName, home.Settings.HotelName)
	require.Len(t, home.Rooms, 1)
	assert.Equal(t, "Sea Suite", home.Rooms[0].Name)
	assert.Len(t, home.Testimonials, 1)
	assert.Empty(t, home.Amenities)
}

func TestHome_FailedReadsShowEmptySections(t *testing.T) {
	db := gatewaytest.NewMemory()
	failure := &gateway.Error{Status: 500, Message: "down"}
	for _, table := range []string{"site_settings", "rooms", "testimonials", "amenities"} {
		db.FailSelect[table] = failure
	}

	rec := request(newSite(db), http.MethodGet, "/?format=json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	home := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &home))
	assert.Equal(t, []any{}, home["Rooms"])
	assert.Equal(t, []any{}, home["Testimonials"])
	assert.Equal(t, models.DefaultHotelName, home["Settings"].(map[string]any)["hotel_name"])
}

func TestDetailPages(t *testing.T) {
	db := gatewaytest.NewMemory()
	roomID := db.Seed("rooms", gateway.Row{"name": "Sea Suite", "slug": "sea-suite", "is_active": true, "short_description": "Sea *views*"})
	db.Seed("room_images", gateway.Row{"room_id": roomID, "image_url": "https://assets.test/b.jpg", "sort_order": 1})
	db.Seed("room_images", gateway.Row{"room_id": roomID, "image_url": "https://assets.test/a.jpg", "sort_order": 0})
	db.Seed("venues", gateway.Row{"name": "Sky Lounge", "slug": "sky-lounge", "is_active": true})
	router := newSite(db)

	tests := []struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		{"/rooms/sea-suite?format=json", http.StatusOK, `"Sea Suite"`},
		{"/rooms/missing?format=json", http.StatusNotFound, `"Error":"room not found"`},
		{"/events/sky-lounge?format=json", http.StatusOK, `"Sky Lounge"`},
		{"/events/sea-suite?format=json", http.StatusNotFound, `"Error":"venue not found"`},
		{"/dining/anything?format=json", http.StatusNotFound, `"Error":"restaurant not found"`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := request(router, http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}

	rec := request(router, http.MethodGet, "/rooms/sea-suite?format=json", "", "")
	page := struct {
		Room        models.Room `json:"Room"`
		Description string      `json:"Description"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "<p>Sea <em>views</em></p>\n", page.Description)
	require.Len(t, page.Room.Images, 2)
	assert.Equal(t, "https://assets.test/a.jpg", page.Room.Cover())
}

func TestRoomView_ListsOnlyItsAmenities(t *testing.T) {
	db := gatewaytest.NewMemory()
	sea := db.Seed("rooms", gateway.Row{"name": "Sea Suite", "slug": "sea-suite", "is_active": true})
	garden := db.Seed("rooms", gateway.Row{"name": "Garden Room", "slug": "garden-room", "is_active": true})
	bath := db.Seed("amenities", gateway.Row{"name": "Bathtub", "is_active": true, "sort_order": 1})
	balcony := db.Seed("amenities", gateway.Row{"name": "Balcony", "is_active": true, "sort_order": 2})
	terrace := db.Seed("amenities", gateway.Row{"name": "Terrace", "is_active": true, "sort_order": 3})
	db.Seed("amenities", gateway.Row{"name": "Spa", "is_active": true, "sort_order": 4})
	db.Seed("room_amenities", gateway.Row{"room_id": sea, "amenity_id": balcony})
	db.Seed("room_amenities", gateway.Row{"room_id": sea, "amenity_id": bath})
	db.Seed("room_amenities", gateway.Row{"room_id": garden, "amenity_id": terrace})
	router := newSite(db)

	names := func(slug string) []string {
		rec := request(router, http.MethodGet, "/rooms/"+slug+"?format=json", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		page := struct {
			Amenities []models.Amenity `json:"Amenities"`
		}{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		var result []string
		for _, a := range page.Amenities {
			result = append(result, a.Name)
		}
		return result
	}
	assert.Equal(t, []string{"Bathtub", "Balcony"}, names("sea-suite"))
	assert.Equal(t, []string{"Terrace"}, names("garden-room"))

	db.FailSelect["room_amenities"] = &gateway.Error{Status: 500, Message: "connection reset"}
	assert.Empty(t, names("sea-suite"))
}

func TestGallery_Category(t *testing.T) {
	db := gatewaytest.NewMemory()
	db.Seed("gallery_images", gateway.Row{"title": "Pool", "category": "amenities", "is_active": true})
	db.Seed("gallery_images", gateway.Row{"title": "Bar", "category": "dining", "is_active": true})
	router := newSite(db)

	tests := []struct {
		query        string
		wantCategory string
		wantImages   int
	}{
		{"", "", 2},
		{"&category=dining", "dining", 1},
		{"&category=events", "events", 0},
		{"&category=unknown", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := request(router, http.MethodGet, "/gallery?format=json"+tt.query, "", "")
			require.Equal(t, http.StatusOK, rec.Code)
			page := struct {
				Images   []models.GalleryImage `json:"Images"`
				Category string                `json:"Category"`
			}{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
			assert.Equal(t, tt.wantCategory, page.Category)
			assert.Len(t, page.Images, tt.wantImages)
		})
	}
}

func TestNewsletter(t *testing.T) {
	db := gatewaytest.NewMemory()
	db.Unique["newsletter_subscribers"] = "email"
	router := newSite(db)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantOK      bool
		wantMessage string
	}{
		{"new subscriber", `{"email":"Guest@Example.com"}`, http.StatusOK, true, content.MessageSubscribed},
		{"already subscribed", `{"email":"guest@example.com"}`, http.StatusOK, true, content.MessageAlreadySubscribed},
		{"invalid email", `{"email":"guest"}`, http.StatusBadRequest, false, content.MessageInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(router, http.MethodPost, "/newsletter", tt.body, "application/json")
			assert.Equal(t, tt.wantStatus, rec.Code)
			result := content.Result{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.wantOK, result.OK)
			assert.Equal(t, tt.wantMessage, result.Message)
		})
	}
	assert.Len(t, db.Rows("newsletter_subscribers"), 1)
}

func TestContact(t *testing.T) {
	db := gatewaytest.NewMemory()
	router := newSite(db)

	rec := request(router, http.MethodPost, "/contact?format=json",
		"first_name=Ann&email=ann%40example.com&message=%3Cb%3EHello%3C%2Fb%3E", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows := db.Rows("contact_messages")
	require.Len(t, rows, 1)
	assert.Equal(t, "Hello", rows[0]["message"])

	rec = request(router, http.MethodPost, "/contact?format=json", "first_name=Ann", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please check the email field")

	db.FailInsert["contact_messages"] = &gateway.Error{Status: 500, Message: "relation does not exist"}
	rec = request(router, http.MethodPost, "/contact?format=json",
		"first_name=Ann&email=ann%40example.com&message=Hi", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestRobots(t *testing.T) {
	rec := request(newSite(gatewaytest.NewMemory()), http.MethodGet, "/robots.txt", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /admin")
}

func TestAssetView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewDiskStorage(t.TempDir(), "http://localhost")
	path, err := store.Upload(context.Background(), storage.BucketRooms, "r1/a.png", bytes.NewReader([]byte("png data")), "image/png")
	require.NoError(t, err)
	router := gin.New()
	router.GET(AssetRoute, AssetView(store))

	tests := []struct {
		target     string
		wantStatus int
	}{
		{storage.PublicMarker + storage.BucketRooms + "/" + path, http.StatusOK},
		{storage.PublicMarker + "private/" + path, http.StatusNotFound},
		{storage.PublicMarker + storage.BucketRooms + "/r1/missing.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := request(router, http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "png data", rec.Body.String())
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "yes"},
		{false, "no"},
		{3.0, "3"},
		{2.5, "2.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, display(tt.in))
	}
	assert.Equal(t, "https://a/1.jpg", thumb(map[string]any{"room_images": []any{map[string]any{"image_url": "https://a/1.jpg"}}}))
	assert.Equal(t, "https://a/c.jpg", thumb(map[string]any{"image_url": "https://a/c.jpg"}))
	assert.Equal(t, "", thumb(map[string]any{"name": "x"}))
}
