package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cozyvile/auth"
	"cozyvile/content"
	"cozyvile/gateway"
	"cozyvile/gateway/gatewaytest"
	"cozyvile/handlers"
	"cozyvile/models"
	"cozyvile/storage"
	"cozyvile/storage/storagetest"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "let-me-in"

type console struct {
	router  *gin.Engine
	db      *gatewaytest.Memory
	store   *storagetest.Memory
	cookies []*http.Cookie
}

func newConsole(t *testing.T, privileged bool) *console {
	gin.SetMode(gin.TestMode)
	db := gatewaytest.NewMemory()
	db.Cascade["rooms"] = []gatewaytest.Child{{Table: "room_images", ForeignKey: "room_id"}, {Table: "room_amenities", ForeignKey: "room_id"}}
	store := storagetest.NewMemory()
	var access *gateway.Access
	if privileged {
		access = gateway.NewAccess(db, db)
	} else {
		access = gateway.NewAccess(db, nil)
	}

	settings := content.NewSettings(access)
	rooms := content.NewManager[*models.Room](content.Rooms, access, store)
	gallery := content.NewManager[*models.GalleryImage](content.Gallery, access, store)
	messages := content.NewManager[*models.ContactMessage](content.Messages, access, store)
	amenities := content.NewManager[*models.Amenity](content.Amenities, access, store)
	roomRelations := []handlers.Relation[*models.Room]{{
		Field:   "amenity_ids",
		Values:  func(r *models.Room) []string { return r.AmenityIDs },
		Choices: handlers.ChoicesOf(amenities),
		Links:   content.NewLinks(content.RoomAmenityLinks, amenities, access),
	}}
	images := handlers.ImageOptions{MaxDimension: 1600, MaxBytes: 1 << 20}

	router := gin.New()
	router.Use(sessions.Sessions("test", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	authRouter := &auth.Router{Base: router}
	sections := []handlers.Section{
		&handlers.Resource[*models.Room]{Manager: rooms, New: func() *models.Room { return &models.Room{} }, Fields: handlers.RoomFields, Images: images, Relations: roomRelations},
		&handlers.Resource[*models.GalleryImage]{Manager: gallery, New: func() *models.GalleryImage { return &models.GalleryImage{} }, Fields: handlers.GalleryFields, Images: images},
		&handlers.Resource[*models.ContactMessage]{Manager: messages, New: func() *models.ContactMessage { return &models.ContactMessage{} }, Fields: handlers.MessageFields, ReadOnly: true},
	}
	for _, s := range sections {
		s.(interface{ Register(*auth.Router) }).Register(authRouter)
	}
	admin := &handlers.Admin{
		Gate:     &auth.Gate{Source: settings, Passphrase: testPassword},
		Settings: settings,
		Sections: sections,
	}
	admin.Register(router, authRouter)
	return &console{router: router, db: db, store: store}
}

func (c *console) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *console) postJSON(t *testing.T, target string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.do(t, req)
}

func (c *console) get(t *testing.T, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "application/json")
	return c.do(t, req)
}

func (c *console) login(t *testing.T) {
	rec := c.postJSON(t, auth.LoginPath, handlers.LoginRequest{Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c.cookies = rec.Result().Cookies()
	require.NotEmpty(t, c.cookies)
}

type response struct {
	Error  string           `json:"error"`
	Hint   string           `json:"hint"`
	Notice string           `json:"notice"`
	ID     string           `json:"id"`
	Items  []map[string]any `json:"items"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	resp := response{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func pngImage(t *testing.T) []byte {
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string][]byte) *http.Request {
	body := bytes.Buffer{}
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func TestLogin(t *testing.T) {
	c := newConsole(t, true)

	rec := c.get(t, "/admin")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.postJSON(t, auth.LoginPath, handlers.LoginRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid password", decode(t, rec).Error)

	rec = c.postJSON(t, auth.LoginPath, map[string]string{"next": "/admin/rooms"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handlers.BadFormResponse.Error, decode(t, rec).Error)

	c.login(t)
	rec = c.get(t, "/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := struct {
		Sections []handlers.SectionInfo `json:"sections"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	assert.Equal(t, []handlers.SectionInfo{
		{Title: "Rooms", Path: "/admin/rooms", Count: 0},
		{Title: "Gallery", Path: "/admin/gallery", Count: 0},
		{Title: "Messages", Path: "/admin/messages", Count: 0},
	}, dashboard.Sections)

	rec = c.postJSON(t, "/admin/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	c.cookies = rec.Result().Cookies()
	assert.Equal(t, http.StatusUnauthorized, c.get(t, "/admin").Code)
}

func TestLogin_RedirectsInsideConsoleOnly(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/admin/rooms", "/admin/rooms"},
		{"", "/admin"},
		{"https://evil.example/admin", "/admin"},
		{"//evil.example", "/admin"},
		{"/admin\\@evil.example", "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			c := newConsole(t, true)
			body := strings.NewReader("password=" + testPassword + "&next=" + tt.next)
			req := httptest.NewRequest(http.MethodPost, auth.LoginPath, body)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := c.do(t, req)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestResource_CreateGetDelete(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)

	rec := c.postJSON(t, "/admin/rooms/create", map[string]any{"name": "Sea View Suite", "type": "suite", "is_active": true, "price_from": 180})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "Created Sea View Suite", resp.Notice)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, resp.ID, resp.Items[0]["id"])
	assert.Equal(t, "sea-view-suite", resp.Items[0]["slug"])

	rec = c.get(t, "/admin/rooms/get?id="+resp.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	room := models.Room{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Equal(t, "Sea View Suite", room.Name)
	assert.Equal(t, 180.0, room.PriceFrom)

	rec = c.postJSON(t, "/admin/rooms/save", map[string]any{"id": resp.ID, "name": "Sea View", "type": "suite", "is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Saved Sea View", decode(t, rec).Notice)
	assert.Equal(t, false, c.db.Rows("rooms")[0]["is_active"])

	rec = c.postJSON(t, "/admin/rooms/delete", handlers.IDRequest{ID: resp.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Deleted", decode(t, rec).Notice)
	assert.Empty(t, c.db.Rows("rooms"))

	rec = c.get(t, "/admin/rooms/get?id="+resp.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResource_RoomAmenities(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)
	bath := c.db.Seed("amenities", gateway.Row{"name": "Bathtub", "is_active": true})
	balcony := c.db.Seed("amenities", gateway.Row{"name": "Balcony", "is_active": true})
	c.db.Seed("room_amenities", gateway.Row{"room_id": "other-room", "amenity_id": bath})

	linked := func(roomID string) []string {
		ids := []string{}
		for _, row := range c.db.Rows("room_amenities") {
			if row["room_id"] == roomID {
				ids = append(ids, row["amenity_id"].(string))
			}
		}
		return ids
	}

	rec := c.postJSON(t, "/admin/rooms/create", map[string]any{"name": "Sea Suite", "type": "suite", "amenity_ids": []string{bath, balcony}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode(t, rec).ID
	assert.Equal(t, []string{bath, balcony}, linked(id))

	rec = c.get(t, "/admin/rooms/get?id="+id)
	require.Equal(t, http.StatusOK, rec.Code)
	room := models.Room{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Equal(t, []string{bath, balcony}, room.AmenityIDs)

	// no amenity_ids: the links stay
	rec = c.postJSON(t, "/admin/rooms/save", map[string]any{"id": id, "name": "Sea Suite", "type": "suite"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{bath, balcony}, linked(id))

	// the form always sends an empty value first, so clearing every box clears the links
	form := "id=" + id + "&name=Sea+Suite&type=suite&amenity_ids=&amenity_ids=" + balcony
	req := httptest.NewRequest(http.MethodPost, "/admin/rooms/save", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec = c.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{balcony}, linked(id))

	form = "id=" + id + "&name=Sea+Suite&type=suite&amenity_ids="
	req = httptest.NewRequest(http.MethodPost, "/admin/rooms/save", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec = c.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, linked(id))
	assert.Equal(t, []string{bath}, linked("other-room"))

	c.db.FailInsert["room_amenities"] = &gateway.Error{Status: 403, Message: "permission denied"}
	rec = c.postJSON(t, "/admin/rooms/create", map[string]any{"name": "Garden Room", "type": "room", "amenity_ids": []string{bath}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, content.HintPolicy, resp.Hint)
	assert.NotEmpty(t, resp.ID)
	assert.Len(t, c.db.Rows("rooms"), 2, "the room itself was created")
}

func TestResource_Errors(t *testing.T) {
	tests := []struct {
		name       string
		privileged bool
		target     string
		body       any
		wantStatus int
		wantError  string
		wantHint   string
	}{
		{"missing name", true, "/admin/rooms/create", map[string]any{"name": " "}, http.StatusBadRequest, "name is required", ""},
		{"bad type", true, "/admin/rooms/create", map[string]any{"name": "A", "type": "villa"}, http.StatusBadRequest, "type must be room or suite", ""},
		{"save without id", true, "/admin/rooms/save", map[string]any{"name": "A"}, http.StatusBadRequest, "id is required", ""},
		{"delete without id", true, "/admin/rooms/delete", map[string]any{}, http.StatusBadRequest, "id is required", ""},
		{"gallery needs an image", true, "/admin/gallery/create", map[string]any{"title": "Lobby"}, http.StatusBadRequest, "image is required", ""},
		{"no privileged access", false, "/admin/rooms/create", map[string]any{"name": "A"}, http.StatusServiceUnavailable, "", content.HintPrivileged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConsole(t, tt.privileged)
			c.login(t)
			rec := c.postJSON(t, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			} else {
				assert.NotEmpty(t, resp.Error)
			}
			assert.Equal(t, tt.wantHint, resp.Hint)
			assert.Equal(t, 0, c.db.Count("insert", ""))
		})
	}
}

func TestResource_RemoteFailure(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)
	c.db.FailInsert["rooms"] = &gateway.Error{Status: 401, Code: "42501", Message: "permission denied for table rooms"}

	rec := c.postJSON(t, "/admin/rooms/create", map[string]any{"name": "A"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode(t, rec)
	assert.Contains(t, resp.Error, "permission denied")
	assert.NotEmpty(t, resp.Hint)
}

func TestResource_UploadsImages(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)

	req := multipartRequest(t, "/admin/gallery/create",
		map[string]string{"title": "Lobby at night", "category": "rooms", "is_active": "true"},
		map[string][]byte{"lobby.png": pngImage(t)})
	rec := c.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	uploads := c.store.Uploads()
	require.Len(t, uploads, 1)
	assert.True(t, strings.HasPrefix(uploads[0], storage.BucketGallery+"/gallery/"), uploads[0])
	rows := c.db.Rows("gallery_images")
	require.Len(t, rows, 1)
	assert.Equal(t, "Lobby at night", rows[0]["title"])
	assert.True(t, strings.HasPrefix(rows[0]["image_url"].(string), storagetest.BaseURL), rows[0]["image_url"])
}

func TestResource_RejectsNonImages(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)

	req := multipartRequest(t, "/admin/gallery/create",
		map[string]string{"title": "Notes", "category": "rooms"},
		map[string][]byte{"notes.txt": []byte("just some text")})
	rec := c.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "images notes.txt is not an image", decode(t, rec).Error)
	assert.Empty(t, c.store.Uploads())
	assert.Empty(t, c.db.Rows("gallery_images"))
}

func TestResource_ReadOnlyMessages(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)
	id := c.db.Seed("contact_messages", gateway.Row{"first_name": "Ann", "email": "ann@example.com", "message": "Hi"})

	assert.Equal(t, http.StatusNotFound, c.postJSON(t, "/admin/messages/create", map[string]any{"first_name": "Bob"}).Code)
	assert.Equal(t, http.StatusNotFound, c.postJSON(t, "/admin/messages/save", map[string]any{"id": id}).Code)

	rec := c.get(t, "/admin/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec).Items, 1)

	rec = c.postJSON(t, "/admin/messages/delete", handlers.IDRequest{ID: id})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, c.db.Rows("contact_messages"))
}

func TestSettings(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)

	rec := c.postJSON(t, "/admin/settings/save", map[string]any{"hotel_name": "Harbour House", "email": "hello@harbour.example"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := struct {
		Notice string              `json:"notice"`
		Items  models.SiteSettings `json:"items"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Settings saved", resp.Notice)
	assert.Equal(t, "Harbour House", resp.Items.HotelName)

	rec = c.postJSON(t, "/admin/settings/save", map[string]any{"email": "not-an-address"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postJSON(t, "/admin/settings/password", handlers.PasswordRequest{Password: "new-secret", Confirm: "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postJSON(t, "/admin/settings/password", handlers.PasswordRequest{Password: "new-secret", Confirm: "new-secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "$2")

	// the stored password now wins over the one from the environment
	c.cookies = nil
	rec = c.postJSON(t, auth.LoginPath, handlers.LoginRequest{Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = c.postJSON(t, auth.LoginPath, handlers.LoginRequest{Password: "new-secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
