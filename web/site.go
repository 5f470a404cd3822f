package web

import (
	"html/template"
	"net/http"

	"cozyvile/auth"
	"cozyvile/content"
	"cozyvile/gateway"
	"cozyvile/models"
	"cozyvile/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// Site renders the public pages. Every read goes through the public handle
// and a failed read shows an empty section.
type Site struct {
	Settings  *content.Settings
	Rooms     *content.Manager[*models.Room]
	Dining    *content.Manager[*models.DiningOutlet]
	Venues    *content.Manager[*models.Venue]
	Gallery   *content.Manager[*models.GalleryImage]
	Amenities *content.Manager[*models.Amenity]
	// RoomAmenities are the amenities listed on a room page
	RoomAmenities *content.Links[*models.Amenity]
	Testimonials  *content.Manager[*models.Testimonial]
	Intake        *content.Intake
}

func (s *Site) Register(router gin.IRoutes, intakeGuard ...gin.HandlerFunc) {
	router.GET("/", s.Home)
	router.GET("/about", s.About)
	router.GET("/rooms", s.RoomList)
	router.GET("/rooms/:slug", s.RoomView)
	router.GET("/dining", s.DiningList)
	router.GET("/dining/:slug", s.DiningView)
	router.GET("/events", s.VenueList)
	router.GET("/events/:slug", s.VenueView)
	router.GET("/amenities", s.AmenityList)
	router.GET("/gallery", s.GalleryView)
	router.GET("/contact", s.ContactForm)
	router.POST("/contact", append(intakeGuard, s.ContactSubmit)...)
	router.POST("/newsletter", append(intakeGuard, s.Subscribe)...)
	router.GET("/robots.txt", AllowRobots)
}

// view is the data of one page, page chrome is added for HTML only
type view gin.H

func (s *Site) render(c *gin.Context, status int, name string, data view) {
	if c.Query("format") == "json" {
		c.JSON(status, data)
		return
	}
	h := gin.H(data)
	if _, ok := h["Settings"]; !ok {
		h["Settings"] = s.Settings.Load(c.Request.Context())
	}
	h["CSRFField"] = csrf.TemplateField(c.Request)
	h["Path"] = c.Request.URL.Path
	h["Admin"] = auth.LoadSession(c).IsAdmin()
	c.HTML(status, name, h)
}

func (s *Site) notFound(c *gin.Context, what string) {
	s.render(c, http.StatusNotFound, "not_found.tmpl", view{"Error": what + " not found"})
}

func (s *Site) Home(c *gin.Context) {
	ctx := c.Request.Context()
	s.render(c, http.StatusOK, "home.tmpl", view{
		"Settings":     s.Settings.Load(ctx),
		"Rooms":        s.Rooms.Published(ctx, gateway.Eq("is_featured", true)),
		"Testimonials": s.Testimonials.Published(ctx),
		"Amenities":    s.Amenities.Published(ctx),
	})
}

func (s *Site) About(c *gin.Context) {
	ctx := c.Request.Context()
	s.render(c, http.StatusOK, "about.tmpl", view{
		"Settings":  s.Settings.Load(ctx),
		"Amenities": s.Amenities.Published(ctx),
	})
}

func (s *Site) RoomList(c *gin.Context) {
	s.render(c, http.StatusOK, "rooms.tmpl", view{
		"Rooms": s.Rooms.Published(c.Request.Context()),
	})
}

func (s *Site) RoomView(c *gin.Context) {
	room, ok := s.Rooms.BySlug(c.Request.Context(), c.Param("slug"))
	if !ok {
		s.notFound(c, "room")
		return
	}
	s.render(c, http.StatusOK, "room.tmpl", view{
		"Room":        room,
		"Description": description(room.FullDescription, room.ShortDescription),
		"Amenities":   s.RoomAmenities.Published(c.Request.Context(), room.ID),
	})
}

func (s *Site) DiningList(c *gin.Context) {
	s.render(c, http.StatusOK, "dining.tmpl", view{
		"Outlets": s.Dining.Published(c.Request.Context()),
	})
}

func (s *Site) DiningView(c *gin.Context) {
	outlet, ok := s.Dining.BySlug(c.Request.Context(), c.Param("slug"))
	if !ok {
		s.notFound(c, "restaurant")
		return
	}
	s.render(c, http.StatusOK, "outlet.tmpl", view{
		"Outlet":      outlet,
		"Description": description(outlet.FullDescription, outlet.ShortDescription),
	})
}

func (s *Site) VenueList(c *gin.Context) {
	s.render(c, http.StatusOK, "events.tmpl", view{
		"Venues": s.Venues.Published(c.Request.Context()),
	})
}

func (s *Site) VenueView(c *gin.Context) {
	venue, ok := s.Venues.BySlug(c.Request.Context(), c.Param("slug"))
	if !ok {
		s.notFound(c, "venue")
		return
	}
	s.render(c, http.StatusOK, "venue.tmpl", view{
		"Venue":       venue,
		"Description": description(venue.FullDescription, venue.ShortDescription),
	})
}

func (s *Site) AmenityList(c *gin.Context) {
	s.render(c, http.StatusOK, "amenities.tmpl", view{
		"Amenities": s.Amenities.Published(c.Request.Context()),
	})
}

// GalleryView lists the active images, optionally of one category
func (s *Site) GalleryView(c *gin.Context) {
	category := c.Query("category")
	var filters []gateway.Filter
	for _, known := range models.GalleryCategories {
		if category == known {
			filters = append(filters, gateway.Eq("category", category))
		}
	}
	if len(filters) == 0 {
		category = ""
	}
	s.render(c, http.StatusOK, "gallery.tmpl", view{
		"Images":     s.Gallery.Published(c.Request.Context(), filters...),
		"Categories": models.GalleryCategories,
		"Category":   category,
	})
}

func AllowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /admin\n")
}

func description(full, short string) template.HTML {
	if full == "" {
		full = short
	}
	return utils.Markdown(full)
}
