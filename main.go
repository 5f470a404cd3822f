package main

import (
	"crypto/rand"
	"crypto/sha256"
	"log"
	"net/http"
	"net/url"
	"time"

	"cozyvile/auth"
	"cozyvile/config"
	"cozyvile/content"
	"cozyvile/db"
	"cozyvile/gateway"
	"cozyvile/handlers"
	"cozyvile/models"
	"cozyvile/notify"
	"cozyvile/storage"
	"cozyvile/utils"
	"cozyvile/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	sessionCookieName = "cozyvile_admin"
	restTimeout       = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	auth.MaxAge = cfg.SessionMaxAge

	access := buildAccess(cfg)
	assets := buildAssetStore(cfg)
	var notifier content.Notifier
	if cfg.NotificationsEnabled() {
		notifier = notify.NewResendNotifier(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyTo)
	} else {
		log.Printf("Contact notifications disabled (RESEND_API_KEY, NOTIFY_FROM or NOTIFY_TO missing)")
	}

	settings := content.NewSettings(access)
	rooms := content.NewManager[*models.Room](content.Rooms, access, assets)
	dining := content.NewManager[*models.DiningOutlet](content.Dining, access, assets)
	venues := content.NewManager[*models.Venue](content.Venues, access, assets)
	gallery := content.NewManager[*models.GalleryImage](content.Gallery, access, assets)
	amenities := content.NewManager[*models.Amenity](content.Amenities, access, assets)
	testimonials := content.NewManager[*models.Testimonial](content.Testimonials, access, assets)
	messages := content.NewManager[*models.ContactMessage](content.Messages, access, assets)
	roomAmenities := content.NewLinks(content.RoomAmenityLinks, amenities, access)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if cfg.DebugMode {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.PublicBaseURL},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.SetFuncMap(web.FuncMap())
	router.LoadHTMLGlob(cfg.TemplatesGlob)
	key := sessionKey(cfg)
	router.Use(sessions.Sessions(sessionCookieName, sessionStore(cfg, key)))
	if !cfg.DebugMode {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{storage.PublicMarker})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that

	// Public site
	intakeLimiter := utils.NewRateLimiter(cfg.IntakeRate, cfg.IntakeBurst)
	site := &web.Site{
		Settings:      settings,
		Rooms:         rooms,
		Dining:        dining,
		Venues:        venues,
		Gallery:       gallery,
		Amenities:     amenities,
		RoomAmenities: roomAmenities,
		Testimonials:  testimonials,
		Intake:        content.NewIntake(access, notifier),
	}
	site.Register(router, intakeLimiter.Handler())
	if servable, ok := assets.(storage.Servable); ok {
		assetCache := (&utils.CacheRouter{CacheTime: utils.CacheAssets, Public: true}).Handler()
		router.GET(web.AssetRoute, assetCache, web.AssetView(servable))
	}

	// Admin console
	images := handlers.ImageOptions{MaxDimension: cfg.MaxImageDimension, MaxBytes: cfg.MaxUploadBytes()}
	authRouter := &auth.Router{Base: router}
	roomRelations := []handlers.Relation[*models.Room]{{
		Field:   "amenity_ids",
		Values:  func(r *models.Room) []string { return r.AmenityIDs },
		Choices: handlers.ChoicesOf(amenities),
		Links:   roomAmenities,
	}}
	resources := []handlers.Section{
		register(authRouter, &handlers.Resource[*models.Room]{Manager: rooms, New: func() *models.Room { return &models.Room{} }, Fields: handlers.RoomFields, Images: images, Relations: roomRelations}),
		register(authRouter, &handlers.Resource[*models.DiningOutlet]{Manager: dining, New: func() *models.DiningOutlet { return &models.DiningOutlet{} }, Fields: handlers.DiningFields, Images: images}),
		register(authRouter, &handlers.Resource[*models.Venue]{Manager: venues, New: func() *models.Venue { return &models.Venue{} }, Fields: handlers.VenueFields, Images: images}),
		register(authRouter, &handlers.Resource[*models.GalleryImage]{Manager: gallery, New: func() *models.GalleryImage { return &models.GalleryImage{} }, Fields: handlers.GalleryFields, Images: images}),
		register(authRouter, &handlers.Resource[*models.Amenity]{Manager: amenities, New: func() *models.Amenity { return &models.Amenity{} }, Fields: handlers.AmenityFields, Images: images}),
		register(authRouter, &handlers.Resource[*models.Testimonial]{Manager: testimonials, New: func() *models.Testimonial { return &models.Testimonial{} }, Fields: handlers.TestimonialFields, Images: images}),
		register(authRouter, &handlers.Resource[*models.ContactMessage]{Manager: messages, New: func() *models.ContactMessage { return &models.ContactMessage{} }, Fields: handlers.MessageFields, ReadOnly: true}),
	}
	admin := &handlers.Admin{
		Gate:     &auth.Gate{Source: settings, Passphrase: cfg.AdminPassword},
		Settings: settings,
		Sections: resources,
	}
	loginLimiter := utils.NewRateLimiter(cfg.IntakeRate, cfg.IntakeBurst)
	admin.Register(router, authRouter, loginLimiter.Handler())

	handler := protect(cfg, key, router)
	if len(cfg.TLSDomains) > 0 {
		err = autotls.Run(handler, cfg.TLSDomains...)
	} else {
		log.Printf("Listening on %s", cfg.BindAddress)
		err = http.ListenAndServe(cfg.BindAddress, handler)
	}
	log.Fatalf("Server stopped: %v", err)
}

func register(router *auth.Router, section interface {
	handlers.Section
	Register(*auth.Router)
}) handlers.Section {
	section.Register(router)
	return section
}

// buildAccess creates the restricted handle and, when a privileged
// credential exists, the privileged one
func buildAccess(cfg *config.Config) *gateway.Access {
	switch cfg.GatewayBackend {
	case config.GatewaySQL:
		db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.DebugMode)
		if cfg.AutoMigrate {
			if err := models.Init(db.Instance); err != nil {
				log.Fatalf("Migrating database: %v", err)
			}
		}
		public := gateway.NewRestrictedSQLGateway(db.Instance, gateway.DefaultPolicy())
		if !cfg.SQLPrivileged {
			log.Printf("Privileged access disabled (SQL_PRIVILEGED=false), the admin console is read only")
			return gateway.NewAccess(public, nil)
		}
		return gateway.NewAccess(public, gateway.NewSQLGateway(db.Instance))
	default:
		client := &http.Client{Timeout: restTimeout}
		public := gateway.NewRESTGateway(cfg.SupabaseURL, cfg.SupabaseAnonKey, client)
		if cfg.SupabaseServiceRoleKey == "" {
			log.Printf("SUPABASE_SERVICE_ROLE_KEY not set, the admin console is read only")
			return gateway.NewAccess(public, nil)
		}
		return gateway.NewAccess(public, gateway.NewRESTGateway(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, client))
	}
}

// buildAssetStore returns nil when no store is configured
func buildAssetStore(cfg *config.Config) storage.AssetStore {
	switch cfg.StorageBackend {
	case storage.StorageTypeSupabase:
		key := cfg.SupabaseServiceRoleKey
		if key == "" {
			key = cfg.SupabaseAnonKey
		}
		return storage.NewSupabaseStorage(cfg.SupabaseURL, key, &http.Client{Timeout: restTimeout})
	case storage.StorageTypeFile:
		log.Printf("Storing images in %s", cfg.StorageDir)
		return storage.NewDiskStorage(cfg.StorageDir, cfg.PublicBaseURL)
	case storage.StorageTypeS3:
		store, err := storage.NewS3Storage(storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			SSEEncryption: cfg.S3SSEEncryption,
		}, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("S3 storage: %v", err)
		}
		return store
	}
	log.Printf("No asset store configured, image uploads are disabled")
	return nil
}

func sessionKey(cfg *config.Config) []byte {
	if cfg.SessionSecret == "" {
		log.Printf("SESSION_SECRET not set, admin sessions end with a restart")
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("Session key: %v", err)
		}
		return key
	}
	sum := sha256.Sum256([]byte(cfg.SessionSecret))
	return sum[:]
}

func sessionStore(cfg *config.Config, key []byte) sessions.Store {
	var store sessions.Store
	if cfg.GatewayBackend == config.GatewaySQL {
		store = gormsessions.NewStore(db.Instance, true, key)
	} else {
		store = cookie.NewStore(key)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   len(cfg.TLSDomains) > 0,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// protect adds CSRF checks to every form post. Plain HTTP is only expected
// without TLS_DOMAINS (development or behind a TLS proxy).
func protect(cfg *config.Config, key []byte, router http.Handler) http.Handler {
	secret := sha256.Sum256(append([]byte("csrf:"), key...))
	trusted := []string{}
	if u, err := url.Parse(cfg.PublicBaseURL); err == nil && u.Host != "" {
		trusted = append(trusted, u.Host)
	}
	tls := len(cfg.TLSDomains) > 0
	csrfProtect := csrf.Protect(secret[:],
		csrf.Secure(tls),
		csrf.Path("/"),
		csrf.TrustedOrigins(trusted),
	)(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tls {
			r = csrf.PlaintextHTTPRequest(r)
		}
		csrfProtect.ServeHTTP(w, r)
	})
}
