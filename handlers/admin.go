package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"cozyvile/auth"
	"cozyvile/content"
	"cozyvile/models"

	"github.com/gin-gonic/gin"
)

const adminHome = "/admin"

type LoginRequest struct {
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

type PasswordRequest struct {
	Password string `form:"password" json:"password"`
	Confirm  string `form:"confirm" json:"confirm"`
}

// Section is an entry of the dashboard
type Section interface {
	Path() string
	Title() string
	Count(ctx context.Context) int
}

func (r *Resource[T]) Title() string {
	return r.Manager.Entity.Title
}

func (r *Resource[T]) Count(ctx context.Context) int {
	return len(r.Manager.Load(ctx))
}

type SectionInfo struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Admin serves the login, the dashboard and the site settings
type Admin struct {
	Gate     *auth.Gate
	Settings *content.Settings
	Sections []Section
}

func (a *Admin) Register(base gin.IRoutes, router *auth.Router, loginGuard ...gin.HandlerFunc) {
	base.GET(auth.LoginPath, a.LoginForm)
	base.POST(auth.LoginPath, append(loginGuard, a.Login)...)
	base.POST("/admin/logout", a.Logout)
	router.GET(adminHome, a.Dashboard)
	router.GET("/admin/settings", a.SettingsForm)
	router.POST("/admin/settings/save", a.SettingsSave)
	router.POST("/admin/settings/password", a.PasswordSave)
}

func (a *Admin) LoginForm(c *gin.Context) {
	if auth.LoadSession(c).IsAdmin() {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	data := page(c, "Admin login")
	data["Next"] = safeNext(c.Query("next"))
	c.HTML(http.StatusOK, "admin_login.tmpl", data)
}

func (a *Admin) Login(c *gin.Context) {
	req := LoginRequest{}
	if err := c.ShouldBind(&req); err != nil && auth.WantsJSON(c) {
		c.JSON(http.StatusBadRequest, BadFormResponse)
		return
	}
	next := safeNext(req.Next)
	if !a.Gate.Check(c.Request.Context(), req.Password) {
		log.Printf("Failed admin login from %s", c.ClientIP())
		if auth.WantsJSON(c) {
			c.JSON(http.StatusUnauthorized, Response{Error: "invalid password"})
			return
		}
		data := page(c, "Admin login")
		data["Next"] = next
		data["Error"] = "Invalid password"
		c.HTML(http.StatusUnauthorized, "admin_login.tmpl", data)
		return
	}
	session := auth.LoadSession(c)
	if err := session.LoginAdmin(); err != nil {
		log.Printf("Saving admin session: %v", err)
		c.JSON(http.StatusInternalServerError, Response{Error: "session error"})
		return
	}
	log.Printf("Admin logged in from %s", c.ClientIP())
	if auth.WantsJSON(c) {
		c.JSON(http.StatusOK, OKResponse)
		return
	}
	c.Redirect(http.StatusFound, next)
}

func (a *Admin) Logout(c *gin.Context) {
	auth.LoadSession(c).LogoutUser()
	if auth.WantsJSON(c) {
		c.JSON(http.StatusOK, OKResponse)
		return
	}
	c.Redirect(http.StatusFound, auth.LoginPath)
}

func (a *Admin) Dashboard(c *gin.Context) {
	sections := make([]SectionInfo, 0, len(a.Sections))
	for _, s := range a.Sections {
		sections = append(sections, SectionInfo{
			Title: s.Title(),
			Path:  s.Path(),
			Count: s.Count(c.Request.Context()),
		})
	}
	if auth.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"sections": sections})
		return
	}
	data := page(c, "Dashboard")
	data["Sections"] = sections
	c.HTML(http.StatusOK, "admin_dashboard.tmpl", data)
}

func (a *Admin) SettingsForm(c *gin.Context) {
	a.renderSettings(c, http.StatusOK, a.Settings.Load(c.Request.Context()), OKResponse)
}

func (a *Admin) SettingsSave(c *gin.Context) {
	settings := models.SiteSettings{}
	if err := c.ShouldBind(&settings); err != nil {
		a.renderSettings(c, http.StatusBadRequest, settings, Response{Error: err.Error()})
		return
	}
	err := a.Settings.Save(c.Request.Context(), &settings)
	if err != nil {
		a.renderSettings(c, ErrorStatus(err), settings, ErrorResponse(err))
		return
	}
	a.renderSettings(c, http.StatusOK, a.Settings.Load(c.Request.Context()), Response{Notice: "Settings saved"})
}

func (a *Admin) PasswordSave(c *gin.Context) {
	req := PasswordRequest{}
	_ = c.ShouldBind(&req)
	settings := a.Settings.Load(c.Request.Context())
	if err := a.Settings.ChangePassword(c.Request.Context(), req.Password, req.Confirm); err != nil {
		a.renderSettings(c, ErrorStatus(err), settings, ErrorResponse(err))
		return
	}
	log.Printf("Admin password changed from %s", c.ClientIP())
	a.renderSettings(c, http.StatusOK, settings, Response{Notice: "Password changed"})
}

func (a *Admin) renderSettings(c *gin.Context, status int, settings models.SiteSettings, resp Response) {
	settings.AdminPassword = ""
	if auth.WantsJSON(c) {
		resp.Items = settings
		c.JSON(status, resp)
		return
	}
	data := page(c, "Settings")
	data["Settings"] = settings
	data["Error"] = resp.Error
	data["Hint"] = resp.Hint
	data["Notice"] = resp.Notice
	c.HTML(status, "admin_settings.tmpl", data)
}

// safeNext only follows redirects inside the admin console
func safeNext(next string) string {
	if !strings.HasPrefix(next, adminHome) || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return adminHome
	}
	return next
}
