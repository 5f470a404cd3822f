package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/admin/login"

// HandlerFunc runs for an authenticated admin only
type HandlerFunc func(c *gin.Context)

// Router is a wrapper class that adds the admin session check
type Router struct {
	Base gin.IRoutes
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	session := LoadSession(c)
	if !session.IsAdmin() {
		if WantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		} else {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		}
		c.Abort()
		return
	}
	handler(c)
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

// WantsJSON is true for API style requests (`?format=json`, an Accept
// header asking for JSON, or a JSON body)
func WantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.ContentType() == "application/json"
}
