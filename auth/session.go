package auth

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	adminKey = "admin"
	sinceKey = "since"
)

// MaxAge bounds an admin session, whatever the cookie says
var MaxAge = 12 * time.Hour

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginAdmin() error {
	s.Clear()
	s.Set(adminKey, true)
	s.Set(sinceKey, time.Now().Unix())
	return s.Save()
}

func (s *Session) LogoutUser() {
	s.Delete(adminKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = s.Save()
}

// IsAdmin is only true for a session that logged in less than MaxAge ago
func (s *Session) IsAdmin() bool {
	admin, _ := s.Get(adminKey).(bool)
	if !admin {
		return false
	}
	since, ok := s.Get(sinceKey).(int64)
	if !ok || time.Since(time.Unix(since, 0)) > MaxAge {
		return false
	}
	return true
}
