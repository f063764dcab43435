package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/models"
	"github.com/smartcollab/services"
)

const (
	SessionCookieName = "access_token"
	ContextUserID     = "userId"
	ContextEmail      = "email"
	ContextRemember   = "remember"
)

// Session issues, refreshes and clears the session cookie
type Session struct {
	Verifier services.CredentialVerifier
	TTL      time.Duration
	Secure   bool
	Log      *logrus.Entry
	Now      func() time.Time
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a session for the user and writes the cookie.
// A remembered session survives browser restarts, otherwise the cookie has no Max-Age.
func (s *Session) Issue(c *gin.Context, user models.User, remember bool) (time.Time, error) {
	token, expiresAt, err := s.Verifier.IssueSession(user, remember)
	if err != nil {
		return time.Time{}, err
	}

	maxAge := 0
	if remember {
		maxAge = int(expiresAt.Sub(s.now()).Seconds())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName, // name
		token,             // value
		maxAge,            // max age
		"/",               // path
		"",                // domain
		s.Secure,          // secure
		true,              // httpOnly (not accessible via JS)
	)
	return expiresAt, nil
}

// Clear expires the session cookie
func (s *Session) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.Secure, true)
}

// AuthMiddleware authenticates requests by the session cookie or a Bearer token.
// Cookie sessions past half of their lifetime are re-issued.
func AuthMiddleware(session *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := sessionToken(c)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := session.Verifier.ParseSession(token)
		if err != nil {
			if session.Log != nil {
				session.Log.WithError(err).Debug("rejected session token")
			}
			if fromCookie {
				session.Clear(c)
			}
			unauthorized(c)
			return
		}

		if fromCookie && claims.ExpiresAt != nil && claims.ExpiresAt.Time.Sub(session.now()) < session.TTL/2 {
			user := models.User{ID: claims.UserID, Email: claims.Email}
			if _, err := session.Issue(c, user, claims.Remember); err != nil && session.Log != nil {
				session.Log.WithError(err).Warn("failed to refresh session")
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRemember, claims.Remember)
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token), false
	}
	return "", false
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": "Authentication required",
	})
}

// UserID returns the authenticated user set by AuthMiddleware
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
