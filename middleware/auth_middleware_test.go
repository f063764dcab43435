package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/models"
	"github.com/smartcollab/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(session *Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	router := gin.New()
	router.Use(Recovery(log, false), RequestLogger(log))
	router.GET("/private", AuthMiddleware(session), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	identity := services.NewJWTIdentity("secret", time.Hour, time.Hour)
	router := newTestRouter(&Session{Verifier: identity, TTL: time.Hour})
	token, _, err := identity.IssueSession(models.User{ID: "u-1", Email: "a@example.com"}, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
	assert.Nil(t, sessionCookie(w), "a fresh session is not re-issued")

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSlidesExpiration(t *testing.T) {
	issuedAt := time.Now().Add(-40 * time.Minute)
	old := services.NewJWTIdentity("secret", time.Hour, time.Hour,
		services.WithClock(func() time.Time { return issuedAt }))
	token, _, err := old.IssueSession(models.User{ID: "u-1", Email: "a@example.com"}, true)
	require.NoError(t, err)

	identity := services.NewJWTIdentity("secret", time.Hour, time.Hour)
	router := newTestRouter(&Session{Verifier: identity, TTL: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	refreshed := sessionCookie(w)
	require.NotNil(t, refreshed)
	assert.NotEqual(t, token, refreshed.Value)
	assert.Greater(t, refreshed.MaxAge, 50*60, "remembered sessions stay persistent")

	claims, err := identity.ParseSession(refreshed.Value)
	require.NoError(t, err)
	assert.True(t, claims.Remember)
}

func TestAuthMiddlewareClearsInvalidCookie(t *testing.T) {
	identity := services.NewJWTIdentity("secret", time.Hour, time.Hour)
	router := newTestRouter(&Session{Verifier: identity, TTL: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRecoveryAnswersJSON(t *testing.T) {
	identity := services.NewJWTIdentity("secret", time.Hour, time.Hour)
	router := newTestRouter(&Session{Verifier: identity, TTL: time.Hour})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}
