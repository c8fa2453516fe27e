package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cliniqa/clinicsign-server/internal/testutil"
)

func TestGuard_Decide(t *testing.T) {
	guard := NewGuard([]string{"/login"}, testutil.MakeNoopLogger())

	tests := []struct {
		name          string
		path          string
		hasCredential bool
		wantAction    GuardAction
		wantLocation  string
	}{
		{
			name:          "login page without credential",
			path:          "/login",
			hasCredential: false,
			wantAction:    GuardAllow,
		},
		{
			name:          "login page with credential",
			path:          "/login",
			hasCredential: true,
			wantAction:    GuardRedirectHome,
			wantLocation:  "/",
		},
		{
			name:          "protected page without credential",
			path:          "/dashboard",
			hasCredential: false,
			wantAction:    GuardRedirectLogin,
			wantLocation:  "/login?from=/dashboard",
		},
		{
			name:          "protected page with credential",
			path:          "/dashboard",
			hasCredential: true,
			wantAction:    GuardAllow,
		},
		{
			name:          "login sub-flow with credential",
			path:          "/login/reset-password",
			hasCredential: true,
			wantAction:    GuardRedirectHome,
			wantLocation:  "/",
		},
		{
			name:          "login sub-flow without credential",
			path:          "/login/reset-password",
			hasCredential: false,
			wantAction:    GuardAllow,
		},
		{
			name:          "root without credential",
			path:          "/",
			hasCredential: false,
			wantAction:    GuardRedirectLogin,
			wantLocation:  "/login?from=/",
		},
		{
			name:          "nested protected page without credential",
			path:          "/patients/42/notes",
			hasCredential: false,
			wantAction:    GuardRedirectLogin,
			wantLocation:  "/login?from=/patients/42/notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, location := guard.Decide(tt.path, tt.hasCredential)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantLocation, location)
		})
	}
}

func TestSkipsGuard(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/signatures", true},
		{"/api", true},
		{"/static/app.css", true},
		{"/assets/logo.svg", true},
		{"/favicon.ico", true},
		{"/images/photo.png", true},
		{"/dashboard", false},
		{"/login", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SkipsGuard(tt.path))
		})
	}
}

func TestGuard_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(NewGuard([]string{"/login"}, testutil.MakeNoopLogger()).Handler())
		router.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/api/signatures", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("redirects to login and carries the origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?from=/dashboard", w.Header().Get("Location"))
	})

	t.Run("cookie counts as a credential", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "sometoken"})
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("authenticated visitor is bounced off the login page", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("api paths bypass the guard", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/signatures", nil)
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestExtractToken(t *testing.T) {
	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})

		token, ok := ExtractToken(req)
		assert.True(t, ok)
		assert.Equal(t, "cookie-token", token)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")

		token, ok := ExtractToken(req)
		assert.True(t, ok)
		assert.Equal(t, "header-token", token)
	})

	t.Run("x-access-token header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Access-Token", "legacy-token")

		token, ok := ExtractToken(req)
		assert.True(t, ok)
		assert.Equal(t, "legacy-token", token)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, ok := ExtractToken(req)
		assert.False(t, ok)
	})

	t.Run("no credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := ExtractToken(req)
		assert.False(t, ok)
	})
}
