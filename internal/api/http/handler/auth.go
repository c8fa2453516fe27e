package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliniqa/clinicsign-server/internal/api/http/middleware"
	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
	"github.com/cliniqa/clinicsign-server/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// accessCookieMaxAge mirrors the access token TTL.
const accessCookieMaxAge = 15 * 60

// Auth exposes account registration and the session lifecycle over HTTP.
type Auth struct {
	service *service.Auth
	logger  *logger.Logger
}

func NewAuth(service *service.Auth, logger *logger.Logger) *Auth {
	return &Auth{service: service, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and a password of at least 8 characters are required"})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.logger.Error("registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID.String(), "email": user.Email})
}

// Login handles POST /api/auth/login. Besides returning the token pair it
// sets the access token cookie so browser navigations pass the route guard.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, accessToken, accessCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Refresh handles POST /api/auth/refresh. Rotation: the presented refresh
// token is revoked and a new pair is issued.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTokenRevoked),
			errors.Is(err, model.ErrTokenExpired),
			errors.Is(err, model.ErrTokenMismatch),
			errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token rejected"})
		default:
			h.logger.Error("token refresh failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token rejected"})
		}
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, accessToken, accessCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Logout handles POST /api/auth/logout. The refresh token is revoked and the
// access token cookie is cleared.
func (h *Auth) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			h.logger.Debug("logout revocation failed", "error", err)
		}
	}

	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
