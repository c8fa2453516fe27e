package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
)

// TokenVerifier resolves an access token to a user ID.
type TokenVerifier interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticator verifies the access token on API requests and stores the
// user ID in the request context.
type Authenticator struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticator(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticator {
	return &Authenticator{
		verifier:       verifier,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (a *Authenticator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		userID, err := a.verifier.GetUserID(c.Request.Context(), token)
		if err != nil {
			a.logger.Debug("access token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		ctx := a.contextManager.SetUserIDToContext(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
