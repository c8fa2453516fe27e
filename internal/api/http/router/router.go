package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliniqa/clinicsign-server/internal/api/http/handler"
	"github.com/cliniqa/clinicsign-server/internal/api/http/middleware"
	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
	"github.com/cliniqa/clinicsign-server/internal/service"
)

// Router assembles the HTTP surface: the route guard on page navigations,
// public auth endpoints and the authenticated signature API.
type Router struct {
	authService      *service.Auth
	signatureService *service.Signature
	tokenService     *service.TokenService
	contextManager   model.ContextManager
	publicPrefixes   []string
	logger           *logger.Logger
}

func New(
	authService *service.Auth,
	signatureService *service.Signature,
	tokenService *service.TokenService,
	contextManager model.ContextManager,
	publicPrefixes []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:      authService,
		signatureService: signatureService,
		tokenService:     tokenService,
		contextManager:   contextManager,
		publicPrefixes:   publicPrefixes,
		logger:           logger,
	}
}

// Register builds the gin engine with all middleware and routes attached.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.NewGuard(r.publicPrefixes, r.logger).Handler())

	authHandler := handler.NewAuth(r.authService, r.logger)
	signatureHandler := handler.NewSignature(r.signatureService, r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticator(r.tokenService, r.contextManager, r.logger).Handler()

	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	signatures := engine.Group("/api/signatures", authenticate)
	{
		signatures.POST("", signatureHandler.Upload)
		signatures.GET("", signatureHandler.List)
		signatures.GET("/types/:type", signatureHandler.GetByType)
		signatures.PUT("/:id", signatureHandler.Update)
		signatures.DELETE("/:id", signatureHandler.Delete)
		signatures.DELETE("", signatureHandler.Clear)
	}

	// Placeholder pages until the front-end is served from here. The guard
	// still applies, so these exercise the navigation rules end to end.
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "clinicsign")
	})
	engine.GET("/login", func(c *gin.Context) {
		c.String(http.StatusOK, "login")
	})

	return engine
}
