package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cliniqa/clinicsign-server/internal/logger"
)

// GuardAction is the route guard's verdict for a page navigation.
type GuardAction int

const (
	// GuardAllow lets the navigation through.
	GuardAllow GuardAction = iota
	// GuardRedirectHome sends an authenticated visitor away from a public
	// page, to "/".
	GuardRedirectHome
	// GuardRedirectLogin sends an unauthenticated visitor to the login page,
	// carrying the requested path in the "from" query parameter.
	GuardRedirectLogin
)

// Guard gates page navigations: public pages turn away visitors who already
// hold a credential, everything else requires one. It only checks that a
// credential is present; the authenticate middleware on the API routes does
// the actual verification.
type Guard struct {
	publicPrefixes []string
	logger         *logger.Logger
}

func NewGuard(publicPrefixes []string, logger *logger.Logger) *Guard {
	return &Guard{
		publicPrefixes: publicPrefixes,
		logger:         logger,
	}
}

// Decide applies the guard rules to a path. Exactly one redirect can apply:
// a path is either public or it is not.
func (g *Guard) Decide(requestPath string, hasCredential bool) (GuardAction, string) {
	public := false
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(requestPath, prefix) {
			public = true
			break
		}
	}

	if public && hasCredential {
		return GuardRedirectHome, "/"
	}
	if !public && !hasCredential {
		return GuardRedirectLogin, "/login?from=" + requestPath
	}
	return GuardAllow, ""
}

// SkipsGuard reports whether a path is outside the guard's scope. API calls
// answer with status codes rather than redirects, and asset requests are
// never navigations.
func SkipsGuard(requestPath string) bool {
	if strings.HasPrefix(requestPath, "/api") {
		return true
	}
	if strings.HasPrefix(requestPath, "/static/") || strings.HasPrefix(requestPath, "/assets/") {
		return true
	}
	if requestPath == "/favicon.ico" {
		return true
	}
	return path.Ext(requestPath) != ""
}

// Handler adapts the guard to gin.
func (g *Guard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path
		if SkipsGuard(requestPath) {
			c.Next()
			return
		}

		_, hasCredential := ExtractToken(c.Request)
		action, location := g.Decide(requestPath, hasCredential)
		if action == GuardAllow {
			c.Next()
			return
		}

		g.logger.Debug("route guard redirect",
			"path", requestPath,
			"has_credential", hasCredential,
			"location", location)
		c.Redirect(http.StatusFound, location)
		c.Abort()
	}
}
