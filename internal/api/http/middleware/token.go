package middleware

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie the login handler sets for browser flows.
const AccessTokenCookie = "access_token"

// ExtractToken pulls the access token out of a request. Browser flows use the
// cookie; API clients use the Authorization header or X-Access-Token.
func ExtractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			return token, true
		}
	}

	if token := r.Header.Get("X-Access-Token"); token != "" {
		return token, true
	}

	return "", false
}
