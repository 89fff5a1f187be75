// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. RequireAuth verifies the
// JWT carried in the Authorization header and stashes the caller's identity
// in the Gin context for handlers, the rate limiter and the idempotency
// middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/auth"
)

// ctxKeyUserID holds the authenticated user's numeric ID (uint).
const ctxKeyUserID = "userID"

// TokenParser verifies a raw bearer token. *auth.Tokens satisfies it.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// RequireAuth rejects requests that do not carry a valid bearer token.
//
//   - no Authorization header, or a non-Bearer scheme: 401 unauthorized
//   - a token that fails verification or has expired: 403 forbidden
//
// On success the user ID is stored in the Gin context and the
// request-scoped logger gains a user_id field.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortAuth(c, http.StatusForbidden, "forbidden", "invalid or expired token")
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)

		l := LoggerFrom(c).With().Uint("user_id", claims.UserID).Logger()
		attachLogger(c, &l)

		c.Next()
	}
}

// UserID returns the authenticated user's ID stored by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func bearerToken(h string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	rid, _ := c.Get(requestIDKey)
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": asString(rid),
		"code":       code,
		"message":    msg,
	})
}
