// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe methods such as
// POST /api/like. A client that retries with the same Idempotency-Key gets
// the response the first attempt produced instead of a second toggle.
//
// Persistence is decoupled through the narrow IdempotencyStore interface so
// the middleware never touches the database directly.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay is set to "true" on responses served from the store.
const HeaderIdempotentReplay = "Idempotent-Replayed"

const (
	ctxKeyIdemReplay = "idem.replay"

	// maxStoredBody caps how much of a response is captured for replay.
	maxStoredBody = 64 << 10
)

// ErrIdempotencyConflict is returned by IdempotencyStore.Save when another
// request already stored a response under the same key.
var ErrIdempotencyConflict = errors.New("idempotency key already recorded")

// StoredResponse is a previously completed response ready for replay.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore persists completed responses keyed by (user, scope, key).
// Lookup returns (nil, nil) when nothing live is stored; expired entries
// must not be returned.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID uint, scope, key string, now time.Time) (*StoredResponse, error)
	Save(ctx context.Context, userID uint, scope, key string, status int, body []byte) error
}

// IsReplay reports whether the response for this request came from the store.
// RateLimiter skips replays and the access log tags them.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures Idempotency.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
	// Scope namespaces keys per operation. Defaults to the matched route.
	Scope string
	// Now is the clock used for expiry checks; defaults to time.Now.
	Now func() time.Time
}

// Idempotency validates the Idempotency-Key header and, for authenticated
// callers, replays or records responses through store.
//
//   - header absent: no-op.
//   - header invalid: 400 bad_idempotency_key.
//   - stored response found: the stored status and body are written back
//     with Idempotent-Replayed: true and the handler is skipped.
//   - otherwise the handler runs and a 2xx response is saved.
//
// Lookup and save failures are logged and never fail the request. Must be
// installed after RequireAuth.
func Idempotency(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		uid, ok := UserID(c)
		if store == nil || !ok {
			c.Next()
			return
		}
		scope := opts.Scope
		if scope == "" {
			scope = c.Request.Method + " " + c.FullPath()
		}
		ctx := c.Request.Context()
		lg := LoggerFrom(c)

		prev, err := store.Lookup(ctx, uid, scope, key, now().UTC())
		if err != nil {
			lg.Warn().Err(err).Msg("idempotency lookup failed")
		}
		if prev != nil {
			c.Set(ctxKeyIdemReplay, true)
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status < 200 || status >= 300 || cw.overflow {
			return
		}
		if err := store.Save(ctx, uid, scope, key, status, cw.buf.Bytes()); err != nil {
			if errors.Is(err, ErrIdempotencyConflict) {
				lg.Debug().Str("scope", scope).Msg("idempotency key recorded concurrently")
				return
			}
			lg.Warn().Err(err).Msg("idempotency save failed")
		}
	}
}

// captureWriter tees the response body into buf, up to maxStoredBody bytes.
type captureWriter struct {
	gin.ResponseWriter
	buf      bytes.Buffer
	overflow bool
}

func (w *captureWriter) capture(p []byte) {
	if w.overflow {
		return
	}
	if w.buf.Len()+len(p) > maxStoredBody {
		w.overflow = true
		w.buf.Reset()
		return
	}
	w.buf.Write(p)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.capture(p)
	return w.ResponseWriter.Write(p)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}
