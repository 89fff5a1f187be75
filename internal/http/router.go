// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-gallery-backend/docs"
	"github.com/tbourn/go-gallery-backend/internal/auth"
	"github.com/tbourn/go-gallery-backend/internal/config"
	"github.com/tbourn/go-gallery-backend/internal/http/handlers"
	"github.com/tbourn/go-gallery-backend/internal/http/middleware"
	"github.com/tbourn/go-gallery-backend/internal/repo"
	"github.com/tbourn/go-gallery-backend/internal/services"
	"github.com/tbourn/go-gallery-backend/internal/storage"
)

// globalBodyLimit caps JSON bodies. The upload route is exempt; its handler
// applies cfg.Storage.MaxUploadBytes instead.
const globalBodyLimit = 1 << 20

// idemStore adapts the idempotency repository functions to the
// middleware.IdempotencyStore interface.
type idemStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup proxies repo.GetIdempotency; a missing or expired record is a miss.
func (s idemStore) Lookup(ctx context.Context, userID uint, scope, key string, now time.Time) (*middleware.StoredResponse, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &middleware.StoredResponse{Status: rec.Status, Body: []byte(rec.Body)}, nil
}

// Save proxies repo.CreateIdempotency.
func (s idemStore) Save(ctx context.Context, userID uint, scope, key string, status int, body []byte) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, status, string(body), s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return middleware.ErrIdempotencyConflict
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, CORS
// and security headers, health and metrics endpoints, and then mounts the
// gallery API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. gzip
//  6. Body size limiter (upload exempt)
//  7. Metrics
//  8. CORS and Security headers
//
// Per group: public routes are rate limited by IP; protected routes run
// RequireAuth first so the limiter keys by user. POST /like additionally
// honours Idempotency-Key, checked ahead of the limiter.
//
// locker may be nil, in which case like toggles rely on the database alone.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, blobs storage.BlobStore, locker services.PairLocker, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Compress JSON; images and the scrape endpoint pass through
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Global body size limit (1 MiB) except for uploads
	apiBase := cfg.APIBasePath
	r.Use(limitBody(globalBodyLimit, joinPath(apiBase, "/upload")))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotentReplay}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// Stored images may be cached and embedded cross-origin.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:                cfg.Security.EnableHSTS,
		HSTSMaxAge:                cfg.Security.HSTSMaxAge,
		NoStore:                   true,
		CacheablePrefixes:         []string{"/uploads/"},
		EnablePolicy:              true,
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Locally stored blobs are served as-is; S3 objects are addressed by URL.
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		r.Static("/uploads", cfg.Storage.UploadDir)
	}

	// Dependency injection: services ← repo/db/blobs/locker
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	timeout := cfg.DB.QueryTimeout
	authSvc := &services.AuthService{DB: db, Tokens: tokens, Timeout: timeout}
	photoSvc := &services.PhotoService{DB: db, Blobs: blobs, Timeout: timeout}
	feedSvc := services.NewFeedService(db)
	feedSvc.Timeout = timeout
	likeSvc := &services.LikeService{
		DB:         db,
		Locker:     locker,
		CheckPhoto: true,
		Timeout:    timeout,
	}
	commentSvc := &services.CommentService{DB: db, Timeout: timeout}

	h := handlers.New(authSvc, photoSvc, feedSvc, likeSvc, commentSvc)
	h.MaxUploadBytes = cfg.Storage.MaxUploadBytes

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	idem := middleware.Idempotency(
		middleware.IdempotencyOptions{Scope: "like"},
		idemStore{db: db, ttl: cfg.IdempotencyTTL},
	)

	api := groupWithPrefix(r, apiBase)
	api.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Server is running...") })

	// Public API
	pub := api.Group("", rl.Handler())
	{
		pub.POST("/register", h.Register)
		pub.POST("/login", h.Login)
		pub.GET("/comments/:photoId", h.ListComments)
	}

	// Authenticated API
	requireAuth := middleware.RequireAuth(tokens)
	priv := api.Group("", requireAuth, rl.Handler())
	{
		priv.POST("/upload", h.UploadPhoto)
		priv.GET("/photos", h.ListPhotos)
		priv.POST("/comments", h.CreateComment)
		priv.DELETE("/comments/:id", h.DeleteComment)
	}

	// Replays are answered before the limiter so a retried toggle gets its
	// stored response instead of 429.
	api.POST("/like", requireAuth, idem, rl.Handler(), h.ToggleLike)
}

// limitBody returns a Gin middleware that caps the request body size to
// maxBytes using http.MaxBytesReader. Requests exceeding the cap will cause
// downstream body reads to error. Routes whose full path is listed in skip
// are left untouched.
func limitBody(maxBytes int64, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fp := c.FullPath()
		for _, s := range skip {
			if fp == s {
				c.Next()
				return
			}
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath returns the route path as gin reports it from FullPath.
func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
