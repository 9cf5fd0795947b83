// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging with redaction, panic recovery, metrics,
// rate limiting, CORS, and security headers.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/theendpage/go-farewell-backend/internal/config"
	"github.com/theendpage/go-farewell-backend/internal/genai"
	"github.com/theendpage/go-farewell-backend/internal/http/handlers"
	"github.com/theendpage/go-farewell-backend/internal/http/middleware"
	"github.com/theendpage/go-farewell-backend/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Gzip on responses
func RegisterRoutes(r *gin.Engine, db *gorm.DB, generator genai.Generator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(8 << 20)) // multipart uploads need more than a JSON API would

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.RateRPS > 0 {
		r.Use(middleware.RateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP))
	}

	applyCORS(r, cfg)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:        cfg.Security.EnableHSTS,
		HSTSMaxAgeSeconds: int(cfg.Security.HSTSMaxAge.Seconds()),
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Uploaded illustrations and backgrounds, referenced by stored filename.
	r.Static("/uploads", cfg.UploadDir)

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/generator/config
	policy := services.AllowAll{}
	genSvc := &services.GenerationService{
		DB:              db,
		Generator:       generator,
		Policy:          policy,
		FallbackUserID:  cfg.FallbackUserID,
		MaxMessageRunes: 4000,
		TitleLocale:     language.French,
		TitleMaxLen:     60,
	}
	respSvc := &services.ResponseService{DB: db, Policy: policy}
	voteSvc := &services.VoteService{DB: db, Policy: policy}
	userSvc := &services.UserService{
		DB:        db,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		TokenTTL:  cfg.Auth.TokenTTL,
	}
	h := handlers.New(genSvc, respSvc, voteSvc, userSvc, cfg.UploadDir)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Generation
		api.POST("/generation/post", h.GeneratePrompt)
		api.PUT("/generation/:id", h.ModifyPrompt)

		// Responses
		api.POST("/reponses", h.CreateResponse)
		api.GET("/reponses", h.ListResponses)
		api.GET("/reponses/:id", h.GetResponse)

		// Votes
		api.POST("/votes", h.CastVote)
		api.GET("/votes", h.ListVotes)
		api.GET("/votes/count/:id", h.CountVotes)
		api.GET("/votes/:id", h.GetVote)
		api.DELETE("/votes/:id", h.DeleteVote)

		// Users
		api.POST("/users/register", h.Register)
		api.POST("/users/login", h.Login)
		api.GET("/users/:id", h.GetUser)
	}
}

// applyCORS installs the cross-origin posture: allow-all when no origins are
// configured (credentials disabled), otherwise a strict allowlist.
func applyCORS(r *gin.Engine, cfg config.Config) {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length"}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO: * even without an Origin header, for simple health checks.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

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
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps the request body size using http.MaxBytesReader; reads past
// the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
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
