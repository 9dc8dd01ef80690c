// Package api wires together all HTTP routes for the task board server.
//
// Route grouping philosophy:
//   - Probes and version info (/health, /ready, /version) are public so load
//     balancers and orchestrators can reach them without credentials.
//   - Everything under /api/v1 requires a JWT and passes through rate
//     limiting. Authorization beyond authentication lives in the handlers:
//     membership and admin checks depend on the organization in the path,
//     which middleware cannot see.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/taskboard/taskboard-server/internal/api/boards"
	"github.com/taskboard/taskboard-server/internal/api/orgs"
	"github.com/taskboard/taskboard-server/internal/cache"
	"github.com/taskboard/taskboard-server/internal/config"
	"github.com/taskboard/taskboard-server/internal/db/repositories"
	"github.com/taskboard/taskboard-server/internal/middleware"
	orgsvc "github.com/taskboard/taskboard-server/internal/orgs"
)

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
	cacheStore   interface{ Close() error }
}

// Shutdown stops all background goroutines and closes the cache store. It
// should be called after the HTTP server has been shut down so that in-flight
// requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.cacheStore != nil {
		if err := bg.cacheStore.Close(); err != nil {
			slog.Warn("cache store close failed", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)

	// Wrap *sql.DB with sqlx for the board and audit repositories
	sqlxDB := sqlx.NewDb(db, "postgres")
	boardRepo := repositories.NewBoardRepository(sqlxDB)
	auditRepo := repositories.NewAuditRepository(sqlxDB)

	// Cache store: Redis when configured, in-process otherwise. The Redis
	// client is shared with the rate limiter so both degrade together.
	var store cache.Store
	var redisClient *redis.Client
	bg := &BackgroundServices{}
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		store = redisStore
		redisClient = redisStore.Client()
		bg.cacheStore = redisStore
		log.Printf("Using Redis cache at %s", cfg.Redis.Addr)
	} else {
		memStore := cache.NewMemoryStore()
		store = memStore
		bg.cacheStore = memStore
	}

	orgService := orgsvc.NewService(orgRepo, membershipRepo, userRepo, store)

	// Initialize handlers
	orgHandlers := orgs.NewHandlers(orgService)
	boardHandlers := boards.NewHandlers(boardRepo, membershipRepo, auditRepo, cfg.Audit.Enabled)

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Probes and version info
	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, redisClient))
	router.GET("/version", versionHandler())

	apiV1 := router.Group("/api/v1")

	// Rate limiting ahead of authentication so credential-stuffing burns
	// the limiter, not the database
	if cfg.Security.RateLimiting.Enabled {
		limitCfg := middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Security.RateLimiting.RequestsPerMinute,
			BurstSize:         cfg.Security.RateLimiting.Burst,
		}
		if redisClient != nil {
			apiV1.Use(middleware.RedisRateLimitMiddleware(redisClient, limitCfg))
		} else {
			limiter := middleware.NewRateLimiter(limitCfg)
			bg.rateLimiters = append(bg.rateLimiters, limiter)
			apiV1.Use(middleware.RateLimitMiddleware(limiter))
		}
	}

	apiV1.Use(middleware.AuthMiddleware(userRepo))
	{
		// Organizations and memberships
		apiV1.POST("/organizations", orgHandlers.CreateOrganizationHandler())
		apiV1.GET("/organizations", orgHandlers.ListMyOrganizationsHandler())
		apiV1.GET("/memberships", orgHandlers.ListMyMembershipsHandler())
		apiV1.GET("/organizations/:id", orgHandlers.GetOrganizationHandler())
		apiV1.PATCH("/organizations/:id", orgHandlers.UpdateOrganizationHandler())
		apiV1.DELETE("/organizations/:id", orgHandlers.DeleteOrganizationHandler())
		apiV1.GET("/organizations/:id/memberships", orgHandlers.ListMembersHandler())
		apiV1.POST("/organizations/:id/invite", orgHandlers.InviteHandler())
		apiV1.POST("/organizations/:id/remove-member", orgHandlers.RemoveMemberHandler())
		apiV1.POST("/organizations/:id/update-role", orgHandlers.UpdateRoleHandler())
		apiV1.POST("/organizations/:id/leave", orgHandlers.LeaveHandler())
		apiV1.POST("/organizations/:id/transfer-owner", orgHandlers.TransferOwnerHandler())
		apiV1.GET("/organizations/:id/is-admin", orgHandlers.IsAdminHandler())

		// Boards, lists, and cards
		apiV1.POST("/organizations/:id/boards", boardHandlers.CreateBoardHandler())
		apiV1.GET("/organizations/:id/boards", boardHandlers.ListBoardsHandler())
		apiV1.GET("/boards/:boardId", boardHandlers.GetBoardHandler())
		apiV1.PATCH("/boards/:boardId", boardHandlers.UpdateBoardHandler())
		apiV1.DELETE("/boards/:boardId", boardHandlers.DeleteBoardHandler())
		apiV1.POST("/boards/:boardId/lists", boardHandlers.CreateListHandler())
		apiV1.GET("/boards/:boardId/lists", boardHandlers.ListListsHandler())
		apiV1.PATCH("/lists/:listId", boardHandlers.UpdateListHandler())
		apiV1.DELETE("/lists/:listId", boardHandlers.DeleteListHandler())
		apiV1.POST("/lists/:listId/cards", boardHandlers.CreateCardHandler())
		apiV1.GET("/lists/:listId/cards", boardHandlers.ListCardsHandler())
		apiV1.PATCH("/cards/:cardId", boardHandlers.UpdateCardHandler())
		apiV1.DELETE("/cards/:cardId", boardHandlers.DeleteCardHandler())

		// Activity history
		apiV1.GET("/organizations/:id/audit-logs", boardHandlers.ListActivityHandler())
		apiV1.GET("/organizations/:id/audit-logs/:entityId", boardHandlers.ListEntityActivityHandler())
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks database and, when configured, Redis connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, checks, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, checks, error"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also pings Redis when it is
// configured so a readiness gate fails when the cache and rate limiter
// would error.
func readinessHandler(db *sql.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		// Check database connection
		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				checks["redis"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "redis not ready",
				})
				return
			}
			checks["redis"] = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current server and API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		// Log the request
		if cfg.Logging.Format == "json" {
			logJSON(c, latency, path, query)
		} else {
			logText(c, latency, path, query)
		}
	}
}

// logJSON logs a request as a JSON-structured slog record.
func logJSON(c *gin.Context, latency time.Duration, path, query string) {
	requestID, _ := c.Get(middleware.RequestIDKey)
	slog.LogAttrs(
		c.Request.Context(),
		slog.LevelInfo,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", c.Writer.Status()),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", fmt.Sprintf("%v", requestID)),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// logText logs a request as a human-readable slog text record.
func logText(c *gin.Context, latency time.Duration, path, query string) {
	// reuse the same structured output; slog will emit text format when the global
	// handler is a TextHandler (configured in telemetry.SetupLogger).
	logJSON(c, latency, path, query)
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
