package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/taskory/taskory-api/handlers"
	"github.com/taskory/taskory-api/internal/config"
	"github.com/taskory/taskory-api/internal/database"
	"github.com/taskory/taskory-api/internal/oidc"
	"github.com/taskory/taskory-api/internal/todos"
	"github.com/taskory/taskory-api/internal/users"
	"github.com/taskory/taskory-api/pkg/logger"
	"github.com/taskory/taskory-api/pkg/metrics"
	"github.com/taskory/taskory-api/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s keycloak=%v redis=%v", cfg.Server.Environment, cfg.Keycloak.URL != "", cfg.Redis.Host != "")

	middleware.SetProduction(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigin))

	// Connect to Redis early so the rate-limiter can use it when configured
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctx := context.Background()

	// Keycloak OIDC verifier; ALLOW_INSECURE_TOKEN=true substitutes a
	// claims-only parser for integration testing against unsigned tokens.
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.Realm != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			defer ver.Close()
			verifier = ver
			logger.Infof("OIDC verifier ready for issuer %s", cfg.Keycloak.Issuer())
		}
	}
	if verifier == nil {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier(cfg.Keycloak.ClientID)
		} else {
			logger.Fatalf("no token verifier available: check KC_URL/KC_REALM/KC_CLIENT_ID or set ALLOW_INSECURE_TOKEN=true")
		}
	}

	db, err := database.Open(ctx, cfg.Database.URL, cfg.Database.PingTimeout)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := database.CreateSchema(ctx, db); err != nil {
		logger.Fatalf("failed to create schema: %v", err)
	}

	userSvc := users.NewService(users.NewBunRepository(db))
	todoSvc := todos.NewService(todos.NewBunRepository(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// readiness: 200 only while critical dependencies answer
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{"oidc": verifier != nil}

		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps["database"] = db.PingContext(pingCtx) == nil
		if !deps["database"] {
			ready = false
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = rdb != nil && rdb.Ping(pingCtx).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)

	authH := handlers.NewAuthHandler()
	api := r.Group("/api/v1")
	authH.RegisterPublic(api)

	// everything below requires a verified token; the user record is
	// reconciled with the claims on every authenticated request
	protected := api.Group("", middleware.AuthMiddleware(verifier), middleware.UserSyncMiddleware(userSvc))
	authH.Register(protected)
	handlers.NewTodoHandler(todoSvc).Register(protected)
	handlers.NewUserHandler(userSvc).Register(protected)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

// corsMiddleware allows the configured frontend origin and answers preflight
// requests.
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
