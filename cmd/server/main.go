package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soumyacodes007/social-media-backend/internal/cache"
	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/config"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/handlers"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/middleware"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/soumyacodes007/social-media-backend/internal/stories"
	"github.com/soumyacodes007/social-media-backend/internal/telemetry"
	"github.com/soumyacodes007/social-media-backend/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Social media server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.Addr()),
	)

	metrics.Initialize()

	ctx := context.Background()

	tp, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	// The server starts even when the database is down; API requests answer
	// 503 until a later connection attempt succeeds.
	connector := database.NewConnector(database.Options{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseURL,
		ConnectTimeout:  cfg.DBConnectTimeout,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Tracing:         cfg.OTelEnabled,
	})
	defer connector.Close()

	if db, err := connector.Get(ctx); err != nil {
		logger.Log.Warn("Database not reachable at startup, skipping migrations", zap.Error(err))
	} else if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	var mirror websocket.OnlineMirror
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, presence will not be mirrored", zap.Error(err))
		} else {
			defer redisClient.Close()
			// Sockets do not survive a restart.
			if err := redisClient.ClearOnline(ctx); err != nil {
				logger.Log.Warn("Failed to clear stale online set", zap.Error(err))
			}
			mirror = redisClient
		}
	}

	blobs := newBlobStore(ctx, cfg)

	repos := repository.New(connector)
	router := chat.NewRouter(repos.Chats)

	hub := websocket.NewHub()
	hub.SetRateLimitConfig(websocket.RateLimitConfig{
		MessagesPerSecond: cfg.WSRateLimit,
		Burst:             cfg.WSRateBurst,
	})
	go hub.Run()

	presence := websocket.NewPresence(hub, repos.Users, mirror)
	gateway := websocket.NewGateway(hub, presence, router)
	wsHandler := websocket.NewHandler(gateway, cfg.AllowedOrigins())

	cleanup := stories.NewCleanupService(repos.Notes, repos.Stories, blobs, cfg.StoryCleanupInterval)
	cleanup.Start()
	defer cleanup.Stop()

	h := handlers.NewHandlers(repos, router, blobs, handlers.Options{
		EnableBulkDelete: cfg.EnableChatBulkDelete,
	})
	h.SetGateway(gateway)
	h.SetHealthChecker(connector)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.MetricsMiddleware(),
	)
	if cfg.OTelEnabled {
		r.Use(middleware.TracingMiddleware(cfg.ServiceName)...)
	}

	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	rateLimit := middleware.DefaultRateLimitConfig()
	rateLimit.RequestsPerSecond = cfg.HTTPRateLimit
	rateLimit.Burst = cfg.HTTPRateBurst
	r.Use(middleware.RateLimit(rateLimit))

	h.RegisterProbes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/ws/stats", wsHandler.Stats)

	api := r.Group("/api")
	api.Use(middleware.RequireDatabase(connector, cfg.DBConnectTimeout))
	h.Register(api)

	// The upgrade bypasses gin so the connection can be hijacked.
	mux := http.NewServeMux()
	mux.Handle("/api/ws", wsHandler)
	mux.Handle("/", r)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("WebSocket hub shutdown incomplete", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

// newBlobStore returns S3 behind a circuit breaker when a bucket is
// configured, and an in-memory store otherwise.
func newBlobStore(ctx context.Context, cfg *config.Config) storage.BlobStore {
	if cfg.AWSBucket == "" {
		logger.Log.Warn("AWS_BUCKET not set, media is kept in memory")
		return storage.NewMemoryStore("memory://blobs")
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNURL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize S3 uploader", zap.Error(err))
	}
	if err := uploader.CheckBucketAccess(ctx); err != nil {
		logger.Log.Warn("S3 bucket not reachable at startup", zap.Error(err))
	}
	return storage.NewBreakerStore(uploader, storage.DefaultBreakerConfig())
}
