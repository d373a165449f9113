// Package main runs the ToolHunt directory HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toolhunt-ai/backend/config"
	"github.com/toolhunt-ai/backend/internal/auth"
	"github.com/toolhunt-ai/backend/internal/billing"
	"github.com/toolhunt-ai/backend/internal/emaillogs"
	"github.com/toolhunt-ai/backend/internal/middleware"
	"github.com/toolhunt-ai/backend/internal/moderation"
	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/internal/prolibrary"
	"github.com/toolhunt-ai/backend/internal/ratelimit"
	"github.com/toolhunt-ai/backend/internal/realtime"
	"github.com/toolhunt-ai/backend/internal/submissions"
	"github.com/toolhunt-ai/backend/internal/tools"
	"github.com/toolhunt-ai/backend/pkg/database"
	"github.com/toolhunt-ai/backend/pkg/queue"
	"github.com/toolhunt-ai/backend/pkg/redis"
	"github.com/toolhunt-ai/backend/pkg/response"
	"github.com/toolhunt-ai/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			LogosBucket:          cfg.AWS.LogosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.Session.Secret, cfg.JWT.ExpireMinutes, cfg.Session.ExpireDays)
	authz := auth.NewAuthorizer(cfg.Admin.Emails)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	if err := hub.Start(); err != nil {
		logger.Warn("moderation feed subscription failed", zap.Error(err))
	}
	defer hub.Stop()

	// Auth and sessions
	authRepo := auth.NewRepository(pool)
	cookie := auth.CookieSettings{Name: cfg.Session.CookieName, Secure: cfg.Env == "production"}
	authHandler := auth.NewHandler(authRepo, tokens, cookie, logger)

	// Tools catalog
	toolRepo := tools.NewRepository(pool)
	toolHandler := tools.NewHandler(toolRepo, s3Client, logger)

	// Public intake
	jobQueue := queue.NewQueue(rdb.Client, logger)
	limiter := ratelimit.NewDailyLimiter(rdb.Client, cfg.RateLimit.SubmissionsPerDay, logger)
	submissionRepo := submissions.NewRepository(pool)
	submissionHandler := submissions.NewHandler(submissionRepo, limiter, hub, logger)

	// Moderation
	moderationRepo := moderation.NewRepository(pool)
	moderationService := moderation.NewService(submissionRepo, toolRepo, moderationRepo, jobQueue, hub, logger)
	moderationHandler := moderation.NewHandler(moderationService, submissionRepo, moderationRepo, logger)

	// Subscriber library and billing
	proRepo := prolibrary.NewRepository(pool)
	proHandler := prolibrary.NewHandler(proRepo, logger)
	webhookHandler := billing.NewWebhookHandler(authRepo, cfg.Billing.WebhookSecret, logger)

	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, logger)

	sessionValidate := func(token string) (*models.SessionUser, error) {
		claims, err := tokens.ValidateSessionToken(token)
		if err != nil {
			return nil, err
		}
		return &models.SessionUser{
			UID:   claims.UserID.String(),
			Email: claims.Email,
			Admin: authz.IsAdmin(claims.Email, claims.Admin),
			Pro:   claims.Pro,
		}, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Session(cfg.Session.CookieName, tokens, authz))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Identity (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Sessions
	router.POST("/session", authHandler.CreateSession)
	router.DELETE("/session", authHandler.DestroySession)
	router.GET("/whoami", func(c *gin.Context) {
		if user := middleware.CurrentUser(c); user != nil {
			response.OK(c, gin.H{"user": user})
			return
		}
		response.OK(c, gin.H{"user": nil})
	})

	// Public catalog
	router.GET("/tools", toolHandler.List)
	router.GET("/tools/:slug", toolHandler.GetBySlug)
	router.GET("/tools/:slug/logo-url", toolHandler.LogoURL)

	// Public intake (honeypot and per-address daily limit enforced in handler)
	router.POST("/submissions", submissionHandler.Submit)

	// Moderation and catalog management (moderators only)
	admin := router.Group("", middleware.RequireAdmin())
	{
		admin.GET("/submissions", moderationHandler.ListQueue)
		admin.GET("/submissions/:id", moderationHandler.GetSubmission)
		admin.POST("/submissions/:id/approve", moderationHandler.Approve)
		admin.POST("/submissions/:id/reject", moderationHandler.Reject)
		admin.GET("/moderation/log", moderationHandler.ListLog)
		admin.GET("/emails", emailLogsHandler.ListRecent)

		admin.POST("/tools", toolHandler.Create)
		admin.PATCH("/tools/:slug/status", toolHandler.UpdateStatus)
		admin.PATCH("/tools/:slug/flags", toolHandler.UpdateFlags)
		admin.POST("/tools/:slug/logo", toolHandler.UploadLogo)
	}

	// Subscriber library (active subscription or moderator)
	pro := router.Group("/pro", middleware.RequirePro(authRepo))
	{
		pro.GET("/resources", proHandler.List)
	}

	// Webhooks (no session; signature verified in handler when configured)
	router.POST("/webhooks/payment", webhookHandler.PaymentEvent)

	// WebSocket moderation feed (token in query; browsers cannot set headers on dials)
	router.GET("/ws/moderation", realtime.ServeWs(hub, logger, sessionValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
