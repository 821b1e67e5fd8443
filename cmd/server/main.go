// Package main runs the networking HTTP server with WebSocket push and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-events/networking/config"
	"github.com/aura-events/networking/internal/auth"
	"github.com/aura-events/networking/internal/connections"
	"github.com/aura-events/networking/internal/events"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/meetings"
	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/internal/networking"
	"github.com/aura-events/networking/internal/notifications"
	"github.com/aura-events/networking/internal/profiles"
	"github.com/aura-events/networking/internal/realtime"
	"github.com/aura-events/networking/internal/threads"
	"github.com/aura-events/networking/internal/zego"
	"github.com/aura-events/networking/pkg/database"
	"github.com/aura-events/networking/pkg/redis"
	"github.com/aura-events/networking/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{MaxConns: int32(cfg.Database.MaxConns)}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	profileRepo := profiles.NewRepository(pool)
	eventRepo := events.NewRepository(pool)

	// Notifications
	notificationRepo := notifications.NewRepository(pool)
	notifier := notifications.NewService(notificationRepo, hub, logger)
	notificationHandler := notifications.NewHandler(notificationRepo)

	// Matches
	matchRepo := matching.NewRepository(pool)
	states := matching.NewRedisStateStore(rdb.Client, cfg.Networking.GenerationTTL)
	matchingSvc := matching.NewService(matchRepo, profileRepo, states, matching.Options{
		PoolSize:    cfg.Networking.CandidatePoolSize,
		MinScore:    cfg.Networking.MinScore,
		MaxPrimary:  cfg.Networking.MaxPrimary,
		MaxFallback: cfg.Networking.MaxFallback,
	}, logger)
	matchingHandler := matching.NewHandler(matchingSvc, logger)

	// Requests and connections
	connRepo := connections.NewRepository(pool)
	connSvc := connections.NewService(connRepo.Requests(), connRepo.Connections(), matchRepo, profileRepo, notifier, logger)
	connHandler := connections.NewHandler(connSvc, logger)

	// Meetings
	rooms, err := zego.NewRooms(cfg.Zego)
	if err != nil {
		logger.Fatal("zego", zap.Error(err))
	}
	var meetingRooms meetings.Rooms
	if rooms != nil {
		meetingRooms = rooms
	} else {
		logger.Info("video rooms disabled")
	}
	meetingSvc := meetings.NewService(meetings.NewRepository(pool), eventRepo, meetingRooms, profileRepo, notifier, meetings.Options{
		Location:      cfg.Meetings.Location,
		VideoDuration: cfg.Meetings.VideoDuration,
	}, logger)
	meetingHandler := meetings.NewHandler(meetingSvc, logger)

	// Threads
	threadHandler := threads.NewHandler(threads.NewService(threads.NewRepository(pool), logger))

	// Snapshot + scheduled push while a socket is open
	networkingSvc := networking.NewService(matchingSvc, connSvc, meetingSvc, profileRepo, logger)
	networkingHandler := networking.NewHandler(networkingSvc, logger)
	refreshers := realtime.NewRefresherRegistry(networkingSvc.Push, hub, cfg.Networking.RefreshInterval, logger)
	refreshers.SetCounter(hub.Connections)
	hub.SetPresenceHandler(refreshers.OnPresence)
	hub.SetRefreshHandler(refreshers.Nudge)

	wsValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins()))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/networking", networkingHandler.Get)

		api.GET("/matches", matchingHandler.List)
		api.POST("/matches/:id/dismiss", matchingHandler.Dismiss)

		api.POST("/requests", connHandler.Connect)
		api.GET("/requests", connHandler.ListRequests)
		api.POST("/requests/:id/accept", connHandler.Accept)
		api.POST("/requests/:id/decline", connHandler.Decline)
		api.POST("/requests/:id/withdraw", connHandler.Withdraw)
		api.POST("/requests/:id/cancel", connHandler.Cancel)
		api.GET("/connections", connHandler.ListConnections)
		api.DELETE("/connections/:id", connHandler.Remove)

		api.POST("/meetings", meetingHandler.Schedule)
		api.GET("/meetings", meetingHandler.List)
		api.GET("/meetings/catalog/events", meetingHandler.CatalogEvents)
		api.GET("/meetings/catalog/events/:id/sessions", meetingHandler.CatalogSessions)
		api.POST("/meetings/:id/confirm", meetingHandler.Confirm)
		api.POST("/meetings/:id/decline", meetingHandler.Decline)
		api.POST("/meetings/:id/cancel", meetingHandler.Cancel)
		api.GET("/meetings/:id/join", meetingHandler.Join)

		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)

		api.POST("/threads", threadHandler.Open)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsValidate))

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

	refreshers.StopAll()
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
