package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/standup-backend/config"
	_ "github.com/d60-Lab/standup-backend/docs"
	"github.com/d60-Lab/standup-backend/internal/api"
	"github.com/d60-Lab/standup-backend/internal/api/handler"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/internal/service"
	"github.com/d60-Lab/standup-backend/pkg/database"
	"github.com/d60-Lab/standup-backend/pkg/logger"
	"github.com/d60-Lab/standup-backend/pkg/telemetry"
)

// @title Standup Backend API
// @version 1.0
// @description Team standup messaging backend
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Server.Mode == "debug"); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Init(ctx, cfg)
	if err != nil {
		logger.Fatal("telemetry init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, cache disabled", zap.Error(err))
			cache = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	noteRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	channelSvc := service.NewChannelService(userRepo, channelRepo, memberRepo)
	notifySvc := service.NewNotificationService(userRepo, noteRepo, cache, cfg.Notify.UnreadLimit, cfg.Notify.CacheTTL)
	inviteSvc := service.NewInviteService(
		userRepo, inviteRepo, noteRepo, channelSvc, notifySvc,
		service.DeclinePolicy(cfg.Invite.DeclinePolicy),
	)
	messageSvc := service.NewMessageService(userRepo, messageRepo, channelSvc)

	h := handler.New(authSvc, channelSvc, inviteSvc, notifySvc, messageSvc)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	if cache != nil {
		_ = cache.Close()
	}
}
