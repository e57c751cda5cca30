package http

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/handler"
	"vidtube/internal/metrics"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole application and serves until interrupted.
func Run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	ctx := context.Background()

	mediaService, err := service.NewMediaService(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init media service: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)

	userService := service.NewUserService(userRepo, mediaService, logger)
	authService := service.NewAuthService(userRepo, cfg)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo)
	videoService := service.NewVideoService(videoRepo, logger)
	playlistService := service.NewPlaylistService(playlistRepo)

	collector := metrics.NewCollector()

	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService, cfg, logger),
		UserHandler:     handler.NewUserHandler(userService, videoService, logger),
		ChannelHandler:  handler.NewChannelHandler(subscriptionService, logger),
		VideoHandler:    handler.NewVideoHandler(videoService, logger),
		PlaylistHandler: handler.NewPlaylistHandler(playlistService, logger),
		Metrics:         collector,
		RequestLogger:   middleware.RequestLogger(logger),
		AccessSecret:    cfg.AccessTokenSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
