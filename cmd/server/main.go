package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"voiceclone/docs" // swagger docs
	"voiceclone/internal/auth"
	"voiceclone/internal/cache"
	"voiceclone/internal/config"
	"voiceclone/internal/db"
	"voiceclone/internal/fishaudio"
	"voiceclone/internal/handler"
	"voiceclone/internal/repository"
	"voiceclone/internal/router"
	"voiceclone/internal/service"
)

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs

// @title Voice Clone API
// @version 1.0
// @description Credit-metered voice cloning and text-to-speech on top of Fish Audio, with JWT authentication.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, model lists will not be cached", zap.Error(err))
	}
	cancelPing()

	// Initialize auth components
	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Fatal("jwt init", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(gormDB)
	voiceClient := fishaudio.NewClient(cfg.FishAudioBaseURL, cfg.FishAudioAPIKey, cfg.UpstreamTimeout, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, cfg.SignupCredits, logger)
	userService := service.NewUserService(userRepo)
	creditService := service.NewCreditService(userRepo, logger)
	voiceService := service.NewVoiceService(voiceClient, creditService, cacheClient, cfg.ModelCacheTTL, logger)

	e := echo.New()
	router.Register(e, authService, router.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		User:  handler.NewUserHandler(userService),
		Voice: handler.NewVoiceHandler(voiceService, logger),
	}, logger)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available",
		zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}
