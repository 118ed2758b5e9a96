package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"interview-room/internal/config"
	apihttp "interview-room/internal/http"
	"interview-room/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	rateCfg := service.IssueRateConfig{Limit: cfg.IssueRateLimit, Window: cfg.IssueRateWindow}
	limiter := service.NewIssueRateLimiter(rateCfg)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
		} else {
			limiter = service.NewRedisIssueRateLimiter(redisClient, rateCfg, logger)
		}
		cancel()
	}

	tokenSvc := service.NewTokenService(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.TokenTTL)
	regions := service.NewRegionResolver(cfg.LiveKitURL, cfg.RegionURLs)
	if cfg.AgentAPIKey == "" {
		logger.Warn("agent api key not configured, client keys will be forwarded")
	}
	connSvc := service.NewConnectionService(logger, tokenSvc, regions, cfg.AgentAPIKey)

	connHandler := apihttp.NewConnectionHandler(logger, connSvc)
	router := apihttp.NewRouter(logger, connHandler, limiter, cfg.TrustedProxies)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Int("regions", len(cfg.RegionURLs)),
		zap.Duration("token_ttl", cfg.TokenTTL),
		zap.Int("issue_rate_limit", rateCfg.Limit),
		zap.Duration("issue_rate_window", rateCfg.Window),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
