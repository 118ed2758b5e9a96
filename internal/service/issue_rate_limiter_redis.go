package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Devuelve {emisiones en la ventana, ms hasta que vence}.
const redisIssueWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`

const (
	redisIssueKeyPrefix = "token:issue:"
	redisIssueTimeout   = 500 * time.Millisecond
)

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisIssueRateLimiter comparte la ventana entre replicas del servidor de tokens.
type redisIssueRateLimiter struct {
	client redisEvaler
	cfg    IssueRateConfig
	logger *zap.Logger
}

// NewRedisIssueRateLimiter devuelve nil si no hay cliente; el llamador decide el fallback.
func NewRedisIssueRateLimiter(client *redis.Client, cfg IssueRateConfig, logger *zap.Logger) IssueRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisIssueRateLimiter(client, cfg, logger)
}

func newRedisIssueRateLimiter(client redisEvaler, cfg IssueRateConfig, logger *zap.Logger) *redisIssueRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisIssueRateLimiter{
		client: client,
		cfg:    cfg.normalized(),
		logger: logger,
	}
}

// Allow falla abierto si redis no responde.
func (l *redisIssueRateLimiter) Allow(ctx context.Context, clientIP string) IssueDecision {
	bucket := issueBucket(clientIP)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, redisIssueTimeout)
	defer cancel()

	res, err := l.client.Eval(ctx, redisIssueWindowScript, []string{redisIssueKeyPrefix + bucket}, l.cfg.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		l.logger.Warn("issue rate limiter unavailable, allowing", zap.String("bucket", bucket), zap.Error(err))
		return IssueDecision{Allowed: true}
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl <= 0 {
		ttl = l.cfg.Window
	}
	if count > l.cfg.Limit {
		return IssueDecision{RetryAfter: ttl}
	}
	return IssueDecision{Allowed: true, Remaining: l.cfg.Limit - count}
}
