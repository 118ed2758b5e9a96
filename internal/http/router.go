package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-room/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	connH *ConnectionHandler,
	limiter service.IssueRateLimiter,
	trustedProxies []string,
) *gin.Engine {
	r := gin.New()

	// ClientIP solo mira X-Forwarded-For si el salto anterior es un proxy de confianza.
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", trustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// Middlewares basicos: logging y recovery.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(issueRateLimitMiddleware(logger, limiter))
	api.POST("/connection-details", connH.ConnectionDetails)
	api.POST("/token", connH.Token)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// issueRateLimitMiddleware corta con 429 cuando una IP pide demasiados tokens.
func issueRateLimitMiddleware(logger *zap.Logger, limiter service.IssueRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		decision := limiter.Allow(c.Request.Context(), ip)
		if !decision.Allowed {
			logger.Warn("token issuance rate limited",
				zap.String("client_ip", ip),
				zap.Duration("retry_after", decision.RetryAfter),
			)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
