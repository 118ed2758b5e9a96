package service

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"time"
)

const (
	defaultIssueRateLimit  = 30
	defaultIssueRateWindow = time.Minute

	// Un host IPv6 suele controlar todo su /64.
	ipv6BucketBits      = 64
	unknownClientBucket = "unknown"
)

// IssueRateConfig es ISSUE_RATE_LIMIT emisiones por ISSUE_RATE_WINDOW y por cliente.
type IssueRateConfig struct {
	Limit  int
	Window time.Duration
}

func (c IssueRateConfig) normalized() IssueRateConfig {
	if c.Limit <= 0 {
		c.Limit = defaultIssueRateLimit
	}
	if c.Window <= 0 {
		c.Window = defaultIssueRateWindow
	}
	return c
}

// IssueDecision es el resultado de consultar el limiter para una emision.
type IssueDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// IssueRateLimiter limita la emision de tokens por direccion de cliente.
type IssueRateLimiter interface {
	Allow(ctx context.Context, clientIP string) IssueDecision
}

// issueBucket normaliza la IP del cliente; IPv6 se agrupa por /64.
// Lo que no es una IP comparte un unico bucket.
func issueBucket(clientIP string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(clientIP))
	if err != nil {
		return unknownClientBucket
	}
	addr = addr.Unmap()
	if addr.Is6() {
		if prefix, err := addr.Prefix(ipv6BucketBits); err == nil {
			return prefix.String()
		}
	}
	return addr.String()
}

type issueWindow struct {
	start time.Time
	count int
}

// memoryIssueRateLimiter es una ventana fija por bucket; las ventanas vencidas se barren.
type memoryIssueRateLimiter struct {
	mu        sync.Mutex
	cfg       IssueRateConfig
	windows   map[string]*issueWindow
	lastSweep time.Time
	now       func() time.Time
}

// NewIssueRateLimiter crea un rate limiter en memoria para un solo proceso.
func NewIssueRateLimiter(cfg IssueRateConfig) IssueRateLimiter {
	return newMemoryIssueRateLimiter(cfg, time.Now)
}

func newMemoryIssueRateLimiter(cfg IssueRateConfig, now func() time.Time) *memoryIssueRateLimiter {
	return &memoryIssueRateLimiter{
		cfg:     cfg.normalized(),
		windows: make(map[string]*issueWindow),
		now:     now,
	}
}

func (l *memoryIssueRateLimiter) Allow(_ context.Context, clientIP string) IssueDecision {
	bucket := issueBucket(clientIP)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w := l.windows[bucket]
	if w == nil || now.Sub(w.start) >= l.cfg.Window {
		w = &issueWindow{start: now}
		l.windows[bucket] = w
	}
	if w.count >= l.cfg.Limit {
		return IssueDecision{RetryAfter: w.start.Add(l.cfg.Window).Sub(now)}
	}
	w.count++
	return IssueDecision{Allowed: true, Remaining: l.cfg.Limit - w.count}
}

// sweep borra ventanas vencidas como mucho una vez por ventana.
func (l *memoryIssueRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.Window {
		return
	}
	l.lastSweep = now
	for bucket, w := range l.windows {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.windows, bucket)
		}
	}
}

func (l *memoryIssueRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
