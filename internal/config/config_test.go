package config

import (
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"LIVEKIT_API_KEY":    "devkey",
		"LIVEKIT_API_SECRET": "secret",
		"LIVEKIT_URL":        "wss://default.example.com",
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(baseEnv())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.TokenTTL != 60*time.Minute {
		t.Fatalf("expected 60m ttl, got %v", cfg.TokenTTL)
	}
	if cfg.IssueRateLimit != 30 || cfg.IssueRateWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %d/%v", cfg.IssueRateLimit, cfg.IssueRateWindow)
	}
	if len(cfg.RegionURLs) != 0 {
		t.Fatalf("expected no region urls, got %+v", cfg.RegionURLs)
	}
}

func TestLoadConfigFrom_RequiresSigningCredentials(t *testing.T) {
	environ := baseEnv()
	delete(environ, "LIVEKIT_API_SECRET")
	if _, err := LoadConfigFrom(environ); err == nil {
		t.Fatalf("expected error when LIVEKIT_API_SECRET is missing")
	}
}

func TestLoadConfigFrom_CollectsRegionURLs(t *testing.T) {
	environ := baseEnv()
	environ["LIVEKIT_URL_EU"] = "wss://eu.example.com"
	environ["LIVEKIT_URL_US"] = ""
	environ["OTHER_URL_EU"] = "wss://ignored.example.com"

	cfg, err := LoadConfigFrom(environ)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.RegionURLs) != 1 {
		t.Fatalf("expected one region url, got %+v", cfg.RegionURLs)
	}
	if cfg.RegionURLs["LIVEKIT_URL_EU"] != "wss://eu.example.com" {
		t.Fatalf("unexpected eu url: %q", cfg.RegionURLs["LIVEKIT_URL_EU"])
	}
}

func TestLoadConfigFrom_IssueRateAndTrustedProxies(t *testing.T) {
	environ := baseEnv()
	environ["ISSUE_RATE_LIMIT"] = "5"
	environ["ISSUE_RATE_WINDOW"] = "30s"
	environ["TRUSTED_PROXIES"] = "10.0.0.0/8,192.168.1.1"

	cfg, err := LoadConfigFrom(environ)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.IssueRateLimit != 5 || cfg.IssueRateWindow != 30*time.Second {
		t.Fatalf("unexpected rate limit: %d/%v", cfg.IssueRateLimit, cfg.IssueRateWindow)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "192.168.1.1" {
		t.Fatalf("unexpected trusted proxies: %+v", cfg.TrustedProxies)
	}

	defaults, err := LoadConfigFrom(baseEnv())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(defaults.TrustedProxies) != 0 {
		t.Fatalf("expected no trusted proxies by default, got %+v", defaults.TrustedProxies)
	}
}
