package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// RegionURLPrefix es el prefijo de las variables LIVEKIT_URL_<REGION>.
const RegionURLPrefix = "LIVEKIT_URL_"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string        `env:"HTTP_PORT" envDefault:"8080"`
	LiveKitAPIKey    string        `env:"LIVEKIT_API_KEY,required"`
	LiveKitAPISecret string        `env:"LIVEKIT_API_SECRET,required"`
	LiveKitURL       string        `env:"LIVEKIT_URL,required"`
	TokenTTL         time.Duration `env:"LIVEKIT_TOKEN_TTL" envDefault:"60m"`
	AgentAPIKey      string        `env:"OPEN_AI_KEY"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IssueRateLimit   int           `env:"ISSUE_RATE_LIMIT" envDefault:"30"`
	IssueRateWindow  time.Duration `env:"ISSUE_RATE_WINDOW" envDefault:"1m"`
	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`

	// RegionURLs guarda LIVEKIT_URL_<REGION> tal como estaban al arrancar.
	RegionURLs map[string]string `env:"-"`
}

// ClientConfig es la configuración del front end de terminal.
type ClientConfig struct {
	APIBaseURL          string `env:"INTERVIEW_API_BASE_URL" envDefault:"http://localhost:8080"`
	ConnDetailsEndpoint string `env:"CONN_DETAILS_ENDPOINT" envDefault:"/api/connection-details"`
	ShowSettingsMenu    bool   `env:"SHOW_SETTINGS_MENU" envDefault:"false"`
	AgentAPIKey         string `env:"OPEN_AI_KEY"`
	Region              string `env:"LIVEKIT_REGION"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(env.ToMap(os.Environ()))
}

// LoadConfigFrom parsea la configuración a partir de un mapa de entorno.
func LoadConfigFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}
	cfg.RegionURLs = make(map[string]string)
	for key, value := range environ {
		if !strings.HasPrefix(key, RegionURLPrefix) || strings.TrimSpace(value) == "" {
			continue
		}
		cfg.RegionURLs[strings.ToUpper(key)] = value
	}
	return &cfg, nil
}

// LoadClientConfig carga la configuración del cliente.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
