package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	GatewayPort     string        `envconfig:"GATEWAY_PORT"     default:":8080"`
	APIBaseURL      string        `envconfig:"API_BASE_URL"     required:"true"`
	ServerURL       string        `envconfig:"SERVER_URL"` // where product images live; derived from API_BASE_URL when empty
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE"  default:"500ms"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL"      default:"24h"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB"         default:"0"`
	CartCacheTTL    time.Duration `envconfig:"CART_CACHE_TTL"   default:"168h"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS"     default:"http://localhost:4200"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE"    default:"false"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config.normalize()

		logger.Infof("Configuration loaded: Port=%s, API=%s, LogLevel=%s", config.GatewayPort, config.APIBaseURL, config.LogLevel)
		if config.RedisAddr == "" {
			logger.Warn("Configuration: REDIS_ADDR is not set, cart snapshots are disabled")
		}
	})
	return &config
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.ServerURL == "" {
		c.ServerURL = strings.TrimSuffix(c.APIBaseURL, "/api")
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.GatewayPort != "" && !strings.Contains(c.GatewayPort, ":") {
		c.GatewayPort = ":" + c.GatewayPort
	}
}
