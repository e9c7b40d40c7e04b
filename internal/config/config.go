package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr     string   `envconfig:"HTTP_ADDR" default:":8081"`
	PostgresDSN  string   `envconfig:"POSTGRES_DSN"` // kosong -> journal keputusan dimatikan
	RedisAddr    string   `envconfig:"REDIS_ADDR" default:"redis:6379"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"kafka:9092"`
	ServiceName  string   `envconfig:"SERVICE_NAME" default:"merchant-dashboard"`

	MerchantID   string `envconfig:"MERCHANT_ID" required:"true"`
	MerchantRole string `envconfig:"MERCHANT_ROLE" default:"seller"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://backend:8080/api"`
	BackendToken   string        `envconfig:"BACKEND_TOKEN"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	Transport      string        `envconfig:"BRIDGE_TRANSPORT" default:"ws"` // ws | kafka
	SocketURL      string        `envconfig:"SOCKET_URL" default:"ws://backend:8080/socket"`
	SocketSecret   string        `envconfig:"SOCKET_SECRET"`
	ReconnectDelay time.Duration `envconfig:"RECONNECT_DELAY" default:"3s"`
	DecisionTopic  string        `envconfig:"DECISION_TOPIC" default:"merchant.order.decisions"`
}

// Load reads the environment. Unparsable values are errors, not silent defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport != "ws" && cfg.Transport != "kafka" {
		return Config{}, fmt.Errorf("config: BRIDGE_TRANSPORT must be ws or kafka, got %q", cfg.Transport)
	}
	if cfg.BackendTimeout <= 0 || cfg.ReconnectDelay <= 0 {
		return Config{}, fmt.Errorf("config: BACKEND_TIMEOUT and RECONNECT_DELAY must be positive")
	}

	brokers := cfg.KafkaBrokers[:0]
	for _, b := range cfg.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.KafkaBrokers = brokers
	return cfg, nil
}
