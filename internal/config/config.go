// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gomintco/gomint-api/internal/hedera"
)

const (
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultAccessTTL     = 15 * time.Minute
	defaultShutdownDelay = 10 * time.Second
)

// OperatorConfig is the service operator credential for one network.
type OperatorConfig struct {
	ID  string
	Key string
}

// Config captures application runtime configuration.
type Config struct {
	Port           string
	LogLevel       string
	DatabaseURL    string
	JWTKey         string
	AccessTTL      time.Duration
	ShutdownPeriod time.Duration
	MirrorURL      string
	Operators      map[hedera.Network]OperatorConfig
}

// Load reads configuration values from the environment. DATABASE_URL, JWT_KEY
// and at least one per-network operator (OPERATOR_ID_TESTNET/OPERATOR_KEY_TESTNET
// or the MAINNET pair) are required.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTKey:         os.Getenv("JWT_KEY"),
		AccessTTL:      defaultAccessTTL,
		ShutdownPeriod: defaultShutdownDelay,
		MirrorURL:      getEnv("MIRROR_URL", "https://testnet.mirrornode.hedera.com"),
		Operators:      make(map[hedera.Network]OperatorConfig),
	}

	if v := os.Getenv("ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACCESS_TTL: %w", err)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	for _, network := range []hedera.Network{hedera.Testnet, hedera.Mainnet} {
		suffix := strings.ToUpper(string(network))
		id := os.Getenv("OPERATOR_ID_" + suffix)
		key := os.Getenv("OPERATOR_KEY_" + suffix)
		if id == "" && key == "" {
			continue
		}
		if id == "" || key == "" {
			return Config{}, fmt.Errorf("operator for %s needs both OPERATOR_ID_%s and OPERATOR_KEY_%s", network, suffix, suffix)
		}
		cfg.Operators[network] = OperatorConfig{ID: id, Key: key}
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.JWTKey == "" {
		return Config{}, fmt.Errorf("JWT_KEY must be set")
	}
	if len(cfg.Operators) == 0 {
		return Config{}, fmt.Errorf("at least one network operator must be configured")
	}

	return cfg, nil
}

// Address returns the listen address in the format the HTTP server expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
