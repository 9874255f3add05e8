package config

import (
	"time"

	"github.com/joyhomes/service-booking/internal/common/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port               string
	AppEnv             string
	DBConfig           config.DatabaseConfig
	JWTConfig          config.JWTConfig
	KafkaConfig        config.KafkaConfig
	RedisConfig        config.RedisConfig
	RateLimitPerMinute int
	StatsCacheTTL      time.Duration
}

// Load reads configuration from environment variables prefixed with BOOKING_.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:               config.GetServicePort(v, "SERVICE_PORT", ":8083"),
		AppEnv:             config.GetAppEnv(v),
		DBConfig:           config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:          config.LoadJWTConfig(v),
		KafkaConfig:        config.LoadKafkaConfig(v),
		RedisConfig:        config.LoadRedisConfig(v),
		RateLimitPerMinute: config.GetInt(v, "RATE_LIMIT_PER_MINUTE", 120),
		StatsCacheTTL:      config.GetDuration(v, "STATS_CACHE_TTL", 30*time.Second),
	}, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}
