package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Dispatch DispatchConfig
	Notify   NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dispatch_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type DispatchConfig struct {
	RoundTTL      time.Duration `env:"DISPATCH_ROUND_TTL,      default=10m"`
	SweepInterval time.Duration `env:"DISPATCH_SWEEP_INTERVAL, default=30s"`
	Workers       int           `env:"DISPATCH_WORKERS,        default=8"`
}

type NotifyConfig struct {
	ChannelTimeout  time.Duration `env:"NOTIFY_CHANNEL_TIMEOUT, default=5s"`
	FCMEndpoint     string        `env:"FCM_ENDPOINT,           default=https://fcm.googleapis.com/fcm/send"`
	FCMServerKey    string        `env:"FCM_SERVER_KEY"`
	WebPushEndpoint string        `env:"WEBPUSH_ENDPOINT"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	return &cfg
}
