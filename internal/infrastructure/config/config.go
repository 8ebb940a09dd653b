package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=8h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Lockout LockoutConfig
	Secrets SecretConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=access_control"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// LockoutConfig tunes the brute-force lockout policy.
type LockoutConfig struct {
	MaxAttempts  int           `env:"LOCKOUT_MAX_ATTEMPTS, default=3"`
	LockDuration time.Duration `env:"LOCKOUT_DURATION,     default=5m"`
}

// SecretConfig tunes password hashing.
type SecretConfig struct {
	// PBKDF2Iterations <= 0 falls back to the codec default.
	PBKDF2Iterations int `env:"PBKDF2_ITERATIONS, default=0"`
	// LegacySHA256 selects the legacy salted-SHA256 codec for databases
	// migrated from the desktop deployment.
	LegacySHA256 bool `env:"LEGACY_SHA256_CODEC, default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
