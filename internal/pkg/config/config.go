package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable via SESSION_STORE.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	// BackendURL is the base URL of the remote identity service.
	BackendURL string `env:"BACKEND_URL,  default=http://localhost:8000"`
	Env        string `env:"ENV,          default=development"`
	LogLevel   string `env:"LOG_LEVEL,    default=info"`

	// HTTPTimeout bounds each identity request. Zero disables the bound: a
	// hung call resolves whenever the transport does.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=0"`

	// SessionStore selects the persistence backend: "file" or "redis".
	SessionStore string `env:"SESSION_STORE, default=file"`
	// StatePath is the session state file used by the file backend.
	StatePath string `env:"STATE_PATH,    default=storefront_state.json"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
