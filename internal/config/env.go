package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env configures the admin console.
type Env struct {
	AppAddr            string        `env:"APP_ADDR" envDefault:":8080"`
	GinMode            string        `env:"GIN_MODE"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	UsersAPIURL        string        `env:"USERS_API_URL" envDefault:"http://localhost:8081"`
	UsersAPITimeout    time.Duration `env:"USERS_API_TIMEOUT" envDefault:"10s"`
	SearchDebounce     time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"1s"`
	DefaultPageSize    int           `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// APIEnv configures the development users backend.
type APIEnv struct {
	AppAddr            string   `env:"APP_ADDR" envDefault:":8081"`
	GinMode            string   `env:"GIN_MODE"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	DBDSN              string   `env:"DB_DSN" envDefault:"root:@tcp(127.0.0.1:3306)/useradmin?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	if cfg.DefaultPageSize < 1 {
		return Env{}, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.DefaultPageSize)
	}
	if cfg.SearchDebounce < 0 {
		return Env{}, fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	// Zero disables expiry.
	if cfg.SessionIdleTTL < 0 || (cfg.SessionIdleTTL > 0 && cfg.SessionIdleTTL < time.Second) {
		return Env{}, fmt.Errorf("SESSION_IDLE_TTL must be 0 or at least 1s, got %s", cfg.SessionIdleTTL)
	}
	return cfg, nil
}

func LoadAPIEnv() (APIEnv, error) {
	var cfg APIEnv
	if err := ParseEnv(&cfg); err != nil {
		return APIEnv{}, err
	}
	return cfg, nil
}
