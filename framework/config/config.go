package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig wraps failures of the environment parser.
	ErrParsingConfig = errors.New("config: failed to parse environment")
	// ErrInvalidConfig wraps values that parse but are out of range.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config is the central typed configuration struct.
type Config struct {
	App        AppConfig
	Log        LogConfig
	Validation ValidationConfig
}

type AppConfig struct {
	Name            string        `env:"APP_NAME" envDefault:"GoPayload" validate:"required"`
	Env             string        `env:"APP_ENV" envDefault:"local" validate:"oneof=local testing staging production"`
	Debug           bool          `env:"APP_DEBUG" envDefault:"true"`
	URL             string        `env:"APP_URL" envDefault:"http://localhost" validate:"required,url"`
	Port            string        `env:"APP_PORT" envDefault:"8000" validate:"required,numeric"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

type ValidationConfig struct {
	// MaxDepth bounds rule nesting; 0 disables the check.
	MaxDepth int `env:"VALIDATION_MAX_DEPTH" envDefault:"64" validate:"gte=0"`
	// RuleSetDir is scanned for *.yaml, *.yml and *.json rule sets. Empty
	// means no rule sets are loaded.
	RuleSetDir string `env:"VALIDATION_RULESET_DIR" envDefault:"./rulesets"`
	// MaxBodyBytes caps request bodies read by the HTTP layer.
	MaxBodyBytes int64 `env:"VALIDATION_MAX_BODY_BYTES" envDefault:"1048576" validate:"gt=0"`
}

var structs = validator.New()

// Load reads .env files (if present), populates a Config from environment
// variables and validates the result.
//
//	cfg, err := config.Load()
//	cfg, err := config.Load(".env", ".env.local")
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env may not exist in production; real env vars always win.
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := structs.Struct(cfg); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad(envFiles ...string) *Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Addr is the listen address derived from APP_PORT.
func (c AppConfig) Addr() string { return ":" + c.Port }

func (c AppConfig) IsLocal() bool      { return c.Env == "local" }
func (c AppConfig) IsTesting() bool    { return c.Env == "testing" }
func (c AppConfig) IsProduction() bool { return c.Env == "production" }
