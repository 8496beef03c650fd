// In file: cmd/voiceservice/config.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the service, loaded from an optional
// config.yaml and then overridden by the environment.
type AppConfig struct {
	AppName    string `yaml:"app_name"`
	Debug      bool   `yaml:"debug"`
	GinMode    string `yaml:"gin_mode"`
	ServerHost string `yaml:"server_host"`
	ServerPort int    `yaml:"server_port"`
	LogLevel   string `yaml:"log_level"`

	LLM       LLMConfig       `yaml:"llm"`
	Weather   WeatherConfig   `yaml:"weather"`
	Store     StoreConfig     `yaml:"store"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type WeatherConfig struct {
	APIKey      string        `yaml:"amap_api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	DefaultCity string        `yaml:"default_city"`
}

type StoreConfig struct {
	DatabaseURL string        `yaml:"database_url"`
	RedisAddr   string        `yaml:"redis_addr"`
	CacheTTL    time.Duration `yaml:"intent_cache_ttl"`
}

type SessionConfig struct {
	MaxHistory  int           `yaml:"max_history"`
	TTL         time.Duration `yaml:"ttl"`
	MaxContexts int           `yaml:"max_contexts"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

func defaultConfig() *AppConfig {
	return &AppConfig{
		AppName:    "VoiceService",
		GinMode:    "debug",
		ServerHost: "0.0.0.0",
		ServerPort: 8000,
		LogLevel:   "info",
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Timeout:  30 * time.Second,
		},
		Weather: WeatherConfig{
			Timeout:     10 * time.Second,
			DefaultCity: "北京",
		},
		Store: StoreConfig{
			DatabaseURL: "sqlite://./voice_service.db",
			CacheTTL:    24 * time.Hour,
		},
		Session: SessionConfig{
			MaxHistory:  5,
			TTL:         30 * time.Minute,
			MaxContexts: 1000,
		},
		RateLimit: RateLimitConfig{RPS: 10, Burst: 20},
	}
}

// LoadConfig loads configuration from .env (outside release mode), the YAML
// file named by CONFIG_FILE (default config.yaml; optional), and the
// environment, in that order of increasing precedence.
func LoadConfig() (*AppConfig, error) {
	// In release mode (Docker) the environment is provided directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := defaultConfig()

	path := envOr("CONFIG_FILE", "config.yaml")
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with any environment variable that is set.
func (c *AppConfig) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(dst *float64, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(dst *bool, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	// Durations accept Go syntax ("45s") or a bare number of seconds.
	duration := func(dst *time.Duration, key string) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = time.Duration(secs * float64(time.Second))
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	str(&c.AppName, "APP_NAME")
	boolean(&c.Debug, "DEBUG")
	str(&c.GinMode, "GIN_MODE")
	str(&c.ServerHost, "SERVER_HOST")
	num(&c.ServerPort, "SERVER_PORT")
	str(&c.LogLevel, "LOG_LEVEL")

	str(&c.LLM.Provider, "LLM_PROVIDER")
	str(&c.LLM.APIKey, "LLM_API_KEY", "DASHSCOPE_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	str(&c.LLM.BaseURL, "LLM_BASE_URL")
	str(&c.LLM.Model, "LLM_MODEL", "QWEN_MODEL_NAME")
	duration(&c.LLM.Timeout, "LLM_TIMEOUT")

	str(&c.Weather.APIKey, "AMAP_API_KEY")
	duration(&c.Weather.Timeout, "WEATHER_TIMEOUT")
	str(&c.Weather.DefaultCity, "DEFAULT_CITY")

	str(&c.Store.DatabaseURL, "DATABASE_URL")
	str(&c.Store.RedisAddr, "REDIS_ADDR")
	duration(&c.Store.CacheTTL, "INTENT_CACHE_TTL")

	num(&c.Session.MaxHistory, "SESSION_MAX_HISTORY")
	duration(&c.Session.TTL, "SESSION_TTL")
	num(&c.Session.MaxContexts, "SESSION_MAX_CONTEXTS")

	float(&c.RateLimit.RPS, "RATE_LIMIT_RPS")
	num(&c.RateLimit.Burst, "RATE_LIMIT_BURST")

	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	return errors.Join(errs...)
}

// Validate checks ranges and enumerations.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort))
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	if c.Weather.Timeout <= 0 {
		errs = append(errs, errors.New("WEATHER_TIMEOUT must be positive"))
	}
	if c.Session.MaxHistory <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_HISTORY must be positive"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.MaxContexts <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_CONTEXTS must be positive"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
