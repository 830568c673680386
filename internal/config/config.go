package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ask-web/internal/usecase"
)

const (
	defaultAddr            = ":5000"
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultUpstreamTimeout = 30 * time.Second
	defaultLogLevel        = "info"
)

type Config struct {
	Addr     string
	LogLevel string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	Model           string
	MaxTokens       int
	SystemPrompt    string
	UpstreamTimeout time.Duration
	MaxQuestionLen  int
	Moderation      bool

	// ParamPrefix enables reading the API key from SSM when OpenAIAPIKey is empty.
	ParamPrefix string
	// ExchangeTable enables the DynamoDB exchange log.
	ExchangeTable string

	// Fallbacks lists variables whose values were rejected in favour of defaults.
	Fallbacks []Fallback
}

// Fallback records an environment value Load could not parse.
type Fallback struct {
	Key     string
	Value   string
	Default string
}

// LogFallbacks reports rejected values on logger. Call it once the logger is
// configured so the warnings honour LOG_LEVEL.
func (c Config) LogFallbacks(logger *slog.Logger) {
	for _, f := range c.Fallbacks {
		logger.Warn("invalid value in environment, using default", "key", f.Key, "value", f.Value, "default", f.Default)
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment. Variables
// already set are left alone and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var e envReader
	cfg := Config{
		Addr:            envString("ADDR", defaultAddr),
		LogLevel:        strings.ToLower(envString("LOG_LEVEL", defaultLogLevel)),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:   envString("OPENAI_BASE_URL", defaultBaseURL),
		Model:           envString("OPENAI_MODEL", usecase.DefaultModel),
		MaxTokens:       e.intVar("OPENAI_MAX_TOKENS", usecase.DefaultMaxTokens),
		SystemPrompt:    envString("SYSTEM_PROMPT", usecase.DefaultSystemPrompt),
		UpstreamTimeout: e.durationVar("UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		MaxQuestionLen:  e.intVar("MAX_QUESTION_LENGTH", usecase.DefaultMaxQuestionLen),
		Moderation:      e.boolVar("MODERATION_ENABLED", false),
		ParamPrefix:     strings.TrimRight(strings.TrimSpace(os.Getenv("PARAM_PREFIX")), "/"),
		ExchangeTable:   strings.TrimSpace(os.Getenv("EXCHANGE_TABLE")),
	}
	cfg.Fallbacks = e.fallbacks

	if cfg.OpenAIAPIKey == "" && cfg.ParamPrefix == "" {
		return Config{}, errors.New("config: OPENAI_API_KEY is not set (or set PARAM_PREFIX to read it from SSM)")
	}
	return cfg, nil
}

// NeedsAWS reports whether any AWS-backed component is enabled.
func (c Config) NeedsAWS() bool {
	return (c.OpenAIAPIKey == "" && c.ParamPrefix != "") || c.ExchangeTable != ""
}

// SlogLevel maps LogLevel onto slog levels, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envReader parses typed variables and collects the ones it had to reject.
type envReader struct {
	fallbacks []Fallback
}

func (e *envReader) reject(key, value string, def any) {
	e.fallbacks = append(e.fallbacks, Fallback{Key: key, Value: value, Default: fmt.Sprint(def)})
}

func (e *envReader) intVar(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.reject(key, v, def)
		return def
	}
	return n
}

func (e *envReader) durationVar(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.reject(key, v, def)
		return def
	}
	return d
}

func (e *envReader) boolVar(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.reject(key, v, def)
		return def
	}
	return b
}
