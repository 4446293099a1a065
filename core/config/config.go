package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is matched by every ConfigurationError.
var ErrMissingConfig = errors.New("missing configuration")

// ConfigurationError reports a required variable that is absent for the
// attempted operation. It is raised before any network call.
type ConfigurationError struct {
	Variables []string
	Hint      string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s is not configured", strings.Join(e.Variables, " or "))
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrMissingConfig
}

// Missing builds a ConfigurationError for one or more alternative variables.
func Missing(hint string, vars ...string) error {
	return &ConfigurationError{Variables: vars, Hint: hint}
}

type Config struct {
	OTel      OTelConfig
	Anthropic LLMConfig
	OpenAI    LLMConfig
	LLMPolicy string
	CodeGen   CodeGenConfig
	Webhook   WebhookConfig
	GitHub    GitHubConfig
	GitLab    GitLabConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Archive   SpecArchiveConfig
	Env       string
	Port      string
	LogFile   string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

type LLMConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	BaseURL  string // Optional: for custom endpoints
	Model    string
}

type CodeGenConfig struct {
	APIKey       string
	OrgID        string
	BaseURL      string
	PollInterval time.Duration
}

type WebhookConfig struct {
	URL   string
	Token string
}

type GitHubConfig struct {
	Token  string
	APIURL string
}

type GitLabConfig struct {
	Token string
	URL   string
}

type RedisConfig struct {
	URL          string
	StatusStream string
}

// SpecArchiveConfig enables on-disk history of generated specs when Dir is set.
type SpecArchiveConfig struct {
	Dir string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load loads configuration from environment variables.
// In development, it loads from a .env file when present.
// Provider and collaborator credentials are optional at startup; their absence
// surfaces as a ConfigurationError when the dependent operation is attempted.
func Load() (Config, error) {
	if getEnv("VOYAGER_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:     getEnv("VOYAGER_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		LogFile: getEnv("LOG_FILE", ""),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "voyager-generator"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Anthropic: LLMConfig{
			Provider: "anthropic",
			APIKey:   getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:  getEnv("ANTHROPIC_BASE_URL", ""),
			Model:    getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		},
		OpenAI: LLMConfig{
			Provider: "openai",
			APIKey:   getEnv("OPENAI_API_KEY", ""),
			BaseURL:  getEnv("OPENAI_BASE_URL", ""),
			Model:    getEnv("OPENAI_MODEL", "gpt-4o"),
		},
		LLMPolicy: getEnv("LLM_POLICY", "priority"),
		CodeGen: CodeGenConfig{
			APIKey:       getEnv("CODEGEN_API_KEY", ""),
			OrgID:        getEnv("CODEGEN_ORG_ID", ""),
			BaseURL:      getEnv("CODEGEN_BASE_URL", "https://api.codegen.com"),
			PollInterval: getEnvDuration("POLL_INTERVAL", 5*time.Second),
		},
		Webhook: WebhookConfig{
			URL:   getEnv("N8N_WEBHOOK_URL", ""),
			Token: getEnv("N8N_WEBHOOK_TOKEN", ""),
		},
		GitHub: GitHubConfig{
			Token:  getEnv("GITHUB_ACCESS_TOKEN", ""),
			APIURL: getEnv("GITHUB_API_URL", "https://api.github.com"),
		},
		GitLab: GitLabConfig{
			Token: getEnv("GITLAB_ACCESS_TOKEN", ""),
			URL:   getEnv("GITLAB_URL", "https://gitlab.com"),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			StatusStream: getEnv("REDIS_STATUS_STREAM", "codegen-status"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
			Burst: getEnvInt("RATE_LIMIT_BURST", 5),
		},
		Archive: SpecArchiveConfig{
			Dir: getEnv("SPEC_ARCHIVE_DIR", ""),
		},
	}

	switch cfg.LLMPolicy {
	case "priority", "availability":
	default:
		return Config{}, fmt.Errorf("LLM_POLICY must be \"priority\" or \"availability\", got %q", cfg.LLMPolicy)
	}

	cfg.OTel.Environment = cfg.Env

	if cfg.CodeGen.PollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

// Validate checks the credentials needed to talk to the code-generation service.
func (c CodeGenConfig) Validate() error {
	if c.APIKey == "" {
		return Missing("Please add the CODEGEN_API_KEY environment variable.", "CODEGEN_API_KEY")
	}
	if c.OrgID == "" {
		return Missing("Please add the CODEGEN_ORG_ID environment variable.", "CODEGEN_ORG_ID")
	}
	return nil
}

func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

func (c GitHubConfig) Enabled() bool {
	return c.Token != ""
}

func (c GitLabConfig) Enabled() bool {
	return c.Token != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c SpecArchiveConfig) Enabled() bool {
	return c.Dir != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
