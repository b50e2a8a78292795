// Package config loads run configuration from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"clinical-redact-go/internal/rewriter"
)

// DefaultEnvFile is loaded when present; a missing file is not an error.
const DefaultEnvFile = "env/.env"

var (
	ErrMissingCredential = errors.New("OPENAI_API_KEY not found")
	ErrMissingInput      = errors.New("input not found")
	ErrMissingColumn     = errors.New("conversation column not found")
)

// SetupError is fatal: it stops the run before any record is processed.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return "setup: " + e.Err.Error() }

func (e *SetupError) Unwrap() error { return e.Err }

// Setup wraps err as a SetupError; nil stays nil.
func Setup(err error) error {
	if err == nil {
		return nil
	}
	var se *SetupError
	if errors.As(err, &se) {
		return err
	}
	return &SetupError{Err: err}
}

// Config is everything the redact command needs besides its positional
// arguments.
type Config struct {
	Provider    string        `mapstructure:"oracle_provider"`
	APIKey      string        `mapstructure:"openai_api_key"`
	Model       string        `mapstructure:"openai_model"`
	URL         string        `mapstructure:"llm_gateway_url"`
	Timeout     time.Duration `mapstructure:"oracle_timeout"`
	Prompt      string        `mapstructure:"prompt_variant"`
	PromptFile  string        `mapstructure:"prompt_file"`
	Temperature float64       `mapstructure:"oracle_temperature"`
	MaxTokens   int           `mapstructure:"oracle_max_tokens"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// Load reads envFile (if it exists) into the environment, then resolves the
// configuration with viper. Values already in the environment win over the
// file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, Setup(fmt.Errorf("load %s: %w", envFile, err))
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("oracle_provider", rewriter.ProviderGateway)
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("llm_gateway_url", "")
	v.SetDefault("oracle_timeout", 60*time.Second)
	v.SetDefault("prompt_variant", rewriter.DefaultVariant)
	v.SetDefault("prompt_file", "")
	v.SetDefault("oracle_temperature", 0.0)
	v.SetDefault("oracle_max_tokens", 0)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("openai_api_key", "")

	// older gateway-style names
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", "LLM_API_KEY")
	_ = v.BindEnv("openai_model", "OPENAI_MODEL", "LLM_MODEL")
	_ = v.BindEnv("llm_gateway_url", "LLM_GATEWAY_URL", "OPENAI_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Setup(fmt.Errorf("decode config: %w", err))
	}
	if strings.EqualFold(os.Getenv("USE_MOCK_LLM"), "true") {
		cfg.Provider = rewriter.ProviderMock
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

// Validate checks what the oracle needs before the run starts.
func (c *Config) Validate() error {
	if c.Provider != rewriter.ProviderMock && strings.TrimSpace(c.APIKey) == "" {
		return Setup(ErrMissingCredential)
	}
	if c.Timeout < 0 {
		return Setup(fmt.Errorf("oracle timeout must not be negative, got %s", c.Timeout))
	}
	return nil
}

// OracleOptions maps the config onto rewriter backend options.
func (c *Config) OracleOptions() rewriter.Options {
	return rewriter.Options{
		Provider: c.Provider,
		URL:      c.URL,
		APIKey:   c.APIKey,
		Model:    c.Model,
		Timeout:  c.Timeout,
	}
}

// ResolvePrompt returns the configured prompt variant with any file and
// sampling overrides applied.
func (c *Config) ResolvePrompt() (rewriter.Prompt, error) {
	p, err := rewriter.LookupPrompt(c.Prompt)
	if err != nil {
		return rewriter.Prompt{}, Setup(err)
	}
	if c.PromptFile != "" {
		if p, err = p.WithSystemFile(c.PromptFile); err != nil {
			return rewriter.Prompt{}, Setup(err)
		}
	}
	return p.WithSampling(c.Temperature, c.MaxTokens), nil
}
