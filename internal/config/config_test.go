package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinical-redact-go/internal/rewriter"
)

var configEnv = []string{
	"OPENAI_API_KEY", "LLM_API_KEY", "OPENAI_MODEL", "LLM_MODEL", "LLM_GATEWAY_URL",
	"OPENAI_BASE_URL", "ORACLE_PROVIDER", "ORACLE_TIMEOUT", "PROMPT_VARIANT", "PROMPT_FILE",
	"ORACLE_TEMPERATURE", "ORACLE_MAX_TOKENS", "METRICS_ADDR", "USE_MOCK_LLM",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, rewriter.ProviderGateway, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, rewriter.DefaultVariant, cfg.Prompt)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides what the environment already has
	for _, k := range configEnv {
		require.NoError(t, os.Unsetenv(k))
	}

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"OPENAI_API_KEY=sk-test\nOPENAI_MODEL=gpt-4o\nORACLE_TIMEOUT=15s\nPROMPT_VARIANT=persona\nORACLE_MAX_TOKENS=120\n",
	), 0o644))
	t.Cleanup(func() {
		for _, k := range configEnv {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "persona", cfg.Prompt)
	require.NoError(t, cfg.Validate())

	p, err := cfg.ResolvePrompt()
	require.NoError(t, err)
	assert.Equal(t, "persona", p.Name)
	assert.Equal(t, 0.6, p.Temperature)
	assert.Equal(t, 120, p.MaxTokens)
}

func TestLegacyGatewayNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "gw-key")
	t.Setenv("LLM_MODEL", "llama-3")
	t.Setenv("LLM_GATEWAY_URL", "http://gateway.local/v1/chat/completions")

	cfg, err := Load("")
	require.NoError(t, err)
	opts := cfg.OracleOptions()
	assert.Equal(t, "gw-key", opts.APIKey)
	assert.Equal(t, "llama-3", opts.Model)
	assert.Equal(t, "http://gateway.local/v1/chat/completions", opts.URL)
}

func TestMissingCredentialIsSetupError(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	err = cfg.Validate()

	var se *SetupError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestMockNeedsNoCredential(t *testing.T) {
	clearEnv(t)
	t.Setenv("USE_MOCK_LLM", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, rewriter.ProviderMock, cfg.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestResolvePromptErrors(t *testing.T) {
	cfg := &Config{Prompt: "unknown"}
	_, err := cfg.ResolvePrompt()
	var se *SetupError
	assert.ErrorAs(t, err, &se)

	cfg = &Config{Prompt: "anonymize", PromptFile: filepath.Join(t.TempDir(), "nope.txt")}
	_, err = cfg.ResolvePrompt()
	assert.ErrorAs(t, err, &se)
}

func TestSetupWrapsOnce(t *testing.T) {
	assert.NoError(t, Setup(nil))

	err := Setup(Setup(ErrMissingInput))
	var se *SetupError
	require.ErrorAs(t, err, &se)
	assert.True(t, errors.Is(se.Err, ErrMissingInput))
	assert.Equal(t, "setup: input not found", err.Error())
}
