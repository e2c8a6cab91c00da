package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/llm"
	"github.com/abhisek/speedlearn/internal/recommend"
)

// isolate points config lookup at an empty directory and clears keys the
// host environment might set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, cfg.Source)
	assert.Equal(t, AdvisorRules, cfg.Advisor)
	assert.Equal(t, cache.DefaultConfig(), cfg.Cache)
	assert.Equal(t, recommend.DefaultConfig(), cfg.Recommend)
	assert.Equal(t, 50, cfg.Tutor.HistoryLimit)
	assert.Equal(t, llm.ProviderNone, cfg.LLM.Provider)
	assert.Equal(t, "claude-haiku", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SPEEDLEARN_CACHE_LESSON_TTL", "30m")
	t.Setenv("SPEEDLEARN_RECOMMEND_CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("SPEEDLEARN_TUTOR_SEED", "42")
	t.Setenv("SPEEDLEARN_LLM_PROVIDER", "anthropic")
	t.Setenv("SPEEDLEARN_LLM_ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Cache.LessonTTL)
	assert.InDelta(t, 0.8, cfg.Recommend.ConfidenceThreshold, 1e-9)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.Anthropic.APIKey)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: llm
advisor: llm
cache:
  ai_content_ttl: 2m
janitor:
  snapshot_keep: 10
llm:
  provider: mock
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, cfg.Source)
	assert.Equal(t, AdvisorLLM, cfg.Advisor)
	assert.Equal(t, 2*time.Minute, cfg.Cache.AIContentTTL)
	assert.Equal(t, 10, cfg.Janitor.SnapshotKeep)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestLoad_DiscoveredFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "speedlearn.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_AutoProvider(t *testing.T) {
	isolate(t)
	t.Setenv("SPEEDLEARN_LLM_PROVIDER", "auto")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderNone, cfg.LLM.Provider)

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-openai", cfg.LLM.OpenAI.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"unknown source", func(c *Config) { c.Source = "ftp" }, true},
		{"unknown advisor", func(c *Config) { c.Advisor = "oracle" }, true},
		{"llm source without provider", func(c *Config) { c.Source = SourceLLM }, true},
		{"llm advisor with mock", func(c *Config) {
			c.Advisor = AdvisorLLM
			c.LLM.Provider = llm.ProviderMock
		}, false},
		{"provider missing key", func(c *Config) { c.LLM.Provider = llm.ProviderGemini }, true},
		{"zero history size", func(c *Config) { c.Recommend.HistorySize = 0 }, true},
		{"negative history size", func(c *Config) { c.Recommend.HistorySize = -3 }, true},
		{"single history entry", func(c *Config) { c.Recommend.HistorySize = 1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Source:    SourceCatalog,
				Advisor:   AdvisorRules,
				Recommend: recommend.DefaultConfig(),
				LLM:       llm.DefaultConfig(),
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
