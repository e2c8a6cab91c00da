// Package config loads speedlearn settings from defaults, an optional
// config file and SPEEDLEARN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/janitor"
	"github.com/abhisek/speedlearn/internal/llm"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/remote"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/tutor"
)

// Lesson sources and speed advisors selectable by name.
const (
	SourceCatalog = "catalog"
	SourceLLM     = "llm"

	AdvisorRules = "rules"
	AdvisorLLM   = "llm"
)

// Config is the fully resolved application configuration.
type Config struct {
	Log   LogConfig
	Store StoreConfig

	// Source selects the lesson source: "catalog" or "llm".
	Source string

	// Advisor selects the speed advisor: "rules" or "llm".
	Advisor string

	// Seed fixes the tutor RNG. Zero seeds from the clock.
	Seed uint64

	Cache        cache.Config
	Session      session.Config
	Recommend    recommend.Config
	Tutor        tutor.Config
	Janitor      janitor.Config
	RulesAdvisor remote.AdvisorConfig
	LessonWriter remote.LessonWriterConfig
	LLM          llm.Config
}

// LogConfig selects the zap mode and level.
type LogConfig struct {
	Mode  string
	Level string
}

// StoreConfig locates the SQLite database. An empty path uses
// store.DefaultDBPath.
type StoreConfig struct {
	DBPath string
}

// Load reads configuration. path names an explicit config file; when empty
// speedlearn.{yaml,toml,json} is looked up in the working directory and
// $XDG_CONFIG_HOME/speedlearn, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SPEEDLEARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("speedlearn")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "speedlearn"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown selectors, an empty recommendation history and
// an LLM-backed component without an enabled provider.
func (c *Config) Validate() error {
	if c.Source != SourceCatalog && c.Source != SourceLLM {
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	if c.Advisor != AdvisorRules && c.Advisor != AdvisorLLM {
		return fmt.Errorf("config: unknown advisor %q", c.Advisor)
	}
	if c.Recommend.HistorySize < 1 {
		return fmt.Errorf("config: recommend.history_size must be at least 1, got %d", c.Recommend.HistorySize)
	}
	if (c.Source == SourceLLM || c.Advisor == AdvisorLLM) && !c.LLM.Enabled() {
		return fmt.Errorf("config: llm source or advisor needs llm.provider set")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "warn")
	v.SetDefault("store.db_path", "")
	v.SetDefault("source", SourceCatalog)
	v.SetDefault("advisor", AdvisorRules)

	cc := cache.DefaultConfig()
	v.SetDefault("cache.lesson_ttl", cc.LessonTTL)
	v.SetDefault("cache.ai_content_ttl", cc.AIContentTTL)
	v.SetDefault("cache.generation_timeout", cc.GenerationTimeout)
	v.SetDefault("cache.interactive_priority", cc.InteractivePriority)

	v.SetDefault("session.flush_timeout", session.DefaultConfig().FlushTimeout)

	rc := recommend.DefaultConfig()
	v.SetDefault("recommend.throttle", rc.Throttle)
	v.SetDefault("recommend.history_size", rc.HistorySize)
	v.SetDefault("recommend.confidence_threshold", rc.ConfidenceThreshold)

	v.SetDefault("tutor.history_limit", tutor.DefaultConfig().HistoryLimit)
	v.SetDefault("tutor.seed", 0)

	jc := janitor.DefaultConfig()
	v.SetDefault("janitor.sweep_interval", jc.SweepInterval)
	v.SetDefault("janitor.retry_interval", jc.RetryInterval)
	v.SetDefault("janitor.snapshot_interval", jc.SnapshotInterval)
	v.SetDefault("janitor.snapshot_keep", jc.SnapshotKeep)
	v.SetDefault("janitor.job_timeout", jc.JobTimeout)

	ac := remote.DefaultAdvisorConfig()
	v.SetDefault("advisor_rules.min_sessions", ac.MinSessions)
	v.SetDefault("advisor_rules.high_engagement", ac.HighEngagement)
	v.SetDefault("advisor_rules.low_engagement", ac.LowEngagement)
	v.SetDefault("advisor_rules.low_completion", ac.LowCompletion)
	v.SetDefault("advisor_rules.high_completion", ac.HighCompletion)

	wc := remote.DefaultLessonWriterConfig()
	v.SetDefault("lesson_writer.max_tokens", wc.MaxTokens)
	v.SetDefault("lesson_writer.temperature", wc.Temperature)

	lc := llm.DefaultConfig()
	v.SetDefault("llm.provider", lc.Provider)
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
	for name, pc := range providerConfigs(&lc) {
		v.SetDefault("llm."+name+".api_key", pc.APIKey)
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Log:     LogConfig{Mode: v.GetString("log.mode"), Level: v.GetString("log.level")},
		Store:   StoreConfig{DBPath: v.GetString("store.db_path")},
		Source:  v.GetString("source"),
		Advisor: v.GetString("advisor"),
		Seed:    v.GetUint64("tutor.seed"),
		Cache: cache.Config{
			LessonTTL:           v.GetDuration("cache.lesson_ttl"),
			AIContentTTL:        v.GetDuration("cache.ai_content_ttl"),
			GenerationTimeout:   v.GetDuration("cache.generation_timeout"),
			InteractivePriority: v.GetInt("cache.interactive_priority"),
		},
		Session: session.Config{FlushTimeout: v.GetDuration("session.flush_timeout")},
		Recommend: recommend.Config{
			Throttle:            v.GetDuration("recommend.throttle"),
			HistorySize:         v.GetInt("recommend.history_size"),
			ConfidenceThreshold: v.GetFloat64("recommend.confidence_threshold"),
		},
		Tutor: tutor.Config{HistoryLimit: v.GetInt("tutor.history_limit")},
		Janitor: janitor.Config{
			SweepInterval:    v.GetDuration("janitor.sweep_interval"),
			RetryInterval:    v.GetDuration("janitor.retry_interval"),
			SnapshotInterval: v.GetDuration("janitor.snapshot_interval"),
			SnapshotKeep:     v.GetInt("janitor.snapshot_keep"),
			JobTimeout:       v.GetDuration("janitor.job_timeout"),
		},
		RulesAdvisor: remote.AdvisorConfig{
			MinSessions:    v.GetInt("advisor_rules.min_sessions"),
			HighEngagement: v.GetFloat64("advisor_rules.high_engagement"),
			LowEngagement:  v.GetFloat64("advisor_rules.low_engagement"),
			LowCompletion:  v.GetFloat64("advisor_rules.low_completion"),
			HighCompletion: v.GetFloat64("advisor_rules.high_completion"),
		},
		LessonWriter: remote.LessonWriterConfig{
			MaxTokens:   v.GetInt("lesson_writer.max_tokens"),
			Temperature: v.GetFloat64("lesson_writer.temperature"),
		},
		LLM: llm.Config{
			Provider: v.GetString("llm.provider"),
			Timeout:  v.GetDuration("llm.timeout"),
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry.max_attempts"),
				InitialWait: v.GetDuration("llm.retry.initial_wait"),
				MaxWait:     v.GetDuration("llm.retry.max_wait"),
				Multiplier:  v.GetFloat64("llm.retry.multiplier"),
			},
		},
	}
	for name, pc := range providerConfigs(&cfg.LLM) {
		pc.APIKey = v.GetString("llm." + name + ".api_key")
		pc.Model = v.GetString("llm." + name + ".model")
		pc.BaseURL = v.GetString("llm." + name + ".base_url")
	}

	// "auto" picks the first provider with a standard API key variable.
	if cfg.LLM.Provider == "auto" && !cfg.LLM.Discover() {
		cfg.LLM.Provider = llm.ProviderNone
	}
	return cfg
}

func providerConfigs(c *llm.Config) map[string]*llm.ProviderConfig {
	return map[string]*llm.ProviderConfig{
		llm.ProviderAnthropic:  &c.Anthropic,
		llm.ProviderOpenAI:     &c.OpenAI,
		llm.ProviderOpenRouter: &c.OpenRouter,
		llm.ProviderGemini:     &c.Gemini,
	}
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
